package numtest

import (
	"math"
	"sort"
)

// OptStratum holds the correlation test rerun within one opt level.
type OptStratum struct {
	Level       int
	N           int
	Rho         float64
	P           float64
	CILow       float64
	CIHigh      float64
	InlineRate  float64
	HotRate     float64 // split by the dataset-global median signal
	ColdRate    float64
	Threshold   float64 // representative threshold_baseline of the level
	Significant bool
}

// Opt-level consistency assessments (informational only).
const (
	AssessConsistent = "CONSISTENT across opt levels"
	AssessVariable   = "VARIABLE across opt levels"
)

// OptStratification is the by-opt-level analysis. Strata is empty for
// legacy datasets without the opt_level field.
type OptStratification struct {
	Strata     map[int]OptStratum
	RhoRange   float64
	Assessment string
}

// StratifyByOptLevel reruns the correlation test per optimization level.
func StratifyByOptLevel(ds *DecisionDataset, th Thresholds) OptStratification {
	strat := OptStratification{Strata: map[int]OptStratum{}}
	if !ds.HasOptLevel() {
		return strat
	}
	medianPrice := ds.MedianShadowPrice()
	for _, level := range ds.OptLevels() {
		rs := ds.FilterOptLevel(level)
		rho, p := Spearman(shadowPrices(rs), inlinedVals(rs))
		lo, hi := SpearmanCI(rho, len(rs), th.Confidence)
		hot, cold := splitHotCold(rs, medianPrice)
		s := OptStratum{
			Level:       level,
			N:           len(rs),
			Rho:         rho,
			P:           p,
			CILow:       lo,
			CIHigh:      hi,
			InlineRate:  inlineRate(rs),
			HotRate:     inlineRate(hot),
			ColdRate:    inlineRate(cold),
			Significant: math.Abs(rho) > th.SpearmanRho && p < th.Alpha,
		}
		if len(rs) > 0 {
			s.Threshold = rs[0].ThresholdBaseline
		}
		strat.Strata[level] = s
	}

	if len(strat.Strata) >= 2 {
		min, max := math.Inf(1), math.Inf(-1)
		for _, s := range strat.Strata {
			min = math.Min(min, s.Rho)
			max = math.Max(max, s.Rho)
		}
		strat.RhoRange = max - min
		if strat.RhoRange < th.RhoRange {
			strat.Assessment = AssessConsistent
		} else {
			strat.Assessment = AssessVariable
		}
	}
	return strat
}

// SizeClass labels one function-size bucket. A floor bucket is always
// inlined and a ceiling bucket never is; a boundary bucket is where the
// signal materially changes the outcome.
type SizeClass int

const (
	SizeFloor SizeClass = iota
	SizeCeiling
	SizeBoundary
	SizeMarginal
)

var sizeClassNameMap = map[SizeClass]string{
	SizeFloor:    "ALWAYS INLINED (floor)",
	SizeCeiling:  "NEVER INLINED (ceiling)",
	SizeBoundary: "DECISION BOUNDARY",
	SizeMarginal: "MARGINAL",
}

func (c SizeClass) String() string {
	return sizeClassNameMap[c]
}

// sizeRules is the ordered classification rule list; the first matching
// rule wins, so precedence is explicit.
var sizeRules = []struct {
	class SizeClass
	match func(hot, cold float64, th Thresholds) bool
}{
	{SizeFloor, func(hot, cold float64, th Thresholds) bool { return hot > th.FloorRate && cold > th.FloorRate }},
	{SizeCeiling, func(hot, cold float64, th Thresholds) bool { return hot < th.CeilingRate && cold < th.CeilingRate }},
	{SizeBoundary, func(hot, cold float64, th Thresholds) bool { return math.Abs(hot-cold) > th.BoundaryGap }},
	{SizeMarginal, func(hot, cold float64, th Thresholds) bool { return true }},
}

func classifySizeBucket(hot, cold float64, th Thresholds) SizeClass {
	for _, rule := range sizeRules {
		if rule.match(hot, cold, th) {
			return rule.class
		}
	}
	return SizeMarginal
}

// SizeStratum holds the per-size-bucket rates and correlation.
type SizeStratum struct {
	Size       int
	N          int
	InlineRate float64
	HotRate    float64
	ColdRate   float64
	Rho        float64
	P          float64
	Class      SizeClass
}

// SizeStratification is the by-function-size analysis.
type SizeStratification struct {
	Strata        map[int]SizeStratum
	BoundarySizes []int
}

// StratifyBySize partitions by ir_count. The hot/cold split point is the
// dataset-global median signal, not a per-bucket median; a bucket with a
// constant outcome or signal gets rho=0, p=1.
func StratifyBySize(ds *DecisionDataset, th Thresholds) SizeStratification {
	strat := SizeStratification{Strata: map[int]SizeStratum{}}
	medianPrice := ds.MedianShadowPrice()
	for _, size := range ds.IRCounts() {
		rs := ds.FilterIRCount(size)
		hot, cold := splitHotCold(rs, medianPrice)
		rho, p := Spearman(shadowPrices(rs), inlinedVals(rs))
		s := SizeStratum{
			Size:       size,
			N:          len(rs),
			InlineRate: inlineRate(rs),
			HotRate:    inlineRate(hot),
			ColdRate:   inlineRate(cold),
			Rho:        rho,
			P:          p,
		}
		s.Class = classifySizeBucket(s.HotRate, s.ColdRate, th)
		strat.Strata[size] = s
		if s.Class == SizeBoundary {
			strat.BoundarySizes = append(strat.BoundarySizes, size)
		}
	}
	sort.Ints(strat.BoundarySizes)
	return strat
}

// JointDistribution is the inlining rate over the size x signal cross
// product, for presentation only. Cells without samples are NaN.
type JointDistribution struct {
	OptLevel int // -1 when the dataset has no opt levels
	Sizes    []int
	Prices   []float64
	Rates    [][]float64 // [size index][price index]
}

// JointInlineDistribution restricts to one representative opt level
// (level 1 when present) and pivots the inlining rate by size and signal.
func JointInlineDistribution(ds *DecisionDataset) JointDistribution {
	rs := ds.Records()
	level := -1
	if ds.HasOptLevel() {
		for _, l := range ds.OptLevels() {
			if l == 1 {
				level = 1
				rs = ds.FilterOptLevel(1)
				break
			}
		}
	}

	sizes := distinctInts(rs, func(r DecisionRecord) int { return r.IRCount })
	priceSet := make(map[float64]struct{})
	for _, r := range rs {
		priceSet[r.ShadowPrice] = struct{}{}
	}
	prices := make([]float64, 0, len(priceSet))
	for p := range priceSet {
		prices = append(prices, p)
	}
	sort.Float64s(prices)

	sizeIdx := make(map[int]int, len(sizes))
	for i, s := range sizes {
		sizeIdx[s] = i
	}
	priceIdx := make(map[float64]int, len(prices))
	for i, p := range prices {
		priceIdx[p] = i
	}

	sum := make([][]float64, len(sizes))
	cnt := make([][]float64, len(sizes))
	for i := range sum {
		sum[i] = make([]float64, len(prices))
		cnt[i] = make([]float64, len(prices))
	}
	for _, r := range rs {
		i, j := sizeIdx[r.IRCount], priceIdx[r.ShadowPrice]
		cnt[i][j]++
		if r.Inlined {
			sum[i][j]++
		}
	}

	rates := make([][]float64, len(sizes))
	for i := range rates {
		rates[i] = make([]float64, len(prices))
		for j := range rates[i] {
			if cnt[i][j] == 0 {
				rates[i][j] = math.NaN()
			} else {
				rates[i][j] = sum[i][j] / cnt[i][j]
			}
		}
	}
	return JointDistribution{OptLevel: level, Sizes: sizes, Prices: prices, Rates: rates}
}
