package numtest

import (
	"sort"

	"github.com/pingcap/errors"
)

// DecisionRecord is one function's observed inlining decision.
type DecisionRecord struct {
	FuncName          string
	IRCount           int
	OptLevel          int // meaningful only when the dataset carries opt levels
	ShadowPrice       float64
	Inlined           bool
	ThresholdBaseline float64
}

// DecisionDataset holds every decision record of one condition.
// It is read-only once constructed.
type DecisionDataset struct {
	cond        Condition
	hasOptLevel bool
	records     []DecisionRecord
}

// NewDecisionDataset builds a dataset and rejects duplicated function names.
func NewDecisionDataset(cond Condition, hasOptLevel bool, records []DecisionRecord) (*DecisionDataset, error) {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, ok := seen[r.FuncName]; ok {
			return nil, errors.Errorf("duplicated func_name=%v in condition=%v", r.FuncName, cond)
		}
		seen[r.FuncName] = struct{}{}
	}
	return &DecisionDataset{cond: cond, hasOptLevel: hasOptLevel, records: records}, nil
}

func (ds *DecisionDataset) Condition() Condition {
	return ds.cond
}

func (ds *DecisionDataset) Len() int {
	return len(ds.records)
}

func (ds *DecisionDataset) Records() []DecisionRecord {
	return ds.records
}

// HasOptLevel reports whether the opt_level column was present at load time.
func (ds *DecisionDataset) HasOptLevel() bool {
	return ds.hasOptLevel
}

func (ds *DecisionDataset) ShadowPrices() []float64 {
	xs := make([]float64, len(ds.records))
	for i, r := range ds.records {
		xs[i] = r.ShadowPrice
	}
	return xs
}

// InlinedVals returns the decision outcomes as 0/1 values.
func (ds *DecisionDataset) InlinedVals() []float64 {
	ys := make([]float64, len(ds.records))
	for i, r := range ds.records {
		if r.Inlined {
			ys[i] = 1
		}
	}
	return ys
}

// InlineRate is the percentage of inlined records.
func (ds *DecisionDataset) InlineRate() float64 {
	return inlineRate(ds.records)
}

// MedianShadowPrice is the dataset-global median of the signal.
func (ds *DecisionDataset) MedianShadowPrice() float64 {
	return median(ds.ShadowPrices())
}

// OptLevels returns the distinct opt levels in ascending order.
func (ds *DecisionDataset) OptLevels() []int {
	if !ds.hasOptLevel {
		return nil
	}
	return distinctInts(ds.records, func(r DecisionRecord) int { return r.OptLevel })
}

// IRCounts returns the distinct function sizes in ascending order.
func (ds *DecisionDataset) IRCounts() []int {
	return distinctInts(ds.records, func(r DecisionRecord) int { return r.IRCount })
}

func (ds *DecisionDataset) FilterOptLevel(level int) []DecisionRecord {
	rs := make([]DecisionRecord, 0, len(ds.records))
	for _, r := range ds.records {
		if r.OptLevel == level {
			rs = append(rs, r)
		}
	}
	return rs
}

func (ds *DecisionDataset) FilterIRCount(size int) []DecisionRecord {
	rs := make([]DecisionRecord, 0, len(ds.records))
	for _, r := range ds.records {
		if r.IRCount == size {
			rs = append(rs, r)
		}
	}
	return rs
}

// InlinedByName indexes the decision outcome by function name.
func (ds *DecisionDataset) InlinedByName() map[string]bool {
	m := make(map[string]bool, len(ds.records))
	for _, r := range ds.records {
		m[r.FuncName] = r.Inlined
	}
	return m
}

func distinctInts(rs []DecisionRecord, key func(DecisionRecord) int) []int {
	seen := make(map[int]struct{})
	vals := make([]int, 0, 8)
	for _, r := range rs {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		vals = append(vals, k)
	}
	sort.Ints(vals)
	return vals
}

func inlineRate(rs []DecisionRecord) float64 {
	if len(rs) == 0 {
		return 0
	}
	cnt := 0
	for _, r := range rs {
		if r.Inlined {
			cnt++
		}
	}
	return float64(cnt) / float64(len(rs)) * 100
}

// median returns the numpy-style median, averaging the two middle values
// for even-sized inputs. Zero for empty input.
func median(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, xs)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// splitHotCold splits records around the given signal value: hot is
// strictly greater, cold is less-or-equal.
func splitHotCold(rs []DecisionRecord, medianPrice float64) (hot, cold []DecisionRecord) {
	for _, r := range rs {
		if r.ShadowPrice > medianPrice {
			hot = append(hot, r)
		} else {
			cold = append(cold, r)
		}
	}
	return
}

func inlinedVals(rs []DecisionRecord) []float64 {
	ys := make([]float64, len(rs))
	for i, r := range rs {
		if r.Inlined {
			ys[i] = 1
		}
	}
	return ys
}

func shadowPrices(rs []DecisionRecord) []float64 {
	xs := make([]float64, len(rs))
	for i, r := range rs {
		xs[i] = r.ShadowPrice
	}
	return xs
}
