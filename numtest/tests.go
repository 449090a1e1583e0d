package numtest

import (
	"math"
)

// Thresholds is the fixed set of decision constants of the analysis. It is
// passed explicitly into every test so nothing reads package-level state.
type Thresholds struct {
	SpearmanRho     float64 // Test 1: |rho| must exceed this
	CohensD         float64 // Test 2: |d| must exceed this
	Alpha           float64 // significance level for p-values
	Confidence      float64 // confidence level of the Fisher CI
	AgreementRate   float64 // Test 3: minimum concordant fraction
	NearPerfectFrac float64 // Test 3: discordant fraction treated as perfect
	RhoRange        float64 // opt-level strata: max-min rho below this is consistent
	FloorRate       float64 // size strata: hot&cold above this is a floor
	CeilingRate     float64 // size strata: hot&cold below this is a ceiling
	BoundaryGap     float64 // size strata: |hot-cold| above this is a boundary
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		SpearmanRho:     0.5,
		CohensD:         0.5,
		Alpha:           0.05,
		Confidence:      0.95,
		AgreementRate:   0.80,
		NearPerfectFrac: 0.05,
		RhoRange:        0.2,
		FloorRate:       95,
		CeilingRate:     5,
		BoundaryGap:     20,
	}
}

// CorrelationResult is the outcome of Test 1.
type CorrelationResult struct {
	Rho    float64
	P      float64
	CILow  float64
	CIHigh float64
	N      int
	Pass   bool
}

// RunCorrelationTest correlates the shadow-price signal with the inlining
// outcome over the full dataset. The CI is NaN for n<4 and never takes part
// in the pass decision.
func RunCorrelationTest(ds *DecisionDataset, th Thresholds) CorrelationResult {
	rho, p := Spearman(ds.ShadowPrices(), ds.InlinedVals())
	lo, hi := SpearmanCI(rho, ds.Len(), th.Confidence)
	return CorrelationResult{
		Rho:    rho,
		P:      p,
		CILow:  lo,
		CIHigh: hi,
		N:      ds.Len(),
		Pass:   math.Abs(rho) > th.SpearmanRho && p < th.Alpha,
	}
}

// EffectSizeResult is the outcome of Test 2.
type EffectSizeResult struct {
	D           float64
	MedianPrice float64
	HotRate     float64
	ColdRate    float64
	NHot        int
	NCold       int
	Pass        bool
}

// RunEffectSizeTest splits the dataset around its own median signal and
// computes Cohen's d between the hot and cold inlining outcomes.
func RunEffectSizeTest(ds *DecisionDataset, th Thresholds) EffectSizeResult {
	medianPrice := ds.MedianShadowPrice()
	hot, cold := splitHotCold(ds.Records(), medianPrice)
	d := CohensD(inlinedVals(hot), inlinedVals(cold))
	return EffectSizeResult{
		D:           d,
		MedianPrice: medianPrice,
		HotRate:     inlineRate(hot),
		ColdRate:    inlineRate(cold),
		NHot:        len(hot),
		NCold:       len(cold),
		Pass:        math.Abs(d) > th.CohensD,
	}
}

// Agreement classification reasons, in precedence order.
const (
	ReasonPerfectAgreement = "PERFECT AGREEMENT"
	ReasonHighAgreement    = "HIGH AGREEMENT (no asymmetric shift)"
	ReasonAsymmetric       = "ASYMMETRIC DISAGREEMENT despite high agreement"
	ReasonLowAgreement     = "LOW AGREEMENT or systematic shift"
)

// AgreementResult is the outcome of Test 3.
type AgreementResult struct {
	Stat          float64
	P             float64
	Table         [2][2]int
	Matched       int
	Discordant    int
	AgreementRate float64 // concordant fraction of matched pairs
	Reason        string
	Pass          bool
}

// RunAgreementTest joins two conditions on func_name and runs the McNemar
// test over the matched decisions. Unmatched functions are dropped.
func RunAgreementTest(a, b *DecisionDataset, th Thresholds) AgreementResult {
	bByName := b.InlinedByName()
	as := make([]bool, 0, a.Len())
	bs := make([]bool, 0, a.Len())
	for _, r := range a.Records() {
		other, ok := bByName[r.FuncName]
		if !ok {
			continue
		}
		as = append(as, r.Inlined)
		bs = append(bs, other)
	}

	stat, p, table := McNemar(as, bs)
	matched := len(as)
	discordant := table[0][1] + table[1][0]
	concordant := table[0][0] + table[1][1]
	agreement := 0.0
	if matched > 0 {
		agreement = float64(concordant) / float64(matched)
	}

	res := AgreementResult{
		Stat:          stat,
		P:             p,
		Table:         table,
		Matched:       matched,
		Discordant:    discordant,
		AgreementRate: agreement,
	}
	switch {
	case float64(discordant) <= float64(matched)*th.NearPerfectFrac:
		res.Pass, res.Reason = true, ReasonPerfectAgreement
	case agreement >= th.AgreementRate && p >= th.Alpha:
		res.Pass, res.Reason = true, ReasonHighAgreement
	case agreement >= th.AgreementRate && p < th.Alpha:
		res.Pass, res.Reason = false, ReasonAsymmetric
	default:
		res.Pass, res.Reason = false, ReasonLowAgreement
	}
	return res
}
