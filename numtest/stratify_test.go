package numtest_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/mirlab/InlinerTester/numtest"
)

// stratRecord builds one record for the stratification tests.
func stratRecord(name string, size, opt int, price float64, inlined bool, threshold float64) numtest.DecisionRecord {
	return numtest.DecisionRecord{
		FuncName:          name,
		IRCount:           size,
		OptLevel:          opt,
		ShadowPrice:       price,
		Inlined:           inlined,
		ThresholdBaseline: threshold,
	}
}

func TestStratifyByOptLevelSkipsLegacyData(t *testing.T) {
	ds := skewedDataset(t, numtest.CondSkewed, 20,
		func(i int) bool { return true }, func(i int) bool { return false })
	strat := numtest.StratifyByOptLevel(ds, numtest.DefaultThresholds())
	if len(strat.Strata) != 0 {
		t.Fatalf("strata=%v", strat.Strata)
	}
}

func TestStratifyByOptLevel(t *testing.T) {
	var rs []numtest.DecisionRecord
	for _, level := range []int{0, 1, 2} {
		threshold := float64(20 + level*30)
		for i := 0; i < 20; i++ {
			hot := i%2 == 0
			price := 10.0
			if hot {
				price = 1000
			}
			rs = append(rs, stratRecord(fmt.Sprintf("f_%d_%d", level, i), 100, level, price, hot, threshold))
		}
	}
	ds := mustDataset(t, numtest.CondSkewed, true, rs)
	strat := numtest.StratifyByOptLevel(ds, numtest.DefaultThresholds())
	if len(strat.Strata) != 3 {
		t.Fatalf("strata=%v", len(strat.Strata))
	}
	for level, s := range strat.Strata {
		if s.N != 20 {
			t.Fatalf("level=%v n=%v", level, s.N)
		}
		if math.Abs(s.Rho-1) > 1e-9 {
			t.Fatalf("level=%v rho=%v", level, s.Rho)
		}
		if !s.Significant {
			t.Fatalf("level=%v p=%v", level, s.P)
		}
		if s.Threshold != float64(20+level*30) {
			t.Fatalf("level=%v threshold=%v", level, s.Threshold)
		}
		if s.InlineRate != 50 || s.HotRate != 100 || s.ColdRate != 0 {
			t.Fatalf("level=%v rates=%v/%v/%v", level, s.InlineRate, s.HotRate, s.ColdRate)
		}
	}
	if strat.RhoRange != 0 {
		t.Fatalf("range=%v", strat.RhoRange)
	}
	if strat.Assessment != numtest.AssessConsistent {
		t.Fatalf("assessment=%v", strat.Assessment)
	}
}

func TestStratifyByOptLevelVariable(t *testing.T) {
	var rs []numtest.DecisionRecord
	// level 0 follows the signal, level 1 ignores it
	for i := 0; i < 20; i++ {
		hot := i%2 == 0
		price := 10.0
		if hot {
			price = 1000
		}
		rs = append(rs, stratRecord(fmt.Sprintf("a_%d", i), 100, 0, price, hot, 20))
		rs = append(rs, stratRecord(fmt.Sprintf("b_%d", i), 100, 1, price, i%4 < 2, 50))
	}
	ds := mustDataset(t, numtest.CondSkewed, true, rs)
	strat := numtest.StratifyByOptLevel(ds, numtest.DefaultThresholds())
	if strat.RhoRange < 0.2 {
		t.Fatalf("range=%v", strat.RhoRange)
	}
	if strat.Assessment != numtest.AssessVariable {
		t.Fatalf("assessment=%v", strat.Assessment)
	}
}

// sizeBucket appends n/2 hot and n/2 cold records of one size, with the
// given per-group inlined counts.
func sizeBucket(rs []numtest.DecisionRecord, size, n, hotInlined, coldInlined int) []numtest.DecisionRecord {
	for i := 0; i < n/2; i++ {
		rs = append(rs, stratRecord(fmt.Sprintf("f_%d_h%d", size, i), size, 0, 1000, i < hotInlined, 50))
		rs = append(rs, stratRecord(fmt.Sprintf("f_%d_c%d", size, i), size, 0, 10, i < coldInlined, 50))
	}
	return rs
}

func TestStratifyBySizeClasses(t *testing.T) {
	var rs []numtest.DecisionRecord
	rs = sizeBucket(rs, 10, 100, 48, 48)  // 96% / 96% -> floor
	rs = sizeBucket(rs, 100, 100, 50, 0)  // 100% / 0% -> boundary
	rs = sizeBucket(rs, 200, 100, 40, 30) // 80% / 60% -> marginal
	rs = sizeBucket(rs, 500, 100, 0, 0)   // 0% / 0% -> ceiling
	ds := mustDataset(t, numtest.CondSkewed, false, rs)
	strat := numtest.StratifyBySize(ds, numtest.DefaultThresholds())

	want := map[int]numtest.SizeClass{
		10:  numtest.SizeFloor,
		100: numtest.SizeBoundary,
		200: numtest.SizeMarginal,
		500: numtest.SizeCeiling,
	}
	for size, class := range want {
		s, ok := strat.Strata[size]
		if !ok {
			t.Fatalf("missing size %v", size)
		}
		if s.Class != class {
			t.Fatalf("size=%v class=%v want %v (hot=%v cold=%v)", size, s.Class, class, s.HotRate, s.ColdRate)
		}
	}
	if len(strat.BoundarySizes) != 1 || strat.BoundarySizes[0] != 100 {
		t.Fatalf("boundary=%v", strat.BoundarySizes)
	}
}

func TestStratifyBySizePrecedence(t *testing.T) {
	// 96% vs 94%: rule 1 would not fire (94 <= 95), so the diff rule is
	// checked; diff=2 falls through to marginal
	var rs []numtest.DecisionRecord
	rs = sizeBucket(rs, 50, 100, 48, 47)
	ds := mustDataset(t, numtest.CondSkewed, false, rs)
	strat := numtest.StratifyBySize(ds, numtest.DefaultThresholds())
	if got := strat.Strata[50].Class; got != numtest.SizeMarginal {
		t.Fatalf("class=%v", got)
	}

	// both above 95%: floor wins even though the marginal rule matches too
	rs = nil
	rs = sizeBucket(rs, 50, 100, 48, 48)
	ds = mustDataset(t, numtest.CondSkewed, false, rs)
	strat = numtest.StratifyBySize(ds, numtest.DefaultThresholds())
	if got := strat.Strata[50].Class; got != numtest.SizeFloor {
		t.Fatalf("class=%v", got)
	}
}

func TestStratifyBySizeConstantBucket(t *testing.T) {
	var rs []numtest.DecisionRecord
	rs = sizeBucket(rs, 10, 20, 10, 10) // everything inlined
	ds := mustDataset(t, numtest.CondSkewed, false, rs)
	strat := numtest.StratifyBySize(ds, numtest.DefaultThresholds())
	s := strat.Strata[10]
	if s.Rho != 0 || s.P != 1 {
		t.Fatalf("rho=%v p=%v", s.Rho, s.P)
	}
	if s.Class != numtest.SizeFloor {
		t.Fatalf("class=%v", s.Class)
	}
}

func TestStratifyBySizeUsesGlobalMedian(t *testing.T) {
	// bucket A carries only cold prices, bucket B only hot ones; with the
	// dataset-global median at 509.5 every record of A is cold and every
	// record of B is hot, which a per-bucket median would not produce
	var rs []numtest.DecisionRecord
	for i := 0; i < 10; i++ {
		rs = append(rs, stratRecord(fmt.Sprintf("a_%d", i), 10, 0, 10+float64(i), true, 50))
		rs = append(rs, stratRecord(fmt.Sprintf("b_%d", i), 500, 0, 1000+float64(i), true, 50))
	}
	ds := mustDataset(t, numtest.CondSkewed, false, rs)
	strat := numtest.StratifyBySize(ds, numtest.DefaultThresholds())
	if s := strat.Strata[10]; s.HotRate != 0 || s.ColdRate != 100 {
		t.Fatalf("size 10: hot=%v cold=%v", s.HotRate, s.ColdRate)
	}
	if s := strat.Strata[500]; s.HotRate != 100 || s.ColdRate != 0 {
		t.Fatalf("size 500: hot=%v cold=%v", s.HotRate, s.ColdRate)
	}
}

func TestJointInlineDistribution(t *testing.T) {
	var rs []numtest.DecisionRecord
	for _, level := range []int{0, 1} {
		for i := 0; i < 4; i++ {
			hot := i%2 == 0
			price := 10.0
			if hot {
				price = 1000
			}
			// only level 1 inlines hot functions
			rs = append(rs, stratRecord(fmt.Sprintf("f_%d_%d", level, i), 10+10*(i/2), level, price, hot && level == 1, 50))
		}
	}
	ds := mustDataset(t, numtest.CondSkewed, true, rs)
	j := numtest.JointInlineDistribution(ds)
	if j.OptLevel != 1 {
		t.Fatalf("opt level=%v", j.OptLevel)
	}
	if len(j.Sizes) != 2 || len(j.Prices) != 2 {
		t.Fatalf("sizes=%v prices=%v", j.Sizes, j.Prices)
	}
	// price 1000 cells are fully inlined at level 1, price 10 cells not
	for si := range j.Sizes {
		if j.Rates[si][0] != 0 {
			t.Fatalf("cold rate=%v", j.Rates[si][0])
		}
		if j.Rates[si][1] != 1 {
			t.Fatalf("hot rate=%v", j.Rates[si][1])
		}
	}
}

func TestJointInlineDistributionEmptyCell(t *testing.T) {
	rs := []numtest.DecisionRecord{
		stratRecord("a", 10, 0, 10, false, 50),
		stratRecord("b", 500, 0, 1000, true, 50),
	}
	ds := mustDataset(t, numtest.CondSkewed, false, rs)
	j := numtest.JointInlineDistribution(ds)
	if j.OptLevel != -1 {
		t.Fatalf("opt level=%v", j.OptLevel)
	}
	if !math.IsNaN(j.Rates[0][1]) || !math.IsNaN(j.Rates[1][0]) {
		t.Fatalf("rates=%v", j.Rates)
	}
	if j.Rates[0][0] != 0 || j.Rates[1][1] != 1 {
		t.Fatalf("rates=%v", j.Rates)
	}
}
