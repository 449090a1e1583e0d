package numtest_test

import (
	"testing"

	"github.com/mirlab/InlinerTester/numtest"
)

func TestAggregateVerdictAllCombinations(t *testing.T) {
	bools := []bool{false, true}
	for _, a := range bools {
		for _, b := range bools {
			for _, c := range bools {
				passed := 0
				for _, ok := range []bool{a, b, c} {
					if ok {
						passed++
					}
				}
				want := numtest.VerdictDisproves
				switch passed {
				case 3:
					want = numtest.VerdictCorroborates
				case 2:
					want = numtest.VerdictPartial
				}
				if got := numtest.AggregateVerdict(a, b, c); got != want {
					t.Fatalf("(%v,%v,%v)=%v, want %v", a, b, c, got, want)
				}
			}
		}
	}
}

func TestVerdictNames(t *testing.T) {
	if numtest.VerdictCorroborates.String() != "CORROBORATES" ||
		numtest.VerdictPartial.String() != "PARTIAL" ||
		numtest.VerdictDisproves.String() != "DISPROVES" {
		t.Fatal()
	}
}
