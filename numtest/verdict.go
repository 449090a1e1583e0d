package numtest

// Verdict is the three-valued aggregate conclusion over the core tests.
type Verdict int

const (
	VerdictDisproves Verdict = iota
	VerdictPartial
	VerdictCorroborates
)

var verdictNameMap = map[Verdict]string{
	VerdictDisproves:    "DISPROVES",
	VerdictPartial:      "PARTIAL",
	VerdictCorroborates: "CORROBORATES",
}

func (v Verdict) String() string {
	return verdictNameMap[v]
}

// AggregateVerdict counts the passed core tests: 3 corroborates the
// hypothesis, 2 is partial evidence, anything less disproves it.
func AggregateVerdict(correlation, effectSize, agreement bool) Verdict {
	passed := 0
	for _, ok := range []bool{correlation, effectSize, agreement} {
		if ok {
			passed++
		}
	}
	switch passed {
	case 3:
		return VerdictCorroborates
	case 2:
		return VerdictPartial
	default:
		return VerdictDisproves
	}
}
