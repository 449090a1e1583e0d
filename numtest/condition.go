package numtest

import (
	"github.com/pingcap/errors"
)

// Condition is one of the four fixed experimental configurations.
type Condition int

const (
	CondBaseline Condition = iota
	CondUniform
	CondSkewed
	CondPerturbed
)

var (
	condNameMap = map[Condition]string{
		CondBaseline:  "baseline",
		CondUniform:   "uniform",
		CondSkewed:    "skewed",
		CondPerturbed: "perturbed",
	}
)

// AllConditions lists every condition in report order.
var AllConditions = []Condition{CondBaseline, CondUniform, CondSkewed, CondPerturbed}

func (c Condition) String() string {
	return condNameMap[c]
}

func (c *Condition) UnmarshalText(text []byte) error {
	for k, v := range condNameMap {
		if v == string(text) {
			*c = k
			return nil
		}
	}
	return errors.Errorf("unknown condition=%v", string(text))
}
