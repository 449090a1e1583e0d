package datagen

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path"
	"strconv"

	"github.com/cheggaaa/pb"
	"github.com/pingcap/errors"
)

// Experiment shape of the synthetic decision logs: every function size is
// generated at every optimization level, each level with its own baseline
// inlining threshold (the cost budget in IR instructions).
var (
	sizes              = []int{10, 50, 100, 200, 500}
	baselineThresholds = []int{20, 50, 100}
	conditions         = []string{"baseline", "uniform", "skewed", "perturbed"}
)

// Fixed seed so the perturbed noise is reproducible across runs.
const noiseSeed = 42

// Generate writes <condition>_decisions.csv into dir. condition may be
// "all" to generate every condition. nFuncs is the number of synthetic
// functions per size (50 in the original experiment).
func Generate(condition, dir string, nFuncs int) error {
	if nFuncs <= 0 {
		nFuncs = 50
	}
	if condition == "all" {
		for _, cond := range conditions {
			if err := Generate(cond, dir, nFuncs); err != nil {
				return err
			}
		}
		return nil
	}
	if !validCondition(condition) {
		return errors.Errorf("unknown condition=%v", condition)
	}

	csvPath := path.Join(dir, fmt.Sprintf("%v_decisions.csv", condition))
	f, err := os.OpenFile(csvPath, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0666)
	if err != nil {
		return errors.Trace(err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"func_name", "shadow_price", "ir_count", "opt_level",
		"inlined", "threshold_baseline", "threshold_adjusted"}); err != nil {
		return errors.Trace(err)
	}

	rng := rand.New(rand.NewSource(noiseSeed))
	total := len(baselineThresholds) * nFuncs * len(sizes)
	fmt.Printf("[datagen] %v: %v funcs x %v sizes x %v opt levels = %v rows -> %v\n",
		condition, nFuncs, len(sizes), len(baselineThresholds), total, csvPath)
	bar := pb.StartNew(total)
	for opt, base := range baselineThresholds {
		for fi := 0; fi < nFuncs; fi++ {
			for _, irCount := range sizes {
				price := shadowPrice(condition, fi, rng)
				adjusted := adjustedThreshold(base, price)
				inlined := 0
				if irCount < adjusted {
					inlined = 1
				}
				record := []string{
					fmt.Sprintf("func_%d_size_%d_opt_%d", fi, irCount, opt),
					strconv.FormatFloat(price, 'f', 2, 64),
					strconv.Itoa(irCount),
					strconv.Itoa(opt),
					strconv.Itoa(inlined),
					strconv.Itoa(base),
					strconv.Itoa(adjusted),
				}
				if err := w.Write(record); err != nil {
					return errors.Trace(err)
				}
				bar.Increment()
			}
		}
	}
	bar.Finish()
	w.Flush()
	return errors.Trace(w.Error())
}

func validCondition(condition string) bool {
	for _, c := range conditions {
		if c == condition {
			return true
		}
	}
	return false
}

// shadowPrice assigns the per-condition signal. Skewed alternates a hot
// 1000 and a cold 10; perturbed adds clamped uniform noise on top of the
// same split.
func shadowPrice(condition string, funcIdx int, rng *rand.Rand) float64 {
	switch condition {
	case "skewed":
		if funcIdx%2 == 0 {
			return 1000
		}
		return 10
	case "perturbed":
		var price float64
		if funcIdx%2 == 0 {
			price = 1000 + float64(rng.Intn(401)-200)
		} else {
			price = 10 + float64(rng.Intn(11)-5)
		}
		if price < 1 {
			price = 1
		}
		if price > 2000 {
			price = 2000
		}
		return price
	default: // baseline, uniform
		return 100
	}
}

// adjustedThreshold is the NUM shadow-price formula: the baseline cost
// budget scaled by lambda/100, with the scale clamped to [0.1, 5] and the
// result clamped to [5, 1000].
func adjustedThreshold(base int, price float64) int {
	scale := price / 100
	if scale < 0.1 {
		scale = 0.1
	}
	if scale > 5 {
		scale = 5
	}
	adjusted := int(float64(base) * scale)
	if adjusted < 5 {
		adjusted = 5
	}
	if adjusted > 1000 {
		adjusted = 1000
	}
	return adjusted
}
