package numtest

import (
	"fmt"
	"math/rand"
	"os"
	"path"

	"github.com/pingcap/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

func reportPath(dir, name string) (string, error) {
	if !path.IsAbs(dir) {
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.Trace(err)
		}
		dir = path.Join(wd, dir)
	}
	return path.Join(dir, name), nil
}

// DrawSignalScatter draws shadow price against the jittered 0/1 outcome.
// The jitter is cosmetic display noise only and never feeds a statistic.
func DrawSignalScatter(ds *DecisionDataset, res CorrelationResult, dir string) (string, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Spearman rho=%.3f [%.2f, %.2f], p=%.1e", res.Rho, res.CILow, res.CIHigh, res.P)
	p.X.Label.Text = "Shadow Price (lambda)"
	p.Y.Label.Text = "Inlined (0/1)"

	var yes, no plotter.XYs
	for _, r := range ds.Records() {
		jitter := rand.Float64()*0.1 - 0.05
		if r.Inlined {
			yes = append(yes, plotter.XY{X: r.ShadowPrice, Y: 1 + jitter})
		} else {
			no = append(no, plotter.XY{X: r.ShadowPrice, Y: jitter})
		}
	}
	for i, xys := range []plotter.XYs{yes, no} {
		if len(xys) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return "", errors.Trace(err)
		}
		sc.GlyphStyle.Color = plotutil.Color(i)
		sc.GlyphStyle.Radius = vg.Points(2)
		p.Add(sc)
	}

	pngPath, err := reportPath(dir, fmt.Sprintf("%v-signal-scatter.png", ds.Condition()))
	if err != nil {
		return "", err
	}
	return pngPath, p.Save(6*vg.Inch, 4*vg.Inch, pngPath)
}

// DrawHotColdBars draws the hot/cold inlining rates of the effect-size test.
func DrawHotColdBars(res EffectSizeResult, dir string) (string, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Hot vs Cold, Cohen's d=%.3f", res.D)
	p.Y.Label.Text = "Inlining Rate (%)"
	p.Y.Max = 105

	bar, err := plotter.NewBarChart(plotter.Values{res.HotRate, res.ColdRate}, vg.Points(40))
	if err != nil {
		return "", errors.Trace(err)
	}
	bar.Color = plotutil.Color(0)
	p.Add(bar)
	p.NominalX("Hot (high lambda)", "Cold (low lambda)")

	pngPath, err := reportPath(dir, "hot-cold-bar.png")
	if err != nil {
		return "", err
	}
	return pngPath, p.Save(4*vg.Inch, 4*vg.Inch, pngPath)
}

// DrawConditionRates draws the mean inlining rate of every condition.
func DrawConditionRates(data map[Condition]*DecisionDataset, dir string) (string, error) {
	p := plot.New()
	p.Title.Text = "Inlining Rate by Condition"
	p.Y.Label.Text = "Mean Inlining Rate (%)"
	p.Y.Max = 105

	vals := make(plotter.Values, 0, len(AllConditions))
	names := make([]string, 0, len(AllConditions))
	for _, cond := range AllConditions {
		vals = append(vals, data[cond].InlineRate())
		names = append(names, cond.String())
	}
	bar, err := plotter.NewBarChart(vals, vg.Points(30))
	if err != nil {
		return "", errors.Trace(err)
	}
	bar.Color = plotutil.Color(2)
	p.Add(bar)
	p.NominalX(names...)

	pngPath, err := reportPath(dir, "condition-rates-bar.png")
	if err != nil {
		return "", err
	}
	return pngPath, p.Save(5*vg.Inch, 4*vg.Inch, pngPath)
}

// DrawRhoByOptLevel draws the per-level rho with the pass threshold line.
func DrawRhoByOptLevel(strat OptStratification, dir string) (string, error) {
	p := plot.New()
	p.Title.Text = "Spearman rho by Opt Level"
	p.Y.Label.Text = "Spearman rho"
	p.Y.Min, p.Y.Max = 0, 1.05

	levels := sortedLevels(strat.Strata)
	vals := make(plotter.Values, 0, len(levels))
	names := make([]string, 0, len(levels))
	for _, l := range levels {
		vals = append(vals, strat.Strata[l].Rho)
		names = append(names, fmt.Sprintf("O%v (t=%.0f)", l, strat.Strata[l].Threshold))
	}
	bar, err := plotter.NewBarChart(vals, vg.Points(30))
	if err != nil {
		return "", errors.Trace(err)
	}
	bar.Color = plotutil.Color(1)
	p.Add(bar)

	threshold, err := plotter.NewLine(plotter.XYs{
		{X: -0.5, Y: 0.5},
		{X: float64(len(levels)) - 0.5, Y: 0.5},
	})
	if err != nil {
		return "", errors.Trace(err)
	}
	threshold.LineStyle.Color = plotutil.Color(3)
	threshold.LineStyle.Dashes = plotutil.Dashes(1)
	p.Add(threshold)
	p.Legend.Add("rho=0.5 threshold", threshold)
	p.Legend.Top = true
	p.NominalX(names...)

	pngPath, err := reportPath(dir, "rho-by-opt-level.png")
	if err != nil {
		return "", err
	}
	return pngPath, p.Save(5*vg.Inch, 4*vg.Inch, pngPath)
}

// DrawSizeRates draws grouped hot/cold bars per function size.
func DrawSizeRates(strat SizeStratification, dir string) (string, error) {
	p := plot.New()
	p.Title.Text = "Hot vs Cold by Function Size"
	p.X.Label.Text = "Function Size (IR instructions)"
	p.Y.Label.Text = "Inlining Rate (%)"
	p.Y.Max = 105

	sizes := sortedSizes(strat.Strata)
	hot := make(plotter.Values, 0, len(sizes))
	cold := make(plotter.Values, 0, len(sizes))
	names := make([]string, 0, len(sizes))
	for _, s := range sizes {
		hot = append(hot, strat.Strata[s].HotRate)
		cold = append(cold, strat.Strata[s].ColdRate)
		names = append(names, fmt.Sprintf("%v", s))
	}

	var w float64 = 15
	for i, vals := range []plotter.Values{hot, cold} {
		bar, err := plotter.NewBarChart(vals, vg.Points(w))
		if err != nil {
			return "", errors.Trace(err)
		}
		bar.Color = plotutil.Color(i)
		bar.Offset = vg.Points((float64(i) - 0.5) * w)
		p.Add(bar)
		p.Legend.Add([]string{"Hot (lambda high)", "Cold (lambda low)"}[i], bar)
	}
	p.Legend.Top = true
	p.NominalX(names...)

	pngPath, err := reportPath(dir, "size-rates-bar.png")
	if err != nil {
		return "", err
	}
	return pngPath, p.Save(6*vg.Inch, 4*vg.Inch, pngPath)
}

// rateGrid adapts a JointDistribution to the heat map's grid interface.
// Empty cells are drawn as zero.
type rateGrid struct {
	j JointDistribution
}

func (g rateGrid) Dims() (c, r int) {
	return len(g.j.Prices), len(g.j.Sizes)
}

func (g rateGrid) Z(c, r int) float64 {
	z := g.j.Rates[r][c]
	if z != z { // NaN
		return 0
	}
	return z
}

func (g rateGrid) X(c int) float64 {
	return g.j.Prices[c]
}

func (g rateGrid) Y(r int) float64 {
	return float64(g.j.Sizes[r])
}

// DrawInlineHeatMap draws P(inlined) over the size x shadow-price grid.
func DrawInlineHeatMap(j JointDistribution, dir string) (string, error) {
	p := plot.New()
	if j.OptLevel >= 0 {
		p.Title.Text = fmt.Sprintf("Inlining Heat Map (O%v)", j.OptLevel)
	} else {
		p.Title.Text = "Inlining Heat Map"
	}
	p.X.Label.Text = "Shadow Price (lambda)"
	p.Y.Label.Text = "IR Count"

	hm := plotter.NewHeatMap(rateGrid{j}, palette.Heat(12, 1))
	hm.Min, hm.Max = 0, 1
	p.Add(hm)

	pngPath, err := reportPath(dir, "inline-heatmap.png")
	if err != nil {
		return "", err
	}
	return pngPath, p.Save(6*vg.Inch, 4*vg.Inch, pngPath)
}
