package numtest

import (
	"github.com/pingcap/errors"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// SurfaceFit is a supplementary linear decision-surface fit
// inlined ~ Bias + PriceWeight*(lambda/1000) + SizeWeight*(ir_count/1000).
// Informational only; it never takes part in any pass/fail decision.
type SurfaceFit struct {
	Bias        float64
	PriceWeight float64
	SizeWeight  float64
	Loss        float64
	N           int
	Fitted      bool
}

const (
	surfaceFitIters = 2000
	surfaceFitRate  = 0.01
	featureScale    = 1000.0
)

// FitDecisionSurface fits the surface by Adam gradient descent over a
// squared-error loss. Zero initialization and a fixed iteration count keep
// the fit deterministic.
func FitDecisionSurface(ds *DecisionDataset) (SurfaceFit, error) {
	n := ds.Len()
	if n < 2 {
		return SurfaceFit{N: n}, nil
	}

	bx := make([]float64, 0, n*3)
	by := make([]float64, 0, n)
	for _, r := range ds.Records() {
		bx = append(bx, 1, r.ShadowPrice/featureScale, float64(r.IRCount)/featureScale)
		y := 0.0
		if r.Inlined {
			y = 1
		}
		by = append(by, y)
	}
	x := tensor.New(tensor.WithShape(n, 3), tensor.WithBacking(bx))
	y := tensor.New(tensor.WithShape(n), tensor.WithBacking(by))

	g := gorgonia.NewGraph()
	xNode := gorgonia.NodeFromAny(g, x, gorgonia.WithName("x"))
	yNode := gorgonia.NodeFromAny(g, y, gorgonia.WithName("y"))
	weights := gorgonia.NewVector(g, gorgonia.Float64,
		gorgonia.WithName("surface"),
		gorgonia.WithShape(3),
		gorgonia.WithInit(gorgonia.Zeroes()))

	pred, err := gorgonia.Mul(xNode, weights)
	if err != nil {
		return SurfaceFit{}, errors.Trace(err)
	}
	diff, err := gorgonia.Sub(pred, yNode)
	if err != nil {
		return SurfaceFit{}, errors.Trace(err)
	}
	sq, err := gorgonia.Square(diff)
	if err != nil {
		return SurfaceFit{}, errors.Trace(err)
	}
	loss, err := gorgonia.Mean(sq)
	if err != nil {
		return SurfaceFit{}, errors.Trace(err)
	}
	if _, err := gorgonia.Grad(loss, weights); err != nil {
		return SurfaceFit{}, errors.Trace(err)
	}

	solver := gorgonia.NewAdamSolver(gorgonia.WithLearnRate(surfaceFitRate))
	model := []gorgonia.ValueGrad{weights}
	machine := gorgonia.NewTapeMachine(g, gorgonia.BindDualValues(weights))
	defer machine.Close()

	for i := 0; i < surfaceFitIters; i++ {
		if err := machine.RunAll(); err != nil {
			return SurfaceFit{}, errors.Trace(err)
		}
		if err := solver.Step(model); err != nil {
			return SurfaceFit{}, errors.Trace(err)
		}
		machine.Reset()
	}

	ws := weights.Value().Data().([]float64)
	return SurfaceFit{
		Bias:        ws[0],
		PriceWeight: ws[1],
		SizeWeight:  ws[2],
		Loss:        loss.Value().Data().(float64),
		N:           n,
		Fitted:      true,
	}, nil
}
