package cpm

import (
	"math"

	"github.com/gonum/matrix/mat64"
)

// LinearModel fits, for every edge, edge ~ 1 + behavior + confounds by
// ordinary least squares and tests the behavior coefficient. All edges share
// one design, so the fit is a single multivariate solve.
type LinearModel struct{}

// Method implements Selector
func (LinearModel) Method() Method { return MethodLinearModel }

// Select implements Selector
func (LinearModel) Select(edges mat64.Matrix, design DesignMatrix, threshold float64) (*Selection, error) {
	if err := checkSelectionInput(edges, design, threshold); err != nil {
		return nil, err
	}

	x := design.Full()
	n, p := x.Dims()
	if n-p < 1 {
		return nil, &InsufficientDataError{Stage: "linear model edge selection", Have: n, Need: p + 1}
	}
	df := float64(n - p)

	xtxInv, beta, resid, err := residualize("linear model edge selection", x, edges)
	if err != nil {
		return nil, err
	}

	sel := newSelection(edges, df)

	// Behavior is column 1 of the design.
	varScale := xtxInv.At(1, 1)
	behaviorSD := math.Sqrt(centeredSS(design.Behavior) / float64(n))

	col := make([]float64, n)
	for e := range sel.Stat {
		mat64.Col(col, e, edges)
		tss := centeredSS(col)
		rss := sumSquares(resid, e)
		b := beta.At(1, e)

		var t float64
		switch {
		case isConstant(col):
			t = math.NaN()
		case rss <= perfectFit*tss:
			// Exact fit: behavior either carries the edge or plays no part.
			if math.Abs(b)*behaviorSD <= 1e-8*math.Sqrt(tss/float64(n)) {
				t = math.NaN()
			} else {
				t = math.Copysign(math.Inf(1), b)
			}
		default:
			t = b / math.Sqrt(rss/df*varScale)
		}

		sel.Stat[e] = t
		sel.R[e] = TToR(t, df)
		sel.P[e] = twoTailed(t, df)
	}
	sel.Masks = classify(sel.Stat, sel.P, threshold)

	return sel, nil
}
