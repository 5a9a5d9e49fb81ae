package cpm

import (
	"math"

	"github.com/gonum/matrix/mat64"
	"gonum.org/v1/gonum/stat"
)

// Correlation selects edges by their Pearson correlation with behavior,
// ignoring confounds.
type Correlation struct{}

// Method implements Selector
func (Correlation) Method() Method { return MethodCorrelation }

// Select implements Selector
func (Correlation) Select(edges mat64.Matrix, design DesignMatrix, threshold float64) (*Selection, error) {
	if err := checkSelectionInput(edges, design, threshold); err != nil {
		return nil, err
	}

	n := design.Len()
	if n < 3 {
		return nil, &InsufficientDataError{Stage: "correlation edge selection", Have: n, Need: 3}
	}

	sel := newSelection(edges, float64(n-2))
	col := make([]float64, n)
	for e := range sel.Stat {
		mat64.Col(col, e, edges)

		r := math.NaN()
		if !isConstant(col) {
			r = stat.Correlation(col, design.Behavior, nil)
		}
		sel.set(e, r)
	}
	sel.Masks = classify(sel.Stat, sel.P, threshold)

	return sel, nil
}

// PartialCorrelation selects edges by the correlation of edge and behavior
// once the confounds are regressed out of both.
type PartialCorrelation struct{}

// Method implements Selector
func (PartialCorrelation) Method() Method { return MethodPartialCorrelation }

// Select implements Selector
func (PartialCorrelation) Select(edges mat64.Matrix, design DesignMatrix, threshold float64) (*Selection, error) {
	if err := checkSelectionInput(edges, design, threshold); err != nil {
		return nil, err
	}

	const stage = "partial correlation edge selection"

	n := design.Len()
	k := design.NumConfounds()
	if n-2-k < 1 {
		return nil, &InsufficientDataError{Stage: stage, Have: n, Need: k + 3}
	}

	z := design.Nuisance()
	_, _, edgeResid, err := residualize(stage, z, edges)
	if err != nil {
		return nil, err
	}
	behavior := mat64.NewDense(n, 1, append([]float64(nil), design.Behavior...))
	_, _, behaviorResid, err := residualize(stage, z, behavior)
	if err != nil {
		return nil, err
	}

	if sumSquares(behaviorResid, 0) <= perfectFit*centeredSS(design.Behavior) {
		return nil, &ModelFitError{Stage: stage, Err: errBehaviorExplained}
	}
	y := mat64.Col(nil, 0, behaviorResid)

	sel := newSelection(edges, float64(n-2-k))
	col := make([]float64, n)
	res := make([]float64, n)
	for e := range sel.Stat {
		mat64.Col(col, e, edges)
		mat64.Col(res, e, edgeResid)

		r := math.NaN()
		if tss := centeredSS(col); !isConstant(col) && sumSquares(edgeResid, e) > perfectFit*tss {
			r = stat.Correlation(res, y, nil)
		}
		sel.set(e, r)
	}
	sel.Masks = classify(sel.Stat, sel.P, threshold)

	return sel, nil
}

type fitErr string

func (e fitErr) Error() string { return string(e) }

const errBehaviorExplained = fitErr("behavior is fully explained by the confounds")

func newSelection(edges mat64.Matrix, df float64) *Selection {
	_, numEdges := edges.Dims()

	return &Selection{
		Stat: make([]float64, numEdges),
		R:    make([]float64, numEdges),
		P:    make([]float64, numEdges),
		DF:   df,
	}
}

func (s *Selection) set(e int, r float64) {
	r, p := correlationTest(r, s.DF)
	s.Stat[e] = r
	s.R[e] = r
	s.P[e] = p
}
