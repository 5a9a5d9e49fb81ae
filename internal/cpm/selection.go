package cpm

import (
	"fmt"

	"github.com/gonum/matrix/mat64"
)

// DefaultThreshold is the edge selection significance level.
const DefaultThreshold = 0.01

// Selection is the output of an edge selection on one training fold.
type Selection struct {
	Masks

	// Stat is the per-edge statistic whose sign splits the masks: the
	// behavior t for the linear model, Pearson r otherwise.
	Stat []float64
	// R is Stat on the correlation scale.
	R  []float64
	P  []float64
	DF float64
}

// Selector relates every edge to behavior on training subjects and
// classifies edges under threshold. edges is subjects by edges with rows in
// the order of design.
type Selector interface {
	Select(edges mat64.Matrix, design DesignMatrix, threshold float64) (*Selection, error)
	Method() Method
}

// Method names an edge selection strategy.
type Method string

// Selection methods
const (
	MethodLinearModel        Method = "linear_model"
	MethodCorrelation        Method = "correlation"
	MethodPartialCorrelation Method = "partial_correlation"
)

// ParseMethod validates a method name. The empty string means the linear
// model.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case "", MethodLinearModel:
		return MethodLinearModel, nil
	case MethodCorrelation, MethodPartialCorrelation:
		return Method(s), nil
	}

	return "", fmt.Errorf("cpm: selection method %q not understood", s)
}

// NewSelector returns the Selector implementing m.
func NewSelector(m Method) (Selector, error) {
	switch m {
	case "", MethodLinearModel:
		return LinearModel{}, nil
	case MethodCorrelation:
		return Correlation{}, nil
	case MethodPartialCorrelation:
		return PartialCorrelation{}, nil
	}

	return nil, fmt.Errorf("cpm: selection method %q not understood", m)
}

func checkSelectionInput(edges mat64.Matrix, design DesignMatrix, threshold float64) error {
	rows, _ := edges.Dims()
	if rows != design.Len() {
		return &DimensionError{Op: "edge selection rows", Want: design.Len(), Got: rows}
	}
	if !(threshold > 0 && threshold < 1) {
		return fmt.Errorf("cpm: selection threshold %g outside (0, 1)", threshold)
	}

	return nil
}

// residualize fits y on x by least squares, sharing (x'x)^-1 across the
// columns of y, and returns the coefficients and the residuals.
func residualize(stage string, x *mat64.Dense, y mat64.Matrix) (xtxInv, beta, resid *mat64.Dense, err error) {
	n, p := x.Dims()
	_, e := y.Dims()

	xtx := mat64.NewDense(p, p, nil)
	xtx.Mul(x.T(), x)

	xtxInv = mat64.NewDense(p, p, nil)
	if err := xtxInv.Inverse(xtx); err != nil {
		return nil, nil, nil, &ModelFitError{Stage: stage, Err: err}
	}

	xty := mat64.NewDense(p, e, nil)
	xty.Mul(x.T(), y)

	beta = mat64.NewDense(p, e, nil)
	beta.Mul(xtxInv, xty)

	fitted := mat64.NewDense(n, e, nil)
	fitted.Mul(x, beta)

	resid = mat64.NewDense(n, e, nil)
	resid.Sub(y, fitted)

	return xtxInv, beta, resid, nil
}

// perfectFit bounds the residual to total sum of squares ratio under which a
// fit is treated as exact.
const perfectFit = 1e-20

func isConstant(col []float64) bool {
	for _, v := range col[1:] {
		if v != col[0] {
			return false
		}
	}
	return true
}

// centeredSS returns the sum of squared deviations from the mean.
func centeredSS(col []float64) float64 {
	var mean float64
	for _, v := range col {
		mean += v
	}
	mean /= float64(len(col))

	var ss float64
	for _, v := range col {
		ss += (v - mean) * (v - mean)
	}
	return ss
}

func sumSquares(m mat64.Matrix, e int) float64 {
	rows, _ := m.Dims()

	var ss float64
	for i := 0; i < rows; i++ {
		ss += m.At(i, e) * m.At(i, e)
	}
	return ss
}
