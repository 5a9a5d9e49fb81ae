package cpm

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Performance compares predicted with observed behavior over the folds that
// produced a prediction.
type Performance struct {
	N    int
	R    float64
	P    float64
	MAE  float64
	RMSE float64
}

// Evaluate skips NaN predictions. R and P are NaN with fewer than three
// pairs or constant predictions.
func Evaluate(observed, predicted []float64) (Performance, error) {
	if len(observed) != len(predicted) {
		return Performance{}, &DimensionError{Op: "evaluation", Want: len(observed), Got: len(predicted)}
	}

	var x, y []float64
	for i, p := range predicted {
		if math.IsNaN(p) {
			continue
		}
		x = append(x, p)
		y = append(y, observed[i])
	}

	perf := Performance{N: len(x), R: math.NaN(), P: math.NaN(), MAE: math.NaN(), RMSE: math.NaN()}
	if perf.N == 0 {
		return perf, nil
	}

	var abs, sq float64
	for i := range x {
		d := x[i] - y[i]
		abs += math.Abs(d)
		sq += d * d
	}
	perf.MAE = abs / float64(perf.N)
	perf.RMSE = math.Sqrt(sq / float64(perf.N))

	if perf.N < 3 || isConstant(x) || isConstant(y) {
		return perf, nil
	}
	perf.R, perf.P = correlationTest(stat.Correlation(x, y, nil), float64(perf.N-2))

	return perf, nil
}
