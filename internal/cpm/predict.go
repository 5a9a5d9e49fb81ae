package cpm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// SummaryModel is behavior = Intercept + Slope * strength, fit on the
// training subjects of one fold.
type SummaryModel struct {
	Intercept float64
	Slope     float64
	// InterceptOnly is set when the strengths had no variance, e.g. after an
	// empty mask. The model then predicts the training mean.
	InterceptOnly bool
}

// Predict applies the model to a strength.
func (m SummaryModel) Predict(strength float64) float64 {
	if m.InterceptOnly {
		return m.Intercept
	}
	return m.Intercept + m.Slope*strength
}

// FitSummaryModel regresses behavior on strength by ordinary least squares.
func FitSummaryModel(strength, behavior []float64) (SummaryModel, error) {
	const stage = "summary regression"

	if len(strength) != len(behavior) {
		return SummaryModel{}, &DimensionError{Op: stage, Want: len(behavior), Got: len(strength)}
	}
	if len(behavior) < 2 {
		return SummaryModel{}, &InsufficientDataError{Stage: stage, Have: len(behavior), Need: 2}
	}

	if isConstant(strength) {
		mean := stat.Mean(behavior, nil)
		if math.IsNaN(mean) || math.IsInf(mean, 0) {
			return SummaryModel{}, &ModelFitError{Stage: stage, Err: fmt.Errorf("non-finite training mean %g", mean)}
		}
		return SummaryModel{Intercept: mean, InterceptOnly: true}, nil
	}

	alpha, beta := stat.LinearRegression(strength, behavior, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) || math.IsInf(alpha, 0) || math.IsInf(beta, 0) {
		return SummaryModel{}, &ModelFitError{Stage: stage, Err: fmt.Errorf("non-finite coefficients (%g, %g)", alpha, beta)}
	}

	return SummaryModel{Intercept: alpha, Slope: beta}, nil
}
