package cpm

import "math"

// Prediction is one sign's outcome on the held-out subject of a fold.
type Prediction struct {
	Value    float64
	Strength float64
	Edges    int
	Model    SummaryModel
	// LowConfidence is set for empty masks and intercept-only models.
	LowConfidence bool
}

// FoldResult is the outcome of one leave-one-out fold. Err is set when the
// fold failed; predictions are then meaningless.
type FoldResult struct {
	Index    int
	Subject  string
	Observed float64
	Positive Prediction
	Negative Prediction
	Masks    Masks
	Warnings []error
	Err      error
}

// Of returns the prediction of sign s.
func (f FoldResult) Of(s Sign) Prediction {
	if s == Negative {
		return f.Negative
	}
	return f.Positive
}

// Result is the outcome of a run.
type Result struct {
	Subjects []string
	Observed []float64
	// PositivePredictions and NegativePredictions hold one value per subject,
	// NaN where the fold failed.
	PositivePredictions []float64
	NegativePredictions []float64

	Folds    []FoldResult
	Failures []*FoldError

	Positive Performance
	Negative Performance
}

// Predictions returns the per-subject predictions of sign s.
func (r *Result) Predictions(s Sign) []float64 {
	if s == Negative {
		return r.NegativePredictions
	}
	return r.PositivePredictions
}

// Performance returns the evaluation of sign s.
func (r *Result) Performance(s Sign) Performance {
	if s == Negative {
		return r.Negative
	}
	return r.Positive
}

// Consensus returns the edges of sign s selected in every successful fold.
func (r *Result) Consensus(s Sign) Mask {
	var consensus Mask
	for _, f := range r.Folds {
		if f.Err != nil {
			continue
		}
		m := f.Masks.Of(s)
		if consensus == nil {
			consensus = append(Mask(nil), m...)
			continue
		}
		for k := range consensus {
			consensus[k] = consensus[k] && m[k]
		}
	}

	return consensus
}

func newResult(ds *Dataset, folds []FoldResult) *Result {
	n := ds.Len()
	res := &Result{
		Subjects:            ds.Subjects,
		Observed:            ds.Design.Behavior,
		PositivePredictions: make([]float64, n),
		NegativePredictions: make([]float64, n),
		Folds:               folds,
	}

	for k, f := range folds {
		if f.Err != nil {
			res.PositivePredictions[k] = math.NaN()
			res.NegativePredictions[k] = math.NaN()
			res.Failures = append(res.Failures, &FoldError{Index: f.Index, Subject: f.Subject, Err: f.Err})
			continue
		}
		res.PositivePredictions[k] = f.Positive.Value
		res.NegativePredictions[k] = f.Negative.Value
	}

	return res
}
