package cpm

import "fmt"

// DimensionError reports a shape mismatch between inputs that must agree.
type DimensionError struct {
	Op   string
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("cpm: %s: dimension mismatch: want %d, got %d", e.Op, e.Want, e.Got)
}

// ModelFitError reports a numerically degenerate regression, typically a
// singular design from collinear confounds.
type ModelFitError struct {
	Stage string
	Err   error
}

func (e *ModelFitError) Error() string {
	return fmt.Sprintf("cpm: %s: model fit failed: %v", e.Stage, e.Err)
}

func (e *ModelFitError) Unwrap() error { return e.Err }

// InsufficientDataError reports too few observations for a fit.
type InsufficientDataError struct {
	Stage string
	Have  int
	Need  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("cpm: %s: insufficient data: have %d, need %d", e.Stage, e.Have, e.Need)
}

// EmptyMaskWarning is recorded, never returned, when a fold selects no edge
// of one sign.
type EmptyMaskWarning struct {
	Sign Sign
}

func (e *EmptyMaskWarning) Error() string {
	return fmt.Sprintf("cpm: %s mask selected no edges", e.Sign)
}

// FoldError ties a failure to the held-out subject of its fold.
type FoldError struct {
	Index   int
	Subject string
	Err     error
}

func (e *FoldError) Error() string {
	return fmt.Sprintf("cpm: fold %d (%s): %v", e.Index, e.Subject, e.Err)
}

func (e *FoldError) Unwrap() error { return e.Err }
