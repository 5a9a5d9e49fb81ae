// Package cpm implements connectome-based predictive modeling: a
// leave-one-out cross-validation that, per fold, selects the edges whose
// strength is significantly associated with a behavioral score on the
// training subjects, sums each subject's selected edges into a positive and a
// negative network strength, regresses behavior on each strength and
// predicts the held-out subject.
//
// A run is driven by a Driver:
//
//	drv, err := cpm.NewDriver(cpm.Config{Threshold: 0.01, Method: cpm.MethodLinearModel})
//	res, err := drv.Run(ctx, ds)
//	fmt.Println(res.Positive.R, res.Positive.P)
//
// Folds only read the shared Dataset, so they run concurrently.
package cpm
