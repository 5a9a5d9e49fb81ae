package cpm

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// State is a step of a run.
type State int

// Run states, in order. SelectEdges, Aggregate and Predict repeat per fold.
const (
	StateInit State = iota
	StateSelectEdges
	StateAggregate
	StatePredict
	StateEvaluate
	StateDone
)

var stateNames = [...]string{"init", "select-edges", "aggregate", "predict", "evaluate", "done"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Sink receives fold outcomes and the final evaluation of a run.
type Sink interface {
	RecordFold(ctx context.Context, fold FoldResult) error
	RecordPerformance(ctx context.Context, sign Sign, perf Performance) error
}

// Config is fixed at driver construction.
type Config struct {
	// Threshold is the edge selection significance level, DefaultThreshold
	// when zero.
	Threshold float64
	Method    Method
	// Selector overrides Method when set.
	Selector Selector
	// Strict aborts the run on the first fold failure. Otherwise failed folds
	// are recorded and left out of the evaluation.
	Strict bool
	// Workers bounds the folds run at once, one per CPU when zero.
	Workers     int
	FoldTimeout time.Duration
	Logger      *zap.Logger
	Sink        Sink
}

// Driver runs the leave-one-out cross-validation.
type Driver struct {
	cfg      Config
	selector Selector
	log      *zap.Logger
}

// NewDriver validates cfg.
func NewDriver(cfg Config) (*Driver, error) {
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	if !(cfg.Threshold > 0 && cfg.Threshold < 1) {
		return nil, fmt.Errorf("cpm: selection threshold %g outside (0, 1)", cfg.Threshold)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.FoldTimeout < 0 {
		return nil, fmt.Errorf("cpm: negative fold timeout %s", cfg.FoldTimeout)
	}

	selector := cfg.Selector
	if selector == nil {
		var err error
		if selector, err = NewSelector(cfg.Method); err != nil {
			return nil, err
		}
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Driver{cfg: cfg, selector: selector, log: log}, nil
}

// Run cross-validates ds. In strict mode the first failed fold is returned
// as a *FoldError.
func (d *Driver) Run(ctx context.Context, ds *Dataset) (*Result, error) {
	if err := d.validate(ds); err != nil {
		return nil, err
	}

	n := ds.Len()
	d.log.Info("cpm run started",
		zap.Int("subjects", n),
		zap.Int("edges", ds.NumEdges()),
		zap.Int("confounds", ds.Design.NumConfounds()),
		zap.String("method", string(d.selector.Method())),
		zap.Float64("threshold", d.cfg.Threshold),
		zap.Bool("strict", d.cfg.Strict),
		zap.Int("workers", d.cfg.Workers))
	start := time.Now()

	folds := make([]FoldResult, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Workers)

	for _, split := range LeaveOneOut(n) {
		split := split
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			fold := d.runFold(gctx, ds, split)
			folds[split.Test] = fold

			if fold.Err != nil {
				d.log.Warn("fold failed",
					zap.Int("fold", fold.Index),
					zap.String("subject", fold.Subject),
					zap.Error(fold.Err))
				if d.cfg.Strict {
					return &FoldError{Index: fold.Index, Subject: fold.Subject, Err: fold.Err}
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	d.trace(-1, StateEvaluate)
	res := newResult(ds, folds)

	var err error
	if res.Positive, err = Evaluate(res.Observed, res.PositivePredictions); err != nil {
		return nil, err
	}
	if res.Negative, err = Evaluate(res.Observed, res.NegativePredictions); err != nil {
		return nil, err
	}

	if err := d.sink(ctx, res); err != nil {
		return nil, err
	}

	d.trace(-1, StateDone)
	d.log.Info("cpm run finished",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("failed_folds", len(res.Failures)),
		zap.Float64("positive_r", res.Positive.R),
		zap.Float64("positive_p", res.Positive.P),
		zap.Float64("negative_r", res.Negative.R),
		zap.Float64("negative_p", res.Negative.P))

	return res, nil
}

// Fold runs the fold holding out subject k on its own.
func (d *Driver) Fold(ctx context.Context, ds *Dataset, k int) (FoldResult, error) {
	if err := d.validate(ds); err != nil {
		return FoldResult{}, err
	}
	if k < 0 || k >= ds.Len() {
		return FoldResult{}, fmt.Errorf("cpm: fold %d out of range for %d subjects", k, ds.Len())
	}

	return d.runFold(ctx, ds, LeaveOneOut(ds.Len())[k]), nil
}

func (d *Driver) validate(ds *Dataset) error {
	d.trace(-1, StateInit)

	if ds == nil || ds.Edges == nil {
		return fmt.Errorf("cpm: empty dataset")
	}
	rows, _ := ds.Edges.Dims()
	if rows != ds.Len() {
		return &DimensionError{Op: "edge rows vs subjects", Want: ds.Len(), Got: rows}
	}
	if ds.Design.Len() != rows {
		return &DimensionError{Op: "design rows vs edge rows", Want: rows, Got: ds.Design.Len()}
	}
	if rows < 3 {
		return &InsufficientDataError{Stage: "cross-validation", Have: rows, Need: 3}
	}

	return nil
}

// runFold fits everything on the training subjects. The held-out behavior is
// only copied into the result, and the held-out edges are only summarized
// under the fitted masks.
func (d *Driver) runFold(ctx context.Context, ds *Dataset, split Split) FoldResult {
	fold := FoldResult{
		Index:    split.Test,
		Subject:  ds.Subjects[split.Test],
		Observed: ds.Design.Behavior[split.Test],
	}

	if d.cfg.FoldTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.FoldTimeout)
		defer cancel()
	}

	trainEdges := ds.trainRows(split.Train)
	trainDesign := ds.Design.Rows(split.Train)

	d.trace(split.Test, StateSelectEdges)
	sel, err := d.selector.Select(trainEdges, trainDesign, d.cfg.Threshold)
	if err != nil {
		fold.Err = err
		return fold
	}
	fold.Masks = sel.Masks

	if err := ctx.Err(); err != nil {
		fold.Err = err
		return fold
	}

	rows := make([]int, len(split.Train))
	for i := range rows {
		rows[i] = i
	}
	heldOut := ds.Edges.RawRowView(split.Test)

	for _, sign := range []Sign{Positive, Negative} {
		mask := sel.Of(sign)

		d.trace(split.Test, StateAggregate)
		strengths, err := SummarizeRows(trainEdges, rows, mask)
		if err != nil {
			fold.Err = err
			return fold
		}
		strength, err := Summarize(heldOut, mask)
		if err != nil {
			fold.Err = err
			return fold
		}

		d.trace(split.Test, StatePredict)
		model, err := FitSummaryModel(strengths, trainDesign.Behavior)
		if err != nil {
			fold.Err = err
			return fold
		}

		pred := Prediction{
			Value:         model.Predict(strength),
			Strength:      strength,
			Edges:         mask.Count(),
			Model:         model,
			LowConfidence: model.InterceptOnly,
		}
		if pred.Edges == 0 {
			pred.LowConfidence = true
			fold.Warnings = append(fold.Warnings, &EmptyMaskWarning{Sign: sign})
			d.log.Warn("empty edge mask",
				zap.Int("fold", split.Test),
				zap.String("subject", fold.Subject),
				zap.Stringer("sign", sign))
		}

		if sign == Negative {
			fold.Negative = pred
		} else {
			fold.Positive = pred
		}
	}

	if err := ctx.Err(); err != nil {
		fold.Err = err
	}

	return fold
}

func (d *Driver) trace(fold int, s State) {
	if ce := d.log.Check(zap.DebugLevel, "cpm state"); ce != nil {
		ce.Write(zap.Int("fold", fold), zap.Stringer("state", s))
	}
}

func (d *Driver) sink(ctx context.Context, res *Result) error {
	if d.cfg.Sink == nil {
		return nil
	}

	for _, f := range res.Folds {
		if err := d.cfg.Sink.RecordFold(ctx, f); err != nil {
			return fmt.Errorf("cpm: recording fold %d: %w", f.Index, err)
		}
	}
	for _, s := range []Sign{Positive, Negative} {
		if err := d.cfg.Sink.RecordPerformance(ctx, s, res.Performance(s)); err != nil {
			return fmt.Errorf("cpm: recording %s performance: %w", s, err)
		}
	}

	return nil
}
