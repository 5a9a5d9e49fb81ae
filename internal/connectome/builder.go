package connectome

import (
	"fmt"

	"github.com/KyungWonPark/Connectome/internal/calc"
	"github.com/gonum/matrix/mat64"
)

// Kind names a connectivity metric computed from region time series.
type Kind string

// Supported kinds
const (
	Correlation        Kind = "correlation"
	PartialCorrelation Kind = "partial_correlation"
)

// ParseKind validates a metric name. The empty string means Correlation.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case "", Correlation:
		return Correlation, nil
	case PartialCorrelation:
		return PartialCorrelation, nil
	}

	return "", fmt.Errorf("connectome: unknown connectivity kind %q", s)
}

// Builder computes subject connectivity matrices from regions by timepoints
// time series.
type Builder struct {
	Kind   Kind
	Fisher bool

	pl *calc.Pool
}

// NewBuilder returns a Builder running its kernels on pl.
func NewBuilder(pl *calc.Pool, kind Kind, fisher bool) *Builder {
	return &Builder{Kind: kind, Fisher: fisher, pl: pl}
}

// Build returns the connectivity matrix of one subject.
func (b *Builder) Build(timeSeries *mat64.Dense) (*mat64.Dense, error) {
	rows, cols := timeSeries.Dims()

	zscored := mat64.NewDense(rows, cols, nil)
	if err := b.pl.ZScoring(timeSeries, zscored); err != nil {
		return nil, err
	}

	conn := mat64.NewDense(rows, rows, nil)
	switch b.Kind {
	case Correlation, "":
		if err := b.pl.Pearson(zscored, conn); err != nil {
			return nil, err
		}
	case PartialCorrelation:
		if err := b.pl.PartialCorrelation(zscored, conn); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("connectome: unknown connectivity kind %q", b.Kind)
	}

	if !b.pl.SymCheck(conn, SymmetryTolerance) {
		return nil, ErrNotSymmetric
	}

	if b.Fisher {
		z := mat64.NewDense(rows, rows, nil)
		if err := b.pl.FisherZ(conn, z); err != nil {
			return nil, err
		}
		conn = z
	}

	return conn, nil
}

// BuildEdges returns the vectorized connectivity of one subject.
func (b *Builder) BuildEdges(timeSeries *mat64.Dense) ([]float64, error) {
	conn, err := b.Build(timeSeries)
	if err != nil {
		return nil, err
	}

	return Vectorize(conn)
}
