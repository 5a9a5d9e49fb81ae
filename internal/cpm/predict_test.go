package cpm

import (
	"errors"
	"math"
	"testing"

	"github.com/gonum/matrix/mat64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeLinearity(t *testing.T) {
	edges := []float64{0.5, -1.25, 2, 0.75, -0.5}
	a := Mask{true, false, true, false, false}
	b := Mask{false, true, false, false, true}

	sa, err := Summarize(edges, a)
	require.NoError(t, err)
	sb, err := Summarize(edges, b)
	require.NoError(t, err)

	u, err := a.Union(b)
	require.NoError(t, err)
	su, err := Summarize(edges, u)
	require.NoError(t, err)

	assert.Equal(t, 2.5, sa)
	assert.Equal(t, -1.75, sb)
	assert.InDelta(t, sa+sb, su, 1e-12)
}

func TestSummarizeEmptyMask(t *testing.T) {
	edges := mat64.NewDense(3, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
	})

	scores, err := SummarizeRows(edges, []int{0, 1, 2}, make(Mask, 2))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, scores)

	_, err = Summarize([]float64{1, 2}, Mask{true})
	var dimErr *DimensionError
	assert.True(t, errors.As(err, &dimErr))
}

func TestFitSummaryModel(t *testing.T) {
	m, err := FitSummaryModel([]float64{1, 2, 3}, []float64{3, 5, 7})
	require.NoError(t, err)

	assert.False(t, m.InterceptOnly)
	assert.InDelta(t, 1, m.Intercept, 1e-12)
	assert.InDelta(t, 2, m.Slope, 1e-12)
	assert.InDelta(t, 9, m.Predict(4), 1e-12)
}

func TestFitSummaryModelConstantStrength(t *testing.T) {
	m, err := FitSummaryModel([]float64{0, 0, 0}, []float64{1, 2, 6})
	require.NoError(t, err)

	assert.True(t, m.InterceptOnly)
	assert.InDelta(t, 3, m.Intercept, 1e-12)
	assert.InDelta(t, 3, m.Predict(100), 1e-12)
}

func TestFitSummaryModelErrors(t *testing.T) {
	_, err := FitSummaryModel([]float64{1, 2}, []float64{1})
	var dimErr *DimensionError
	assert.True(t, errors.As(err, &dimErr))

	_, err = FitSummaryModel([]float64{1}, []float64{1})
	var insErr *InsufficientDataError
	assert.True(t, errors.As(err, &insErr))

	_, err = FitSummaryModel([]float64{1, 2}, []float64{1, math.Inf(1)})
	var fitErr *ModelFitError
	assert.True(t, errors.As(err, &fitErr))
}

func TestEvaluate(t *testing.T) {
	perf, err := Evaluate([]float64{1, 2, 3, 4}, []float64{1.5, 2, 2.5, math.NaN()})
	require.NoError(t, err)

	assert.Equal(t, 3, perf.N)
	assert.InDelta(t, 1.0/3, perf.MAE, 1e-12)
	assert.InDelta(t, math.Sqrt(0.5/3), perf.RMSE, 1e-12)
	assert.InDelta(t, 1, perf.R, 1e-12)
	assert.Less(t, perf.P, 1e-6)
}

func TestEvaluateDegenerate(t *testing.T) {
	perf, err := Evaluate([]float64{1, 2, 3}, []float64{2, 2, 2})
	require.NoError(t, err)
	assert.Equal(t, 3, perf.N)
	assert.InDelta(t, 2.0/3, perf.MAE, 1e-12)
	assert.True(t, math.IsNaN(perf.R))
	assert.True(t, math.IsNaN(perf.P))

	perf, err = Evaluate([]float64{1, 2}, []float64{math.NaN(), math.NaN()})
	require.NoError(t, err)
	assert.Zero(t, perf.N)
	assert.True(t, math.IsNaN(perf.MAE))

	_, err = Evaluate([]float64{1, 2}, []float64{1})
	assert.Error(t, err)
}

func TestLeaveOneOut(t *testing.T) {
	splits := LeaveOneOut(4)
	require.Len(t, splits, 4)

	for k, s := range splits {
		assert.Equal(t, k, s.Test)
		assert.Len(t, s.Train, 3)
		assert.NotContains(t, s.Train, k)
	}
	assert.Equal(t, []int{0, 1, 3}, splits[2].Train)
}
