package cpm

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/gonum/matrix/mat64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// r = 0.8 between edge 0 and behavior, a two-tailed p of exactly 0.2 with
// two degrees of freedom.
func smallSelectionInput(t *testing.T) (*mat64.Dense, DesignMatrix) {
	edges := mat64.NewDense(4, 3, []float64{
		1, -1, 5,
		2, -2, 5,
		3, -3, 5,
		4, -4, 5,
	})
	design, err := NewDesignMatrix([]string{"a", "b", "c", "d"}, []float64{1, 3, 2, 4}, nil, nil)
	require.NoError(t, err)

	return edges, design
}

func TestSelectorsWithoutConfounds(t *testing.T) {
	edges, design := smallSelectionInput(t)

	for _, m := range []Method{MethodLinearModel, MethodCorrelation, MethodPartialCorrelation} {
		t.Run(string(m), func(t *testing.T) {
			sel, err := NewSelector(m)
			require.NoError(t, err)
			assert.Equal(t, m, sel.Method())

			s, err := sel.Select(edges, design, 0.25)
			require.NoError(t, err)

			assert.Equal(t, 2.0, s.DF)
			assert.InDelta(t, 0.8, s.R[0], 1e-12)
			assert.InDelta(t, -0.8, s.R[1], 1e-12)
			assert.InDelta(t, 0.2, s.P[0], 1e-9)
			assert.InDelta(t, 0.2, s.P[1], 1e-9)
			assert.True(t, math.IsNaN(s.Stat[2]))
			assert.True(t, math.IsNaN(s.P[2]))

			assert.Equal(t, Mask{true, false, false}, s.Positive)
			assert.Equal(t, Mask{false, true, false}, s.Negative)

			s, err = sel.Select(edges, design, 0.1)
			require.NoError(t, err)
			assert.Zero(t, s.Positive.Count())
			assert.Zero(t, s.Negative.Count())
		})
	}
}

func TestLinearModelStatisticIsT(t *testing.T) {
	edges, design := smallSelectionInput(t)

	s, err := LinearModel{}.Select(edges, design, 0.25)
	require.NoError(t, err)

	// t = r * sqrt(df / (1 - r^2))
	assert.InDelta(t, 0.8*math.Sqrt(2/0.36), s.Stat[0], 1e-9)
	assert.InDelta(t, -0.8*math.Sqrt(2/0.36), s.Stat[1], 1e-9)
}

func TestLinearModelExactFit(t *testing.T) {
	edges := mat64.NewDense(3, 2, []float64{
		1, 2,
		2, 1,
		3, 0,
	})
	design, err := NewDesignMatrix([]string{"a", "b", "c"}, []float64{1, 2, 3}, nil, nil)
	require.NoError(t, err)

	s, err := LinearModel{}.Select(edges, design, 0.05)
	require.NoError(t, err)

	assert.True(t, math.IsInf(s.Stat[0], 1))
	assert.True(t, math.IsInf(s.Stat[1], -1))
	assert.Equal(t, 0.0, s.P[0])
	assert.Equal(t, 1.0, s.R[0])
	assert.Equal(t, -1.0, s.R[1])
	assert.Equal(t, Mask{true, false}, s.Positive)
	assert.Equal(t, Mask{false, true}, s.Negative)
}

func TestLinearModelMatchesPartialCorrelation(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))

	const n, numEdges = 12, 20
	subjects := make([]string, n)
	behavior := make([]float64, n)
	age := make([]float64, n)
	edges := mat64.NewDense(n, numEdges, nil)
	for i := 0; i < n; i++ {
		subjects[i] = string(rune('a' + i))
		behavior[i] = rnd.NormFloat64()
		age[i] = 20 + 10*rnd.Float64()
		for e := 0; e < numEdges; e++ {
			edges.Set(i, e, 0.3*behavior[i]+0.05*age[i]+rnd.NormFloat64())
		}
	}

	design, err := NewDesignMatrix(subjects, behavior, []string{"age"}, [][]float64{age})
	require.NoError(t, err)

	lm, err := LinearModel{}.Select(edges, design, 0.2)
	require.NoError(t, err)
	pc, err := PartialCorrelation{}.Select(edges, design, 0.2)
	require.NoError(t, err)

	assert.Equal(t, float64(n-3), lm.DF)
	assert.Equal(t, lm.DF, pc.DF)
	for e := 0; e < numEdges; e++ {
		assert.InDelta(t, pc.R[e], lm.R[e], 1e-9, "edge %d", e)
		assert.InDelta(t, pc.P[e], lm.P[e], 1e-9, "edge %d", e)
	}
	assert.Equal(t, pc.Positive, lm.Positive)
	assert.Equal(t, pc.Negative, lm.Negative)
}

func TestSelectionInputErrors(t *testing.T) {
	edges, design := smallSelectionInput(t)

	for _, sel := range []Selector{LinearModel{}, Correlation{}, PartialCorrelation{}} {
		_, err := sel.Select(edges, design, 0)
		assert.Error(t, err, sel.Method())
		_, err = sel.Select(edges, design, 1)
		assert.Error(t, err, sel.Method())

		_, err = sel.Select(mat64.NewDense(3, 3, nil), design, 0.05)
		var dimErr *DimensionError
		assert.True(t, errors.As(err, &dimErr), sel.Method())

		_, err = sel.Select(mat64.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}), design.Rows([]int{0, 1}), 0.05)
		var insErr *InsufficientDataError
		assert.True(t, errors.As(err, &insErr), sel.Method())
	}
}

func TestSingularConfounds(t *testing.T) {
	edges, _ := smallSelectionInput(t)

	// A confound that never varies from zero makes the design singular.
	design, err := NewDesignMatrix(
		[]string{"a", "b", "c", "d"},
		[]float64{1, 3, 2, 4},
		[]string{"site[T.b]"},
		[][]float64{{0, 0, 0, 0}},
	)
	require.NoError(t, err)

	for _, sel := range []Selector{LinearModel{}, PartialCorrelation{}} {
		_, err := sel.Select(edges, design, 0.05)
		var fitErr *ModelFitError
		assert.True(t, errors.As(err, &fitErr), sel.Method())
	}

	// Correlation ignores confounds.
	_, err = Correlation{}.Select(edges, design, 0.05)
	assert.NoError(t, err)
}

func TestPartialCorrelationBehaviorExplained(t *testing.T) {
	edges := mat64.NewDense(5, 1, []float64{1, 4, 2, 5, 3})
	behavior := []float64{1, 2, 3, 4, 5}
	scaled := []float64{2, 4, 6, 8, 10}

	design, err := NewDesignMatrix([]string{"a", "b", "c", "d", "e"}, behavior, []string{"scaled"}, [][]float64{scaled})
	require.NoError(t, err)

	_, err = PartialCorrelation{}.Select(edges, design, 0.05)
	var fitErr *ModelFitError
	require.True(t, errors.As(err, &fitErr))
	assert.Equal(t, errBehaviorExplained, fitErr.Err)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("")
	require.NoError(t, err)
	assert.Equal(t, MethodLinearModel, m)

	m, err = ParseMethod("partial_correlation")
	require.NoError(t, err)
	assert.Equal(t, MethodPartialCorrelation, m)

	_, err = ParseMethod("spearman")
	assert.Error(t, err)
	_, err = NewSelector("spearman")
	assert.Error(t, err)
}

func TestClassifyNeverSelectsBoth(t *testing.T) {
	stat := []float64{0.5, -0.5, 0, math.NaN(), 0.9}
	p := []float64{0.001, 0.001, 0.001, 0.001, 0.5}

	m := classify(stat, p, 0.01)
	assert.Equal(t, Mask{true, false, false, false, false}, m.Positive)
	assert.Equal(t, Mask{false, true, false, false, false}, m.Negative)
}

func TestTToR(t *testing.T) {
	assert.InDelta(t, 0.8, TToR(0.8*math.Sqrt(2/0.36), 2), 1e-12)
	assert.InDelta(t, -0.8, TToR(-0.8*math.Sqrt(2/0.36), 2), 1e-12)
	assert.Equal(t, 1.0, TToR(math.Inf(1), 3))
	assert.True(t, math.IsNaN(TToR(math.NaN(), 3)))
}

func TestMaskHelpers(t *testing.T) {
	a := Mask{true, false, true, false}
	b := Mask{false, false, false, true}

	assert.Equal(t, 2, a.Count())
	assert.Equal(t, []int{0, 2}, a.Indices())

	u, err := a.Union(b)
	require.NoError(t, err)
	assert.Equal(t, Mask{true, false, true, true}, u)

	_, err = a.Union(Mask{true})
	assert.Error(t, err)
}
