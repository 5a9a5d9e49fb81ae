package cpm

import (
	"errors"
	"testing"

	"github.com/gonum/matrix/mat64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDesignMatrix(t *testing.T) {
	dm, err := NewDesignMatrix(
		[]string{"s1", "s2", "s3"},
		[]float64{1, 2, 3},
		[]string{"age"},
		[][]float64{{20, 30, 40}},
	)
	require.NoError(t, err)

	assert.Equal(t, 3, dm.Len())
	assert.Equal(t, 1, dm.NumConfounds())

	full := dm.Full()
	r, c := full.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, []float64{1, 2, 30}, full.RawRowView(1))

	nuisance := dm.Nuisance()
	_, c = nuisance.Dims()
	assert.Equal(t, 2, c)
	assert.Equal(t, []float64{1, 40}, nuisance.RawRowView(2))
}

func TestNewDesignMatrixMismatch(t *testing.T) {
	var dimErr *DimensionError

	_, err := NewDesignMatrix([]string{"s1", "s2"}, []float64{1}, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.As(err, &dimErr))

	_, err = NewDesignMatrix([]string{"s1", "s2"}, []float64{1, 2}, []string{"age"}, [][]float64{{1}})
	require.Error(t, err)
	assert.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 2, dimErr.Want)
	assert.Equal(t, 1, dimErr.Got)
}

func TestDesignRows(t *testing.T) {
	dm, err := NewDesignMatrix(
		[]string{"s1", "s2", "s3"},
		[]float64{1, 2, 3},
		[]string{"age"},
		[][]float64{{20, 30, 40}},
	)
	require.NoError(t, err)

	sub := dm.Rows([]int{2, 0})
	assert.Equal(t, []string{"s3", "s1"}, sub.Subjects)
	assert.Equal(t, []float64{3, 1}, sub.Behavior)
	assert.Equal(t, 40.0, sub.Confounds.At(0, 0))
	assert.Equal(t, 20.0, sub.Confounds.At(1, 0))

	// Rows copies.
	sub.Behavior[0] = 99
	assert.Equal(t, 3.0, dm.Behavior[2])
}

func TestEncodeCategorical(t *testing.T) {
	names, cols := EncodeCategorical("site", []string{"b", "a", "c", "b"})

	assert.Equal(t, []string{"site[T.b]", "site[T.c]"}, names)
	require.Len(t, cols, 2)
	assert.Equal(t, []float64{1, 0, 0, 1}, cols[0])
	assert.Equal(t, []float64{0, 0, 1, 0}, cols[1])

	names, cols = EncodeCategorical("sex", []string{"F", "F"})
	assert.Empty(t, names)
	assert.Empty(t, cols)
}

func TestNewDatasetReordersDesign(t *testing.T) {
	design, err := NewDesignMatrix(
		[]string{"s2", "s3", "s1"},
		[]float64{2, 3, 1},
		[]string{"age"},
		[][]float64{{22, 33, 11}},
	)
	require.NoError(t, err)

	edges := mat64.NewDense(3, 2, []float64{
		0.1, 0.2,
		0.3, 0.4,
		0.5, 0.6,
	})

	ds, err := NewDataset([]string{"s1", "s2", "s3"}, edges, design)
	require.NoError(t, err)

	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, 2, ds.NumEdges())
	assert.Equal(t, []string{"s1", "s2", "s3"}, ds.Design.Subjects)
	assert.Equal(t, []float64{1, 2, 3}, ds.Design.Behavior)
	assert.Equal(t, 11.0, ds.Design.Confounds.At(0, 0))
	assert.Equal(t, 33.0, ds.Design.Confounds.At(2, 0))

	train := ds.trainRows([]int{2, 0})
	assert.Equal(t, []float64{0.5, 0.6}, train.RawRowView(0))
	assert.Equal(t, []float64{0.1, 0.2}, train.RawRowView(1))
}

func TestNewDatasetErrors(t *testing.T) {
	edges := mat64.NewDense(2, 1, []float64{1, 2})

	dup, err := NewDesignMatrix([]string{"s1", "s1"}, []float64{1, 2}, nil, nil)
	require.NoError(t, err)
	_, err = NewDataset([]string{"s1", "s2"}, edges, dup)
	assert.Error(t, err)

	other, err := NewDesignMatrix([]string{"s1", "s3"}, []float64{1, 2}, nil, nil)
	require.NoError(t, err)
	_, err = NewDataset([]string{"s1", "s2"}, edges, other)
	assert.Error(t, err)

	short, err := NewDesignMatrix([]string{"s1"}, []float64{1}, nil, nil)
	require.NoError(t, err)
	_, err = NewDataset([]string{"s1", "s2"}, edges, short)
	var dimErr *DimensionError
	assert.True(t, errors.As(err, &dimErr))
}
