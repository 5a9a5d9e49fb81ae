// Package connectome converts between symmetric region-by-region connectivity
// matrices and the flat edge vectors the predictive models work on.
//
// Edges are laid out as the strict lower triangle in row-major order:
// (1,0), (2,0), (2,1), (3,0), ... so edge k of every subject always refers to
// the same region pair as long as the region ordering is shared.
package connectome

import (
	"errors"
	"fmt"
	"math"

	"github.com/gonum/matrix/mat64"
)

var (
	// ErrNotSquare is returned for non-square connectivity matrices.
	ErrNotSquare = errors.New("connectome: matrix is not square")
	// ErrNotSymmetric is returned when a connectivity matrix is not symmetric.
	ErrNotSymmetric = errors.New("connectome: matrix is not symmetric")
	// ErrNotTriangular is returned for edge vectors whose length is not N(N-1)/2.
	ErrNotTriangular = errors.New("connectome: vector length is not a triangular number")
)

// SymmetryTolerance bounds |m[i][j] - m[j][i]| accepted by Vectorize.
const SymmetryTolerance = 1e-8

// NumEdges returns N(N-1)/2.
func NumEdges(numRegions int) int {
	return numRegions * (numRegions - 1) / 2
}

// NumRegions inverts NumEdges.
func NumRegions(numEdges int) (int, error) {
	n := int(math.Round((1 + math.Sqrt(1+8*float64(numEdges))) / 2))
	if numEdges <= 0 || NumEdges(n) != numEdges {
		return 0, fmt.Errorf("%w: %d", ErrNotTriangular, numEdges)
	}

	return n, nil
}

// EdgeIndex returns the vector position of region pair (i, j), i != j.
func EdgeIndex(i, j int) int {
	if i < j {
		i, j = j, i
	}

	return i*(i-1)/2 + j
}

// EdgePair returns the region pair (i, j), i > j, stored at vector position k.
func EdgePair(k int) (int, int) {
	i := int((1 + math.Sqrt(1+8*float64(k))) / 2)
	// Float rounding near perfect squares.
	for i*(i-1)/2 > k {
		i--
	}
	for (i+1)*i/2 <= k {
		i++
	}

	return i, k - i*(i-1)/2
}

// Vectorize flattens a symmetric matrix, discarding the diagonal.
func Vectorize(m mat64.Matrix) ([]float64, error) {
	rows, cols := m.Dims()
	if rows != cols {
		return nil, fmt.Errorf("%w: %d by %d", ErrNotSquare, rows, cols)
	}

	vec := make([]float64, 0, NumEdges(rows))
	for i := 1; i < rows; i++ {
		for j := 0; j < i; j++ {
			if math.Abs(m.At(i, j)-m.At(j, i)) > SymmetryTolerance {
				return nil, fmt.Errorf("%w: [%d][%d]=%g but [%d][%d]=%g", ErrNotSymmetric, i, j, m.At(i, j), j, i, m.At(j, i))
			}
			vec = append(vec, m.At(i, j))
		}
	}

	return vec, nil
}

// Unvectorize rebuilds the symmetric matrix of vec with diag on the diagonal.
func Unvectorize(vec []float64, diag float64) (*mat64.Dense, error) {
	n, err := NumRegions(len(vec))
	if err != nil {
		return nil, err
	}

	m := mat64.NewDense(n, n, nil)
	k := 0
	for i := 0; i < n; i++ {
		m.Set(i, i, diag)
		for j := 0; j < i; j++ {
			m.Set(i, j, vec[k])
			m.Set(j, i, vec[k])
			k++
		}
	}

	return m, nil
}

// MaskMatrix turns a selected-edge mask into an N by N 0/1 adjacency matrix.
func MaskMatrix(mask []bool) (*mat64.Dense, error) {
	vec := make([]float64, len(mask))
	for k, selected := range mask {
		if selected {
			vec[k] = 1
		}
	}

	return Unvectorize(vec, 0)
}
