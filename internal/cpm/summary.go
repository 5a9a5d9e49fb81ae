package cpm

import "github.com/gonum/matrix/mat64"

// Summarize returns the network strength of one subject: the sum of its
// edge weights where mask is set.
func Summarize(edges []float64, mask Mask) (float64, error) {
	if len(edges) != len(mask) {
		return 0, &DimensionError{Op: "summary mask vs edges", Want: len(edges), Got: len(mask)}
	}

	var sum float64
	for k, selected := range mask {
		if selected {
			sum += edges[k]
		}
	}

	return sum, nil
}

// SummarizeRows applies Summarize to the given rows of a subjects by edges
// matrix.
func SummarizeRows(edges *mat64.Dense, rows []int, mask Mask) ([]float64, error) {
	scores := make([]float64, len(rows))
	for n, i := range rows {
		s, err := Summarize(edges.RawRowView(i), mask)
		if err != nil {
			return nil, err
		}
		scores[n] = s
	}

	return scores, nil
}
