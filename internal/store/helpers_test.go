package store

import "github.com/gonum/matrix/mat64"

// mat64Edges builds one edge equal to the subject rank and one that is not.
func mat64Edges(subjects []string) *mat64.Dense {
	m := mat64.NewDense(len(subjects), 2, nil)
	for i := range subjects {
		m.Set(i, 0, float64(i+1))
		m.Set(i, 1, float64((i*3)%5))
	}
	return m
}
