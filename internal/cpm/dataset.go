package cpm

import (
	"fmt"

	"github.com/gonum/matrix/mat64"
)

// Dataset is the read-only input of a run: one row of edges and one design
// row per subject, in the same order.
type Dataset struct {
	Subjects []string
	Edges    *mat64.Dense // subjects by edges
	Design   DesignMatrix
}

// NewDataset joins an edge stack with a design matrix on subject id. Design
// rows are reordered to follow subjects; every subject must appear exactly
// once in the design.
func NewDataset(subjects []string, edges *mat64.Dense, design DesignMatrix) (*Dataset, error) {
	rows, _ := edges.Dims()
	if rows != len(subjects) {
		return nil, &DimensionError{Op: "edge rows vs subjects", Want: len(subjects), Got: rows}
	}
	if design.Len() != len(subjects) {
		return nil, &DimensionError{Op: "design rows vs edge rows", Want: rows, Got: design.Len()}
	}

	pos := make(map[string]int, design.Len())
	for i, s := range design.Subjects {
		if _, dup := pos[s]; dup {
			return nil, fmt.Errorf("cpm: subject %q appears twice in the design", s)
		}
		pos[s] = i
	}

	idx := make([]int, len(subjects))
	for i, s := range subjects {
		j, ok := pos[s]
		if !ok {
			return nil, fmt.Errorf("cpm: subject %q has edges but no design row", s)
		}
		idx[i] = j
	}

	return &Dataset{
		Subjects: subjects,
		Edges:    edges,
		Design:   design.Rows(idx),
	}, nil
}

// Len returns the number of subjects
func (ds *Dataset) Len() int {
	return len(ds.Subjects)
}

// NumEdges returns the edge vector length
func (ds *Dataset) NumEdges() int {
	_, c := ds.Edges.Dims()
	return c
}

// trainRows copies the edge rows at idx.
func (ds *Dataset) trainRows(idx []int) *mat64.Dense {
	edges := mat64.NewDense(len(idx), ds.NumEdges(), nil)
	for n, i := range idx {
		edges.SetRow(n, ds.Edges.RawRowView(i))
	}

	return edges
}
