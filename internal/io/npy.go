package io

import (
	"fmt"

	"github.com/gonum/matrix/mat64"
	"github.com/kshedden/gonpy"
)

// Mat64toNpy writes mat64 matrix to Python numpy npy binary file
func Mat64toNpy(path string, matrix *mat64.Dense) error {
	rows, cols := matrix.Dims()

	// RawMatrix data is only contiguous when the stride equals cols.
	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		data = append(data, matrix.RawRowView(i)...)
	}

	w, err := gonpy.NewFileWriter(path)
	if err != nil {
		return fmt.Errorf("[Mat64toNpy] failed to open %s: %w", path, err)
	}
	w.Shape = []int{rows, cols}
	w.Version = 2
	if err := w.WriteFloat64(data); err != nil {
		return fmt.Errorf("[Mat64toNpy] failed to write %s: %w", path, err)
	}

	return nil
}

// NpytoMat64 reads Python numpy npy binary file as mat64 matrix. A 1-D array
// becomes a single row.
func NpytoMat64(path string) (*mat64.Dense, error) {
	r, err := gonpy.NewFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("[NpytoMat64] failed to open %s: %w", path, err)
	}

	var rows, cols int
	switch len(r.Shape) {
	case 1:
		rows, cols = 1, r.Shape[0]
	case 2:
		rows, cols = r.Shape[0], r.Shape[1]
	default:
		return nil, fmt.Errorf("[NpytoMat64] %s: want a 1-D or 2-D array, got shape %v", path, r.Shape)
	}
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("[NpytoMat64] %s: empty array of shape %v", path, r.Shape)
	}

	data, err := r.GetFloat64()
	if err != nil {
		return nil, fmt.Errorf("[NpytoMat64] failed to read %s: %w", path, err)
	}

	return mat64.NewDense(rows, cols, data), nil
}

// NpytoVec reads a 1-D npy array. Higher dimensional arrays are flattened in
// storage order.
func NpytoVec(path string) ([]float64, error) {
	r, err := gonpy.NewFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("[NpytoVec] failed to open %s: %w", path, err)
	}

	data, err := r.GetFloat64()
	if err != nil {
		return nil, fmt.Errorf("[NpytoVec] failed to read %s: %w", path, err)
	}

	return data, nil
}

// VecToNpy writes a 1-D npy array.
func VecToNpy(path string, vec []float64) error {
	w, err := gonpy.NewFileWriter(path)
	if err != nil {
		return fmt.Errorf("[VecToNpy] failed to open %s: %w", path, err)
	}
	w.Shape = []int{len(vec)}
	w.Version = 2
	if err := w.WriteFloat64(vec); err != nil {
		return fmt.Errorf("[VecToNpy] failed to write %s: %w", path, err)
	}

	return nil
}
