package cpm

import (
	"fmt"
	"sort"

	"github.com/gonum/matrix/mat64"
)

// DesignMatrix holds, per subject, the behavioral score and the confound
// values. Row i of every field belongs to Subjects[i].
type DesignMatrix struct {
	Subjects      []string
	Behavior      []float64
	Confounds     *mat64.Dense // subjects by confounds, nil without confounds
	ConfoundNames []string
}

// NewDesignMatrix checks that every field has one row per subject. confounds
// holds one column per name.
func NewDesignMatrix(subjects []string, behavior []float64, names []string, confounds [][]float64) (DesignMatrix, error) {
	n := len(subjects)
	if len(behavior) != n {
		return DesignMatrix{}, &DimensionError{Op: "design behavior", Want: n, Got: len(behavior)}
	}
	if len(confounds) != len(names) {
		return DesignMatrix{}, &DimensionError{Op: "design confound names", Want: len(confounds), Got: len(names)}
	}

	dm := DesignMatrix{
		Subjects:      subjects,
		Behavior:      behavior,
		ConfoundNames: names,
	}
	if len(confounds) == 0 || n == 0 {
		return dm, nil
	}

	dm.Confounds = mat64.NewDense(n, len(confounds), nil)
	for j, col := range confounds {
		if len(col) != n {
			return DesignMatrix{}, &DimensionError{Op: fmt.Sprintf("design confound %q", names[j]), Want: n, Got: len(col)}
		}
		for i, v := range col {
			dm.Confounds.Set(i, j, v)
		}
	}

	return dm, nil
}

// Len returns the number of subjects
func (d DesignMatrix) Len() int {
	return len(d.Behavior)
}

// NumConfounds returns the number of confound columns
func (d DesignMatrix) NumConfounds() int {
	if d.Confounds == nil {
		return 0
	}
	_, k := d.Confounds.Dims()
	return k
}

// Rows returns a copy restricted to the given rows, in that order.
func (d DesignMatrix) Rows(idx []int) DesignMatrix {
	sub := DesignMatrix{
		Subjects:      make([]string, len(idx)),
		Behavior:      make([]float64, len(idx)),
		ConfoundNames: d.ConfoundNames,
	}

	k := d.NumConfounds()
	if k > 0 && len(idx) > 0 {
		sub.Confounds = mat64.NewDense(len(idx), k, nil)
	}

	for n, i := range idx {
		if d.Subjects != nil {
			sub.Subjects[n] = d.Subjects[i]
		}
		sub.Behavior[n] = d.Behavior[i]
		for j := 0; j < k; j++ {
			sub.Confounds.Set(n, j, d.Confounds.At(i, j))
		}
	}

	return sub
}

// Full returns the regression design [1, behavior, confounds...].
func (d DesignMatrix) Full() *mat64.Dense {
	return d.withIntercept(true)
}

// Nuisance returns [1, confounds...].
func (d DesignMatrix) Nuisance() *mat64.Dense {
	return d.withIntercept(false)
}

func (d DesignMatrix) withIntercept(behavior bool) *mat64.Dense {
	n := d.Len()
	k := d.NumConfounds()

	cols := 1 + k
	if behavior {
		cols++
	}

	x := mat64.NewDense(n, cols, nil)
	for i := 0; i < n; i++ {
		c := 0
		x.Set(i, c, 1)
		c++
		if behavior {
			x.Set(i, c, d.Behavior[i])
			c++
		}
		for j := 0; j < k; j++ {
			x.Set(i, c+j, d.Confounds.At(i, j))
		}
	}

	return x
}

// EncodeCategorical treatment-codes a categorical confound: levels are
// sorted, the first one is the reference, and every other level becomes a
// 0/1 column named name[T.level].
func EncodeCategorical(name string, values []string) ([]string, [][]float64) {
	seen := make(map[string]bool)
	var levels []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			levels = append(levels, v)
		}
	}
	sort.Strings(levels)

	if len(levels) < 2 {
		return nil, nil
	}

	names := make([]string, 0, len(levels)-1)
	cols := make([][]float64, 0, len(levels)-1)
	for _, level := range levels[1:] {
		col := make([]float64, len(values))
		for i, v := range values {
			if v == level {
				col[i] = 1
			}
		}
		names = append(names, fmt.Sprintf("%s[T.%s]", name, level))
		cols = append(cols, col)
	}

	return names, cols
}
