package calc

import (
	"math"
	"sync"

	"github.com/gonum/matrix/mat64"
)

// SymCheck checks symmetry within pre
func (p *Pool) SymCheck(matrix *mat64.Dense, pre float64) bool {
	rows, cols := matrix.Dims()
	if rows != cols {
		return false
	}

	isSymm := make([]bool, rows)

	p.dispatch(rows, func(order <-chan int, wg *sync.WaitGroup) {
		symCheck(matrix, isSymm, math.Abs(pre), order, wg)
	})

	symm := true
	for i := 0; i < rows; i++ {
		symm = symm && isSymm[i]
	}

	return symm
}

func symCheck(matrix *mat64.Dense, isSymm []bool, pre float64, order <-chan int, wg *sync.WaitGroup) {
	_, cols := matrix.Dims()

	for {
		index, ok := <-order
		if ok {
			isSymm[index] = true
			for i := index; i < cols; i++ {
				isSame := (math.Abs(matrix.At(index, i)-matrix.At(i, index)) <= pre)
				if !isSame {
					isSymm[index] = false
					break
				}
			}

			wg.Done()
		} else {
			break
		}
	}

	return
}
