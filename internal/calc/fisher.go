package calc

import (
	"fmt"
	"math"
	"sync"

	"github.com/gonum/matrix/mat64"
)

// maxCorr keeps arctanh finite on perfectly correlated pairs.
const maxCorr = 1 - 1e-7

func fisherZ(inputMat *mat64.Dense, outputMat *mat64.Dense, order <-chan int, wg *sync.WaitGroup) {
	_, inputCols := inputMat.Dims()

	for {
		index, ok := <-order
		if ok {
			for t := 0; t < inputCols; t++ {
				if t == index {
					outputMat.Set(index, t, 0)
					continue
				}

				value := math.Max(-maxCorr, math.Min(maxCorr, inputMat.At(index, t)))
				outputMat.Set(index, t, math.Atanh(value))
			}

			wg.Done()
		} else {
			break
		}
	}

	return
}

// FisherZ does the Fisher r-to-z transform of a square correlation matrix.
// The diagonal is set to zero.
func (p *Pool) FisherZ(inputMat *mat64.Dense, outputMat *mat64.Dense) error {
	inputRows, inputCols := inputMat.Dims()
	outputRows, outputCols := outputMat.Dims()

	if inputRows != inputCols || inputRows != outputRows || inputCols != outputCols {
		return fmt.Errorf("%w: FisherZ: input dims: %d by %d when output dims: %d by %d", ErrDimension, inputRows, inputCols, outputRows, outputCols)
	}

	p.dispatch(inputRows, func(order <-chan int, wg *sync.WaitGroup) {
		fisherZ(inputMat, outputMat, order, wg)
	})

	return nil
}
