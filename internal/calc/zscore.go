package calc

import (
	"fmt"
	"sync"

	"github.com/gonum/matrix/mat64"
)

func zScoring(inputMat *mat64.Dense, outputMat *mat64.Dense, stats []statistic, order <-chan int, wg *sync.WaitGroup) {
	_, inputCols := inputMat.Dims()

	for {
		index, ok := <-order
		if ok {
			for t := 0; t < inputCols; t++ {
				var newValue float64
				if stats[index].std > 0 {
					newValue = (inputMat.At(index, t) - stats[index].avg) / stats[index].std
				}
				outputMat.Set(index, t, newValue)
			}

			wg.Done()
		} else {
			break
		}
	}

	return
}

// ZScoring does z-scoring on each rows. Constant rows become all zero.
func (p *Pool) ZScoring(inputMat *mat64.Dense, outputMat *mat64.Dense) error {
	inputRows, inputCols := inputMat.Dims()
	outputRows, outputCols := outputMat.Dims()

	if outputRows != inputRows || outputCols != inputCols {
		return fmt.Errorf("%w: ZScoring: input is %d by %d but output is %d by %d", ErrDimension, inputRows, inputCols, outputRows, outputCols)
	}

	stats := p.stats(inputMat)

	p.dispatch(inputRows, func(order <-chan int, wg *sync.WaitGroup) {
		zScoring(inputMat, outputMat, stats, order, wg)
	})

	return nil
}
