package calc

import (
	"fmt"
	"math"
	"sync"

	"github.com/gonum/matrix/mat64"
)

func covariance(timeSeriesMat *mat64.Dense, covMat *mat64.Dense, stats []statistic, order <-chan int, wg *sync.WaitGroup) {
	inputRows, inputCols := timeSeriesMat.Dims()

	for {
		from, ok := <-order
		if ok {
			for to := from; to < inputRows; to++ {
				var accProd float64
				for t := 0; t < inputCols; t++ {
					accProd += (timeSeriesMat.At(from, t) - stats[from].avg) * (timeSeriesMat.At(to, t) - stats[to].avg)
				}

				cov := accProd / float64(inputCols-1)
				covMat.Set(from, to, cov)
				covMat.Set(to, from, cov)
			}

			wg.Done()
		} else {
			break
		}
	}

	return
}

func partial(precisionMat *mat64.Dense, outputMat *mat64.Dense, order <-chan int, wg *sync.WaitGroup) {
	rows, _ := precisionMat.Dims()

	for {
		from, ok := <-order
		if ok {
			outputMat.Set(from, from, 1)

			for to := from + 1; to < rows; to++ {
				value := -precisionMat.At(from, to) / math.Sqrt(precisionMat.At(from, from)*precisionMat.At(to, to))
				outputMat.Set(from, to, value)
				outputMat.Set(to, from, value)
			}

			wg.Done()
		} else {
			break
		}
	}

	return
}

// PartialCorrelation computes the partial correlation between every pair of
// rows of a regions by timepoints matrix, conditioning on all other rows. It
// needs more timepoints than regions for the covariance to be invertible.
func (p *Pool) PartialCorrelation(timeSeriesMat *mat64.Dense, outputMat *mat64.Dense) error {
	inputRows, inputCols := timeSeriesMat.Dims()
	outputRows, outputCols := outputMat.Dims()

	if outputRows != inputRows || outputCols != inputRows {
		return fmt.Errorf("%w: PartialCorrelation: input is %d by %d but output is %d by %d", ErrDimension, inputRows, inputCols, outputRows, outputCols)
	}
	if inputCols < 2 {
		return fmt.Errorf("%w: PartialCorrelation: need at least 2 timepoints, got %d", ErrDimension, inputCols)
	}

	stats := p.stats(timeSeriesMat)

	covMat := mat64.NewDense(inputRows, inputRows, nil)
	p.dispatch(inputRows, func(order <-chan int, wg *sync.WaitGroup) {
		covariance(timeSeriesMat, covMat, stats, order, wg)
	})

	precisionMat := mat64.NewDense(inputRows, inputRows, nil)
	if err := precisionMat.Inverse(covMat); err != nil {
		return fmt.Errorf("PartialCorrelation: covariance is not invertible: %w", err)
	}

	p.dispatch(inputRows, func(order <-chan int, wg *sync.WaitGroup) {
		partial(precisionMat, outputMat, order, wg)
	})

	return nil
}
