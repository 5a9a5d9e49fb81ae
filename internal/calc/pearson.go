package calc

import (
	"fmt"
	"math"
	"sync"

	"github.com/gonum/matrix/mat64"
)

func pearson(timeSeriesMat *mat64.Dense, pearsonMat *mat64.Dense, stats []statistic, order <-chan int, wg *sync.WaitGroup) {
	inputRows, inputCols := timeSeriesMat.Dims()

	for {
		from, ok := <-order
		if ok {
			pearsonMat.Set(from, from, 1)

			for to := from + 1; to < inputRows; to++ {
				var value float64

				// Flat regions carry no covariance with anything.
				if stats[from].std > 0 && stats[to].std > 0 {
					var accProd float64
					for t := 0; t < inputCols; t++ {
						accProd += timeSeriesMat.At(from, t) * timeSeriesMat.At(to, t)
					}

					cov := (accProd / float64(inputCols)) - (stats[from].avg * stats[to].avg)
					value = cov / (stats[from].std * stats[to].std)
				}

				pearsonMat.Set(from, to, value)
				pearsonMat.Set(to, from, value)
			}

			wg.Done()
		} else {
			break
		}
	}

	return
}

func getStat(timeSeriesMat *mat64.Dense, stats []statistic, order <-chan int, wg *sync.WaitGroup) {
	_, numCols := timeSeriesMat.Dims()
	for {
		index, ok := <-order
		if ok {
			var accVal float64
			var accSqrVal float64

			for t := 0; t < numCols; t++ {
				value := timeSeriesMat.At(index, t)
				accVal += value
				accSqrVal += value * value
			}

			avgVal := accVal / float64(numCols)
			avgSqrVal := accSqrVal / float64(numCols)

			stats[index].avg = avgVal
			stats[index].std = math.Sqrt(math.Max(avgSqrVal-(avgVal*avgVal), 0))

			wg.Done()
		} else {
			break
		}
	}

	return
}

func (p *Pool) stats(timeSeriesMat *mat64.Dense) []statistic {
	inputRows, _ := timeSeriesMat.Dims()
	stats := make([]statistic, inputRows)

	p.dispatch(inputRows, func(order <-chan int, wg *sync.WaitGroup) {
		getStat(timeSeriesMat, stats, order, wg)
	})

	return stats
}

// Pearson does Pearson's correlation calculation between every pair of rows
// (regions) of a regions by timepoints matrix.
func (p *Pool) Pearson(timeSeriesMat *mat64.Dense, outputMat *mat64.Dense) error {
	inputRows, inputCols := timeSeriesMat.Dims()
	outputRows, outputCols := outputMat.Dims()

	if outputRows != inputRows || outputCols != inputRows {
		return fmt.Errorf("%w: Pearson: input is %d by %d but output is %d by %d", ErrDimension, inputRows, inputCols, outputRows, outputCols)
	}
	if inputCols < 2 {
		return fmt.Errorf("%w: Pearson: need at least 2 timepoints, got %d", ErrDimension, inputCols)
	}

	stats := p.stats(timeSeriesMat)

	p.dispatch(inputRows, func(order <-chan int, wg *sync.WaitGroup) {
		pearson(timeSeriesMat, outputMat, stats, order, wg)
	})

	return nil
}
