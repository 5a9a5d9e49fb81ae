package calc

import (
	"errors"
	"runtime"
	"sync"
)

// ErrDimension is returned when input and output matrices disagree in shape.
var ErrDimension = errors.New("calc: dimension mismatch")

// Pool represents a fixed set of workers that row kernels fan out over
type Pool struct {
	numWorker int
}

// Init returns a compute Pool. numWorker <= 0 means one worker per CPU.
func Init(numWorker int) *Pool {
	if numWorker <= 0 {
		numWorker = runtime.NumCPU()
	}

	return &Pool{numWorker: numWorker}
}

// NumWorker returns the number of workers
func (p *Pool) NumWorker() int {
	return p.numWorker
}

// dispatch feeds row indices 0..rows-1 into order and waits for every worker to
// acknowledge them.
func (p *Pool) dispatch(rows int, worker func(order <-chan int, wg *sync.WaitGroup)) {
	order := make(chan int, p.numWorker)
	var wg sync.WaitGroup

	wg.Add(rows)

	for i := 0; i < p.numWorker; i++ {
		go worker(order, &wg)
	}

	for i := 0; i < rows; i++ {
		order <- i
	}

	wg.Wait()
	close(order)
	return
}

/*
	Workflow:

	Init -> ZScoring / Pearson / PartialCorrelation -> FisherZ
*/

type statistic struct {
	avg float64
	std float64
}
