package cpm

// Split is one leave-one-out fold.
type Split struct {
	Train []int
	Test  int
}

// LeaveOneOut returns the n folds over n subjects, fold k holding out
// subject k.
func LeaveOneOut(n int) []Split {
	splits := make([]Split, n)
	for k := 0; k < n; k++ {
		train := make([]int, 0, n-1)
		for i := 0; i < n; i++ {
			if i != k {
				train = append(train, i)
			}
		}
		splits[k] = Split{Train: train, Test: k}
	}

	return splits
}
