package connectome

import "fmt"

// NetworkEdges returns, in vector order, the positions of the edges whose two
// regions both carry the network label. labels has one entry per region.
func NetworkEdges(labels []string, network string) ([]int, error) {
	var idx []int
	found := false

	for i := 1; i < len(labels); i++ {
		for j := 0; j < i; j++ {
			if labels[i] == network && labels[j] == network {
				idx = append(idx, EdgeIndex(i, j))
			}
		}
	}
	for _, l := range labels {
		if l == network {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("connectome: no region labelled %q", network)
	}

	return idx, nil
}

// Subset copies vec at the given positions.
func Subset(vec []float64, idx []int) ([]float64, error) {
	out := make([]float64, len(idx))
	for n, k := range idx {
		if k < 0 || k >= len(vec) {
			return nil, fmt.Errorf("connectome: edge %d out of range for %d edges", k, len(vec))
		}
		out[n] = vec[k]
	}

	return out, nil
}
