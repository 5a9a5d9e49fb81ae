package cpm

// Sign selects the positive or the negative edge network.
type Sign int

// Edge network signs
const (
	Positive Sign = iota
	Negative
)

func (s Sign) String() string {
	if s == Negative {
		return "negative"
	}
	return "positive"
}

// Mask marks selected edges.
type Mask []bool

// Count returns the number of selected edges
func (m Mask) Count() int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}

// Indices returns the selected positions in ascending order.
func (m Mask) Indices() []int {
	var idx []int
	for k, v := range m {
		if v {
			idx = append(idx, k)
		}
	}
	return idx
}

// Union returns m OR o. Both must have the same length.
func (m Mask) Union(o Mask) (Mask, error) {
	if len(m) != len(o) {
		return nil, &DimensionError{Op: "mask union", Want: len(m), Got: len(o)}
	}

	u := make(Mask, len(m))
	for k := range m {
		u[k] = m[k] || o[k]
	}
	return u, nil
}

// Masks is the outcome of edge selection. An edge is never in both.
type Masks struct {
	Positive Mask
	Negative Mask
}

// Of returns the mask of sign s.
func (m Masks) Of(s Sign) Mask {
	if s == Negative {
		return m.Negative
	}
	return m.Positive
}

// classify keeps edges with p below threshold, split by the sign of stat.
// NaN statistics are never selected.
func classify(stat, p []float64, threshold float64) Masks {
	m := Masks{
		Positive: make(Mask, len(stat)),
		Negative: make(Mask, len(stat)),
	}

	for k := range stat {
		if !(p[k] < threshold) {
			continue
		}
		switch {
		case stat[k] > 0:
			m.Positive[k] = true
		case stat[k] < 0:
			m.Negative[k] = true
		}
	}

	return m
}
