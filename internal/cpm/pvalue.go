package cpm

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// twoTailed returns P(|T| >= |t|) for a Student t with df degrees of freedom.
func twoTailed(t, df float64) float64 {
	switch {
	case math.IsNaN(t) || df <= 0:
		return math.NaN()
	case math.IsInf(t, 0):
		return 0
	}

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return math.Min(1, 2*dist.Survival(math.Abs(t)))
}

// corrT converts a correlation coefficient into its t statistic.
func corrT(r, df float64) float64 {
	switch {
	case math.IsNaN(r):
		return math.NaN()
	case r >= 1:
		return math.Inf(1)
	case r <= -1:
		return math.Inf(-1)
	}

	return r * math.Sqrt(df/(1-r*r))
}

// TToR converts a regression t statistic into the equivalent partial
// correlation, r = sign(t) * sqrt(t^2 / (df + t^2)).
func TToR(t, df float64) float64 {
	switch {
	case math.IsNaN(t):
		return math.NaN()
	case math.IsInf(t, 1):
		return 1
	case math.IsInf(t, -1):
		return -1
	}

	r := math.Sqrt(t * t / (df + t*t))
	if t < 0 {
		return -r
	}
	return r
}

// correlationTest returns Pearson's r between x and y and its two-tailed
// p-value with df degrees of freedom.
func correlationTest(r, df float64) (float64, float64) {
	return r, twoTailed(corrT(r, df), df)
}
