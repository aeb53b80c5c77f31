package analysis

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// PolyBasis returns the n×degree matrix whose columns are x^1 … x^degree.
// The columns are raw powers, not orthogonalized; the intercept is added by
// the caller.
func PolyBasis(x []float64, degree int) *mat.Dense {
	if degree < 1 || len(x) == 0 {
		return nil
	}
	basis := mat.NewDense(len(x), degree, nil)
	for i, v := range x {
		for d := 1; d <= degree; d++ {
			basis.Set(i, d-1, math.Pow(v, float64(d)))
		}
	}
	return basis
}

// withIntercept prepends a column of ones to m
func withIntercept(m *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c+1, nil)
	for i := 0; i < r; i++ {
		out.Set(i, 0, 1)
		for j := 0; j < c; j++ {
			out.Set(i, j+1, m.At(i, j))
		}
	}
	return out
}
