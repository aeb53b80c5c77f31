package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	apperrors "spicongress/internal/errors"
)

// Smooth is a fitted polynomial curve evaluated on an even grid
type Smooth struct {
	Degree int
	X      []float64
	Y      []float64
	// Lower and Upper bound the confidence band of the mean; NaN when the
	// fit has no residual degrees of freedom.
	Lower []float64
	Upper []float64
}

// FitSmooth fits y on the raw polynomial basis of x and evaluates the fit on
// points evenly spaced values from min(x) to max(x), with a two-sided band at
// the given confidence level.
func FitSmooth(x, y []float64, degree, points int, level float64) (*Smooth, error) {
	if len(x) != len(y) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("smooth has %d x values and %d y values", len(x), len(y)), nil)
	}
	if len(x) < 2 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("smooth needs at least 2 points, got %d", len(x)), nil)
	}
	if degree < 1 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("smooth degree must be positive, got %d", degree), nil)
	}
	if points < 2 {
		points = 2
	}

	names := make([]string, degree+1)
	names[0] = "Intercept"
	for d := 1; d <= degree; d++ {
		names[d] = fmt.Sprintf("x^%d", d)
	}

	fit, err := FitOLS(y, withIntercept(PolyBasis(x, degree)), names)
	if err != nil {
		return nil, err
	}

	crit := math.NaN()
	if fit.DfResid > 0 {
		crit = distuv.StudentsT{Mu: 0, Sigma: 1, Nu: fit.DfResid}.Quantile(1 - (1-level)/2)
	}

	lo, hi := x[0], x[0]
	for _, v := range x[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	s := &Smooth{
		Degree: degree,
		X:      make([]float64, points),
		Y:      make([]float64, points),
		Lower:  make([]float64, points),
		Upper:  make([]float64, points),
	}
	step := (hi - lo) / float64(points-1)
	row := make([]float64, degree+1)
	for i := 0; i < points; i++ {
		xi := lo + float64(i)*step
		if i == points-1 {
			xi = hi
		}
		row[0] = 1
		for d := 1; d <= degree; d++ {
			row[d] = math.Pow(xi, float64(d))
		}
		mean, se := fit.Predict(row)
		s.X[i] = xi
		s.Y[i] = mean
		s.Lower[i] = mean - crit*se
		s.Upper[i] = mean + crit*se
	}
	return s, nil
}
