package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	apperrors "spicongress/internal/errors"
)

// pinvRCond is the relative cutoff below which singular values are treated as zero.
const pinvRCond = 1e-15

// OLSResult holds an ordinary least squares fit and its inference
type OLSResult struct {
	Names     []string
	Params    []float64
	StdErrors []float64
	TValues   []float64
	PValues   []float64
	// ConfInt holds the lower and upper 95% bound of each parameter.
	ConfInt [][2]float64

	NObs    int
	Rank    int
	DfModel float64
	DfResid float64

	RSquared    float64
	AdjRSquared float64
	FStatistic  float64
	FPValue     float64

	LogLikelihood float64
	AIC           float64
	BIC           float64

	SSR    float64
	Scale  float64
	CondNo float64

	Fitted    []float64
	Residuals []float64

	hasConstant bool
	// normCov is (XᵀX)⁺, the covariance of the parameters up to Scale.
	normCov *mat.Dense
}

// FitOLS regresses y on the columns of x. names labels the columns; a
// column of ones anywhere in x is treated as the intercept.
func FitOLS(y []float64, x *mat.Dense, names []string) (*OLSResult, error) {
	n, k := x.Dims()
	if n != len(y) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("design has %d rows, response has %d", n, len(y)), nil)
	}
	if len(names) != k {
		return nil, apperrors.NewValidationError(fmt.Sprintf("design has %d columns, %d names given", k, len(names)), nil)
	}
	if n == 0 {
		return nil, apperrors.NewValidationError("no observations to fit", nil)
	}

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, apperrors.NewValidationError("singular value decomposition failed", nil)
	}
	pinv, rank, cond := pseudoInverse(&svd, n, k)

	yVec := mat.NewVecDense(n, append([]float64(nil), y...))
	var beta mat.VecDense
	beta.MulVec(pinv, yVec)

	var normCov mat.Dense
	normCov.Mul(pinv, pinv.T())

	var fitted mat.VecDense
	fitted.MulVec(x, &beta)

	r := &OLSResult{
		Names:       append([]string(nil), names...),
		Params:      make([]float64, k),
		StdErrors:   make([]float64, k),
		TValues:     make([]float64, k),
		PValues:     make([]float64, k),
		ConfInt:     make([][2]float64, k),
		NObs:        n,
		Rank:        rank,
		CondNo:      cond,
		Fitted:      make([]float64, n),
		Residuals:   make([]float64, n),
		hasConstant: hasConstantColumn(x),
		normCov:     &normCov,
	}

	for i := 0; i < n; i++ {
		r.Fitted[i] = fitted.AtVec(i)
		r.Residuals[i] = y[i] - r.Fitted[i]
		r.SSR += r.Residuals[i] * r.Residuals[i]
	}

	kConst := 0.0
	if r.hasConstant {
		kConst = 1
	}
	r.DfResid = float64(n - rank)
	r.DfModel = float64(rank) - kConst
	r.Scale = r.SSR / r.DfResid

	for j := 0; j < k; j++ {
		r.Params[j] = beta.AtVec(j)
	}
	r.infer(&normCov)

	tss := totalSumOfSquares(y, r.hasConstant)
	r.RSquared = 1 - r.SSR/tss
	r.AdjRSquared = 1 - (float64(n)-kConst)/r.DfResid*(1-r.RSquared)

	if r.DfModel > 0 && r.DfResid > 0 {
		r.FStatistic = ((tss - r.SSR) / r.DfModel) / r.Scale
		r.FPValue = distuv.F{D1: r.DfModel, D2: r.DfResid}.Survival(r.FStatistic)
	} else {
		r.FStatistic = math.NaN()
		r.FPValue = math.NaN()
	}

	nf := float64(n)
	r.LogLikelihood = -nf / 2 * (math.Log(2*math.Pi) + math.Log(r.SSR/nf) + 1)
	params := r.DfModel + kConst
	r.AIC = -2*r.LogLikelihood + 2*params
	r.BIC = -2*r.LogLikelihood + math.Log(nf)*params

	return r, nil
}

// infer fills standard errors, t statistics, p-values and 95% intervals.
// With no residual degrees of freedom they are all NaN.
func (r *OLSResult) infer(normCov *mat.Dense) {
	if r.DfResid <= 0 {
		for j := range r.Params {
			r.StdErrors[j] = math.NaN()
			r.TValues[j] = math.NaN()
			r.PValues[j] = math.NaN()
			r.ConfInt[j] = [2]float64{math.NaN(), math.NaN()}
		}
		return
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: r.DfResid}
	tCrit := tDist.Quantile(0.975)
	for j := range r.Params {
		r.StdErrors[j] = math.Sqrt(r.Scale * normCov.At(j, j))
		r.TValues[j] = r.Params[j] / r.StdErrors[j]
		r.PValues[j] = 2 * tDist.Survival(math.Abs(r.TValues[j]))
		r.ConfInt[j] = [2]float64{
			r.Params[j] - tCrit*r.StdErrors[j],
			r.Params[j] + tCrit*r.StdErrors[j],
		}
	}
}

// pseudoInverse returns V·S⁺·Uᵀ, the numerical rank and the condition number
func pseudoInverse(svd *mat.SVD, n, k int) (*mat.Dense, int, float64) {
	values := svd.Values(nil)

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	largest := 0.0
	if len(values) > 0 {
		largest = values[0]
	}

	// Rank tolerance of numpy.linalg.matrix_rank
	tol := largest * float64(max(n, k)) * 2.220446049250313e-16
	rank := 0
	smallest := math.Inf(1)
	for _, s := range values {
		if s > tol {
			rank++
		}
		smallest = math.Min(smallest, s)
	}

	vs := mat.DenseCopyOf(&v)
	for i, s := range values {
		scale := 0.0
		if s > pinvRCond*largest {
			scale = 1 / s
		}
		for row := 0; row < k; row++ {
			vs.Set(row, i, vs.At(row, i)*scale)
		}
	}

	var pinv mat.Dense
	pinv.Mul(vs, u.T())

	return &pinv, rank, largest / smallest
}

func hasConstantColumn(x *mat.Dense) bool {
	n, k := x.Dims()
	for j := 0; j < k; j++ {
		constant := true
		for i := 0; i < n; i++ {
			if x.At(i, j) != 1 {
				constant = false
				break
			}
		}
		if constant {
			return true
		}
	}
	return false
}

func totalSumOfSquares(y []float64, centered bool) float64 {
	mean := 0.0
	if centered {
		for _, v := range y {
			mean += v
		}
		mean /= float64(len(y))
	}
	tss := 0.0
	for _, v := range y {
		d := v - mean
		tss += d * d
	}
	return tss
}

// Predict evaluates the fitted model at one design row, returning the mean
// prediction and its standard error
func (r *OLSResult) Predict(row []float64) (mean, stdErr float64) {
	k := len(r.Params)
	if len(row) != k {
		return math.NaN(), math.NaN()
	}
	for j, v := range row {
		mean += v * r.Params[j]
	}

	rv := mat.NewVecDense(k, append([]float64(nil), row...))
	var tmp mat.VecDense
	tmp.MulVec(r.normCov, rv)
	variance := r.Scale * mat.Dot(rv, &tmp)
	return mean, math.Sqrt(variance)
}

// Param returns the estimate for the named term
func (r *OLSResult) Param(name string) (float64, bool) {
	for i, n := range r.Names {
		if n == name {
			return r.Params[i], true
		}
	}
	return 0, false
}
