package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Diagnostics are residual tests reported under the coefficient table
type Diagnostics struct {
	Omnibus       float64
	OmnibusPValue float64
	Skew          float64
	Kurtosis      float64
	DurbinWatson  float64
	JarqueBera    float64
	JBPValue      float64
}

// ResidualDiagnostics computes normality and autocorrelation tests on the
// residuals. The omnibus test needs at least 8 residuals and is NaN below that.
func (r *OLSResult) ResidualDiagnostics() Diagnostics {
	e := r.Residuals
	d := Diagnostics{
		Skew:     skewness(e),
		Kurtosis: kurtosis(e),
	}

	d.DurbinWatson = durbinWatson(e)

	n := float64(len(e))
	d.JarqueBera = n / 6 * (d.Skew*d.Skew + (d.Kurtosis-3)*(d.Kurtosis-3)/4)
	chi2 := distuv.ChiSquared{K: 2}
	d.JBPValue = survival(chi2, d.JarqueBera)

	if len(e) >= 8 {
		zs := skewTestZ(d.Skew, n)
		zk := kurtosisTestZ(d.Kurtosis, n)
		d.Omnibus = zs*zs + zk*zk
		d.OmnibusPValue = survival(chi2, d.Omnibus)
	} else {
		d.Omnibus = math.NaN()
		d.OmnibusPValue = math.NaN()
	}
	return d
}

// survival is chi2.Survival with NaN passed through
func survival(chi2 distuv.ChiSquared, x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	return chi2.Survival(x)
}

// skewness is the biased sample skewness. stat.Skew applies the small-sample
// correction, so it is built from population moments instead.
func skewness(x []float64) float64 {
	return stat.Moment(3, x, nil) / math.Pow(stat.Moment(2, x, nil), 1.5)
}

// kurtosis is the biased Pearson kurtosis (3 for a normal sample)
func kurtosis(x []float64) float64 {
	m2 := stat.Moment(2, x, nil)
	return stat.Moment(4, x, nil) / (m2 * m2)
}

func durbinWatson(e []float64) float64 {
	num, den := 0.0, 0.0
	for i, v := range e {
		den += v * v
		if i > 0 {
			d := v - e[i-1]
			num += d * d
		}
	}
	return num / den
}

// skewTestZ is D'Agostino's transformation of sample skewness to a normal deviate
func skewTestZ(b2, n float64) float64 {
	y := b2 * math.Sqrt((n+1)*(n+3)/(6*(n-2)))
	beta2 := 3 * (n*n + 27*n - 70) * (n + 1) * (n + 3) / ((n - 2) * (n + 5) * (n + 7) * (n + 9))
	w2 := -1 + math.Sqrt(2*(beta2-1))
	delta := 1 / math.Sqrt(0.5*math.Log(w2))
	alpha := math.Sqrt(2 / (w2 - 1))
	if y == 0 {
		y = 1
	}
	return delta * math.Log(y/alpha+math.Sqrt((y/alpha)*(y/alpha)+1))
}

// kurtosisTestZ is Anscombe and Glynn's transformation of sample kurtosis to
// a normal deviate
func kurtosisTestZ(b2, n float64) float64 {
	e := 3 * (n - 1) / (n + 1)
	varb2 := 24 * n * (n - 2) * (n - 3) / ((n + 1) * (n + 1) * (n + 3) * (n + 5))
	x := (b2 - e) / math.Sqrt(varb2)
	sqrtBeta1 := 6 * (n*n - 5*n + 2) / ((n + 7) * (n + 9)) * math.Sqrt(6*(n+3)*(n+5)/(n*(n-2)*(n-3)))
	a := 6 + 8/sqrtBeta1*(2/sqrtBeta1+math.Sqrt(1+4/(sqrtBeta1*sqrtBeta1)))
	term1 := 1 - 2/(9*a)
	denom := 1 + x*math.Sqrt(2/(a-4))
	if denom == 0 {
		return math.NaN()
	}
	term2 := math.Copysign(math.Cbrt((1-2/a)/math.Abs(denom)), denom)
	return (term1 - term2) / math.Sqrt(2/(9*a))
}
