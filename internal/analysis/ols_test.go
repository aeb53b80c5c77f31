package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	apperrors "spicongress/internal/errors"
)

// design returns [1, x] rows for a simple regression
func simpleDesign(x []float64) *mat.Dense {
	return withIntercept(PolyBasis(x, 1))
}

func TestPolyBasis(t *testing.T) {
	basis := PolyBasis([]float64{1, 2, 3}, 2)
	require.NotNil(t, basis)

	r, c := basis.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, []float64{1, 1}, basis.RawRowView(0))
	assert.Equal(t, []float64{2, 4}, basis.RawRowView(1))
	assert.Equal(t, []float64{3, 9}, basis.RawRowView(2))

	assert.Nil(t, PolyBasis([]float64{1}, 0))
	assert.Nil(t, PolyBasis(nil, 2))
}

func TestFitOLSPerfectLine(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{2, 5, 8, 11, 14}

	fit, err := FitOLS(y, simpleDesign(x), []string{"Intercept", "x"})
	require.NoError(t, err)

	assert.InDelta(t, 2, fit.Params[0], 1e-9)
	assert.InDelta(t, 3, fit.Params[1], 1e-9)
	assert.InDelta(t, 1, fit.RSquared, 1e-12)
	assert.Equal(t, 2, fit.Rank)
	assert.Equal(t, 3.0, fit.DfResid)
	assert.Equal(t, 1.0, fit.DfModel)
	assert.InDelta(t, 0, fit.SSR, 1e-18)
}

func TestFitOLSKnownValues(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2, 4, 5, 4, 5}

	fit, err := FitOLS(y, simpleDesign(x), []string{"Intercept", "x"})
	require.NoError(t, err)

	assert.InDelta(t, 2.2, fit.Params[0], 1e-9)
	assert.InDelta(t, 0.6, fit.Params[1], 1e-9)
	assert.InDelta(t, 2.4, fit.SSR, 1e-9)
	assert.InDelta(t, 0.8, fit.Scale, 1e-9)
	assert.InDelta(t, 0.6, fit.RSquared, 1e-9)
	assert.InDelta(t, 0.466667, fit.AdjRSquared, 1e-6)
	assert.InDelta(t, math.Sqrt(0.88), fit.StdErrors[0], 1e-9)
	assert.InDelta(t, math.Sqrt(0.08), fit.StdErrors[1], 1e-9)
	assert.InDelta(t, 2.121320, fit.TValues[1], 1e-6)
	assert.InDelta(t, 4.5, fit.FStatistic, 1e-9)

	// With one regressor the F test and the slope t test agree
	assert.InDelta(t, fit.PValues[1], fit.FPValue, 1e-9)
	assert.Greater(t, fit.FPValue, 0.1)
	assert.Less(t, fit.FPValue, 0.15)

	assert.InDelta(t, -5.259770, fit.LogLikelihood, 1e-5)
	assert.InDelta(t, 14.519540, fit.AIC, 1e-5)
	assert.InDelta(t, 13.738416, fit.BIC, 1e-5)

	assert.Less(t, fit.ConfInt[1][0], 0.6)
	assert.Greater(t, fit.ConfInt[1][1], 0.6)

	assert.Equal(t, []float64{-0.8, 0.6, 1.0, -0.6, -0.2}, roundAll(fit.Residuals, 9))

	slope, ok := fit.Param("x")
	assert.True(t, ok)
	assert.InDelta(t, 0.6, slope, 1e-9)
	_, ok = fit.Param("missing")
	assert.False(t, ok)
}

func TestFitOLSRankDeficient(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{2, 5, 8, 11, 14}

	design := mat.NewDense(len(x), 3, nil)
	for i, v := range x {
		design.SetRow(i, []float64{1, v, v})
	}

	fit, err := FitOLS(y, design, []string{"Intercept", "a", "b"})
	require.NoError(t, err)

	// The minimum-norm solution splits the slope between the copies
	assert.Equal(t, 2, fit.Rank)
	assert.Equal(t, 1.0, fit.DfModel)
	assert.Equal(t, 3.0, fit.DfResid)
	assert.InDelta(t, 2, fit.Params[0], 1e-9)
	assert.InDelta(t, 1.5, fit.Params[1], 1e-9)
	assert.InDelta(t, 1.5, fit.Params[2], 1e-9)
	assert.True(t, math.IsInf(fit.CondNo, 1) || fit.CondNo > 1e12)
}

func TestFitOLSNoResidualDegreesOfFreedom(t *testing.T) {
	fit, err := FitOLS([]float64{1, 3}, simpleDesign([]float64{0, 1}), []string{"Intercept", "x"})
	require.NoError(t, err)

	assert.Equal(t, 0.0, fit.DfResid)
	assert.InDelta(t, 2, fit.Params[1], 1e-9)
	assert.True(t, math.IsNaN(fit.StdErrors[1]))
	assert.True(t, math.IsNaN(fit.PValues[1]))
	assert.True(t, math.IsNaN(fit.FStatistic))
}

func TestFitOLSValidation(t *testing.T) {
	tests := []struct {
		name  string
		y     []float64
		x     *mat.Dense
		names []string
	}{
		{"row mismatch", []float64{1, 2}, simpleDesign([]float64{1, 2, 3}), []string{"Intercept", "x"}},
		{"name mismatch", []float64{1, 2, 3}, simpleDesign([]float64{1, 2, 3}), []string{"Intercept"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FitOLS(tt.y, tt.x, tt.names)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrValidation))
		})
	}
}

func TestPredict(t *testing.T) {
	fit, err := FitOLS([]float64{2, 4, 5, 4, 5}, simpleDesign([]float64{1, 2, 3, 4, 5}), []string{"Intercept", "x"})
	require.NoError(t, err)

	mean, se := fit.Predict([]float64{1, 3})
	assert.InDelta(t, 4.0, mean, 1e-9)
	assert.InDelta(t, 0.4, se, 1e-9)

	mean, se = fit.Predict([]float64{1})
	assert.True(t, math.IsNaN(mean))
	assert.True(t, math.IsNaN(se))
}

func TestResidualDiagnostics(t *testing.T) {
	fit, err := FitOLS([]float64{2, 4, 5, 4, 5}, simpleDesign([]float64{1, 2, 3, 4, 5}), []string{"Intercept", "x"})
	require.NoError(t, err)

	diag := fit.ResidualDiagnostics()
	assert.InDelta(t, 0.288675, diag.Skew, 1e-6)
	assert.InDelta(t, 1.45, diag.Kurtosis, 1e-9)
	assert.InDelta(t, 2.016667, diag.DurbinWatson, 1e-6)
	assert.InDelta(t, 0.569965, diag.JarqueBera, 1e-6)
	assert.InDelta(t, math.Exp(-diag.JarqueBera/2), diag.JBPValue, 1e-9)
	assert.True(t, math.IsNaN(diag.Omnibus), "omnibus needs eight residuals")
}

func TestPopulationMoments(t *testing.T) {
	tests := []struct {
		name     string
		x        []float64
		skew     float64
		kurtosis float64
	}{
		{name: "symmetric", x: []float64{-2, -1, 0, 1, 2}, skew: 0, kurtosis: 1.7},
		{name: "right tail", x: []float64{0, 0, 0, 1}, skew: 2 / math.Sqrt(3), kurtosis: 7.0 / 3},
		{name: "shift invariant", x: []float64{100, 100, 100, 101}, skew: 2 / math.Sqrt(3), kurtosis: 7.0 / 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.skew, skewness(tt.x), 1e-9)
			assert.InDelta(t, tt.kurtosis, kurtosis(tt.x), 1e-9)
		})
	}
}

func TestResidualDiagnosticsOmnibus(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	y := []float64{1.2, 1.9, 3.4, 3.8, 5.3, 5.7, 7.4, 7.9, 9.2, 9.8}

	fit, err := FitOLS(y, simpleDesign(x), []string{"Intercept", "x"})
	require.NoError(t, err)

	diag := fit.ResidualDiagnostics()
	assert.False(t, math.IsNaN(diag.Omnibus))
	assert.GreaterOrEqual(t, diag.Omnibus, 0.0)
	assert.InDelta(t, math.Exp(-diag.Omnibus/2), diag.OmnibusPValue, 1e-9)
}

func roundAll(values []float64, places int) []float64 {
	scale := math.Pow(10, float64(places))
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Round(v*scale) / scale
	}
	return out
}
