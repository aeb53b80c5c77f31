package analysis

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSummary(t *testing.T) {
	fit, err := FitOLS([]float64{2, 4, 5, 4, 5}, simpleDesign([]float64{1, 2, 3, 4, 5}), []string{"Intercept", "congressperson_progressiveness_score"})
	require.NoError(t, err)

	var buf bytes.Buffer
	at := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	require.NoError(t, writeSummary(&buf, fit, "social_progress_index", at))

	out := buf.String()
	assert.Contains(t, out, "OLS Regression Results")
	assert.Contains(t, out, "Thu, 15 Oct 2026")
	assert.Contains(t, out, "09:30:00")
	assert.Contains(t, out, "social_progress_index")
	assert.Contains(t, out, "P>|t|")
	assert.Contains(t, out, "Cond. No.")
	assert.Contains(t, out, "Covariance Type:")

	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "Dep. Variable:"):
			assert.Contains(t, line, "R-squared:")
			assert.True(t, strings.HasSuffix(line, "0.600"), line)
		case strings.HasPrefix(line, "No. Observations:"):
			assert.Contains(t, line, " 5 ")
		case strings.HasPrefix(line, "congressperson_progressiveness_score"):
			assert.Contains(t, line, "0.6000")
			assert.Contains(t, line, "2.121")
		case strings.HasPrefix(line, "Omnibus:"):
			assert.Contains(t, line, "nan")
			assert.Contains(t, line, "2.017")
		}
	}
}

func TestSummaryRankNote(t *testing.T) {
	fit, err := FitOLS([]float64{2, 5, 8, 11, 14.5}, withIntercept(PolyBasis([]float64{0, 1, 2, 3, 4}, 1)), []string{"Intercept", "x"})
	require.NoError(t, err)
	fit.Rank = 1

	var buf bytes.Buffer
	require.NoError(t, Summary(&buf, fit, "y"))
	assert.Contains(t, buf.String(), "has rank 1 for 2 terms")
}
