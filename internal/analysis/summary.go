package analysis

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
)

const (
	summaryWidth    = 78
	largeConditionN = 1000
)

// Summary writes a plain-text regression report for r in the layout of the
// statsmodels OLS summary
func Summary(w io.Writer, r *OLSResult, dependent string) error {
	return writeSummary(w, r, dependent, time.Now())
}

func writeSummary(w io.Writer, r *OLSResult, dependent string, at time.Time) error {
	bw := bufio.NewWriter(w)
	diag := r.ResidualDiagnostics()
	thick := strings.Repeat("=", summaryWidth)
	thin := strings.Repeat("-", summaryWidth)

	title := "OLS Regression Results"
	pad := (summaryWidth - len(title)) / 2
	fmt.Fprintf(bw, "%s%s\n", strings.Repeat(" ", pad), title)
	fmt.Fprintln(bw, thick)

	header := [][4]string{
		{"Dep. Variable:", dependent, "R-squared:", fmtFixed(r.RSquared, 3)},
		{"Model:", "OLS", "Adj. R-squared:", fmtFixed(r.AdjRSquared, 3)},
		{"Method:", "Least Squares", "F-statistic:", fmtG(r.FStatistic, 4)},
		{"Date:", at.Format("Mon, 02 Jan 2006"), "Prob (F-statistic):", fmtG(r.FPValue, 3)},
		{"Time:", at.Format("15:04:05"), "Log-Likelihood:", fmtG(r.LogLikelihood, 5)},
		{"No. Observations:", fmt.Sprint(r.NObs), "AIC:", fmtG(r.AIC, 4)},
		{"Df Residuals:", fmtInt(r.DfResid), "BIC:", fmtG(r.BIC, 4)},
		{"Df Model:", fmtInt(r.DfModel), "", ""},
		{"Covariance Type:", "nonrobust", "", ""},
	}
	for _, row := range header {
		fmt.Fprintf(bw, "%s   %s\n", pair(row[0], row[1], 39), pair(row[2], row[3], 36))
	}
	fmt.Fprintln(bw, thick)

	nameWidth := 10
	for _, name := range r.Names {
		nameWidth = max(nameWidth, len(name))
	}
	coefFormat := fmt.Sprintf("%%-%ds %%10s %%10s %%10s %%10s %%11s %%11s\n", nameWidth)
	fmt.Fprintf(bw, coefFormat, "", "coef", "std err", "t", "P>|t|", "[0.025", "0.975]")
	fmt.Fprintln(bw, thin)
	for j, name := range r.Names {
		fmt.Fprintf(bw, coefFormat, name,
			fmtFixed(r.Params[j], 4),
			fmtFixed(r.StdErrors[j], 3),
			fmtFixed(r.TValues[j], 3),
			fmtFixed(r.PValues[j], 3),
			fmtFixed(r.ConfInt[j][0], 3),
			fmtFixed(r.ConfInt[j][1], 3),
		)
	}
	fmt.Fprintln(bw, thick)

	footer := [][4]string{
		{"Omnibus:", fmtFixed(diag.Omnibus, 3), "Durbin-Watson:", fmtFixed(diag.DurbinWatson, 3)},
		{"Prob(Omnibus):", fmtFixed(diag.OmnibusPValue, 3), "Jarque-Bera (JB):", fmtFixed(diag.JarqueBera, 3)},
		{"Skew:", fmtFixed(diag.Skew, 3), "Prob(JB):", fmtG(diag.JBPValue, 3)},
		{"Kurtosis:", fmtFixed(diag.Kurtosis, 3), "Cond. No.", fmtG(r.CondNo, 3)},
	}
	for _, row := range footer {
		fmt.Fprintf(bw, "%s   %s\n", pair(row[0], row[1], 39), pair(row[2], row[3], 36))
	}
	fmt.Fprintln(bw, thick)

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "Notes:")
	fmt.Fprintln(bw, "[1] Standard Errors assume that the covariance matrix of the errors is correctly specified.")
	switch {
	case r.Rank < len(r.Params):
		fmt.Fprintf(bw, "[2] The design matrix has rank %d for %d terms. Some terms are not identified.\n", r.Rank, len(r.Params))
	case r.CondNo > largeConditionN:
		fmt.Fprintf(bw, "[2] The condition number is large, %s. This might indicate that there are\n", fmtG(r.CondNo, 3))
		fmt.Fprintln(bw, "strong multicollinearity or other numerical problems.")
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write regression summary: %w", err)
	}
	return nil
}

// pair left-aligns label and right-aligns value in a field of width
func pair(label, value string, width int) string {
	gap := width - len(label) - len(value)
	if gap < 1 {
		gap = 1
	}
	return label + strings.Repeat(" ", gap) + value
}

func fmtFixed(v float64, prec int) string {
	if math.IsNaN(v) {
		return "nan"
	}
	if math.IsInf(v, 0) {
		return inf(v)
	}
	return fmt.Sprintf("%.*f", prec, v)
}

func fmtG(v float64, prec int) string {
	if math.IsNaN(v) {
		return "nan"
	}
	if math.IsInf(v, 0) {
		return inf(v)
	}
	return fmt.Sprintf("%.*g", prec, v)
}

func fmtInt(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return fmt.Sprintf("%.0f", v)
}

func inf(v float64) string {
	if v < 0 {
		return "-inf"
	}
	return "inf"
}
