// Package report renders the congress scatter charts and the regression
// summary.
//
// A Reporter draws two PNG charts of social progress against congressional
// progressiveness, one grouped by party with a quadratic smooth per party
// and one ungrouped with a linear smooth, then fits the OLS model over the
// joined table and writes its summary to an io.Writer.
package report
