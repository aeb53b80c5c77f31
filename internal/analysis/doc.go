// Package analysis fits the regressions behind the report.
//
// FitOLS solves ordinary least squares through the SVD pseudo-inverse, so
// rank-deficient designs (a party or chamber level with no rows, a smooth
// fitted on fewer distinct points than its degree) still produce a
// minimum-norm solution instead of an error. Standard errors, t and F tests,
// R², log-likelihood and information criteria follow the usual
// non-robust formulas.
//
// BuildDesign turns the joined table into the response vector and a design
// matrix with an intercept, treatment-coded senate and party indicators and
// the numeric regressor. FitSmooth fits a polynomial trend and evaluates it
// with a confidence band on an even grid for plotting. Summary writes a
// plain-text coefficient table.
package analysis
