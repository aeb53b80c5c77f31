// Package validation checks input and output paths before the pipeline
// reads or writes them.
package validation
