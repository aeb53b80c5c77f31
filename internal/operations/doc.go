// Package operations runs the report pipeline as a sequence of steps.
//
// A Manager executes registered steps in order, giving each its own span and
// step metrics. The first failing step stops the run and the remaining steps
// are marked skipped. Steps share data through OperationState.
//
// The report pipeline has three steps:
//
//   - joined_table: loads the cached joined table or builds it from the four
//     sources and caches it
//   - export: writes an optional xlsx copy of the joined table
//   - report: draws the two charts and writes the regression summary
//
// Example usage:
//
//	tracer, err := operations.NewOperationTracer(providers)
//	manager, err := operations.NewPipeline(cfg, nil, tracer, os.Stdout, logger)
//	state, err := manager.Execute(ctx, "")
package operations
