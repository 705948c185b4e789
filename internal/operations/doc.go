// Package operations runs the sales pipeline as an ordered list of stages.
//
// The pipeline has three stages, executed strictly in order:
//
//   - ingest: reads the raw sales table, normalizes it and writes the cleaned,
//     daily and monthly files under the data directory
//   - analytics: computes KPIs and segment breakdowns from the cleaned history
//   - forecast: fits the model on the daily series and writes the reconciled
//     forecast exports
//
// Stages communicate through files only. Each stage runs under its own timeout and
// OpenTelemetry span; the first failure stops the run and marks the remaining stages
// skipped. Failures are returned as *OperationError wrapping the underlying
// *errors.AppError, so callers can still map them to exit codes.
//
// Example usage:
//
//	manager, err := operations.NewPipelineManager(operations.NewConfig(cfg.Pipeline), opts, providers, logger)
//	if err != nil {
//		return err
//	}
//	resp, err := manager.Execute(ctx, operations.OperationRequest{ID: runID})
package operations
