// Package forecast turns a daily sales series into a year of daily and monthly forecasts.
//
// The package is pure: it never reads or writes files. Callers load a
// domain.DailySeries, hand it to Core.Run and export the Result.
//
// # Pipeline
//
//  1. Split: deterministic prefix split of the series by row count (default 80/20).
//  2. Fit: additive model on the training prefix. Trend is piecewise linear with
//     changepoints over the first part of the training range. Yearly and weekly
//     seasonality are Fourier series. Coefficients are a ridge solution whose
//     penalties are the Gaussian prior scales of each component.
//  3. Predict: one row per calendar day from the first training date through the
//     horizon, with point estimate, interval and trend component.
//  4. SelectFuture: rows strictly after the last training date.
//  5. Reconcile: actual rows and future rows merged into one date-sorted series.
//     Holdout dates appear twice, once per row type.
//  6. AggregateMonthly: future rows summed per YYYY-MM.
//
// # Architecture
//
//   - types.go: Options, the Forecaster/Model interfaces and Result
//   - split.go: training split
//   - features.go: trend, changepoint and Fourier design rows
//   - model.go: AdditiveForecaster and its fitted model
//   - interval.go: interval invariant checks
//   - reconcile.go: future selection and the unified series
//   - monthly.go: monthly aggregation
//   - evaluate.go: holdout error metrics
//   - core.go: orchestration
//
// # Usage Example
//
//	core := forecast.NewCore(forecast.DefaultOptions(), logger)
//	result, err := core.Run(ctx, series)
//	if err != nil {
//	    return err
//	}
//	// result.Unified, result.Future and result.Monthly feed the exporter
package forecast
