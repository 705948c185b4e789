// Package exporter writes the pipeline's CSV outputs.
//
// Every file is replaced atomically: rows are written to a hidden temp file in
// the target directory and renamed over the target once flushed, so a failed
// run never leaves a half-written export behind.
//
// CSVWriter: core atomic writer with optional UTF-8 BOM and a streaming variant.
//
// SalesExporter: normalizer outputs (historical, cleaned, daily, monthly).
//
// AnalyticsExporter: KPI summary and category/store/region breakdowns.
//
// ForecastExporter: sales_with_forecasts, daily_forecasts and monthly_forecasts.
//
// Null values are written as empty cells and floats use the shortest
// round-trip representation.
//
// Example usage:
//
//	fe := exporter.NewForecastExporter(paths, logger)
//	written, err := fe.ExportAll(ctx, result.Unified, result.Future, result.Monthly)
package exporter
