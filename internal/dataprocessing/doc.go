// Package dataprocessing turns a raw sales table into the normalized record set,
// daily and monthly rollups, and the KPI and segment analytics.
//
// # Architecture
//
// The package is organized into four components:
//
// 1. Reader: loads CSV (UTF-8 with a legacy-encoding fallback) or XLSX into a raw table
// 2. Normalizer: validates the schema, cleans rows and fills segment defaults
// 3. Rollups: company-wide daily and monthly sums
// 4. Analytics: KPIs and per-category, per-store and per-region breakdowns
//
// The loaders read the normalizer's own outputs back for the later stages.
//
// # Usage
//
//	table, err := dataprocessing.ReadTable(path, dataprocessing.ReaderOptions{}, logger)
//	if err != nil {
//	    return err
//	}
//	sales, stats, err := dataprocessing.NewNormalizer(logger).Normalize(ctx, table)
//	daily := dataprocessing.DailyRollup(sales)
//
// Analytics over the historical file:
//
//	history, err := dataprocessing.LoadSalesHistory(paths.HistoricalCSV, logger)
//	report := dataprocessing.NewAnalyticsEngine(logger).Compute(ctx, history)
package dataprocessing
