package exporter

import (
	"context"
	"log/slog"

	"salesforecast/internal/config"
	"salesforecast/pkg/contracts/domain"
)

// Forecast export headers
var (
	SalesWithForecastsHeaders = []string{
		"Date", "Type", "Total_Sales", "Forecast", "Forecast_Lower", "Forecast_Upper",
		"Transaction_Count", "Total_Quantity",
	}
	DailyForecastsHeaders   = []string{"Date", "Forecast", "Forecast_Lower", "Forecast_Upper", "Trend", "YearMonth"}
	MonthlyForecastsHeaders = []string{"YearMonth", "Forecast_Sales", "Forecast_Lower", "Forecast_Upper"}
)

// ForecastExporter writes the three forecast exports
type ForecastExporter struct {
	csvWriter *CSVWriter
	paths     *config.Paths
	logger    *slog.Logger
}

// NewForecastExporter creates a new forecast exporter
func NewForecastExporter(paths *config.Paths, logger *slog.Logger) *ForecastExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ForecastExporter{
		csvWriter: NewCSVWriter(paths, logger),
		paths:     paths,
		logger:    logger,
	}
}

// ExportAll writes the unified series, the daily future rows and the monthly rollup.
// Each file is replaced atomically; it returns the paths written so far.
func (e *ForecastExporter) ExportAll(ctx context.Context, unified []domain.UnifiedRow,
	future []domain.ForecastRow, monthly []domain.MonthlyForecast) ([]string, error) {
	var written []string

	if err := e.ExportUnified(unified); err != nil {
		return written, err
	}
	written = append(written, e.paths.SalesWithForecastsCSV)

	if err := e.ExportDaily(future); err != nil {
		return written, err
	}
	written = append(written, e.paths.DailyForecastsCSV)

	if err := e.ExportMonthly(monthly); err != nil {
		return written, err
	}
	written = append(written, e.paths.MonthlyForecastsCSV)

	e.logger.InfoContext(ctx, "Exported forecasts",
		slog.Int("unified_rows", len(unified)),
		slog.Int("daily_rows", len(future)),
		slog.Int("monthly_rows", len(monthly)))
	return written, nil
}

// ExportUnified writes sales_with_forecasts.csv
func (e *ForecastExporter) ExportUnified(rows []domain.UnifiedRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			formatDate(r.Date),
			string(r.Type),
			formatFloat(r.TotalSales),
			formatFloat(r.Forecast),
			formatFloat(r.Lower),
			formatFloat(r.Upper),
			formatOptionalInt(r.TransactionCount),
			formatOptionalFloat(r.TotalQuantity),
		})
	}
	return e.csvWriter.WriteSimpleCSV(e.paths.SalesWithForecastsCSV, SalesWithForecastsHeaders, records)
}

// ExportDaily writes daily_forecasts.csv
func (e *ForecastExporter) ExportDaily(rows []domain.ForecastRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			formatDate(r.Date),
			formatFloat(r.Forecast),
			formatFloat(r.Lower),
			formatFloat(r.Upper),
			formatFloat(r.Trend),
			r.YearMonth(),
		})
	}
	return e.csvWriter.WriteSimpleCSV(e.paths.DailyForecastsCSV, DailyForecastsHeaders, records)
}

// ExportMonthly writes monthly_forecasts.csv
func (e *ForecastExporter) ExportMonthly(rows []domain.MonthlyForecast) error {
	records := make([][]string, 0, len(rows))
	for _, m := range rows {
		records = append(records, []string{
			m.YearMonth,
			formatFloat(m.ForecastSales),
			formatFloat(m.Lower),
			formatFloat(m.Upper),
		})
	}
	return e.csvWriter.WriteSimpleCSV(e.paths.MonthlyForecastsCSV, MonthlyForecastsHeaders, records)
}
