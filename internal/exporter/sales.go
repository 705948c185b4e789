package exporter

import (
	"context"
	"log/slog"

	"salesforecast/internal/config"
	"salesforecast/internal/dataprocessing"
	"salesforecast/pkg/contracts/domain"
)

// Normalizer output headers
var (
	DailyHeaders   = []string{"Date", "Total_Sales", "Total_Quantity", "Transactions"}
	MonthlyHeaders = []string{"YearMonth", "Monthly_Sales", "Monthly_Quantity"}
)

// SalesExporter writes the normalizer outputs under the data directory
type SalesExporter struct {
	csvWriter *CSVWriter
	paths     *config.Paths
	logger    *slog.Logger
}

// NewSalesExporter creates a new sales exporter
func NewSalesExporter(paths *config.Paths, logger *slog.Logger) *SalesExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SalesExporter{
		csvWriter: NewCSVWriter(paths, logger),
		paths:     paths,
		logger:    logger,
	}
}

// ExportCleaned writes the cleaned record table to both the historical and cleaned files
func (e *SalesExporter) ExportCleaned(ctx context.Context, table *domain.SalesTable) ([]string, error) {
	records := make([][]string, 0, len(table.Records))
	for _, r := range table.Records {
		records = append(records, recordToRow(r, table.Columns))
	}

	var written []string
	for _, path := range []string{e.paths.HistoricalCSV, e.paths.CleanedCSV} {
		if err := e.csvWriter.WriteSimpleCSV(path, table.Columns, records); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	e.logger.InfoContext(ctx, "Exported cleaned sales",
		slog.Int("rows", len(records)),
		slog.Int("columns", len(table.Columns)))
	return written, nil
}

// ExportDaily writes the per-day rollup
func (e *SalesExporter) ExportDaily(ctx context.Context, series domain.DailySeries) (string, error) {
	records := make([][]string, 0, len(series))
	for _, d := range series {
		records = append(records, []string{
			formatDate(d.Date),
			formatFloat(d.TotalSales),
			formatOptionalFloat(d.TotalQuantity),
			formatOptionalInt(d.TransactionCount),
		})
	}

	if err := e.csvWriter.WriteSimpleCSV(e.paths.DailyCSV, DailyHeaders, records); err != nil {
		return "", err
	}
	e.logger.InfoContext(ctx, "Exported daily sales", slog.Int("days", len(records)))
	return e.paths.DailyCSV, nil
}

// ExportMonthly writes the per-month rollup
func (e *SalesExporter) ExportMonthly(ctx context.Context, months []domain.MonthlySales) (string, error) {
	records := make([][]string, 0, len(months))
	for _, m := range months {
		records = append(records, []string{
			m.YearMonth,
			formatFloat(m.MonthlySales),
			formatInt(m.MonthlyQuantity),
		})
	}

	if err := e.csvWriter.WriteSimpleCSV(e.paths.MonthlyCSV, MonthlyHeaders, records); err != nil {
		return "", err
	}
	e.logger.InfoContext(ctx, "Exported monthly sales", slog.Int("months", len(records)))
	return e.paths.MonthlyCSV, nil
}

// recordToRow lays out a record in the table's column order; untyped columns come from Extra
func recordToRow(r domain.SaleRecord, columns []string) []string {
	row := make([]string, len(columns))
	for i, col := range columns {
		switch col {
		case dataprocessing.ColDate:
			row[i] = dataprocessing.FormatTimestamp(r.Date)
		case dataprocessing.ColSales:
			row[i] = formatFloat(r.Sales)
		case dataprocessing.ColQuantity:
			row[i] = formatInt(r.Quantity)
		case dataprocessing.ColOrderID:
			row[i] = r.OrderID
		case dataprocessing.ColStore:
			row[i] = r.Store
		case dataprocessing.ColCity:
			row[i] = r.City
		case dataprocessing.ColRegion:
			row[i] = r.Region
		case dataprocessing.ColCategory:
			row[i] = r.Category
		default:
			row[i] = r.Extra[col]
		}
	}
	return row
}
