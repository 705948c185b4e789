package exporter

import (
	"context"
	"log/slog"

	"salesforecast/internal/config"
	"salesforecast/pkg/contracts/domain"
)

// Analytics export headers
var (
	KPIHeaders      = []string{"Total_Revenue", "Average_Daily_Sales", "Total_Transactions", "Average_Transaction_Value"}
	CategoryHeaders = []string{"Category", "Total_Sales", "Total_Quantity"}
	StoreHeaders    = []string{"City", "Total_Sales", "Transactions"}
	RegionHeaders   = []string{"Region", "Total_Sales"}
)

// AnalyticsExporter writes the KPI summary and segment breakdowns
type AnalyticsExporter struct {
	csvWriter *CSVWriter
	paths     *config.Paths
	logger    *slog.Logger
}

// NewAnalyticsExporter creates a new analytics exporter
func NewAnalyticsExporter(paths *config.Paths, logger *slog.Logger) *AnalyticsExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsExporter{
		csvWriter: NewCSVWriter(paths, logger),
		paths:     paths,
		logger:    logger,
	}
}

// Export writes kpi_summary.csv plus one file per segment present in the report.
// Segments the source table lacked are skipped.
func (e *AnalyticsExporter) Export(ctx context.Context, report *domain.AnalyticsReport) ([]string, error) {
	var written []string

	kpi := report.KPIs
	if err := e.csvWriter.WriteSimpleCSV(e.paths.KPISummaryCSV, KPIHeaders, [][]string{{
		formatFloat(kpi.TotalRevenue),
		formatFloat(kpi.AverageDailySales),
		formatInt(kpi.TotalTransactions),
		formatFloat(kpi.AverageTransactionValue),
	}}); err != nil {
		return written, err
	}
	written = append(written, e.paths.KPISummaryCSV)

	if report.Categories != nil {
		records := make([][]string, 0, len(report.Categories))
		for _, c := range report.Categories {
			records = append(records, []string{c.Category, formatFloat(c.TotalSales), formatInt(c.TotalQuantity)})
		}
		if err := e.csvWriter.WriteSimpleCSV(e.paths.CategoryAnalysisCSV, CategoryHeaders, records); err != nil {
			return written, err
		}
		written = append(written, e.paths.CategoryAnalysisCSV)
	}

	if report.Stores != nil {
		records := make([][]string, 0, len(report.Stores))
		for _, s := range report.Stores {
			records = append(records, []string{s.City, formatFloat(s.TotalSales), formatInt(s.Transactions)})
		}
		if err := e.csvWriter.WriteSimpleCSV(e.paths.StoreAnalysisCSV, StoreHeaders, records); err != nil {
			return written, err
		}
		written = append(written, e.paths.StoreAnalysisCSV)
	}

	if report.Regions != nil {
		records := make([][]string, 0, len(report.Regions))
		for _, r := range report.Regions {
			records = append(records, []string{r.Region, formatFloat(r.TotalSales)})
		}
		if err := e.csvWriter.WriteSimpleCSV(e.paths.RegionAnalysisCSV, RegionHeaders, records); err != nil {
			return written, err
		}
		written = append(written, e.paths.RegionAnalysisCSV)
	}

	e.logger.InfoContext(ctx, "Exported analytics", slog.Int("files", len(written)))
	return written, nil
}
