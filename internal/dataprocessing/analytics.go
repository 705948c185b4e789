package dataprocessing

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"salesforecast/pkg/contracts/domain"
)

// AnalyticsEngine computes KPIs and segment breakdowns over cleaned records.
// Money is summed in fixed-point decimals and converted to float only at the end.
type AnalyticsEngine struct {
	logger *slog.Logger
}

// NewAnalyticsEngine creates an analytics engine
func NewAnalyticsEngine(logger *slog.Logger) *AnalyticsEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsEngine{logger: logger}
}

// Compute builds the analytics report. Segment slices are nil when the table lacks the column.
func (e *AnalyticsEngine) Compute(ctx context.Context, table *domain.SalesTable) *domain.AnalyticsReport {
	report := &domain.AnalyticsReport{
		KPIs: e.kpis(table),
	}

	if table.HasCategory {
		report.Categories = categoryBreakdown(table.Records)
	}
	if table.HasCity {
		report.Stores = storeBreakdown(table.Records, table.HasOrderID)
	}
	if table.HasRegion {
		report.Regions = regionBreakdown(table.Records)
	}

	e.logger.InfoContext(ctx, "Computed analytics",
		slog.Int("records", len(table.Records)),
		slog.Float64("total_revenue", report.KPIs.TotalRevenue),
		slog.Int64("total_transactions", report.KPIs.TotalTransactions),
		slog.Int("categories", len(report.Categories)),
		slog.Int("stores", len(report.Stores)),
		slog.Int("regions", len(report.Regions)))

	return report
}

func (e *AnalyticsEngine) kpis(table *domain.SalesTable) domain.KPISummary {
	revenue := decimal.Zero
	daily := make(map[time.Time]decimal.Decimal)
	orders := make(map[string]struct{})

	for _, r := range table.Records {
		amount := decimal.NewFromFloat(r.Sales)
		revenue = revenue.Add(amount)
		day := r.Day()
		daily[day] = daily[day].Add(amount)
		if r.OrderID != "" {
			orders[r.OrderID] = struct{}{}
		}
	}

	transactions := int64(len(table.Records))
	if table.HasOrderID {
		transactions = int64(len(orders))
	}

	kpi := domain.KPISummary{
		TotalRevenue:      revenue.InexactFloat64(),
		TotalTransactions: transactions,
	}
	if len(daily) > 0 {
		// Mean of per-day sums equals revenue over the number of distinct days
		kpi.AverageDailySales = revenue.Div(decimal.NewFromInt(int64(len(daily)))).InexactFloat64()
	}
	if transactions > 0 {
		kpi.AverageTransactionValue = revenue.Div(decimal.NewFromInt(transactions)).InexactFloat64()
	}
	return kpi
}

func categoryBreakdown(records []domain.SaleRecord) []domain.CategorySummary {
	sales := make(map[string]decimal.Decimal)
	qty := make(map[string]int64)
	for _, r := range records {
		sales[r.Category] = sales[r.Category].Add(decimal.NewFromFloat(r.Sales))
		qty[r.Category] += r.Quantity
	}

	out := make([]domain.CategorySummary, 0, len(sales))
	for _, key := range sortedKeys(sales) {
		out = append(out, domain.CategorySummary{
			Category:      key,
			TotalSales:    sales[key].InexactFloat64(),
			TotalQuantity: qty[key],
		})
	}
	return out
}

func storeBreakdown(records []domain.SaleRecord, hasOrderID bool) []domain.StoreSummary {
	sales := make(map[string]decimal.Decimal)
	rows := make(map[string]int64)
	orders := make(map[string]map[string]struct{})
	for _, r := range records {
		sales[r.City] = sales[r.City].Add(decimal.NewFromFloat(r.Sales))
		rows[r.City]++
		if r.OrderID != "" {
			if orders[r.City] == nil {
				orders[r.City] = make(map[string]struct{})
			}
			orders[r.City][r.OrderID] = struct{}{}
		}
	}

	out := make([]domain.StoreSummary, 0, len(sales))
	for _, key := range sortedKeys(sales) {
		count := rows[key]
		if hasOrderID {
			count = int64(len(orders[key]))
		}
		out = append(out, domain.StoreSummary{
			City:         key,
			TotalSales:   sales[key].InexactFloat64(),
			Transactions: count,
		})
	}
	return out
}

func regionBreakdown(records []domain.SaleRecord) []domain.RegionSummary {
	sales := make(map[string]decimal.Decimal)
	for _, r := range records {
		sales[r.Region] = sales[r.Region].Add(decimal.NewFromFloat(r.Sales))
	}

	out := make([]domain.RegionSummary, 0, len(sales))
	for _, key := range sortedKeys(sales) {
		out = append(out, domain.RegionSummary{
			Region:     key,
			TotalSales: sales[key].InexactFloat64(),
		})
	}
	return out
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
