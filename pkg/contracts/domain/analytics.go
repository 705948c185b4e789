package domain

// KPISummary holds the scalar headline figures of the sales history
type KPISummary struct {
	TotalRevenue            float64 `json:"total_revenue"`
	AverageDailySales       float64 `json:"average_daily_sales"`
	TotalTransactions       int64   `json:"total_transactions"`
	AverageTransactionValue float64 `json:"average_transaction_value"`
}

// CategorySummary aggregates sales per product category
type CategorySummary struct {
	Category      string  `json:"category"`
	TotalSales    float64 `json:"total_sales"`
	TotalQuantity int64   `json:"total_quantity"`
}

// StoreSummary aggregates sales per store (city)
type StoreSummary struct {
	City         string  `json:"city"`
	TotalSales   float64 `json:"total_sales"`
	Transactions int64   `json:"transactions"`
}

// RegionSummary aggregates sales per region
type RegionSummary struct {
	Region     string  `json:"region"`
	TotalSales float64 `json:"total_sales"`
}

// AnalyticsReport bundles KPIs with the segment breakdowns.
// A nil segment slice means the source table had no such column.
type AnalyticsReport struct {
	KPIs       KPISummary        `json:"kpis"`
	Categories []CategorySummary `json:"categories,omitempty"`
	Stores     []StoreSummary    `json:"stores,omitempty"`
	Regions    []RegionSummary   `json:"regions,omitempty"`
}
