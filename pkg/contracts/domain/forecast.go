package domain

import (
	"time"
)

// SeriesType tags a row of the unified actual+forecast export
type SeriesType string

const (
	SeriesTypeActual   SeriesType = "Actual"
	SeriesTypeForecast SeriesType = "Forecast"
)

// ForecastRow is one day of model output
type ForecastRow struct {
	Date     time.Time `json:"date"`
	Forecast float64   `json:"forecast"`
	Lower    float64   `json:"forecast_lower"`
	Upper    float64   `json:"forecast_upper"`
	Trend    float64   `json:"trend"`
}

// YearMonth returns the row's month grouping key
func (r ForecastRow) YearMonth() string {
	return r.Date.Format(YearMonthLayout)
}

// UnifiedRow is one row of the combined actual+forecast series.
// For Forecast rows the count fields are nil.
type UnifiedRow struct {
	Date             time.Time  `json:"date"`
	Type             SeriesType `json:"type"`
	TotalSales       float64    `json:"total_sales"`
	Forecast         float64    `json:"forecast"`
	Lower            float64    `json:"forecast_lower"`
	Upper            float64    `json:"forecast_upper"`
	TransactionCount *int64     `json:"transaction_count,omitempty"`
	TotalQuantity    *float64   `json:"total_quantity,omitempty"`
}

// MonthlyForecast is the month rollup of future forecast rows
type MonthlyForecast struct {
	YearMonth     string  `json:"year_month"`
	ForecastSales float64 `json:"forecast_sales"`
	Lower         float64 `json:"forecast_lower"`
	Upper         float64 `json:"forecast_upper"`
}

// HoldoutMetrics scores model predictions against held-out actuals
type HoldoutMetrics struct {
	Rows int     `json:"rows"`
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	MAPE float64 `json:"mape"` // percent, zero actuals skipped
}
