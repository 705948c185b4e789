package domain

import (
	"time"
)

// Segment defaults applied by the normalizer when the source table has no such column
const (
	DefaultStore    = "All"
	DefaultRegion   = "Unknown"
	DefaultCategory = "Unknown"
)

// DateLayout is the canonical date format used in every exported file
const DateLayout = "2006-01-02"

// YearMonthLayout formats the month grouping key (lexicographically sortable)
const YearMonthLayout = "2006-01"

// SaleRecord is one cleaned row of the source sales table
type SaleRecord struct {
	Date     time.Time `json:"date" validate:"required"`
	Sales    float64   `json:"sales"`
	Quantity int64     `json:"quantity" validate:"min=0"`
	OrderID  string    `json:"order_id,omitempty"`
	Store    string    `json:"store"`
	City     string    `json:"city,omitempty"`
	Region   string    `json:"region"`
	Category string    `json:"category"`

	// Extra holds the remaining source columns keyed by header, passed through untouched
	Extra map[string]string `json:"extra,omitempty"`
}

// Day returns the record date truncated to the calendar day
func (r SaleRecord) Day() time.Time {
	return TruncateDay(r.Date)
}

// YearMonth returns the record's month grouping key
func (r SaleRecord) YearMonth() string {
	return r.Date.Format(YearMonthLayout)
}

// SalesTable is the cleaned record set together with the column order it was read in
type SalesTable struct {
	Columns     []string     `json:"columns"`
	Records     []SaleRecord `json:"records"`
	HasOrderID  bool         `json:"has_order_id"`
	HasQuantity bool         `json:"has_quantity"`
	HasCity     bool         `json:"has_city"`
	HasRegion   bool         `json:"has_region"`
	HasCategory bool         `json:"has_category"`
}

// DailySales is one calendar day of company-wide sales.
// TotalQuantity and TransactionCount are nil when the source did not carry them.
type DailySales struct {
	Date             time.Time `json:"date"`
	TotalSales       float64   `json:"total_sales" validate:"min=0"`
	TotalQuantity    *float64  `json:"total_quantity,omitempty"`
	TransactionCount *int64    `json:"transaction_count,omitempty"`
}

// DailySeries is ordered ascending by date with unique dates. Missing days are absent rows.
type DailySeries []DailySales

// Len returns the number of days in the series
func (s DailySeries) Len() int {
	return len(s)
}

// First returns the earliest date in the series
func (s DailySeries) First() time.Time {
	if len(s) == 0 {
		return time.Time{}
	}
	return s[0].Date
}

// Last returns the latest date in the series
func (s DailySeries) Last() time.Time {
	if len(s) == 0 {
		return time.Time{}
	}
	return s[len(s)-1].Date
}

// MonthlySales is the month rollup written by the normalizer
type MonthlySales struct {
	YearMonth       string  `json:"year_month"`
	MonthlySales    float64 `json:"monthly_sales"`
	MonthlyQuantity int64   `json:"monthly_quantity"`
}

// TruncateDay drops the clock part of t and pins it to UTC
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole number of calendar days from a to b
func DaysBetween(a, b time.Time) int {
	return int(TruncateDay(b).Sub(TruncateDay(a)).Hours() / 24)
}
