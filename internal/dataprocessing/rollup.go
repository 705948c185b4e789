package dataprocessing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"salesforecast/pkg/contracts/domain"
)

type dayBucket struct {
	sales    decimal.Decimal
	quantity int64
	rows     int64
	orders   map[string]struct{}
}

// DailyRollup sums cleaned records per calendar day. Transactions count distinct
// order IDs when the table has them and rows otherwise.
func DailyRollup(table *domain.SalesTable) domain.DailySeries {
	buckets := make(map[time.Time]*dayBucket)
	for _, r := range table.Records {
		day := r.Day()
		b, ok := buckets[day]
		if !ok {
			b = &dayBucket{sales: decimal.Zero, orders: make(map[string]struct{})}
			buckets[day] = b
		}
		b.sales = b.sales.Add(decimal.NewFromFloat(r.Sales))
		b.quantity += r.Quantity
		b.rows++
		if r.OrderID != "" {
			b.orders[r.OrderID] = struct{}{}
		}
	}

	series := make(domain.DailySeries, 0, len(buckets))
	for day, b := range buckets {
		qty := float64(b.quantity)
		count := b.rows
		if table.HasOrderID {
			count = int64(len(b.orders))
		}
		series = append(series, domain.DailySales{
			Date:             day,
			TotalSales:       b.sales.InexactFloat64(),
			TotalQuantity:    &qty,
			TransactionCount: &count,
		})
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})
	return series
}

// MonthlyRollup sums cleaned records per YYYY-MM
func MonthlyRollup(table *domain.SalesTable) []domain.MonthlySales {
	sales := make(map[string]decimal.Decimal)
	quantity := make(map[string]int64)
	for _, r := range table.Records {
		key := r.YearMonth()
		sales[key] = sales[key].Add(decimal.NewFromFloat(r.Sales))
		quantity[key] += r.Quantity
	}

	months := make([]domain.MonthlySales, 0, len(sales))
	for key, total := range sales {
		months = append(months, domain.MonthlySales{
			YearMonth:       key,
			MonthlySales:    total.InexactFloat64(),
			MonthlyQuantity: quantity[key],
		})
	}

	sort.Slice(months, func(i, j int) bool {
		return months[i].YearMonth < months[j].YearMonth
	})
	return months
}
