package forecast

import (
	"sort"
	"time"

	"salesforecast/pkg/contracts/domain"
)

// SelectFuture keeps rows dated strictly after cutoff, preserving order
func SelectFuture(rows []domain.ForecastRow, cutoff time.Time) []domain.ForecastRow {
	out := make([]domain.ForecastRow, 0, len(rows))
	for _, r := range rows {
		if r.Date.After(cutoff) {
			out = append(out, r)
		}
	}
	return out
}

// Reconcile concatenates actual rows with future forecast rows and stable-sorts by date.
// Actual rows mirror Total_Sales into the forecast columns; forecast rows mirror the point
// estimate into Total_Sales and leave the count columns null. Dates present in both inputs
// yield two rows, Actual first.
func Reconcile(actuals domain.DailySeries, future []domain.ForecastRow) []domain.UnifiedRow {
	out := make([]domain.UnifiedRow, 0, len(actuals)+len(future))

	for _, a := range actuals {
		out = append(out, domain.UnifiedRow{
			Date:             a.Date,
			Type:             domain.SeriesTypeActual,
			TotalSales:       a.TotalSales,
			Forecast:         a.TotalSales,
			Lower:            a.TotalSales,
			Upper:            a.TotalSales,
			TransactionCount: a.TransactionCount,
			TotalQuantity:    a.TotalQuantity,
		})
	}
	for _, f := range future {
		out = append(out, domain.UnifiedRow{
			Date:       f.Date,
			Type:       domain.SeriesTypeForecast,
			TotalSales: f.Forecast,
			Forecast:   f.Forecast,
			Lower:      f.Lower,
			Upper:      f.Upper,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
