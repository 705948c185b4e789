package forecast

import (
	"sort"

	"salesforecast/pkg/contracts/domain"
)

// AggregateMonthly sums point, lower and upper of daily rows per YYYY-MM, sorted by month
func AggregateMonthly(rows []domain.ForecastRow) []domain.MonthlyForecast {
	groups := make(map[string]*domain.MonthlyForecast)
	for _, r := range rows {
		key := r.YearMonth()
		g, ok := groups[key]
		if !ok {
			g = &domain.MonthlyForecast{YearMonth: key}
			groups[key] = g
		}
		g.ForecastSales += r.Forecast
		g.Lower += r.Lower
		g.Upper += r.Upper
	}
	return sortedMonths(groups)
}

// RollupMonthly regroups already aggregated rows by month. Applying it to its own
// output returns the same rows.
func RollupMonthly(months []domain.MonthlyForecast) []domain.MonthlyForecast {
	groups := make(map[string]*domain.MonthlyForecast)
	for _, m := range months {
		g, ok := groups[m.YearMonth]
		if !ok {
			g = &domain.MonthlyForecast{YearMonth: m.YearMonth}
			groups[m.YearMonth] = g
		}
		g.ForecastSales += m.ForecastSales
		g.Lower += m.Lower
		g.Upper += m.Upper
	}
	return sortedMonths(groups)
}

func sortedMonths(groups map[string]*domain.MonthlyForecast) []domain.MonthlyForecast {
	out := make([]domain.MonthlyForecast, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].YearMonth < out[j].YearMonth
	})
	return out
}
