package forecast

import (
	"math"

	"salesforecast/pkg/contracts/domain"
)

// Evaluate scores predictions against holdout actuals on matching dates.
// MAPE is a percentage and skips zero actuals. Metrics are zero when no dates match.
func Evaluate(predictions []domain.ForecastRow, holdout domain.DailySeries) domain.HoldoutMetrics {
	byDate := make(map[string]float64, len(predictions))
	for _, p := range predictions {
		byDate[p.Date.Format(domain.DateLayout)] = p.Forecast
	}

	var (
		metrics       domain.HoldoutMetrics
		absSum, sqSum float64
		pctSum        float64
		pctRows       int
	)
	for _, h := range holdout {
		pred, ok := byDate[h.Date.Format(domain.DateLayout)]
		if !ok {
			continue
		}
		diff := pred - h.TotalSales
		absSum += math.Abs(diff)
		sqSum += diff * diff
		if h.TotalSales != 0 {
			pctSum += math.Abs(diff / h.TotalSales)
			pctRows++
		}
		metrics.Rows++
	}

	if metrics.Rows == 0 {
		return metrics
	}
	metrics.MAE = absSum / float64(metrics.Rows)
	metrics.RMSE = math.Sqrt(sqSum / float64(metrics.Rows))
	if pctRows > 0 {
		metrics.MAPE = 100 * pctSum / float64(pctRows)
	}
	return metrics
}
