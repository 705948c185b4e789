package forecast

import (
	"math"

	apperrors "salesforecast/internal/errors"
	"salesforecast/pkg/contracts/domain"
)

// CheckIntervals verifies lower <= point <= upper with finite values on every row
func CheckIntervals(rows []domain.ForecastRow) error {
	for _, r := range rows {
		if !finite(r.Forecast) || !finite(r.Lower) || !finite(r.Upper) ||
			r.Lower > r.Forecast || r.Forecast > r.Upper {
			return apperrors.NewInvalidIntervalError(r.Date.Format(domain.DateLayout), r.Forecast, r.Lower, r.Upper)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
