package forecast

import (
	"fmt"

	apperrors "salesforecast/internal/errors"
	"salesforecast/pkg/contracts/domain"
)

// Split returns the first floor(len·ratio) rows as the training set and the rest as holdout.
// The series must already be sorted ascending.
func Split(series domain.DailySeries, ratio float64) (train, holdout domain.DailySeries, err error) {
	if ratio <= 0 || ratio > 1 {
		return nil, nil, apperrors.NewAppValidationError(fmt.Sprintf("train ratio %g must be in (0, 1]", ratio))
	}

	n := len(series)
	trainSize := int(float64(n) * ratio)
	if trainSize == 0 {
		return nil, nil, apperrors.NewInsufficientDataError(n, trainSize)
	}

	return series[:trainSize:trainSize], series[trainSize:], nil
}
