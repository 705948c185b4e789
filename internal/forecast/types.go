package forecast

import (
	"context"
	"fmt"
	"time"

	"salesforecast/internal/config"
	"salesforecast/pkg/contracts/domain"
)

// Seasonal periods in days
const (
	YearlyPeriod = 365.25
	WeeklyPeriod = 7.0
)

// Options configures the split, the model and the horizon
type Options struct {
	TrainRatio    float64
	HorizonDays   int
	IntervalWidth float64

	YearlyOrder int
	WeeklyOrder int

	// Changepoints is the maximum number of potential trend changepoints,
	// spread over the first ChangepointRange fraction of the training rows
	Changepoints     int
	ChangepointRange float64

	// Prior scales (standard deviations) of the coefficient groups
	ChangepointPriorScale float64
	SeasonalityPriorScale float64
	TrendPriorScale       float64
}

// DefaultOptions returns the fixed model defaults
func DefaultOptions() Options {
	return Options{
		TrainRatio:            config.DefaultTrainRatio,
		HorizonDays:           config.DefaultHorizonDays,
		IntervalWidth:         config.DefaultIntervalWidth,
		YearlyOrder:           10,
		WeeklyOrder:           3,
		Changepoints:          25,
		ChangepointRange:      0.8,
		ChangepointPriorScale: 0.05,
		SeasonalityPriorScale: 10,
		TrendPriorScale:       5,
	}
}

// OptionsFromConfig maps the forecast configuration section onto Options
func OptionsFromConfig(cfg config.ForecastConfig) Options {
	return Options{
		TrainRatio:            cfg.TrainRatio,
		HorizonDays:           cfg.HorizonDays,
		IntervalWidth:         cfg.IntervalWidth,
		YearlyOrder:           cfg.YearlyOrder,
		WeeklyOrder:           cfg.WeeklyOrder,
		Changepoints:          cfg.Changepoints,
		ChangepointRange:      cfg.ChangepointRange,
		ChangepointPriorScale: cfg.ChangepointPriorScale,
		SeasonalityPriorScale: cfg.SeasonalityPriorScale,
		TrendPriorScale:       cfg.TrendPriorScale,
	}
}

// Validate checks option ranges
func (o Options) Validate() error {
	switch {
	case o.TrainRatio <= 0 || o.TrainRatio > 1:
		return fmt.Errorf("train ratio %g must be in (0, 1]", o.TrainRatio)
	case o.HorizonDays < 0:
		return fmt.Errorf("horizon %d must not be negative", o.HorizonDays)
	case o.IntervalWidth <= 0 || o.IntervalWidth >= 1:
		return fmt.Errorf("interval width %g must be in (0, 1)", o.IntervalWidth)
	case o.YearlyOrder < 0 || o.WeeklyOrder < 0 || o.Changepoints < 0:
		return fmt.Errorf("seasonal orders and changepoint count must not be negative")
	case o.Changepoints > 0 && (o.ChangepointRange <= 0 || o.ChangepointRange > 1):
		return fmt.Errorf("changepoint range %g must be in (0, 1]", o.ChangepointRange)
	case o.ChangepointPriorScale <= 0 || o.SeasonalityPriorScale <= 0 || o.TrendPriorScale <= 0:
		return fmt.Errorf("prior scales must be positive")
	}
	return nil
}

// Forecaster fits a model on a training series
type Forecaster interface {
	Fit(ctx context.Context, train domain.DailySeries) (Model, error)
}

// Model is a fitted forecaster. Predict returns one row per calendar day from the first
// training date through horizonDays past the last training date.
type Model interface {
	Predict(ctx context.Context, horizonDays int) ([]domain.ForecastRow, error)
}

// Result holds everything a forecast run exports
type Result struct {
	TrainRows   int
	HoldoutRows int
	// Cutoff is the last training date; future rows are strictly after it
	Cutoff  time.Time
	Unified []domain.UnifiedRow
	Future  []domain.ForecastRow
	Monthly []domain.MonthlyForecast
	Holdout domain.HoldoutMetrics
}
