package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	apperrors "salesforecast/internal/errors"
	"salesforecast/pkg/contracts/domain"
)

// Core orchestrates split, fit, predict, selection, reconciliation and monthly rollup
type Core struct {
	opts       Options
	forecaster Forecaster
	logger     *slog.Logger
}

// NewCore creates a core backed by the additive forecaster
func NewCore(opts Options, logger *slog.Logger) *Core {
	if logger == nil {
		logger = slog.Default()
	}
	return NewCoreWithForecaster(opts, NewAdditiveForecaster(opts, logger), logger)
}

// NewCoreWithForecaster creates a core around a custom forecaster
func NewCoreWithForecaster(opts Options, f Forecaster, logger *slog.Logger) *Core {
	if logger == nil {
		logger = slog.Default()
	}
	return &Core{opts: opts, forecaster: f, logger: logger}
}

// Run produces the unified, daily-future and monthly forecast sets for a daily series.
// The series may arrive in any order; dates must be unique.
func (c *Core) Run(ctx context.Context, series domain.DailySeries) (*Result, error) {
	start := time.Now()

	if err := c.opts.Validate(); err != nil {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("forecast options: %v", err))
	}

	series, err := sortedByDate(series)
	if err != nil {
		return nil, err
	}

	train, holdout, err := Split(series, c.opts.TrainRatio)
	if err != nil {
		return nil, err
	}
	if len(train) < 2 {
		return nil, apperrors.NewInsufficientDataError(len(series), len(train))
	}

	c.logger.InfoContext(ctx, "Starting forecast",
		slog.Int("rows", len(series)),
		slog.Int("train_rows", len(train)),
		slog.Int("holdout_rows", len(holdout)),
		slog.String("train_start", train.First().Format(domain.DateLayout)),
		slog.String("train_end", train.Last().Format(domain.DateLayout)),
		slog.Int("horizon_days", c.opts.HorizonDays))

	model, err := c.forecaster.Fit(ctx, train)
	if err != nil {
		return nil, fmt.Errorf("fit model: %w", err)
	}

	predictions, err := model.Predict(ctx, c.opts.HorizonDays)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if err := CheckIntervals(predictions); err != nil {
		return nil, err
	}

	cutoff := train.Last()
	future := SelectFuture(predictions, cutoff)

	result := &Result{
		TrainRows:   len(train),
		HoldoutRows: len(holdout),
		Cutoff:      cutoff,
		Future:      future,
		Unified:     Reconcile(series, future),
		Monthly:     AggregateMonthly(future),
		Holdout:     Evaluate(predictions, holdout),
	}

	c.logger.InfoContext(ctx, "Forecast complete",
		slog.Int("predicted_rows", len(predictions)),
		slog.Int("future_rows", len(result.Future)),
		slog.Int("unified_rows", len(result.Unified)),
		slog.Int("months", len(result.Monthly)),
		slog.Int("holdout_matched", result.Holdout.Rows),
		slog.Float64("holdout_mae", result.Holdout.MAE),
		slog.Float64("holdout_mape", result.Holdout.MAPE),
		slog.Duration("duration", time.Since(start)))

	return result, nil
}

// sortedByDate returns an ascending copy of series, rejecting duplicate days
func sortedByDate(series domain.DailySeries) (domain.DailySeries, error) {
	out := make(domain.DailySeries, len(series))
	copy(out, series)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	for i := 1; i < len(out); i++ {
		if domain.TruncateDay(out[i].Date).Equal(domain.TruncateDay(out[i-1].Date)) {
			return nil, apperrors.NewAppValidationError(
				fmt.Sprintf("duplicate date %s in daily series", out[i].Date.Format(domain.DateLayout)))
		}
	}
	return out, nil
}
