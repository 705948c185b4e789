package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "salesforecast/internal/errors"
	"salesforecast/pkg/contracts/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dailySeries builds n consecutive days starting at start with values from fn
func dailySeries(start time.Time, n int, fn func(i int) float64) domain.DailySeries {
	series := make(domain.DailySeries, n)
	for i := range series {
		series[i] = domain.DailySales{Date: start.AddDate(0, 0, i), TotalSales: fn(i)}
	}
	return series
}

func fiveDays() domain.DailySeries {
	return dailySeries(date(2023, 1, 1), 5, func(i int) float64 { return float64(100 * (i + 1)) })
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name        string
		rows        int
		ratio       float64
		wantTrain   int
		wantHoldout int
	}{
		{name: "five rows", rows: 5, ratio: 0.8, wantTrain: 4, wantHoldout: 1},
		{name: "ten rows", rows: 10, ratio: 0.8, wantTrain: 8, wantHoldout: 2},
		{name: "floor", rows: 7, ratio: 0.8, wantTrain: 5, wantHoldout: 2},
		{name: "full ratio", rows: 3, ratio: 1, wantTrain: 3, wantHoldout: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := dailySeries(date(2023, 1, 1), tt.rows, func(i int) float64 { return float64(i) })

			train, holdout, err := Split(series, tt.ratio)
			require.NoError(t, err)
			assert.Len(t, train, tt.wantTrain)
			assert.Len(t, holdout, tt.wantHoldout)
			assert.Equal(t, series[:tt.wantTrain], train, "train is a prefix")
		})
	}

	t.Run("train ends on the fourth day", func(t *testing.T) {
		train, _, err := Split(fiveDays(), 0.8)
		require.NoError(t, err)
		assert.Equal(t, date(2023, 1, 4), train.Last())
	})

	t.Run("append to train does not clobber holdout", func(t *testing.T) {
		train, holdout, err := Split(fiveDays(), 0.8)
		require.NoError(t, err)
		_ = append(train, domain.DailySales{TotalSales: -1})
		assert.Equal(t, 500.0, holdout[0].TotalSales)
	})

	insufficient := []struct {
		name string
		rows int
	}{
		{name: "empty", rows: 0},
		{name: "single row", rows: 1},
	}
	for _, tt := range insufficient {
		t.Run(tt.name, func(t *testing.T) {
			series := dailySeries(date(2023, 1, 1), tt.rows, func(int) float64 { return 1 })
			_, _, err := Split(series, 0.8)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInsufficientData))
			assert.ErrorIs(t, err, apperrors.ErrInsufficientData)
		})
	}

	t.Run("invalid ratio", func(t *testing.T) {
		_, _, err := Split(fiveDays(), 0)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	})
}

func TestSelectFuture(t *testing.T) {
	rows := []domain.ForecastRow{
		{Date: date(2023, 1, 3)},
		{Date: date(2023, 1, 4)},
		{Date: date(2023, 1, 5)},
		{Date: date(2023, 1, 6)},
	}

	future := SelectFuture(rows, date(2023, 1, 4))
	require.Len(t, future, 2)
	assert.Equal(t, date(2023, 1, 5), future[0].Date)

	assert.Empty(t, SelectFuture(rows, date(2023, 2, 1)))
}

func TestReconcile(t *testing.T) {
	qty := 3.0
	count := int64(2)
	actuals := domain.DailySeries{
		{Date: date(2023, 1, 1), TotalSales: 100, TotalQuantity: &qty, TransactionCount: &count},
		{Date: date(2023, 1, 2), TotalSales: 200},
		{Date: date(2023, 1, 3), TotalSales: 300},
	}
	future := []domain.ForecastRow{
		{Date: date(2023, 1, 4), Forecast: 410, Lower: 400, Upper: 420},
		{Date: date(2023, 1, 3), Forecast: 310, Lower: 300, Upper: 320},
	}

	unified := Reconcile(actuals, future)
	require.Len(t, unified, len(actuals)+len(future))

	for i := 1; i < len(unified); i++ {
		assert.False(t, unified[i].Date.Before(unified[i-1].Date), "row %d out of order", i)
	}

	first := unified[0]
	assert.Equal(t, domain.SeriesTypeActual, first.Type)
	assert.Equal(t, 100.0, first.Forecast)
	assert.Equal(t, 100.0, first.Lower)
	assert.Equal(t, 100.0, first.Upper)
	assert.Equal(t, &count, first.TransactionCount)
	assert.Equal(t, &qty, first.TotalQuantity)

	// same date kept twice, actual first
	assert.Equal(t, date(2023, 1, 3), unified[2].Date)
	assert.Equal(t, domain.SeriesTypeActual, unified[2].Type)
	assert.Equal(t, date(2023, 1, 3), unified[3].Date)
	assert.Equal(t, domain.SeriesTypeForecast, unified[3].Type)
	assert.Equal(t, 310.0, unified[3].TotalSales, "forecast rows mirror the point estimate")
	assert.Nil(t, unified[3].TransactionCount)
	assert.Nil(t, unified[3].TotalQuantity)
}

func TestAggregateMonthly(t *testing.T) {
	t.Run("thirty March days", func(t *testing.T) {
		rows := make([]domain.ForecastRow, 30)
		for i := range rows {
			rows[i] = domain.ForecastRow{Date: date(2024, 3, 1+i), Forecast: 10, Lower: 8, Upper: 12}
		}

		months := AggregateMonthly(rows)
		require.Len(t, months, 1)
		assert.Equal(t, domain.MonthlyForecast{YearMonth: "2024-03", ForecastSales: 300, Lower: 240, Upper: 360}, months[0])
	})

	t.Run("sorted and sums match daily", func(t *testing.T) {
		rows := []domain.ForecastRow{
			{Date: date(2024, 4, 1), Forecast: 5, Lower: 4, Upper: 6},
			{Date: date(2024, 3, 31), Forecast: 1.5, Lower: 1, Upper: 2},
			{Date: date(2023, 12, 31), Forecast: 7, Lower: 6, Upper: 8},
			{Date: date(2024, 3, 1), Forecast: 2.5, Lower: 2, Upper: 3},
		}

		months := AggregateMonthly(rows)
		require.Len(t, months, 3)
		assert.Equal(t, []string{"2023-12", "2024-03", "2024-04"},
			[]string{months[0].YearMonth, months[1].YearMonth, months[2].YearMonth})
		assert.Equal(t, 4.0, months[1].ForecastSales)

		var daily, monthly float64
		for _, r := range rows {
			daily += r.Forecast
		}
		for _, m := range months {
			monthly += m.ForecastSales
		}
		assert.InDelta(t, daily, monthly, 1e-9)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, AggregateMonthly(nil))
	})
}

func TestRollupMonthly(t *testing.T) {
	months := []domain.MonthlyForecast{
		{YearMonth: "2024-04", ForecastSales: 1, Lower: 0.5, Upper: 1.5},
		{YearMonth: "2024-03", ForecastSales: 2, Lower: 1, Upper: 3},
		{YearMonth: "2024-04", ForecastSales: 3, Lower: 2, Upper: 4},
	}

	once := RollupMonthly(months)
	require.Len(t, once, 2)
	assert.Equal(t, domain.MonthlyForecast{YearMonth: "2024-04", ForecastSales: 4, Lower: 2.5, Upper: 5.5}, once[1])

	assert.Equal(t, once, RollupMonthly(once), "idempotent")
}

func TestCheckIntervals(t *testing.T) {
	tests := []struct {
		name    string
		row     domain.ForecastRow
		wantErr bool
	}{
		{name: "valid", row: domain.ForecastRow{Forecast: 10, Lower: 5, Upper: 15}},
		{name: "degenerate", row: domain.ForecastRow{Forecast: 10, Lower: 10, Upper: 10}},
		{name: "lower above upper", row: domain.ForecastRow{Forecast: 10, Lower: 15, Upper: 5}, wantErr: true},
		{name: "point below lower", row: domain.ForecastRow{Forecast: 1, Lower: 5, Upper: 15}, wantErr: true},
		{name: "point above upper", row: domain.ForecastRow{Forecast: 20, Lower: 5, Upper: 15}, wantErr: true},
		{name: "nan", row: domain.ForecastRow{Forecast: math.NaN(), Lower: 5, Upper: 15}, wantErr: true},
		{name: "inf", row: domain.ForecastRow{Forecast: 10, Lower: 5, Upper: math.Inf(1)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.row.Date = date(2024, 1, 1)
			err := CheckIntervals([]domain.ForecastRow{tt.row})
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInvalidInterval))

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "2024-01-01", appErr.Context["date"])
		})
	}
}

func TestEvaluate(t *testing.T) {
	predictions := []domain.ForecastRow{
		{Date: date(2023, 1, 4), Forecast: 90},
		{Date: date(2023, 1, 5), Forecast: 210},
		{Date: date(2023, 1, 6), Forecast: 5},
	}
	holdout := domain.DailySeries{
		{Date: date(2023, 1, 5), TotalSales: 200},
		{Date: date(2023, 1, 6), TotalSales: 0},
		{Date: date(2023, 1, 9), TotalSales: 50},
	}

	m := Evaluate(predictions, holdout)
	assert.Equal(t, 2, m.Rows)
	assert.InDelta(t, 7.5, m.MAE, 1e-9)
	assert.InDelta(t, math.Sqrt((100.0+25.0)/2), m.RMSE, 1e-9)
	assert.InDelta(t, 5.0, m.MAPE, 1e-9, "zero actuals are skipped")

	assert.Equal(t, domain.HoldoutMetrics{}, Evaluate(predictions, nil))
}

func TestOptions(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())

	bad := DefaultOptions()
	bad.IntervalWidth = 1
	assert.Error(t, bad.Validate())

	bad = DefaultOptions()
	bad.ChangepointPriorScale = 0
	assert.Error(t, bad.Validate())
}
