package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	apperrors "salesforecast/internal/errors"
	"salesforecast/pkg/contracts/domain"
)

// AdditiveForecaster fits trend + yearly + weekly seasonality by penalized least squares
type AdditiveForecaster struct {
	opts   Options
	logger *slog.Logger
}

// NewAdditiveForecaster creates a forecaster with the given options
func NewAdditiveForecaster(opts Options, logger *slog.Logger) *AdditiveForecaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdditiveForecaster{opts: opts, logger: logger}
}

// additiveModel is a fitted AdditiveForecaster
type additiveModel struct {
	fs     featureSpace
	coef   []float64
	yScale float64
	sigma  float64 // residual RMS in scaled units
	cpRate float64 // changepoints per unit of scaled time
	cpMean float64 // mean |delta| of fitted changepoints
	z      float64
	first  time.Time
	last   time.Time
}

// Fit solves (XᵀX + Λ)β = Xᵀy on the max-abs scaled target
func (f *AdditiveForecaster) Fit(ctx context.Context, train domain.DailySeries) (Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.opts.Validate(); err != nil {
		return nil, apperrors.NewAppValidationError(err.Error())
	}
	if len(train) < 2 {
		return nil, apperrors.NewInsufficientDataError(len(train), len(train))
	}

	yScale := 0.0
	for _, d := range train {
		yScale = math.Max(yScale, math.Abs(d.TotalSales))
	}
	if yScale == 0 {
		yScale = 1
	}

	fs := newFeatureSpace(train, f.opts)
	n, p := len(train), fs.width()

	x := mat.NewDense(n, p, nil)
	y := mat.NewVecDense(n, nil)
	row := make([]float64, p)
	for i, d := range train {
		fs.row(d.Date, row)
		x.SetRow(i, row)
		y.SetVec(i, d.TotalSales/yScale)
	}

	gram := mat.NewSymDense(p, nil)
	gram.SymOuterK(1, x.T())
	for j, l := range fs.priorPrecision(f.opts) {
		gram.SetSym(j, j, gram.At(j, j)+l)
	}

	var rhs mat.VecDense
	rhs.MulVec(x.T(), y)

	var chol mat.Cholesky
	if ok := chol.Factorize(gram); !ok {
		return nil, apperrors.NewAppError(apperrors.ErrTypeValidation,
			"normal equations are not positive definite", nil)
	}
	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, &rhs); err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrTypeValidation, "solve normal equations", err)
	}

	var fitted mat.VecDense
	fitted.MulVec(x, &beta)
	var resid mat.VecDense
	resid.SubVec(y, &fitted)
	sigma := mat.Norm(&resid, 2) / math.Sqrt(float64(n))

	coef := make([]float64, p)
	copy(coef, beta.RawVector().Data)

	m := &additiveModel{
		fs:     fs,
		coef:   coef,
		yScale: yScale,
		sigma:  sigma,
		z:      distuv.UnitNormal.Quantile(0.5 + f.opts.IntervalWidth/2),
		first:  train.First(),
		last:   train.Last(),
	}
	if k := len(fs.changepoints); k > 0 {
		deltas := coef[2:fs.trendWidth()]
		abs := make([]float64, k)
		for i, d := range deltas {
			abs[i] = math.Abs(d)
		}
		m.cpMean = floats.Sum(abs) / float64(k)
		m.cpRate = float64(k)
	}

	f.logger.DebugContext(ctx, "Model fitted",
		slog.Int("rows", n),
		slog.Int("features", p),
		slog.Int("changepoints", len(fs.changepoints)),
		slog.Float64("y_scale", yScale),
		slog.Float64("residual_rms", sigma*yScale))

	return m, nil
}

// Predict evaluates the model over the training range plus horizonDays
func (m *additiveModel) Predict(ctx context.Context, horizonDays int) ([]domain.ForecastRow, error) {
	if horizonDays < 0 {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("horizon %d must not be negative", horizonDays))
	}

	total := domain.DaysBetween(m.first, m.last) + 1 + horizonDays
	rows := make([]domain.ForecastRow, 0, total)
	feat := make([]float64, m.fs.width())
	trendWidth := m.fs.trendWidth()

	for i := 0; i < total; i++ {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		date := m.first.AddDate(0, 0, i)
		m.fs.row(date, feat)

		trend := floats.Dot(feat[:trendWidth], m.coef[:trendWidth])
		point := floats.Dot(feat, m.coef)
		half := m.z * math.Sqrt(m.sigma*m.sigma+m.trendVariance(feat[1]))

		rows = append(rows, domain.ForecastRow{
			Date:     date,
			Forecast: point * m.yScale,
			Lower:    (point - half) * m.yScale,
			Upper:    (point + half) * m.yScale,
			Trend:    trend * m.yScale,
		})
	}
	return rows, nil
}

// trendVariance is the expected squared trend drift at scaled time t when future
// changepoints arrive at the fitted rate with Laplace magnitudes of the fitted mean size:
// E[Σ δ²(t-s)²] = rate · 2b² · (t-1)³ / 3 for t past the training range.
func (m *additiveModel) trendVariance(t float64) float64 {
	if t <= 1 || m.cpRate == 0 {
		return 0
	}
	d := t - 1
	return m.cpRate * 2 * m.cpMean * m.cpMean * d * d * d / 3
}
