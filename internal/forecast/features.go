package forecast

import (
	"math"
	"time"

	"salesforecast/pkg/contracts/domain"
)

const secondsPerDay = 86400.0

// featureSpace lays out one design row:
//
//	[1, t, (t-s_1)+ ... (t-s_k)+, yearly sin/cos ..., weekly sin/cos ...]
//
// where t is time scaled so the training range maps onto [0, 1].
type featureSpace struct {
	start        time.Time
	spanDays     float64
	changepoints []float64
	yearlyOrder  int
	weeklyOrder  int
}

func newFeatureSpace(train domain.DailySeries, opts Options) featureSpace {
	fs := featureSpace{
		start:       train.First(),
		spanDays:    float64(domain.DaysBetween(train.First(), train.Last())),
		yearlyOrder: opts.YearlyOrder,
		weeklyOrder: opts.WeeklyOrder,
	}
	fs.changepoints = placeChangepoints(train, opts, fs)
	return fs
}

// placeChangepoints spreads up to opts.Changepoints candidates evenly over the rows in
// the first ChangepointRange of the training set, skipping the very first row
func placeChangepoints(train domain.DailySeries, opts Options, fs featureSpace) []float64 {
	histSize := int(math.Floor(float64(len(train)) * opts.ChangepointRange))
	count := opts.Changepoints
	if count > histSize-1 {
		count = histSize - 1
	}
	if count <= 0 {
		return nil
	}

	points := make([]float64, 0, count)
	step := float64(histSize-1) / float64(count)
	for i := 1; i <= count; i++ {
		idx := int(math.Round(float64(i) * step))
		points = append(points, fs.scaledTime(train[idx].Date))
	}
	return points
}

func (fs featureSpace) scaledTime(d time.Time) float64 {
	if fs.spanDays == 0 {
		return 0
	}
	return float64(domain.DaysBetween(fs.start, d)) / fs.spanDays
}

// trendWidth is the number of leading trend columns (intercept, slope, changepoints)
func (fs featureSpace) trendWidth() int {
	return 2 + len(fs.changepoints)
}

func (fs featureSpace) width() int {
	return fs.trendWidth() + 2*fs.yearlyOrder + 2*fs.weeklyOrder
}

// row writes the design row for d into dst, which must have width() elements
func (fs featureSpace) row(d time.Time, dst []float64) {
	t := fs.scaledTime(d)
	dst[0] = 1
	dst[1] = t
	for j, s := range fs.changepoints {
		dst[2+j] = math.Max(t-s, 0)
	}

	days := float64(d.Unix()) / secondsPerDay
	col := fs.trendWidth()
	col = fourier(days, YearlyPeriod, fs.yearlyOrder, dst, col)
	fourier(days, WeeklyPeriod, fs.weeklyOrder, dst, col)
}

func fourier(days, period float64, order int, dst []float64, col int) int {
	for i := 1; i <= order; i++ {
		x := 2 * math.Pi * float64(i) * days / period
		dst[col] = math.Sin(x)
		dst[col+1] = math.Cos(x)
		col += 2
	}
	return col
}

// priorPrecision returns the ridge penalty for each column: 1/scale² of its prior
func (fs featureSpace) priorPrecision(opts Options) []float64 {
	lambda := make([]float64, fs.width())
	trend := 1 / (opts.TrendPriorScale * opts.TrendPriorScale)
	cp := 1 / (opts.ChangepointPriorScale * opts.ChangepointPriorScale)
	season := 1 / (opts.SeasonalityPriorScale * opts.SeasonalityPriorScale)

	lambda[0], lambda[1] = trend, trend
	for j := 2; j < fs.trendWidth(); j++ {
		lambda[j] = cp
	}
	for j := fs.trendWidth(); j < len(lambda); j++ {
		lambda[j] = season
	}
	return lambda
}
