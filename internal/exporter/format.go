package exporter

import (
	"strconv"
	"time"

	"salesforecast/pkg/contracts/domain"
)

// formatFloat writes the shortest representation that round-trips
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatOptionalFloat writes nil as an empty cell
func formatOptionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}

// formatOptionalInt writes nil as an empty cell
func formatOptionalInt(i *int64) string {
	if i == nil {
		return ""
	}
	return formatInt(*i)
}

func formatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}
