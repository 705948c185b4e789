package dataprocessing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// dateLayouts are tried in order. Month-first slash dates follow the US convention.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"1/2/2006",
	"01/02/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/06",
	"2006/01/02",
}

// maxExcelSerial is 9999-12-31 in the 1900 date system
const maxExcelSerial = 2958465

// ParseDate parses date strings in the formats found in sales exports
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, value); err == nil {
			return date, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", value)
}

// ParseDateCell parses a date that may also be a raw spreadsheet serial number
func ParseDateCell(value string, allowSerial bool) (time.Time, error) {
	date, err := ParseDate(value)
	if err == nil || !allowSerial {
		return date, err
	}

	serial, serr := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if serr != nil || serial <= 0 || serial > maxExcelSerial {
		return time.Time{}, err
	}
	return excelize.ExcelDateToTime(serial, false)
}

// ParseNumber parses a finite decimal number. Blank cells are an error.
func ParseNumber(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty value")
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, fmt.Errorf("non-finite value %q", value)
	}
	return parsed, nil
}

// ParseQuantity coerces a quantity cell to an integer; blank or unparseable becomes 0
func ParseQuantity(value string) int64 {
	parsed, err := ParseNumber(value)
	if err != nil {
		return 0
	}
	return int64(parsed)
}

// FormatTimestamp renders a record date, dropping the clock when it is midnight
func FormatTimestamp(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

// columnIndex maps trimmed header names to their position; the first occurrence wins
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, ok := idx[name]; !ok {
			idx[name] = i
		}
	}
	return idx
}

// cell returns row[i] trimmed, or "" when the row is short or i is -1
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
