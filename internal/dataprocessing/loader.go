package dataprocessing

import (
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"sort"

	apperrors "salesforecast/internal/errors"
	"salesforecast/pkg/contracts/domain"
)

// Daily file columns
const (
	ColTotalSales       = "Total_Sales"
	ColTotalQuantity    = "Total_Quantity"
	ColTransactions     = "Transactions"
	ColTransactionCount = "Transaction_Count"
)

// LoadDailySeries reads a daily sales file. Date and Total_Sales are required;
// Total_Quantity and Transactions/Transaction_Count are optional and blank cells become null.
// The result is sorted ascending and rejects duplicate dates.
func LoadDailySeries(path string, logger *slog.Logger) (domain.DailySeries, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if !fileExists(path) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("daily sales file %s", path))
	}
	table, err := readCSV(path, "")
	if err != nil {
		return nil, err
	}
	source := filepath.Base(path)

	idx := columnIndex(table.Header)
	var missing []string
	for _, required := range []string{ColDate, ColTotalSales} {
		if !has(idx, required) {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewSchemaError(source, missing...)
	}

	qtyCol := -1
	if i, ok := idx[ColTotalQuantity]; ok {
		qtyCol = i
	}
	countCol, countName := -1, ColTransactionCount
	if i, ok := idx[ColTransactionCount]; ok {
		countCol = i
	} else if i, ok := idx[ColTransactions]; ok {
		countCol, countName = i, ColTransactions
	}

	series := make(domain.DailySeries, 0, len(table.Rows))
	seen := make(map[string]int, len(table.Rows))

	for n, row := range table.Rows {
		line := n + 2 // header is line 1

		rawDate := cell(row, idx[ColDate])
		date, err := ParseDate(rawDate)
		if err != nil {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("%s line %d: invalid date %q", source, line, rawDate), err).
				WithContext("line", line)
		}
		day := domain.TruncateDay(date)
		key := day.Format(domain.DateLayout)
		if prev, dup := seen[key]; dup {
			return nil, apperrors.NewAppValidationError(
				fmt.Sprintf("%s line %d: duplicate date %s (first seen on line %d)", source, line, key, prev)).
				WithContext("line", line)
		}
		seen[key] = line

		rawSales := cell(row, idx[ColTotalSales])
		sales, err := ParseNumber(rawSales)
		if err != nil {
			return nil, apperrors.NewNumericCoercionError(ColTotalSales, line, rawSales, err)
		}

		entry := domain.DailySales{Date: day, TotalSales: sales}

		if raw := cell(row, qtyCol); raw != "" {
			qty, err := ParseNumber(raw)
			if err != nil {
				return nil, apperrors.NewNumericCoercionError(ColTotalQuantity, line, raw, err)
			}
			entry.TotalQuantity = &qty
		}

		if raw := cell(row, countCol); raw != "" {
			count, err := ParseNumber(raw)
			if err != nil {
				return nil, apperrors.NewNumericCoercionError(countName, line, raw, err)
			}
			if count != math.Trunc(count) {
				return nil, apperrors.NewNumericCoercionError(countName, line, raw,
					fmt.Errorf("transaction count must be a whole number"))
			}
			c := int64(count)
			entry.TransactionCount = &c
		}

		series = append(series, entry)
	}

	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})

	logger.Info("Loaded daily series",
		slog.String("path", path),
		slog.Int("rows", len(series)),
		slog.Bool("has_quantity", qtyCol >= 0),
		slog.String("count_column", countNameOrNone(countCol, countName)))

	return series, nil
}

func countNameOrNone(col int, name string) string {
	if col < 0 {
		return "none"
	}
	return name
}

// LoadSalesHistory reads the cleaned record file written by the normalizer
func LoadSalesHistory(path string, logger *slog.Logger) (*domain.SalesTable, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if !fileExists(path) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("sales history file %s", path))
	}
	table, err := readCSV(path, "")
	if err != nil {
		return nil, err
	}
	source := filepath.Base(path)

	idx := columnIndex(table.Header)
	var missing []string
	for _, required := range []string{ColDate, ColSales} {
		if !has(idx, required) {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewSchemaError(source, missing...)
	}

	col := func(name string) int {
		if i, ok := idx[name]; ok {
			return i
		}
		return -1
	}

	out := &domain.SalesTable{
		Columns:     table.Header,
		HasOrderID:  has(idx, ColOrderID),
		HasQuantity: has(idx, ColQuantity),
		HasCity:     has(idx, ColCity),
		HasRegion:   has(idx, ColRegion),
		HasCategory: has(idx, ColCategory),
		Records:     make([]domain.SaleRecord, 0, len(table.Rows)),
	}

	for n, row := range table.Rows {
		line := n + 2

		rawDate := cell(row, idx[ColDate])
		date, err := ParseDate(rawDate)
		if err != nil {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("%s line %d: invalid date %q", source, line, rawDate), err).
				WithContext("line", line)
		}

		rawSales := cell(row, idx[ColSales])
		sales, err := ParseNumber(rawSales)
		if err != nil {
			return nil, apperrors.NewNumericCoercionError(ColSales, line, rawSales, err)
		}

		var qty int64
		if raw := cell(row, col(ColQuantity)); raw != "" {
			q, err := ParseNumber(raw)
			if err != nil {
				return nil, apperrors.NewNumericCoercionError(ColQuantity, line, raw, err)
			}
			qty = int64(q)
		}

		out.Records = append(out.Records, domain.SaleRecord{
			Date:     date,
			Sales:    sales,
			Quantity: qty,
			OrderID:  cell(row, col(ColOrderID)),
			Store:    cell(row, col(ColStore)),
			City:     cell(row, col(ColCity)),
			Region:   cell(row, col(ColRegion)),
			Category: cell(row, col(ColCategory)),
		})
	}

	logger.Info("Loaded sales history",
		slog.String("path", path),
		slog.Int("rows", len(out.Records)))

	return out, nil
}
