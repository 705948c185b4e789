package dataprocessing

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	apperrors "salesforecast/internal/errors"
	"salesforecast/pkg/contracts/domain"
)

// Source and canonical column names
const (
	ColOrderDate = "Order Date"
	ColDate      = "Date"
	ColSales     = "Sales"
	ColQuantity  = "Quantity"
	ColOrderID   = "Order ID"
	ColStore     = "Store"
	ColCity      = "City"
	ColRegion    = "Region"
	ColCategory  = "Category"
)

// NormalizeStats counts what happened to the input rows
type NormalizeStats struct {
	InputRows      int `json:"input_rows"`
	MissingValues  int `json:"missing_values"`
	BadDates       int `json:"bad_dates"`
	BadSales       int `json:"bad_sales"`
	CoercedQtyRows int `json:"coerced_quantity_rows"`
	OutputRows     int `json:"output_rows"`
}

// Dropped returns the number of rows removed by cleaning
func (s NormalizeStats) Dropped() int {
	return s.MissingValues + s.BadDates + s.BadSales
}

// Normalizer turns a raw sales table into cleaned records
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a normalizer
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// Normalize validates the schema, renames Order Date to Date, fills segment defaults,
// and drops rows whose Date or Sales is blank or unparseable.
func (n *Normalizer) Normalize(ctx context.Context, table *Table) (*domain.SalesTable, NormalizeStats, error) {
	stats := NormalizeStats{InputRows: len(table.Rows)}

	idx := columnIndex(table.Header)
	var missing []string
	for _, required := range []string{ColOrderDate, ColSales} {
		if _, ok := idx[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, stats, apperrors.NewSchemaError(filepath.Base(table.Source), missing...)
	}

	out := &domain.SalesTable{
		Columns:     normalizedColumns(table.Header, idx),
		HasOrderID:  has(idx, ColOrderID),
		HasQuantity: has(idx, ColQuantity),
		HasCity:     has(idx, ColCity),
		HasRegion:   has(idx, ColRegion),
		HasCategory: has(idx, ColCategory),
		Records:     make([]domain.SaleRecord, 0, len(table.Rows)),
	}

	get := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok {
			return ""
		}
		return cell(row, i)
	}

	for _, row := range table.Rows {
		rawDate := get(row, ColOrderDate)
		rawSales := get(row, ColSales)
		if rawDate == "" || rawSales == "" {
			stats.MissingValues++
			continue
		}

		date, err := ParseDateCell(rawDate, table.SerialDates)
		if err != nil {
			stats.BadDates++
			continue
		}

		sales, err := ParseNumber(rawSales)
		if err != nil {
			stats.BadSales++
			continue
		}

		record := domain.SaleRecord{
			Date:     date,
			Sales:    sales,
			OrderID:  get(row, ColOrderID),
			City:     get(row, ColCity),
			Region:   get(row, ColRegion),
			Category: get(row, ColCategory),
			Extra:    make(map[string]string),
		}

		if out.HasQuantity {
			rawQty := get(row, ColQuantity)
			record.Quantity = ParseQuantity(rawQty)
			if record.Quantity == 0 && rawQty != "" {
				if _, qerr := ParseNumber(rawQty); qerr != nil {
					stats.CoercedQtyRows++
				}
			}
		}

		if out.HasCity {
			record.Store = record.City
		} else {
			record.Store = domain.DefaultStore
		}
		if !out.HasRegion {
			record.Region = domain.DefaultRegion
		}
		if !out.HasCategory {
			record.Category = domain.DefaultCategory
		}

		for name, i := range idx {
			if !isTypedColumn(name) {
				record.Extra[name] = cell(row, i)
			}
		}

		out.Records = append(out.Records, record)
	}

	stats.OutputRows = len(out.Records)

	if stats.Dropped() > 0 {
		n.logger.WarnContext(ctx, "Dropped invalid rows",
			slog.Int("missing_values", stats.MissingValues),
			slog.Int("bad_dates", stats.BadDates),
			slog.Int("bad_sales", stats.BadSales))
	}
	if stats.CoercedQtyRows > 0 {
		n.logger.WarnContext(ctx, "Coerced non-numeric quantities to 0",
			slog.Int("rows", stats.CoercedQtyRows))
	}
	n.logger.InfoContext(ctx, "Normalized sales table",
		slog.Int("input_rows", stats.InputRows),
		slog.Int("output_rows", stats.OutputRows))

	return out, stats, nil
}

// normalizedColumns keeps the source order with Order Date renamed to Date,
// then appends Store, Region, Category and Quantity when the source lacked them.
func normalizedColumns(header []string, idx map[string]int) []string {
	cols := make([]string, 0, len(header)+4)
	seen := make(map[string]bool, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		// Skip duplicate headers; only the first occurrence is read
		if idx[name] != i {
			continue
		}
		if name == ColOrderDate {
			name = ColDate
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		cols = append(cols, name)
	}
	for _, extra := range []string{ColStore, ColRegion, ColCategory, ColQuantity} {
		if !seen[extra] {
			cols = append(cols, extra)
		}
	}
	return cols
}

func has(idx map[string]int, name string) bool {
	_, ok := idx[name]
	return ok
}

func isTypedColumn(name string) bool {
	switch name {
	case ColOrderDate, ColDate, ColSales, ColQuantity, ColOrderID, ColStore, ColCity, ColRegion, ColCategory:
		return true
	}
	return false
}
