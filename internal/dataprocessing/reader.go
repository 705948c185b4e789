package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	apperrors "salesforecast/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a raw header + rows view of a CSV or spreadsheet
type Table struct {
	Source string
	Header []string
	Rows   [][]string
	// SerialDates is set when cells are raw spreadsheet values, so date columns may hold serial numbers
	SerialDates bool
	// Encoding records the charset the file was decoded with
	Encoding string
}

// ReaderOptions controls how input files are decoded
type ReaderOptions struct {
	FallbackEncoding string
	SheetName        string
}

// ReadTable reads a .csv or .xlsx file into a Table
func ReadTable(path string, opts ReaderOptions, logger *slog.Logger) (*Table, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !fileExists(path) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("input file %s", path))
	}

	var (
		table *Table
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		table, err = readXLSX(path, opts.SheetName)
	default:
		table, err = readCSV(path, opts.FallbackEncoding)
	}
	if err != nil {
		return nil, err
	}

	for i := range table.Header {
		table.Header[i] = strings.TrimSpace(table.Header[i])
	}

	logger.Info("Read input table",
		slog.String("path", path),
		slog.String("encoding", table.Encoding),
		slog.Int("columns", len(table.Header)),
		slog.Int("rows", len(table.Rows)))

	return table, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func readCSV(path, fallback string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read input file", err).WithContext("path", path)
	}

	raw = bytes.TrimPrefix(raw, utf8BOM)
	enc := "utf-8"
	if !utf8.Valid(raw) {
		decoder, name := fallbackDecoder(fallback)
		decoded, derr := decoder.NewDecoder().Bytes(raw)
		if derr != nil {
			return nil, apperrors.NewParsingError("failed to decode input file", derr).
				WithContext("path", path).
				WithContext("encoding", name)
		}
		raw = decoded
		enc = name
	}

	records, err := parseCSV(bytes.NewReader(raw))
	if err != nil {
		return nil, apperrors.NewParsingError("failed to parse CSV", err).WithContext("path", path)
	}
	if len(records) == 0 {
		return nil, apperrors.NewSchemaError(filepath.Base(path), "header")
	}

	return &Table{
		Source:   path,
		Header:   records[0],
		Rows:     records[1:],
		Encoding: enc,
	}, nil
}

func parseCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.ReadAll()
}

func fallbackDecoder(name string) (encoding.Encoding, string) {
	switch strings.ToLower(name) {
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1, "iso-8859-1"
	default:
		return charmap.Windows1252, "windows-1252"
	}
}

func readXLSX(path, sheetName string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	var rows [][]string
	if sheetName != "" {
		rows, err = f.GetRows(sheetName, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("sheet %q in %s", sheetName, path))
		}
	} else {
		// First sheet that has any rows
		for _, name := range f.GetSheetList() {
			candidate, gerr := f.GetRows(name, excelize.Options{RawCellValue: true})
			if gerr == nil && len(candidate) > 0 {
				rows = candidate
				sheetName = name
				break
			}
		}
	}
	if len(rows) == 0 {
		return nil, apperrors.NewSchemaError(filepath.Base(path), "header")
	}

	// GetRows drops trailing empty cells; pad rows to the header width
	width := len(rows[0])
	for i := 1; i < len(rows); i++ {
		for len(rows[i]) < width {
			rows[i] = append(rows[i], "")
		}
	}

	return &Table{
		Source:      path + "#" + sheetName,
		Header:      rows[0],
		Rows:        rows[1:],
		SerialDates: true,
		Encoding:    "xlsx",
	}, nil
}
