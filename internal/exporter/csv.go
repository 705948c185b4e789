package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"salesforecast/internal/config"
	apperrors "salesforecast/internal/errors"
)

// CSVWriter writes CSV files atomically: rows go to a temp file in the target
// directory which is renamed over the target only after a successful flush.
type CSVWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{paths: paths, logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV replaces filePath with the given header and records
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	stream, err := w.createStream(filePath, options.Headers, options.BOMPrefix)
	if err != nil {
		return err
	}

	for i, record := range options.Records {
		if err := stream.WriteRecord(record); err != nil {
			stream.Abort()
			return apperrors.NewStorageError(fmt.Sprintf("write record %d to %s", i, stream.target), err)
		}
	}

	if err := stream.Close(); err != nil {
		return err
	}

	w.logger.Info("Wrote CSV file",
		slog.String("full_path", stream.target),
		slog.Int("record_count", len(options.Records)))
	return nil
}

// WriteSimpleCSV writes a CSV file with headers and records and no BOM
func (w *CSVWriter) WriteSimpleCSV(filePath string, headers []string, records [][]string) error {
	return w.WriteCSV(filePath, WriteOptions{
		Headers: headers,
		Records: records,
	})
}

// StreamWriter writes rows to a temp file and publishes it on Close
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
	target string
	rows   int
	done   bool
	logger *slog.Logger
}

// CreateStreamWriter opens a streaming writer for filePath. Nothing is visible at
// filePath until Close succeeds; Abort discards the partial output.
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string) (*StreamWriter, error) {
	return w.createStream(filePath, headers, false)
}

func (w *CSVWriter) createStream(filePath string, headers []string, bom bool) (*StreamWriter, error) {
	fullPath := w.resolvePath(filePath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("create directory %s", dir), err)
	}

	file, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".tmp-*")
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("create temp file for %s", fullPath), err)
	}

	// CreateTemp uses 0600
	if err := file.Chmod(0644); err != nil {
		file.Close()
		os.Remove(file.Name())
		return nil, apperrors.NewStorageError(fmt.Sprintf("chmod temp file for %s", fullPath), err)
	}

	s := &StreamWriter{
		file:   file,
		writer: csv.NewWriter(file),
		target: fullPath,
		logger: w.logger,
	}

	if bom {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			s.Abort()
			return nil, apperrors.NewStorageError(fmt.Sprintf("write BOM to %s", fullPath), err)
		}
	}

	if len(headers) > 0 {
		if err := s.writer.Write(headers); err != nil {
			s.Abort()
			return nil, apperrors.NewStorageError(fmt.Sprintf("write headers to %s", fullPath), err)
		}
	}

	return s, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	if err := s.writer.Write(record); err != nil {
		return err
	}
	s.rows++
	return nil
}

// Target returns the path the stream publishes to
func (s *StreamWriter) Target() string {
	return s.target
}

// Close flushes the temp file and renames it over the target
func (s *StreamWriter) Close() error {
	if s.done {
		return nil
	}

	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.Abort()
		return apperrors.NewStorageError(fmt.Sprintf("flush %s", s.target), err)
	}
	if err := s.file.Sync(); err != nil {
		s.Abort()
		return apperrors.NewStorageError(fmt.Sprintf("sync %s", s.target), err)
	}
	if err := s.file.Close(); err != nil {
		s.Abort()
		return apperrors.NewStorageError(fmt.Sprintf("close %s", s.target), err)
	}
	if err := os.Rename(s.file.Name(), s.target); err != nil {
		s.Abort()
		return apperrors.NewStorageError(fmt.Sprintf("publish %s", s.target), err)
	}

	s.done = true
	s.logger.Debug("Published CSV file",
		slog.String("full_path", s.target),
		slog.Int("rows", s.rows))
	return nil
}

// Abort discards the temp file. The target is left untouched.
func (s *StreamWriter) Abort() {
	if s.done {
		return
	}
	s.done = true
	s.file.Close()
	if err := os.Remove(s.file.Name()); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("Failed to remove temp file",
			slog.String("temp_path", s.file.Name()),
			slog.String("error", err.Error()))
	}
}

// resolvePath maps relative paths onto the data or exports directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.paths == nil {
		return filePath
	}

	if rest, ok := strings.CutPrefix(filepath.ToSlash(filePath), "data/"); ok {
		return filepath.Join(w.paths.DataDir, filepath.FromSlash(rest))
	}
	return filepath.Join(w.paths.ExportsDir, filePath)
}
