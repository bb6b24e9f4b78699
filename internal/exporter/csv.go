package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"datastudio/pkg/contracts/domain"
)

// CSVWriter serializes cleaned tables to CSV.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance. A nil logger falls back
// to slog.Default.
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// Bytes renders the table as UTF-8 CSV: one header row of column names
// followed by one row per table row. Cells use their display form, so
// numbers keep their minimal decimal representation, timestamps render
// as dates when their time component is midnight, and missing cells
// become empty fields.
func (w *CSVWriter) Bytes(ctx context.Context, table domain.Table) ([]byte, error) {
	return w.BytesWithOptions(ctx, table, WriteOptions{})
}

// BytesWithOptions is Bytes with explicit writing options.
func (w *CSVWriter) BytesWithOptions(ctx context.Context, table domain.Table, options WriteOptions) ([]byte, error) {
	var buf bytes.Buffer

	// BOM helps Excel recognize UTF-8; downloads default to plain UTF-8.
	if options.BOMPrefix {
		buf.Write([]byte{0xEF, 0xBB, 0xBF})
	}

	writer := csv.NewWriter(&buf)
	if err := writer.Write(table.ColumnNames()); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	rows := table.RowCount()
	record := make([]string, table.ColumnCount())
	for i := 0; i < rows; i++ {
		for j, v := range table.Row(i) {
			record[j] = v.String()
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	w.logger.DebugContext(ctx, "table serialized to csv",
		slog.Int("rows", rows),
		slog.Int("columns", table.ColumnCount()),
		slog.Int("bytes", buf.Len()))

	return buf.Bytes(), nil
}

// WriteFile renders the table to a CSV file, creating the parent
// directory when needed.
func (w *CSVWriter) WriteFile(ctx context.Context, path string, table domain.Table) error {
	data, err := w.Bytes(ctx, table)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write csv file: %w", err)
	}

	w.logger.InfoContext(ctx, "csv file written",
		slog.String("path", path),
		slog.Int("rows", table.RowCount()))
	return nil
}
