package ingest

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	apierrors "datastudio/internal/errors"
	"datastudio/pkg/contracts/domain"
)

// Reader turns an uploaded payload into a Table, dispatching on the
// filename extension.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a Reader. A nil logger falls back to slog.Default.
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger}
}

// Read parses upload bytes according to the filename extension and
// returns the table with its format tag and any diagnostic notes.
// Unrecognized extensions fail with an UnsupportedFormatError; the
// extension match is case-insensitive.
func (r *Reader) Read(ctx context.Context, filename string, raw []byte) (domain.IngestResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var (
		table  domain.Table
		format domain.Format
		notes  []string
		err    error
	)

	switch ext {
	case ".csv":
		format = domain.FormatCSV
		table, err = delimitedTable(raw, ',')
	case ".txt":
		format = domain.FormatText
		table, err = delimitedTable(raw, ',')
	case ".tsv":
		format = domain.FormatText
		table, err = delimitedTable(raw, '\t')
	case ".xlsx":
		format = domain.FormatExcel
		table, err = excelTable(raw, readXLSX)
	case ".xls":
		format = domain.FormatExcel
		table, err = excelTable(raw, readXLS)
	case ".json":
		format = domain.FormatJSON
		table, err = readJSON(raw)
	case ".parquet":
		format = domain.FormatParquet
		table, err = readParquet(ctx, raw)
	case ".pdf":
		format = domain.FormatPDF
		table, notes, err = readPDF(raw)
	default:
		return domain.IngestResult{}, apierrors.NewUnsupportedFormatError(ext)
	}
	if err != nil {
		return domain.IngestResult{}, err
	}

	if notes == nil {
		notes = []string{}
	}

	r.logger.InfoContext(ctx, "file ingested",
		slog.String("filename", filename),
		slog.String("format", string(format)),
		slog.Int("size_bytes", len(raw)),
		slog.Int("rows", table.RowCount()),
		slog.Int("columns", table.ColumnCount()))

	return domain.IngestResult{Table: table, Format: format, Notes: notes}, nil
}

func delimitedTable(raw []byte, comma rune) (domain.Table, error) {
	header, grid, err := readDelimited(raw, comma)
	if err != nil {
		return domain.Table{}, err
	}
	return gridTable(header, grid), nil
}

func excelTable(raw []byte, read func([]byte) ([]string, [][]string, error)) (domain.Table, error) {
	header, grid, err := read(raw)
	if err != nil {
		return domain.Table{}, err
	}
	return gridTable(header, grid), nil
}
