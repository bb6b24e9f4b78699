package ingest

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "datastudio/internal/errors"
	"datastudio/pkg/contracts/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func readFile(t *testing.T, filename string, raw string) domain.IngestResult {
	t.Helper()
	result, err := NewReader(discardLogger()).Read(context.Background(), filename, []byte(raw))
	require.NoError(t, err)
	return result
}

func column(t *testing.T, table domain.Table, name string) domain.Column {
	t.Helper()
	col, ok := table.Column(name)
	require.True(t, ok, "column %s not found", name)
	return col
}

func TestReadCSV(t *testing.T) {
	result := readFile(t, "people.csv", "name,score,joined\nalice,10,2021-01-01\nbob,NA,n/a\n")

	assert.Equal(t, domain.FormatCSV, result.Format)
	assert.Empty(t, result.Notes)
	assert.Equal(t, 2, result.Table.RowCount())
	assert.Equal(t, []string{"name", "score", "joined"}, result.Table.ColumnNames())

	name := column(t, result.Table, "name")
	assert.Equal(t, domain.KindText, name.Kind)

	score := column(t, result.Table, "score")
	assert.Equal(t, domain.KindNumeric, score.Kind)
	assert.Equal(t, []float64{10}, score.Numbers())
	assert.True(t, score.Values[1].IsMissing())

	joined := column(t, result.Table, "joined")
	assert.Equal(t, domain.KindText, joined.Kind)
	assert.True(t, joined.Values[1].IsMissing())
}

func TestReadCSVStripsByteOrderMark(t *testing.T) {
	result := readFile(t, "data.csv", "\uFEFFa,b\n1,2\n")

	assert.Equal(t, []string{"a", "b"}, result.Table.ColumnNames())
}

func TestReadTSV(t *testing.T) {
	result := readFile(t, "data.tsv", "x\ty\n1\tfoo\n2\tbar\n")

	assert.Equal(t, domain.FormatText, result.Format)
	assert.Equal(t, domain.KindNumeric, column(t, result.Table, "x").Kind)
	assert.Equal(t, domain.KindText, column(t, result.Table, "y").Kind)
}

func TestReadTXTUsesCommas(t *testing.T) {
	result := readFile(t, "data.txt", "a,b\n1,2\n")

	assert.Equal(t, domain.FormatText, result.Format)
	assert.Equal(t, 2, result.Table.ColumnCount())
	assert.Equal(t, []float64{1}, column(t, result.Table, "a").Numbers())
}

func TestReadUnsupportedExtension(t *testing.T) {
	reader := NewReader(discardLogger())

	for _, filename := range []string{"report.docx", "archive.zip", "README"} {
		_, err := reader.Read(context.Background(), filename, []byte("x"))
		require.Error(t, err, filename)

		var unsupported *apierrors.UnsupportedFormatError
		require.ErrorAs(t, err, &unsupported, filename)
		assert.EqualError(t, err, "Unsupported file type. Upload CSV, Excel, JSON, Parquet, PDF, TXT, or TSV.")
	}
}

func TestReadExtensionIsCaseInsensitive(t *testing.T) {
	result := readFile(t, "SALES.CSV", "a\n1\n")

	assert.Equal(t, domain.FormatCSV, result.Format)
	assert.Equal(t, 1, result.Table.RowCount())
}

func TestReadCSVRaggedRows(t *testing.T) {
	result := readFile(t, "ragged.csv", "a,b,c\n1,2\n3,4,5,6\n")

	assert.Equal(t, 3, result.Table.ColumnCount())
	assert.Equal(t, 2, result.Table.RowCount())

	c := column(t, result.Table, "c")
	assert.True(t, c.Values[0].IsMissing())
	assert.Equal(t, []float64{5}, c.Numbers())
}

func TestReadCSVHeaderOnly(t *testing.T) {
	result := readFile(t, "empty.csv", "a,b\n")

	assert.Equal(t, 0, result.Table.RowCount())
	assert.Equal(t, 2, result.Table.ColumnCount())

	// Columns with no present values default to numeric.
	assert.Equal(t, domain.KindNumeric, column(t, result.Table, "a").Kind)
}

func TestReadEmptyPayload(t *testing.T) {
	result := readFile(t, "empty.csv", "")

	assert.True(t, result.Table.IsEmpty())
	assert.Equal(t, 0, result.Table.ColumnCount())
}

func TestReadRecognizesMissingMarkers(t *testing.T) {
	result := readFile(t, "na.csv", "v\nNA\nN/A\nn/a\nNaN\nnan\nNULL\nnull\nNone\n<NA>\n1\n")

	v := column(t, result.Table, "v")
	assert.Equal(t, domain.KindNumeric, v.Kind)
	assert.Equal(t, 9, v.MissingCount())
	assert.Equal(t, []float64{1}, v.Numbers())
}

func TestReadEmptyCellIsMissing(t *testing.T) {
	result := readFile(t, "blank.csv", "a,b\n1,\n2,x\n")

	b := column(t, result.Table, "b")
	assert.True(t, b.Values[0].IsMissing())
	assert.Equal(t, domain.KindText, b.Kind)
}

func TestReadNumericCellsTolerateSpaces(t *testing.T) {
	result := readFile(t, "spaced.csv", "v\n 1.5\n2\n")

	v := column(t, result.Table, "v")
	assert.Equal(t, domain.KindNumeric, v.Kind)
	assert.Equal(t, []float64{1.5, 2}, v.Numbers())
}

func TestReadJSONArrayOfObjects(t *testing.T) {
	raw := `[
		{"name":"a","stats":{"score":1},"tags":["x","y"],"active":true},
		{"name":"b","stats":{"score":2}}
	]`
	result := readFile(t, "records.json", raw)

	assert.Equal(t, domain.FormatJSON, result.Format)
	assert.Equal(t, []string{"name", "stats.score", "tags", "active"}, result.Table.ColumnNames())

	score := column(t, result.Table, "stats.score")
	assert.Equal(t, domain.KindNumeric, score.Kind)
	assert.Equal(t, []float64{1, 2}, score.Numbers())

	tags := column(t, result.Table, "tags")
	assert.Equal(t, domain.KindText, tags.Kind)
	s, ok := tags.Values[0].Text()
	require.True(t, ok)
	assert.Equal(t, `["x","y"]`, s)
	assert.True(t, tags.Values[1].IsMissing())

	active := column(t, result.Table, "active")
	s, ok = active.Values[0].Text()
	require.True(t, ok)
	assert.Equal(t, "true", s)
}

func TestReadJSONSingleObject(t *testing.T) {
	result := readFile(t, "one.json", `{"a":1,"b":"x"}`)

	assert.Equal(t, 1, result.Table.RowCount())
	assert.Equal(t, []string{"a", "b"}, result.Table.ColumnNames())
	assert.Equal(t, []float64{1}, column(t, result.Table, "a").Numbers())
}

func TestReadJSONScalarArray(t *testing.T) {
	result := readFile(t, "plain.json", `[1,2,3]`)

	v := column(t, result.Table, "value")
	assert.Equal(t, domain.KindNumeric, v.Kind)
	assert.Equal(t, []float64{1, 2, 3}, v.Numbers())
}

func TestReadJSONNullBecomesMissing(t *testing.T) {
	result := readFile(t, "nulls.json", `[{"v":null},{"v":2}]`)

	v := column(t, result.Table, "v")
	assert.Equal(t, domain.KindNumeric, v.Kind)
	assert.True(t, v.Values[0].IsMissing())
	assert.Equal(t, []float64{2}, v.Numbers())
}

func TestReadJSONMixedTypesFallBackToText(t *testing.T) {
	result := readFile(t, "mixed.json", `[{"v":1},{"v":"x"}]`)

	v := column(t, result.Table, "v")
	assert.Equal(t, domain.KindText, v.Kind)

	s, ok := v.Values[0].Text()
	require.True(t, ok)
	assert.Equal(t, "1", s)
}

func TestReadJSONMalformed(t *testing.T) {
	_, err := NewReader(discardLogger()).Read(context.Background(), "broken.json", []byte(`{"a":`))

	assert.Error(t, err)
}
