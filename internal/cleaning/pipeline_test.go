package cleaning

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datastudio/pkg/contracts/domain"
)

func testPipeline() *Pipeline {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPipeline(logger, DefaultPipelineConfig())
}

func numCol(name string, values ...domain.Value) domain.Column {
	return domain.Column{Name: name, Kind: domain.KindNumeric, Values: values}
}

func textCol(name string, values ...domain.Value) domain.Column {
	return domain.Column{Name: name, Kind: domain.KindText, Values: values}
}

func timeCol(name string, values ...domain.Value) domain.Column {
	return domain.Column{Name: name, Kind: domain.KindTimestamp, Values: values}
}

func num(f float64) domain.Value { return domain.Number(f) }
func txt(s string) domain.Value  { return domain.Text(s) }
func gap() domain.Value          { return domain.Missing() }

func stamp(t *testing.T, s string) domain.Value {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return domain.Timestamp(parsed)
}

func numbersOf(t *testing.T, table domain.Table, name string) []float64 {
	t.Helper()
	col, ok := table.Column(name)
	require.True(t, ok, "column %s not found", name)
	return col.Numbers()
}

func TestCleanDropsDuplicatesKeepFirst(t *testing.T) {
	table := domain.NewTable(
		numCol("id", num(1), num(2), num(1), num(3), num(2)),
		textCol("tag", txt("a"), txt("b"), txt("a"), txt("c"), txt("b")),
	)

	cleaned, report := testPipeline().Clean(context.Background(), table)

	assert.Equal(t, 3, cleaned.RowCount())
	assert.Equal(t, 2, report.DroppedDuplicates)
	assert.Equal(t, []string{"Dropped 2 duplicate row(s)."}, report.Transformations)

	assert.Equal(t, []float64{1, 2, 3}, numbersOf(t, cleaned, "id"))
}

func TestCleanTrimsTextSilently(t *testing.T) {
	table := domain.NewTable(
		textCol("name", txt(" alice "), txt("bob  "), txt("\tcarol")),
	)

	cleaned, report := testPipeline().Clean(context.Background(), table)

	col, ok := cleaned.Column("name")
	require.True(t, ok)

	want := []string{"alice", "bob", "carol"}
	for i, v := range col.Values {
		s, present := v.Text()
		require.True(t, present)
		assert.Equal(t, want[i], s)
	}

	// Trimming is not reported.
	assert.Empty(t, report.Transformations)
	assert.Zero(t, report.ImputedCells)
}

func TestCleanImputesNumericMedian(t *testing.T) {
	table := domain.NewTable(
		numCol("price", num(1), gap(), num(2), num(3)),
	)

	cleaned, report := testPipeline().Clean(context.Background(), table)

	assert.Equal(t, []float64{1, 2, 2, 3}, numbersOf(t, cleaned, "price"))
	assert.Equal(t, 1, report.ImputedCells)
	assert.Equal(t, []string{"Filled missing numeric values in 'price' with median."}, report.Transformations)
}

func TestCleanMedianInterpolatesEvenCount(t *testing.T) {
	table := domain.NewTable(
		numCol("v", num(2), num(4), gap(), num(6), num(8)),
	)

	cleaned, _ := testPipeline().Clean(context.Background(), table)

	// Median of {2,4,6,8} is the midpoint 5, not one of the observed values.
	assert.Equal(t, []float64{2, 4, 5, 6, 8}, numbersOf(t, cleaned, "v"))
}

func TestCleanSkipsAllMissingNumericColumn(t *testing.T) {
	table := domain.NewTable(
		numCol("id", num(1), num(2), num(3)),
		numCol("empty", gap(), gap(), gap()),
	)

	cleaned, report := testPipeline().Clean(context.Background(), table)

	col, ok := cleaned.Column("empty")
	require.True(t, ok)
	for _, v := range col.Values {
		assert.True(t, v.IsMissing())
	}

	// An undefined median means nothing to fill and nothing to report.
	assert.Zero(t, report.ImputedCells)
	assert.Empty(t, report.Transformations)
}

func TestCleanForwardFillsTimestamps(t *testing.T) {
	table := domain.NewTable(
		numCol("id", num(1), num(2), num(3), num(4), num(5)),
		timeCol("when",
			gap(),
			stamp(t, "2020-01-01"),
			gap(),
			stamp(t, "2020-01-03"),
			gap(),
		),
	)

	cleaned, report := testPipeline().Clean(context.Background(), table)

	col, ok := cleaned.Column("when")
	require.True(t, ok)

	// A gap before the first observation stays missing; later gaps carry
	// the previous value forward.
	assert.True(t, col.Values[0].IsMissing())

	v1, _ := col.Values[1].Time()
	v2, _ := col.Values[2].Time()
	assert.True(t, v1.Equal(v2))

	v3, _ := col.Values[3].Time()
	v4, _ := col.Values[4].Time()
	assert.True(t, v3.Equal(v4))

	assert.Equal(t, 3, report.ImputedCells)
	assert.Contains(t, report.Transformations, "Forward-filled missing datetime values in 'when'.")
}

func TestCleanAllMissingTimestampStillReported(t *testing.T) {
	table := domain.NewTable(
		numCol("id", num(1), num(2)),
		timeCol("when", gap(), gap()),
	)

	cleaned, report := testPipeline().Clean(context.Background(), table)

	col, ok := cleaned.Column("when")
	require.True(t, ok)
	for _, v := range col.Values {
		assert.True(t, v.IsMissing())
	}

	// Forward-fill runs even when it has nothing to carry.
	assert.Equal(t, 2, report.ImputedCells)
	assert.Contains(t, report.Transformations, "Forward-filled missing datetime values in 'when'.")
}

func TestCleanImputesCategoricalMode(t *testing.T) {
	table := domain.NewTable(
		numCol("id", num(1), num(2), num(3), num(4)),
		textCol("city", txt("NY"), txt("LA"), txt("NY"), gap()),
	)

	cleaned, report := testPipeline().Clean(context.Background(), table)

	col, ok := cleaned.Column("city")
	require.True(t, ok)
	filled, present := col.Values[3].Text()
	require.True(t, present)
	assert.Equal(t, "NY", filled)

	assert.Equal(t, 1, report.ImputedCells)
	assert.Equal(t, []string{"Filled missing categorical values in 'city' with mode/Unknown."}, report.Transformations)
}

func TestCleanModeTieBreaksByFirstOccurrence(t *testing.T) {
	table := domain.NewTable(
		numCol("id", num(1), num(2), num(3), num(4), num(5)),
		textCol("tag", txt("b"), txt("a"), txt("b"), txt("a"), gap()),
	)

	cleaned, _ := testPipeline().Clean(context.Background(), table)

	// "b" and "a" both appear twice; "b" appeared first.
	col, ok := cleaned.Column("tag")
	require.True(t, ok)
	filled, present := col.Values[4].Text()
	require.True(t, present)
	assert.Equal(t, "b", filled)
}

func TestCleanFillsUnknownWhenNoMode(t *testing.T) {
	table := domain.NewTable(
		numCol("id", num(1), num(2)),
		textCol("note", gap(), gap()),
	)

	cleaned, report := testPipeline().Clean(context.Background(), table)

	col, ok := cleaned.Column("note")
	require.True(t, ok)
	for _, v := range col.Values {
		s, present := v.Text()
		require.True(t, present)
		assert.Equal(t, "Unknown", s)
	}

	assert.Equal(t, 2, report.ImputedCells)
}

func TestCleanCoercesTextDatesToTimestamps(t *testing.T) {
	table := domain.NewTable(
		textCol("day",
			txt("2021-01-01"),
			txt("2021-01-02"),
			txt("2021-01-03"),
			txt("2021-01-04"),
			txt("2021-01-05"),
			txt("not a date"),
		),
	)

	cleaned, report := testPipeline().Clean(context.Background(), table)

	col, ok := cleaned.Column("day")
	require.True(t, ok)
	assert.Equal(t, domain.KindTimestamp, col.Kind)

	first, present := col.Values[0].Time()
	require.True(t, present)
	assert.Equal(t, 2021, first.Year())

	// The value that failed to parse is missing after coercion.
	assert.True(t, col.Values[5].IsMissing())

	assert.Equal(t, []string{"Auto-parsed 'day' as datetime."}, report.Transformations)
}

func TestCleanParseRatioMustExceedThreshold(t *testing.T) {
	// Four of five values parse: exactly 0.8, which is not enough.
	table := domain.NewTable(
		textCol("day",
			txt("2021-01-01"),
			txt("2021-01-02"),
			txt("2021-01-03"),
			txt("2021-01-04"),
			txt("junk"),
		),
	)

	cleaned, report := testPipeline().Clean(context.Background(), table)

	col, ok := cleaned.Column("day")
	require.True(t, ok)
	assert.Equal(t, domain.KindText, col.Kind)
	assert.Empty(t, report.Transformations)
}

func TestCleanCapsOutliersWithIQRFences(t *testing.T) {
	table := domain.NewTable(
		numCol("v", num(1), num(2), num(3), num(4), num(100)),
	)

	cleaned, report := testPipeline().Clean(context.Background(), table)

	// Q1=2, Q3=4, IQR=2: the upper fence is 4 + 1.5*2 = 7.
	assert.Equal(t, []float64{1, 2, 3, 4, 7}, numbersOf(t, cleaned, "v"))
	assert.Equal(t, []string{"Capped 1 outlier value(s) in 'v' using IQR clipping."}, report.Transformations)

	// Capping never counts as imputation.
	assert.Zero(t, report.ImputedCells)
}

func TestCleanCapsLowOutliers(t *testing.T) {
	table := domain.NewTable(
		numCol("v", num(-100), num(10), num(11), num(12), num(13)),
	)

	cleaned, _ := testPipeline().Clean(context.Background(), table)

	// Q1=10, Q3=12, IQR=2: the lower fence is 10 - 3 = 7.
	assert.Equal(t, []float64{7, 10, 11, 12, 13}, numbersOf(t, cleaned, "v"))
}

func TestCleanSkipsZeroIQRColumns(t *testing.T) {
	table := domain.NewTable(
		numCol("id", num(1), num(2), num(3), num(4)),
		numCol("const", num(5), num(5), num(5), num(5)),
	)

	cleaned, report := testPipeline().Clean(context.Background(), table)

	assert.Equal(t, []float64{5, 5, 5, 5}, numbersOf(t, cleaned, "const"))
	assert.Empty(t, report.Transformations)
}

func TestCleanDoesNotMutateInput(t *testing.T) {
	table := domain.NewTable(
		numCol("v", num(1), gap(), num(100), num(2), num(3)),
		textCol("tag", txt(" a "), txt("b"), txt("c"), txt("d"), txt("e")),
	)
	original := table.Clone()

	testPipeline().Clean(context.Background(), table)

	assert.True(t, table.Equal(original))
}

func TestCleanIsIdempotent(t *testing.T) {
	table := domain.NewTable(
		numCol("id", num(1), num(2), num(2), num(3), num(4), num(5)),
		numCol("v", num(1), gap(), gap(), num(3), num(4), num(100)),
		textCol("day",
			txt("2021-01-01"),
			txt("2021-01-02"),
			txt("2021-01-02"),
			txt("2021-01-03"),
			txt("2021-01-04"),
			txt("2021-01-05"),
		),
		textCol("city", txt("NY"), gap(), gap(), txt("LA"), txt("NY"), txt(" SF ")),
	)

	p := testPipeline()
	once, _ := p.Clean(context.Background(), table)
	twice, _ := p.Clean(context.Background(), once)

	assert.True(t, once.Equal(twice))
}

func TestCleanEmptyTable(t *testing.T) {
	cleaned, report := testPipeline().Clean(context.Background(), domain.NewTable())

	assert.Equal(t, 0, cleaned.ColumnCount())
	assert.Zero(t, report.DroppedDuplicates)
	assert.Zero(t, report.ImputedCells)
	assert.Empty(t, report.Transformations)
}

func TestCleanZeroRowTable(t *testing.T) {
	table := domain.NewTable(
		numCol("v"),
		textCol("tag"),
	)

	cleaned, report := testPipeline().Clean(context.Background(), table)

	assert.Equal(t, 0, cleaned.RowCount())
	assert.Equal(t, 2, cleaned.ColumnCount())
	assert.Zero(t, report.DroppedDuplicates)
	assert.Zero(t, report.ImputedCells)
	assert.Empty(t, report.Transformations)
}

func TestCleanPreservesColumnCountAndOrder(t *testing.T) {
	table := domain.NewTable(
		numCol("b", num(1), num(2)),
		textCol("a", txt("x"), txt("y")),
		numCol("c", num(3), num(4)),
	)

	cleaned, _ := testPipeline().Clean(context.Background(), table)

	assert.Equal(t, []string{"b", "a", "c"}, cleaned.ColumnNames())
}

func TestCleanFullPipelineNoteOrder(t *testing.T) {
	table := domain.NewTable(
		numCol("n", num(1), num(2), num(3), num(4), num(100), gap()),
		textCol("d",
			txt("2021-01-01"),
			txt("2021-01-02"),
			txt("2021-01-03"),
			txt("2021-01-04"),
			txt("2021-01-05"),
			txt("2021-01-06"),
		),
	)

	cleaned, report := testPipeline().Clean(context.Background(), table)

	// Notes appear in stage order, columns in table order within a stage.
	assert.Equal(t, []string{
		"Filled missing numeric values in 'n' with median.",
		"Auto-parsed 'd' as datetime.",
		"Capped 1 outlier value(s) in 'n' using IQR clipping.",
	}, report.Transformations)

	assert.Equal(t, 1, report.ImputedCells)

	// Median of {1,2,3,4,100} is 3; the filled column then caps 100 at the
	// upper fence 6.
	assert.Equal(t, []float64{1, 2, 3, 4, 6, 3}, numbersOf(t, cleaned, "n"))

	col, ok := cleaned.Column("d")
	require.True(t, ok)
	assert.Equal(t, domain.KindTimestamp, col.Kind)
}
