package report

import (
	"context"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datastudio/pkg/contracts/domain"
)

func testBuilder() *Builder {
	return NewBuilder(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func sampleInput() Input {
	return Input{
		GeneratedAt:     time.Date(2021, 3, 1, 12, 30, 0, 0, time.UTC),
		Format:          domain.FormatCSV,
		RawRows:         10,
		RawColumns:      3,
		CleanedRows:     9,
		CleanedColumns:  3,
		Columns:         []string{"a", "b", "c"},
		Transformations: []string{"Dropped 1 duplicate row(s)."},
		Summaries: []domain.ColumnSummary{
			{
				Feature: "a",
				Count:   9,
				Mean:    domain.Stat(2.5),
				Std:     domain.Stat(math.NaN()),
				Min:     domain.Stat(1),
				Q25:     domain.Stat(2),
				Median:  domain.Stat(2.5),
				Q75:     domain.Stat(3),
				Max:     domain.Stat(4),
			},
		},
	}
}

func TestBuildLayoutProlog(t *testing.T) {
	md := testBuilder().Build(context.Background(), sampleInput())
	lines := strings.Split(md, "\n")

	want := []string{
		"# Automated Data Analysis Report",
		"",
		"Generated: **2021-03-01 12:30 UTC**",
		"Source format: **CSV**",
		"",
		"## 1) Dataset Overview",
		"- Raw shape: `10 rows x 3 columns`",
		"- Cleaned shape: `9 rows x 3 columns`",
		"- Columns: `a, b, c`",
		"",
		"## 2) Ingestion Notes",
		"- No ingestion warnings.",
		"",
		"## 3) Processing Steps",
		"- Dropped 1 duplicate row(s).",
		"",
		"## 4) Numeric Summary",
		"",
	}
	require.GreaterOrEqual(t, len(lines), len(want))
	assert.Equal(t, want, lines[:len(want)])
}

func TestBuildSummaryTable(t *testing.T) {
	md := testBuilder().Build(context.Background(), sampleInput())

	assert.Contains(t, md, "| a |")
	assert.Contains(t, md, "| count |")
	assert.Contains(t, md, "| mean |")
	assert.Contains(t, md, "| std |")
	assert.Contains(t, md, "| 25% |")
	assert.Contains(t, md, "| 50% |")
	assert.Contains(t, md, "| 75% |")
	assert.Contains(t, md, "| max |")
	assert.Contains(t, md, "nan")
}

func TestBuildPlaceholdersWhenSectionsAreEmpty(t *testing.T) {
	in := sampleInput()
	in.IngestionNotes = nil
	in.Transformations = nil
	in.Summaries = nil

	md := testBuilder().Build(context.Background(), in)
	lines := strings.Split(md, "\n")

	assert.Contains(t, lines, "- No ingestion warnings.")
	assert.Contains(t, lines, "- No explicit transformations were needed.")
	assert.NotContains(t, md, "| count |")

	for i, line := range lines {
		if line == "## 4) Numeric Summary" {
			require.Less(t, i+1, len(lines))
			assert.Equal(t, "- No numeric columns available.", lines[i+1])
		}
	}
}

func TestBuildIngestionNotesInOrder(t *testing.T) {
	in := sampleInput()
	in.IngestionNotes = []string{"Extracted 2 table(s) from PDF.", "second note"}

	md := testBuilder().Build(context.Background(), in)

	first := strings.Index(md, "- Extracted 2 table(s) from PDF.")
	second := strings.Index(md, "- second note")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second)
}

func TestBuildEndsWithRecommendations(t *testing.T) {
	md := testBuilder().Build(context.Background(), sampleInput())
	lines := strings.Split(md, "\n")
	require.GreaterOrEqual(t, len(lines), 5)

	tail := lines[len(lines)-5:]
	assert.Equal(t, []string{
		"",
		"## 5) Recommended Next Actions",
		"- Validate business rules and domain constraints for key variables.",
		"- Review top correlated features and assess causality before using them in models.",
		"- Consider exporting cleaned data to cloud storage for team collaboration.",
	}, tail)
}

func TestBuildNormalizesTimestampToUTC(t *testing.T) {
	in := sampleInput()
	in.GeneratedAt = time.Date(2021, 3, 1, 14, 30, 0, 0, time.FixedZone("EET", 2*3600))

	md := testBuilder().Build(context.Background(), in)

	assert.Contains(t, md, "Generated: **2021-03-01 12:30 UTC**")
}

func TestBuildUppercasesFormatTag(t *testing.T) {
	in := sampleInput()
	in.Format = domain.FormatText

	md := testBuilder().Build(context.Background(), in)

	assert.Contains(t, md, "Source format: **TEXT**")
}
