// Package report renders the Markdown analysis report.
package report

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"datastudio/pkg/contracts/domain"
)

// Input carries everything the report renders.
type Input struct {
	GeneratedAt     time.Time
	Format          domain.Format
	RawRows         int
	RawColumns      int
	CleanedRows     int
	CleanedColumns  int
	Columns         []string
	IngestionNotes  []string
	Transformations []string
	Summaries       []domain.ColumnSummary
}

// Builder assembles analysis results into a Markdown document.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a Builder. A nil logger falls back to slog.Default.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger}
}

// Build renders the report. The layout is fixed: header with generation
// time and source format, dataset overview, ingestion notes, processing
// steps, numeric summary table and a closing block of recommendations,
// each section separated by one blank line.
func (b *Builder) Build(ctx context.Context, in Input) string {
	lines := []string{
		"# Automated Data Analysis Report",
		"",
		"Generated: **" + in.GeneratedAt.UTC().Format("2006-01-02 15:04") + " UTC**",
		"Source format: **" + strings.ToUpper(string(in.Format)) + "**",
		"",
		"## 1) Dataset Overview",
		"- Raw shape: `" + shape(in.RawRows, in.RawColumns) + "`",
		"- Cleaned shape: `" + shape(in.CleanedRows, in.CleanedColumns) + "`",
		"- Columns: `" + strings.Join(in.Columns, ", ") + "`",
		"",
		"## 2) Ingestion Notes",
	}
	lines = append(lines, bullets(in.IngestionNotes, "- No ingestion warnings.")...)

	lines = append(lines, "", "## 3) Processing Steps")
	lines = append(lines, bullets(in.Transformations, "- No explicit transformations were needed.")...)

	lines = append(lines, "", "## 4) Numeric Summary")
	if len(in.Summaries) > 0 {
		lines = append(lines, "", summaryTable(in.Summaries))
	} else {
		lines = append(lines, "- No numeric columns available.")
	}

	lines = append(lines, "",
		"## 5) Recommended Next Actions",
		"- Validate business rules and domain constraints for key variables.",
		"- Review top correlated features and assess causality before using them in models.",
		"- Consider exporting cleaned data to cloud storage for team collaboration.",
	)

	b.logger.InfoContext(ctx, "report built",
		slog.String("format", string(in.Format)),
		slog.Int("transformations", len(in.Transformations)),
		slog.Int("numeric_features", len(in.Summaries)))

	return strings.Join(lines, "\n")
}

func shape(rows, columns int) string {
	return strconv.Itoa(rows) + " rows x " + strconv.Itoa(columns) + " columns"
}

func bullets(notes []string, placeholder string) []string {
	if len(notes) == 0 {
		return []string{placeholder}
	}
	out := make([]string, len(notes))
	for i, note := range notes {
		out[i] = "- " + note
	}
	return out
}

// summaryTable renders the describe-style statistics as a Markdown
// table with one row per statistic and one column per numeric feature.
func summaryTable(summaries []domain.ColumnSummary) string {
	tw := table.NewWriter()

	header := table.Row{""}
	for _, s := range summaries {
		header = append(header, s.Feature)
	}
	tw.AppendHeader(header)

	stats := []struct {
		label string
		value func(domain.ColumnSummary) string
	}{
		{"count", func(s domain.ColumnSummary) string { return strconv.Itoa(s.Count) }},
		{"mean", func(s domain.ColumnSummary) string { return statText(s.Mean) }},
		{"std", func(s domain.ColumnSummary) string { return statText(s.Std) }},
		{"min", func(s domain.ColumnSummary) string { return statText(s.Min) }},
		{"25%", func(s domain.ColumnSummary) string { return statText(s.Q25) }},
		{"50%", func(s domain.ColumnSummary) string { return statText(s.Median) }},
		{"75%", func(s domain.ColumnSummary) string { return statText(s.Q75) }},
		{"max", func(s domain.ColumnSummary) string { return statText(s.Max) }},
	}
	for _, stat := range stats {
		row := table.Row{stat.label}
		for _, s := range summaries {
			row = append(row, stat.value(s))
		}
		tw.AppendRow(row)
	}

	return tw.RenderMarkdown()
}

// statText renders a statistic to six significant digits, or "nan" when
// the statistic is undefined.
func statText(s domain.Stat) string {
	if !s.IsDefined() {
		return "nan"
	}
	return strconv.FormatFloat(float64(s), 'g', 6, 64)
}
