package eda

import (
	"context"
	"log/slog"
	"math"

	"github.com/montanaflynn/stats"

	"datastudio/internal/cleaning"
	"datastudio/pkg/contracts/domain"
)

// Analyzer computes descriptive statistics, correlations and the chart
// dashboard for a table.
type Analyzer struct {
	logger *slog.Logger
}

// NewAnalyzer creates an Analyzer. A nil logger falls back to
// slog.Default.
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger}
}

// Summarize returns one ColumnSummary per numeric column, in table
// order. Statistics that are undefined for the column's data (mean of
// nothing, sample std of a single value) come back as NaN stats, which
// render as null in JSON and "nan" in the report.
func (a *Analyzer) Summarize(ctx context.Context, table domain.Table) []domain.ColumnSummary {
	summaries := make([]domain.ColumnSummary, 0)
	for _, col := range table.Columns() {
		if col.Kind != domain.KindNumeric {
			continue
		}
		summaries = append(summaries, summarizeColumn(col))
	}

	a.logger.DebugContext(ctx, "numeric summary computed",
		slog.Int("features", len(summaries)))
	return summaries
}

func summarizeColumn(col domain.Column) domain.ColumnSummary {
	nan := domain.Stat(math.NaN())
	summary := domain.ColumnSummary{
		Feature: col.Name,
		Mean:    nan,
		Std:     nan,
		Min:     nan,
		Q25:     nan,
		Median:  nan,
		Q75:     nan,
		Max:     nan,
	}

	present := col.Numbers()
	summary.Count = len(present)
	if len(present) == 0 {
		return summary
	}

	summary.Mean = statOf(stats.Mean(present))
	if len(present) >= 2 {
		summary.Std = statOf(stats.StandardDeviationSample(present))
	}
	summary.Min = statOf(stats.Min(present))
	summary.Max = statOf(stats.Max(present))
	summary.Q25 = domain.Stat(cleaning.Quantile(present, 0.25))
	summary.Median = domain.Stat(cleaning.Median(present))
	summary.Q75 = domain.Stat(cleaning.Quantile(present, 0.75))
	return summary
}

func statOf(v float64, err error) domain.Stat {
	if err != nil {
		return domain.Stat(math.NaN())
	}
	return domain.Stat(v)
}
