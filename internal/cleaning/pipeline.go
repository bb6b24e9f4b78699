package cleaning

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/araddon/dateparse"

	"datastudio/pkg/contracts/domain"
)

// Pipeline applies the fixed sequence of cleaning stages to an ingested
// table: duplicate removal, text trimming, per-column imputation,
// opportunistic datetime coercion, and IQR outlier capping. The stages
// always run in that order; each stage sees the output of the previous one.
type Pipeline struct {
	logger         *slog.Logger
	parseThreshold float64
	iqrMultiplier  float64
}

// PipelineConfig holds configuration options for the cleaning pipeline.
type PipelineConfig struct {
	// DatetimeParseThreshold is the fraction of a text column's values that
	// must parse as timestamps before the column is converted. The ratio
	// must strictly exceed the threshold.
	DatetimeParseThreshold float64
	// IQRMultiplier scales the interquartile range when computing outlier
	// fences.
	IQRMultiplier float64
}

// DefaultPipelineConfig returns the standard cleaning configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		DatetimeParseThreshold: 0.8,
		IQRMultiplier:          1.5,
	}
}

// NewPipeline creates a cleaning pipeline with the given configuration.
func NewPipeline(logger *slog.Logger, config PipelineConfig) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if config.DatetimeParseThreshold <= 0 {
		config.DatetimeParseThreshold = 0.8
	}
	if config.IQRMultiplier <= 0 {
		config.IQRMultiplier = 1.5
	}

	return &Pipeline{
		logger:         logger,
		parseThreshold: config.DatetimeParseThreshold,
		iqrMultiplier:  config.IQRMultiplier,
	}
}

// Clean runs every cleaning stage over the table and returns the cleaned
// copy together with a report of what changed. The input table is never
// modified. Cleaning an already cleaned table yields the same table again.
func (p *Pipeline) Clean(ctx context.Context, table domain.Table) (domain.Table, domain.CleaningReport) {
	report := domain.CleaningReport{Transformations: []string{}}
	cleaned := table.Clone()

	if cleaned.ColumnCount() == 0 {
		return cleaned, report
	}

	p.dropDuplicates(ctx, &cleaned, &report)
	p.trimText(&cleaned)
	p.imputeMissing(ctx, &cleaned, &report)
	p.coerceDatetimes(ctx, &cleaned, &report)
	p.capOutliers(ctx, &cleaned, &report)

	p.logger.InfoContext(ctx, "cleaning pipeline finished",
		slog.Int("rows", cleaned.RowCount()),
		slog.Int("columns", cleaned.ColumnCount()),
		slog.Int("dropped_duplicates", report.DroppedDuplicates),
		slog.Int("imputed_cells", report.ImputedCells),
		slog.Int("transformations", len(report.Transformations)))

	return cleaned, report
}

// dropDuplicates removes rows whose values duplicate an earlier row,
// keeping the first occurrence and preserving row order.
func (p *Pipeline) dropDuplicates(ctx context.Context, table *domain.Table, report *domain.CleaningReport) {
	rows := table.RowCount()
	if rows == 0 {
		return
	}

	seen := make(map[string]struct{}, rows)
	keep := make([]int, 0, rows)
	for i := 0; i < rows; i++ {
		key := table.RowKey(i)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, i)
	}

	dropped := rows - len(keep)
	if dropped == 0 {
		return
	}

	columns := table.Columns()
	for ci := range columns {
		values := make([]domain.Value, len(keep))
		for vi, ri := range keep {
			values[vi] = columns[ci].Values[ri]
		}
		columns[ci].Values = values
	}

	report.DroppedDuplicates = dropped
	report.Transformations = append(report.Transformations,
		fmt.Sprintf("Dropped %d duplicate row(s).", dropped))

	p.logger.DebugContext(ctx, "dropped duplicate rows", slog.Int("count", dropped))
}

// trimText strips surrounding whitespace from text values. Missing values
// stay missing and no transformation note is recorded.
func (p *Pipeline) trimText(table *domain.Table) {
	columns := table.Columns()
	for ci := range columns {
		if columns[ci].Kind != domain.KindText {
			continue
		}
		for vi, v := range columns[ci].Values {
			s, ok := v.Text()
			if !ok {
				continue
			}
			if trimmed := strings.TrimSpace(s); trimmed != s {
				columns[ci].Values[vi] = domain.Text(trimmed)
			}
		}
	}
}

// imputeMissing fills gaps column by column: numeric columns take their
// median, timestamp columns are forward-filled, and text columns take the
// most frequent value or "Unknown". The imputed cell count records how many
// cells were missing in each column the stage handled.
func (p *Pipeline) imputeMissing(ctx context.Context, table *domain.Table, report *domain.CleaningReport) {
	columns := table.Columns()
	for ci := range columns {
		col := &columns[ci]
		missing := col.MissingCount()
		if missing == 0 {
			continue
		}

		switch col.Kind {
		case domain.KindNumeric:
			median := Median(col.Numbers())
			if math.IsNaN(median) {
				// The median of a fully missing column is undefined.
				continue
			}
			fill := domain.Number(median)
			for vi := range col.Values {
				if col.Values[vi].IsMissing() {
					col.Values[vi] = fill
				}
			}
			report.ImputedCells += missing
			report.Transformations = append(report.Transformations,
				fmt.Sprintf("Filled missing numeric values in '%s' with median.", col.Name))

		case domain.KindTimestamp:
			forwardFill(col)
			report.ImputedCells += missing
			report.Transformations = append(report.Transformations,
				fmt.Sprintf("Forward-filled missing datetime values in '%s'.", col.Name))

		default:
			fill := modeOrUnknown(*col)
			for vi := range col.Values {
				if col.Values[vi].IsMissing() {
					col.Values[vi] = fill
				}
			}
			report.ImputedCells += missing
			report.Transformations = append(report.Transformations,
				fmt.Sprintf("Filled missing categorical values in '%s' with mode/Unknown.", col.Name))
		}

		p.logger.DebugContext(ctx, "imputed missing values",
			slog.String("column", col.Name),
			slog.String("kind", string(col.Kind)),
			slog.Int("missing", missing))
	}
}

// forwardFill carries the last seen value into subsequent gaps. Gaps before
// the first present value are left missing.
func forwardFill(col *domain.Column) {
	var last domain.Value
	haveLast := false
	for vi := range col.Values {
		if col.Values[vi].IsMissing() {
			if haveLast {
				col.Values[vi] = last
			}
			continue
		}
		last = col.Values[vi]
		haveLast = true
	}
}

// modeOrUnknown returns the most frequent present text value, breaking ties
// toward the value seen first in row order, or "Unknown" when the column
// has no present values.
func modeOrUnknown(col domain.Column) domain.Value {
	var order []string
	counts := make(map[string]int)
	for _, v := range col.Values {
		s, ok := v.Text()
		if !ok {
			continue
		}
		if _, seen := counts[s]; !seen {
			order = append(order, s)
		}
		counts[s]++
	}
	if len(order) == 0 {
		return domain.Text("Unknown")
	}

	best := order[0]
	for _, s := range order[1:] {
		if counts[s] > counts[best] {
			best = s
		}
	}
	return domain.Text(best)
}

// coerceDatetimes converts text columns to timestamps when enough of their
// values parse. Values that fail to parse become missing in the converted
// column. The parse ratio counts failures and missing values against the
// full row count and must strictly exceed the configured threshold.
func (p *Pipeline) coerceDatetimes(ctx context.Context, table *domain.Table, report *domain.CleaningReport) {
	rows := table.RowCount()
	if rows == 0 {
		return
	}

	columns := table.Columns()
	for ci := range columns {
		col := &columns[ci]
		if col.Kind != domain.KindText {
			continue
		}

		parsed := make([]domain.Value, len(col.Values))
		parsedCount := 0
		for vi, v := range col.Values {
			s, ok := v.Text()
			if !ok {
				parsed[vi] = domain.Missing()
				continue
			}
			t, err := dateparse.ParseAny(s)
			if err != nil {
				parsed[vi] = domain.Missing()
				continue
			}
			parsed[vi] = domain.Timestamp(t)
			parsedCount++
		}

		ratio := float64(parsedCount) / float64(rows)
		if ratio <= p.parseThreshold {
			continue
		}

		col.Kind = domain.KindTimestamp
		col.Values = parsed
		report.Transformations = append(report.Transformations,
			fmt.Sprintf("Auto-parsed '%s' as datetime.", col.Name))

		p.logger.DebugContext(ctx, "coerced text column to datetime",
			slog.String("column", col.Name),
			slog.Float64("parse_ratio", ratio))
	}
}

// capOutliers clips numeric values that sit outside the IQR fences.
// Columns whose interquartile range is zero or undefined are skipped.
func (p *Pipeline) capOutliers(ctx context.Context, table *domain.Table, report *domain.CleaningReport) {
	columns := table.Columns()
	for ci := range columns {
		col := &columns[ci]
		if col.Kind != domain.KindNumeric {
			continue
		}

		present := col.Numbers()
		if len(present) == 0 {
			continue
		}
		sort.Float64s(present)

		q1 := QuantileSorted(present, 0.25)
		q3 := QuantileSorted(present, 0.75)
		iqr := q3 - q1
		if iqr == 0 || math.IsNaN(iqr) {
			continue
		}

		lower := q1 - p.iqrMultiplier*iqr
		upper := q3 + p.iqrMultiplier*iqr

		capped := 0
		for vi := range col.Values {
			n, ok := col.Values[vi].Number()
			if !ok {
				continue
			}
			switch {
			case n < lower:
				col.Values[vi] = domain.Number(lower)
				capped++
			case n > upper:
				col.Values[vi] = domain.Number(upper)
				capped++
			}
		}

		if capped == 0 {
			continue
		}

		report.Transformations = append(report.Transformations,
			fmt.Sprintf("Capped %d outlier value(s) in '%s' using IQR clipping.", capped, col.Name))

		p.logger.DebugContext(ctx, "capped outliers",
			slog.String("column", col.Name),
			slog.Int("count", capped))
	}
}
