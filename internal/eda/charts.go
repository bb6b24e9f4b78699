package eda

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"datastudio/pkg/contracts/domain"
)

const (
	histogramBins = 40
	topCategories = 15
	missingLabel  = "(missing)"
)

// ValueCount is one bar of a categorical value-count chart.
type ValueCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Dashboard assembles the chart page for a table: a correlation
// heatmap when at least two numeric columns exist, a histogram per
// numeric column, a top-category bar per text column and a mean trend
// line per (timestamp, numeric) column pair.
func (a *Analyzer) Dashboard(ctx context.Context, table domain.Table) *components.Page {
	page := components.NewPage()
	chartCount := 0

	if matrix := a.Correlate(ctx, table); len(matrix.Columns) >= 2 {
		page.AddCharts(heatmapChart(matrix))
		chartCount++
	}

	for _, col := range table.Columns() {
		switch col.Kind {
		case domain.KindNumeric:
			if present := col.Numbers(); len(present) > 0 {
				page.AddCharts(histogramChart(col.Name, present))
				chartCount++
			}
		case domain.KindText:
			if counts := ValueCounts(col, topCategories); len(counts) > 0 {
				page.AddCharts(categoryChart(col.Name, counts))
				chartCount++
			}
		}
	}

	for _, timeCol := range table.Columns() {
		if timeCol.Kind != domain.KindTimestamp {
			continue
		}
		for _, valueCol := range table.Columns() {
			if valueCol.Kind != domain.KindNumeric {
				continue
			}
			labels, means := trendSeries(timeCol, valueCol)
			if len(labels) > 0 {
				page.AddCharts(trendChart(timeCol.Name, valueCol.Name, labels, means))
				chartCount++
			}
		}
	}

	a.logger.DebugContext(ctx, "dashboard assembled", slog.Int("charts", chartCount))
	return page
}

// ValueCounts tallies a column's values, counting missing cells as
// their own category, and returns the top limit categories by count.
// Ties keep first-appearance order.
func ValueCounts(col domain.Column, limit int) []ValueCount {
	var order []string
	counts := make(map[string]int)
	for _, v := range col.Values {
		label := missingLabel
		if !v.IsMissing() {
			label = v.String()
		}
		if _, ok := counts[label]; !ok {
			order = append(order, label)
		}
		counts[label]++
	}

	result := make([]ValueCount, len(order))
	for i, label := range order {
		result[i] = ValueCount{Label: label, Count: counts[label]}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Count > result[j].Count })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

func heatmapChart(matrix domain.CorrelationMatrix) *charts.HeatMap {
	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Correlation Heatmap"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: matrix.Columns}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Min: -1,
			Max: 1,
			InRange: &opts.VisualMapInRange{
				Color: []string{"#313695", "#f7f7f7", "#a50026"},
			},
		}),
	)

	data := make([]opts.HeatMapData, 0, len(matrix.Columns)*len(matrix.Columns))
	for i := range matrix.Values {
		for j, stat := range matrix.Values[i] {
			var cell interface{}
			if stat.IsDefined() {
				cell = math.Round(float64(stat)*10000) / 10000
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{j, i, cell}})
		}
	}
	hm.SetXAxis(matrix.Columns).AddSeries("correlation", data)
	return hm
}

func histogramChart(name string, values []float64) *charts.Bar {
	labels, counts := histogram(values, histogramBins)

	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Distribution: " + name}))

	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		data[i] = opts.BarData{Value: c}
	}
	bar.SetXAxis(labels).AddSeries("count", data)
	return bar
}

// histogram buckets values into equal-width bins between the observed
// min and max. Each label is the lower edge of its bin; a constant
// column collapses to a single bin.
func histogram(values []float64, bins int) ([]string, []int) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		return []string{formatBinEdge(lo)}, []int{len(values)}
	}

	width := (hi - lo) / float64(bins)
	counts := make([]int, bins)
	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}

	labels := make([]string, bins)
	for i := range labels {
		labels[i] = formatBinEdge(lo + width*float64(i))
	}
	return labels, counts
}

func formatBinEdge(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}

func categoryChart(name string, counts []ValueCount) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Top Categories: " + name}))

	labels := make([]string, len(counts))
	data := make([]opts.BarData, len(counts))
	for i, vc := range counts {
		labels[i] = vc.Label
		data[i] = opts.BarData{Value: vc.Count}
	}
	bar.SetXAxis(labels).AddSeries("count", data)
	return bar
}

// trendSeries groups a numeric column by the values of a timestamp
// column and returns the mean per distinct timestamp in ascending
// order. Rows missing either side are skipped.
func trendSeries(timeCol, valueCol domain.Column) ([]string, []float64) {
	type sample struct {
		t time.Time
		v float64
	}

	n := len(timeCol.Values)
	if len(valueCol.Values) < n {
		n = len(valueCol.Values)
	}

	samples := make([]sample, 0, n)
	for i := 0; i < n; i++ {
		t, okT := timeCol.Values[i].Time()
		v, okV := valueCol.Values[i].Number()
		if okT && okV {
			samples = append(samples, sample{t: t, v: v})
		}
	}
	if len(samples) == 0 {
		return nil, nil
	}
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].t.Before(samples[j].t) })

	var labels []string
	var means []float64
	for i := 0; i < len(samples); {
		j := i
		sum := 0.0
		for ; j < len(samples) && samples[j].t.Equal(samples[i].t); j++ {
			sum += samples[j].v
		}
		labels = append(labels, domain.Timestamp(samples[i].t).String())
		means = append(means, sum/float64(j-i))
		i = j
	}
	return labels, means
}

func trendChart(timeName, valueName string, labels []string, means []float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(charts.WithTitleOpts(opts.Title{
		Title: fmt.Sprintf("%s Trend over %s", valueName, timeName),
	}))

	data := make([]opts.LineData, len(means))
	for i, m := range means {
		data[i] = opts.LineData{Value: m}
	}
	line.SetXAxis(labels).AddSeries(valueName, data)
	return line
}
