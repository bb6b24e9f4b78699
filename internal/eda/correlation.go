package eda

import (
	"context"
	"log/slog"
	"math"

	"github.com/montanaflynn/stats"

	"datastudio/pkg/contracts/domain"
)

// Correlate computes the Pearson correlation matrix over the numeric
// columns. With fewer than two numeric columns the matrix is empty.
// Entries involving a constant column are NaN, including that column's
// diagonal; all other diagonal entries are exactly 1.
func (a *Analyzer) Correlate(ctx context.Context, table domain.Table) domain.CorrelationMatrix {
	var numeric []domain.Column
	for _, col := range table.Columns() {
		if col.Kind == domain.KindNumeric {
			numeric = append(numeric, col)
		}
	}
	if len(numeric) < 2 {
		return domain.CorrelationMatrix{}
	}

	names := make([]string, len(numeric))
	values := make([][]domain.Stat, len(numeric))
	for i, col := range numeric {
		names[i] = col.Name
		values[i] = make([]domain.Stat, len(numeric))
		for j := range numeric {
			values[i][j] = pearson(numeric[i], numeric[j], i == j)
		}
	}

	a.logger.DebugContext(ctx, "correlation matrix computed",
		slog.Int("features", len(names)))
	return domain.CorrelationMatrix{Columns: names, Values: values}
}

// pearson correlates two columns over the rows where both values are
// present. Pairs with fewer than two observations or a constant side
// are undefined.
func pearson(a, b domain.Column, diagonal bool) domain.Stat {
	xs, ys := pairedNumbers(a, b)
	if len(xs) < 2 || isConstant(xs) || isConstant(ys) {
		return domain.Stat(math.NaN())
	}
	if diagonal {
		return domain.Stat(1)
	}

	r, err := stats.Correlation(xs, ys)
	if err != nil {
		return domain.Stat(math.NaN())
	}
	return domain.Stat(r)
}

func pairedNumbers(a, b domain.Column) ([]float64, []float64) {
	n := len(a.Values)
	if len(b.Values) < n {
		n = len(b.Values)
	}

	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		x, okA := a.Values[i].Number()
		y, okB := b.Values[i].Number()
		if okA && okB {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	return xs, ys
}

func isConstant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
