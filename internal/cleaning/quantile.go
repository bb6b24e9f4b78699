package cleaning

import (
	"math"
	"sort"
)

// Quantile returns the q-th quantile of values using linear interpolation
// between the two nearest ranks. This matches the default percentile method
// of most dataframe libraries, which differs from the Tukey hinge method
// some statistics packages use.
//
// values does not need to be sorted. Returns NaN for an empty slice.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return QuantileSorted(sorted, q)
}

// QuantileSorted is like Quantile but requires values sorted ascending.
// Use it to compute several quantiles of one column without re-sorting.
func QuantileSorted(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 || q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}

	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := lo + 1
	if hi >= n {
		return sorted[lo]
	}

	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Median returns the 50th percentile of values. Returns NaN for an empty slice.
func Median(values []float64) float64 {
	return Quantile(values, 0.5)
}
