package domain

import (
	"encoding/json"
	"math"
)

// Stat is a numeric statistic that marshals NaN and infinities as JSON
// null, the way undefined statistics (std of one value, mean of none)
// should appear in API responses.
type Stat float64

// MarshalJSON implements json.Marshaler.
func (s Stat) MarshalJSON() ([]byte, error) {
	f := float64(s)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// IsDefined reports whether the statistic holds a finite value.
func (s Stat) IsDefined() bool {
	f := float64(s)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ColumnSummary holds the descriptive statistics of one numeric column.
// Quantiles are computed with linear interpolation between closest ranks.
type ColumnSummary struct {
	Feature string `json:"feature"`
	Count   int    `json:"count"`
	Mean    Stat   `json:"mean"`
	Std     Stat   `json:"std"`
	Min     Stat   `json:"min"`
	Q25     Stat   `json:"p25"`
	Median  Stat   `json:"p50"`
	Q75     Stat   `json:"p75"`
	Max     Stat   `json:"max"`
}

// CorrelationMatrix is the Pearson correlation of the numeric columns.
// Values[i][j] is the correlation between Columns[i] and Columns[j];
// entries involving a constant column are null.
type CorrelationMatrix struct {
	Columns []string `json:"columns"`
	Values  [][]Stat `json:"values"`
}

// Snapshot carries the headline numbers of one analysis.
type Snapshot struct {
	RawRows           int `json:"raw_rows"`
	CleanedRows       int `json:"cleaned_rows"`
	Columns           int `json:"columns"`
	DroppedDuplicates int `json:"dropped_duplicates"`
	ImputedCells      int `json:"imputed_cells"`
}
