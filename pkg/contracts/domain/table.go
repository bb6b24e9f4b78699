package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the logical type of a column.
type Kind string

const (
	KindNumeric   Kind = "numeric"
	KindText      Kind = "text"
	KindTimestamp Kind = "timestamp"
)

type valueKind uint8

const (
	valueMissing valueKind = iota
	valueNumber
	valueText
	valueTime
)

// Value is a single table cell. The zero value is a missing cell.
type Value struct {
	kind valueKind
	num  float64
	str  string
	ts   time.Time
}

// Missing returns the missing-cell marker.
func Missing() Value {
	return Value{}
}

// Number creates a numeric cell. NaN and infinities are treated as missing
// so they can never leak into medians or quantiles.
func Number(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	return Value{kind: valueNumber, num: v}
}

// Text creates a text cell.
func Text(s string) Value {
	return Value{kind: valueText, str: s}
}

// Timestamp creates a timestamp cell, normalized to UTC.
func Timestamp(t time.Time) Value {
	return Value{kind: valueTime, ts: t.UTC()}
}

// IsMissing reports whether the cell holds no value.
func (v Value) IsMissing() bool {
	return v.kind == valueMissing
}

// Number returns the numeric payload and whether the cell is numeric.
func (v Value) Number() (float64, bool) {
	return v.num, v.kind == valueNumber
}

// Text returns the text payload and whether the cell is text.
func (v Value) Text() (string, bool) {
	return v.str, v.kind == valueText
}

// Time returns the timestamp payload and whether the cell is a timestamp.
func (v Value) Time() (time.Time, bool) {
	return v.ts, v.kind == valueTime
}

// Equal reports whether two cells hold the same value. Missing cells
// compare equal to each other, which is what duplicate detection needs.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case valueNumber:
		return v.num == o.num
	case valueText:
		return v.str == o.str
	case valueTime:
		return v.ts.Equal(o.ts)
	default:
		return true
	}
}

// String renders the cell the way it appears in CSV output and previews:
// missing cells render empty, numbers in minimal decimal form, timestamps
// as a date when the time component is midnight.
func (v Value) String() string {
	switch v.kind {
	case valueNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case valueText:
		return v.str
	case valueTime:
		if v.ts.Hour() == 0 && v.ts.Minute() == 0 && v.ts.Second() == 0 && v.ts.Nanosecond() == 0 {
			return v.ts.Format("2006-01-02")
		}
		return v.ts.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// MarshalJSON renders missing cells as null, numbers as JSON numbers and
// everything else in its String form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case valueMissing:
		return []byte("null"), nil
	case valueNumber:
		return json.Marshal(v.num)
	default:
		return json.Marshal(v.String())
	}
}

// Column is a named, typed sequence of cells.
type Column struct {
	Name   string  `json:"name"`
	Kind   Kind    `json:"kind"`
	Values []Value `json:"values"`
}

// MissingCount returns the number of missing cells in the column.
func (c Column) MissingCount() int {
	n := 0
	for _, v := range c.Values {
		if v.IsMissing() {
			n++
		}
	}
	return n
}

// Numbers returns the present numeric values of the column in row order.
func (c Column) Numbers() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if f, ok := v.Number(); ok {
			out = append(out, f)
		}
	}
	return out
}

// Table is an ordered collection of named, equally sized columns.
type Table struct {
	columns []Column
}

// NewTable builds a table from the given columns. Columns keep the order
// they are passed in.
func NewTable(columns ...Column) Table {
	return Table{columns: columns}
}

// RowCount returns the number of rows. A table with no columns has zero rows.
func (t Table) RowCount() int {
	if len(t.columns) == 0 {
		return 0
	}
	return len(t.columns[0].Values)
}

// ColumnCount returns the number of columns.
func (t Table) ColumnCount() int {
	return len(t.columns)
}

// IsEmpty reports whether the table has no rows or no columns.
func (t Table) IsEmpty() bool {
	return t.RowCount() == 0
}

// Columns returns the backing column slice. Callers that need an
// independent table must use Clone.
func (t Table) Columns() []Column {
	return t.columns
}

// ColumnNames returns the column names in order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the first column with the given name.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Row returns the cells of row i across all columns.
func (t Table) Row(i int) []Value {
	row := make([]Value, len(t.columns))
	for j, c := range t.columns {
		row[j] = c.Values[i]
	}
	return row
}

// Head returns a table holding at most n leading rows. Column kinds and
// order are preserved and the result shares no cell storage with t.
func (t Table) Head(n int) Table {
	if n > t.RowCount() {
		n = t.RowCount()
	}
	cols := make([]Column, len(t.columns))
	for i, c := range t.columns {
		vals := make([]Value, n)
		copy(vals, c.Values[:n])
		cols[i] = Column{Name: c.Name, Kind: c.Kind, Values: vals}
	}
	return Table{columns: cols}
}

// Clone returns a deep copy. The raw and cleaned tables of an analysis must
// stay independently inspectable, so cleaning always starts from a clone.
func (t Table) Clone() Table {
	cols := make([]Column, len(t.columns))
	for i, c := range t.columns {
		vals := make([]Value, len(c.Values))
		copy(vals, c.Values)
		cols[i] = Column{Name: c.Name, Kind: c.Kind, Values: vals}
	}
	return Table{columns: cols}
}

// Equal reports whether two tables have the same columns, kinds and cells.
func (t Table) Equal(o Table) bool {
	if len(t.columns) != len(o.columns) {
		return false
	}
	for i, c := range t.columns {
		oc := o.columns[i]
		if c.Name != oc.Name || c.Kind != oc.Kind || len(c.Values) != len(oc.Values) {
			return false
		}
		for j, v := range c.Values {
			if !v.Equal(oc.Values[j]) {
				return false
			}
		}
	}
	return true
}

// RowKey returns a collision-safe string identity for row i, used for
// duplicate detection. Cells are tagged with their kind so the text "1"
// never collides with the number 1.
func (t Table) RowKey(i int) string {
	var b strings.Builder
	for _, c := range t.columns {
		v := c.Values[i]
		switch v.kind {
		case valueNumber:
			b.WriteString("n:")
			b.WriteString(strconv.FormatFloat(v.num, 'g', -1, 64))
		case valueText:
			b.WriteString("s:")
			b.WriteString(v.str)
		case valueTime:
			b.WriteString("t:")
			b.WriteString(strconv.FormatInt(v.ts.UnixNano(), 10))
		default:
			b.WriteString("m:")
		}
		b.WriteByte(0x1f)
	}
	return b.String()
}
