package ingest

import (
	"strconv"
	"strings"

	"datastudio/pkg/contracts/domain"
)

// naMarkers are the cell spellings treated as missing in text-grid
// sources. Matching is exact after trimming surrounding whitespace.
var naMarkers = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"NaN":  {},
	"nan":  {},
	"NULL": {},
	"null": {},
	"None": {},
	"<NA>": {},
}

func isMissingCell(cell string) bool {
	_, ok := naMarkers[strings.TrimSpace(cell)]
	return ok
}

// gridTable assembles a Table from a header row and a grid of string
// cells. Rows shorter than the header are padded with missing cells;
// rows longer than the header are truncated to it.
func gridTable(header []string, grid [][]string) domain.Table {
	if len(header) == 0 {
		return domain.NewTable()
	}

	columns := make([]domain.Column, len(header))
	for i, name := range header {
		cells := make([]string, len(grid))
		for r, row := range grid {
			if i < len(row) {
				cells[r] = row[i]
			}
		}
		columns[i] = inferColumn(strings.TrimSpace(name), cells)
	}
	return domain.NewTable(columns...)
}

// inferColumn decides a column's kind from its cells and converts them.
// Numeric parsing trims surrounding whitespace first, so " 1.5" counts
// as a number, while the stored text of a text column keeps the cell
// exactly as it arrived.
func inferColumn(name string, cells []string) domain.Column {
	numeric := true
	for _, cell := range cells {
		if isMissingCell(cell) {
			continue
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err != nil {
			numeric = false
			break
		}
	}

	values := make([]domain.Value, len(cells))
	for i, cell := range cells {
		switch {
		case isMissingCell(cell):
			values[i] = domain.Missing()
		case numeric:
			f, _ := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			values[i] = domain.Number(f)
		default:
			values[i] = domain.Text(cell)
		}
	}

	kind := domain.KindText
	if numeric {
		kind = domain.KindNumeric
	}
	return domain.Column{Name: name, Kind: kind, Values: values}
}
