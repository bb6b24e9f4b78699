package ingest

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"datastudio/pkg/contracts/domain"
)

const (
	// Horizontal whitespace wider than cellGapPoints starts a new cell;
	// anything narrower than wordGapPoints glues fragments of one word
	// back together.
	cellGapPoints = 10.0
	wordGapPoints = 1.0

	// A page counts as holding a table once it has a header row plus at
	// least one data row, each with two or more cells.
	minTableRows = 2
	minTableCols = 2
)

type textSpan struct {
	x     float64
	width float64
	text  string
}

type pageTable struct {
	page   int
	header []string
	rows   [][]string
}

// readPDF scans every page for a tabular region and concatenates the
// page tables into one grid, unioning columns by name and tagging each
// row with its source page in a trailing _source_page column.
func readPDF(raw []byte) (domain.Table, []string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return domain.Table{}, nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	var tables []pageTable
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		if table, ok := pageTableFromRows(pageNum, rows); ok {
			tables = append(tables, table)
		}
	}

	if len(tables) == 0 {
		return domain.NewTable(), []string{"No PDF tables detected. Returning empty frame."}, nil
	}

	header, grid := unionPageTables(tables)
	note := fmt.Sprintf("Extracted %d table(s) from PDF.", len(tables))
	return gridTable(header, grid), []string{note}, nil
}

// pageTableFromRows clusters a page's text rows into cells, top to
// bottom. The first multi-cell row becomes the header; pages without
// enough table-shaped rows report ok=false.
func pageTableFromRows(pageNum int, rows pdf.Rows) (pageTable, bool) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Position > rows[j].Position })

	var grid [][]string
	for _, row := range rows {
		spans := make([]textSpan, 0, len(row.Content))
		for _, word := range row.Content {
			if strings.TrimSpace(word.S) == "" {
				continue
			}
			spans = append(spans, textSpan{x: word.X, width: word.W, text: word.S})
		}
		if cells := clusterCells(spans, cellGapPoints); len(cells) >= minTableCols {
			grid = append(grid, cells)
		}
	}

	if len(grid) < minTableRows {
		return pageTable{}, false
	}
	return pageTable{page: pageNum, header: grid[0], rows: grid[1:]}, true
}

// clusterCells merges spans of one text row into cells by horizontal
// distance. Spans closer than wordGapPoints concatenate directly,
// spans within the same cell join with a space, and a gap wider than
// the cell threshold starts the next cell.
func clusterCells(spans []textSpan, cellGap float64) []string {
	if len(spans) == 0 {
		return nil
	}
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].x < spans[j].x })

	var cells []string
	current := spans[0].text
	end := spans[0].x + spans[0].width

	for _, span := range spans[1:] {
		gap := span.x - end
		switch {
		case gap > cellGap:
			cells = append(cells, current)
			current = span.text
			end = span.x + span.width
			continue
		case gap > wordGapPoints:
			current += " " + span.text
		default:
			current += span.text
		}
		if e := span.x + span.width; e > end {
			end = e
		}
	}
	return append(cells, current)
}

// unionPageTables concatenates page tables row-wise, aligning cells to
// the union of all headers in first-seen order. Cells a page lacks stay
// empty and turn into missing values downstream; the trailing
// _source_page column records the 1-based page of every row.
func unionPageTables(tables []pageTable) ([]string, [][]string) {
	var names []string
	index := make(map[string]int)
	for _, t := range tables {
		for _, name := range t.header {
			if _, ok := index[name]; !ok {
				index[name] = len(names)
				names = append(names, name)
			}
		}
	}

	width := len(names) + 1
	var grid [][]string
	for _, t := range tables {
		for _, row := range t.rows {
			out := make([]string, width)
			for i, cell := range row {
				if i >= len(t.header) {
					break
				}
				out[index[t.header[i]]] = cell
			}
			out[width-1] = strconv.Itoa(t.page)
			grid = append(grid, out)
		}
	}

	header := append(append(make([]string, 0, width), names...), "_source_page")
	return header, grid
}
