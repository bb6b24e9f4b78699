package ingest

import (
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datastudio/pkg/contracts/domain"
)

func word(x, w float64, s string) pdf.Text {
	return pdf.Text{X: x, W: w, S: s}
}

func TestClusterCellsSplitsOnWideGaps(t *testing.T) {
	cells := clusterCells([]textSpan{
		{x: 10, width: 30, text: "name"},
		{x: 100, width: 30, text: "score"},
		{x: 200, width: 30, text: "city"},
	}, cellGapPoints)

	assert.Equal(t, []string{"name", "score", "city"}, cells)
}

func TestClusterCellsJoinsWordsInsideACell(t *testing.T) {
	// "unit" and "price" sit 3pt apart: same cell, separate words.
	cells := clusterCells([]textSpan{
		{x: 10, width: 22, text: "unit"},
		{x: 35, width: 28, text: "price"},
		{x: 120, width: 30, text: "qty"},
	}, cellGapPoints)

	assert.Equal(t, []string{"unit price", "qty"}, cells)
}

func TestClusterCellsGluesSplitWordFragments(t *testing.T) {
	// Fragments closer than a point belong to one word.
	cells := clusterCells([]textSpan{
		{x: 10, width: 12, text: "ca"},
		{x: 22.4, width: 18, text: "tegory"},
	}, cellGapPoints)

	assert.Equal(t, []string{"category"}, cells)
}

func TestClusterCellsHandlesUnsortedSpans(t *testing.T) {
	cells := clusterCells([]textSpan{
		{x: 200, width: 30, text: "b"},
		{x: 10, width: 30, text: "a"},
	}, cellGapPoints)

	assert.Equal(t, []string{"a", "b"}, cells)
}

func TestPageTableFromRows(t *testing.T) {
	// Rows arrive in arbitrary vertical order; larger positions are
	// higher on the page. The single-cell title row is not tabular.
	rows := pdf.Rows{
		{Position: 600, Content: pdf.TextHorizontal{word(10, 30, "alice"), word(100, 15, "10")}},
		{Position: 750, Content: pdf.TextHorizontal{word(10, 80, "Quarterly Report")}},
		{Position: 700, Content: pdf.TextHorizontal{word(10, 30, "name"), word(100, 30, "score")}},
		{Position: 500, Content: pdf.TextHorizontal{word(10, 20, "bob"), word(100, 15, "12")}},
	}

	table, ok := pageTableFromRows(3, rows)
	require.True(t, ok)

	assert.Equal(t, 3, table.page)
	assert.Equal(t, []string{"name", "score"}, table.header)
	assert.Equal(t, [][]string{{"alice", "10"}, {"bob", "12"}}, table.rows)
}

func TestPageTableFromRowsRejectsProse(t *testing.T) {
	rows := pdf.Rows{
		{Position: 700, Content: pdf.TextHorizontal{word(10, 200, "This page is a paragraph of text.")}},
		{Position: 650, Content: pdf.TextHorizontal{word(10, 200, "No table lives here.")}},
	}

	_, ok := pageTableFromRows(1, rows)
	assert.False(t, ok)
}

func TestUnionPageTables(t *testing.T) {
	header, grid := unionPageTables([]pageTable{
		{page: 1, header: []string{"a", "b"}, rows: [][]string{{"1", "2"}, {"3", "4"}}},
		{page: 2, header: []string{"b", "c"}, rows: [][]string{{"5", "6"}}},
	})

	assert.Equal(t, []string{"a", "b", "c", "_source_page"}, header)
	assert.Equal(t, [][]string{
		{"1", "2", "", "1"},
		{"3", "4", "", "1"},
		{"", "5", "6", "2"},
	}, grid)
}

func TestUnionPageTablesFeedsGridInference(t *testing.T) {
	header, grid := unionPageTables([]pageTable{
		{page: 1, header: []string{"item", "count"}, rows: [][]string{{"bolt", "7"}}},
		{page: 2, header: []string{"item", "count"}, rows: [][]string{{"nut", "9"}}},
	})

	table := gridTable(header, grid)

	page := column(t, table, "_source_page")
	assert.Equal(t, domain.KindNumeric, page.Kind)
	assert.Equal(t, []float64{1, 2}, page.Numbers())

	count := column(t, table, "count")
	assert.Equal(t, domain.KindNumeric, count.Kind)
	assert.Equal(t, []float64{7, 9}, count.Numbers())
}

func TestReadPDFMalformed(t *testing.T) {
	_, _, err := readPDF([]byte("not a pdf"))
	assert.Error(t, err)
}
