package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRows(colCounts ...int) [][]fragment {
	rows := make([][]fragment, len(colCounts))
	for i, n := range colCounts {
		row := make([]fragment, n)
		for j := range row {
			row[j] = fragment{text: "cell", x: float64(j * 50), y: float64(700 - i*20)}
		}
		rows[i] = row
	}
	return rows
}

func TestBuildTableValidity(t *testing.T) {
	tests := []struct {
		name     string
		cols     []int
		accepted bool
	}{
		{"uniform grid", []int{3, 3, 3}, true},
		{"merged cell tolerated", []int{3, 3, 2, 3}, true},
		{"borderline deviation accepted", []int{2, 5}, true},
		{"too much deviation", []int{2, 6}, false},
		{"single row", []int{3}, false},
		{"mean below two", []int{1, 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := buildTable(makeRows(tt.cols...), 1)
			assert.Equal(t, tt.accepted, ok)
		})
	}
}

func TestBuildTableRendersHeaderRow(t *testing.T) {
	rows := [][]fragment{
		{{text: "Name", x: 0}, {text: "Qty", x: 100}},
		{{text: "Widget", x: 0}, {text: "4", x: 100}},
	}

	table, ok := buildTable(rows, 2)
	require.True(t, ok)

	assert.Equal(t, "<table><tr><th>Name</th><th>Qty</th></tr><tr><td>Widget</td><td>4</td></tr></table>", table.HTML)
	assert.Equal(t, 2, table.PageNumber)
	assert.Equal(t, 2, table.RowCount)
	assert.Equal(t, 2, table.ColCount)
}

func TestBuildTableEscapesHTML(t *testing.T) {
	rows := [][]fragment{
		{{text: `<b>"bold"</b>`, x: 0}, {text: "a & b", x: 100}},
		{{text: "it's", x: 0}, {text: "plain", x: 100}},
	}

	table, ok := buildTable(rows, 1)
	require.True(t, ok)

	assert.Contains(t, table.HTML, "&lt;b&gt;&quot;bold&quot;&lt;/b&gt;")
	assert.Contains(t, table.HTML, "a &amp; b")
	assert.Contains(t, table.HTML, "it&#39;s")
	assert.NotContains(t, table.HTML, `<b>`)
}

func TestGroupRowsQuantizesY(t *testing.T) {
	fragments := []fragment{
		{text: "a", x: 0, y: 700.0},
		{text: "b", x: 100, y: 698.9}, // same 3-unit bucket as 700.0
		{text: "c", x: 0, y: 680},
		{text: "d", x: 50, y: 679.6},
	}

	rows := groupRows(fragments)
	require.Len(t, rows, 2)

	// Top row first (higher y), cells ordered left to right
	assert.Equal(t, "a", rows[0][0].text)
	assert.Equal(t, "b", rows[0][1].text)
	assert.Equal(t, "c", rows[1][0].text)
	assert.Equal(t, "d", rows[1][1].text)
}

func TestGroupRowsMergesGlyphRuns(t *testing.T) {
	// One fragment per glyph, as the parser reports them: two words far
	// apart on one baseline collapse into two cells
	fragments := []fragment{
		{text: "N", x: 72, y: 700, w: 8},
		{text: "a", x: 80, y: 700, w: 6},
		{text: "m", x: 86, y: 700, w: 10},
		{text: "e", x: 96, y: 700, w: 6},
		{text: "Q", x: 200, y: 700, w: 9},
		{text: "t", x: 209, y: 700, w: 4},
		{text: "y", x: 213, y: 700, w: 6},
	}

	rows := groupRows(fragments)
	require.Len(t, rows, 1)
	require.Len(t, rows[0], 2)
	assert.Equal(t, "Name", rows[0][0].text)
	assert.Equal(t, "Qty", rows[0][1].text)
}

func TestGroupRowsKeepsSpacesInsideCells(t *testing.T) {
	fragments := []fragment{
		{text: "a", x: 0, y: 700, w: 6},
		{text: " ", x: 6, y: 700, w: 3},
		{text: "b", x: 9, y: 700, w: 6},
		{text: " ", x: 100, y: 700, w: 3}, // stray whitespace run, dropped
	}

	rows := groupRows(fragments)
	require.Len(t, rows, 1)
	require.Len(t, rows[0], 1)
	assert.Equal(t, "a b", rows[0][0].text)
}

func TestGroupRowsSeparatesDistantY(t *testing.T) {
	fragments := []fragment{
		{text: "top", x: 0, y: 700},
		{text: "bottom", x: 0, y: 690},
	}

	rows := groupRows(fragments)
	require.Len(t, rows, 2)
	assert.Equal(t, "top", rows[0][0].text)
	assert.Equal(t, "bottom", rows[1][0].text)
}
