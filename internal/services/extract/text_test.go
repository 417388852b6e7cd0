package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

// writeFixturePDF generates a small PDF with one block of text per page.
func writeFixturePDF(t *testing.T, path string, pages ...string) {
	t.Helper()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Fixture Title", true)
	doc.SetAuthor("Fixture Author", true)
	for _, text := range pages {
		doc.AddPage()
		doc.SetFont("Helvetica", "", 12)
		doc.MultiCell(180, 8, text, "", "L", false)
	}
	require.NoError(t, doc.OutputFileAndClose(path))
}

func TestExtractText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.pdf")
	writeFixturePDF(t, path,
		"The quick brown fox jumps over the lazy dog on the first page.",
		"A second page carries more narrative text for the extractor.",
	)

	extractor := NewTextExtractor(arbor.NewLogger(), 0)
	result, err := extractor.ExtractText(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 2, result.PageCount)
	assert.Contains(t, result.Text, "quick brown fox")
	assert.Contains(t, result.Text, "second page")
	assert.Equal(t, "Fixture Title", result.Info["Title"])
	assert.Equal(t, "Fixture Author", result.Info["Author"])
}

func TestExtractTextFileNotFound(t *testing.T) {
	extractor := NewTextExtractor(arbor.NewLogger(), 0)

	path := filepath.Join(t.TempDir(), "missing.pdf")
	_, err := extractor.ExtractText(context.Background(), path)
	require.Error(t, err)
	assert.Equal(t, ReasonFileNotFound, ReasonOf(err))
	assert.Contains(t, err.Error(), "PDF file not found at path: "+path)
}

func TestExtractTextCorruptInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 this is not really a pdf body at all"), 0644))

	extractor := NewTextExtractor(arbor.NewLogger(), 0)
	_, err := extractor.ExtractText(context.Background(), path)
	require.Error(t, err)
	assert.Equal(t, ReasonInvalidOrCorrupt, ReasonOf(err))
}

func TestExtractTextTooLarge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.pdf")
	writeFixturePDF(t, path, strings.Repeat("padding words to grow the file. ", 50))

	extractor := NewTextExtractor(arbor.NewLogger(), 16)
	_, err := extractor.ExtractText(context.Background(), path)
	require.Error(t, err)
	assert.Equal(t, ReasonTooLarge, ReasonOf(err))
}

func TestDetectTablesOnPlainDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prose.pdf")
	writeFixturePDF(t, path, "Plain flowing prose without any tabular structure at all.")

	detector := NewTableDetector(arbor.NewLogger())
	tables, err := detector.DetectTables(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, tables)
}

// writeGridPDF lays out a 3x3 grid of cells at fixed page positions.
func writeGridPDF(t *testing.T, path string) {
	t.Helper()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()
	doc.SetFont("Helvetica", "", 12)
	for row := 0; row < 3; row++ {
		doc.SetXY(20, 40+float64(row)*12)
		for col := 0; col < 3; col++ {
			doc.CellFormat(35, 8, fmt.Sprintf("R%dC%d", row+1, col+1), "", 0, "L", false, 0, "")
		}
	}
	require.NoError(t, doc.OutputFileAndClose(path))
}

func TestDetectTablesOnGridDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.pdf")
	writeGridPDF(t, path)

	detector := NewTableDetector(arbor.NewLogger())
	tables, err := detector.DetectTables(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, tables, 1)

	table := tables[0]
	assert.Equal(t, 1, table.PageNumber)
	assert.Equal(t, 3, table.RowCount)
	assert.Equal(t, 3, table.ColCount)
	assert.Contains(t, table.HTML, "<th>R1C1</th>")
	assert.Contains(t, table.HTML, "<td>R3C3</td>")
}

func TestDetectTablesCorruptInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0644))

	detector := NewTableDetector(arbor.NewLogger())
	_, err := detector.DetectTables(context.Background(), path)
	assert.Error(t, err)
}
