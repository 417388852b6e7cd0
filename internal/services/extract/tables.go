package extract

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

const (
	// rowBucketSize is the y-coordinate quantization increment: fragments
	// whose y rounds to the same 3-unit bucket belong to one visual row.
	rowBucketSize = 3.0

	minTableRows = 2
	minMeanCols  = 2.0
	// maxColDeviation tolerates merged cells: a row's column count may
	// deviate from the candidate mean by at most this much.
	maxColDeviation = 1.5

	// maxCellGap separates cells within a row. The parser reports one
	// fragment per glyph; runs whose horizontal gap stays under this
	// many points are one cell, wider gaps are column boundaries.
	maxCellGap = 4.0
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// TableDetector finds tabular regions by grouping positioned text
// fragments into rows and checking column consistency.
type TableDetector struct {
	logger arbor.ILogger
}

// NewTableDetector creates a table detector.
func NewTableDetector(logger arbor.ILogger) interfaces.TableDetector {
	return &TableDetector{logger: logger}
}

// fragment is one positioned text run on a page.
type fragment struct {
	text string
	x    float64
	y    float64
	w    float64
}

// DetectTables scans every page for table candidates and renders the
// accepted ones as HTML. A single page's failure is logged and skipped.
func (d *TableDetector) DetectTables(ctx context.Context, path string) (tables []models.ExtractedTable, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn().Str("path", path).Str("panic", fmt.Sprintf("%v", r)).Msg("PDF parser panicked during table detection")
			tables = nil
			err = NewError(ReasonInvalidOrCorrupt, path, "failed to parse PDF for tables", fmt.Errorf("parser panic: %v", r))
		}
	}()

	f, reader, openErr := pdf.Open(path)
	if openErr != nil {
		return nil, NewError(ReasonInvalidOrCorrupt, path, "failed to parse PDF for tables", openErr)
	}
	defer f.Close()

	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		select {
		case <-ctx.Done():
			return tables, ctx.Err()
		default:
		}

		pageTables := d.detectPage(reader, pageNum)
		tables = append(tables, pageTables...)
	}

	return tables, nil
}

// detectPage runs row grouping and candidate scanning for one page.
// Failures are contained here so other pages still get processed.
func (d *TableDetector) detectPage(reader *pdf.Reader, pageNum int) (tables []models.ExtractedTable) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn().Int("page", pageNum).Str("panic", fmt.Sprintf("%v", r)).Msg("Table detection failed for page, skipping")
			tables = nil
		}
	}()

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return nil
	}

	// Keep whitespace glyphs: they carry the x advance that holds a
	// cell's words together during run merging
	var glyphs []fragment
	for _, t := range page.Content().Text {
		glyphs = append(glyphs, fragment{text: t.S, x: t.X, y: t.Y, w: t.W})
	}
	if len(glyphs) == 0 {
		return nil
	}

	rows := groupRows(glyphs)

	// Scan rows in order: a row with 2+ fragments extends the current
	// candidate, a narrower row terminates it.
	var candidate [][]fragment
	flush := func() {
		if table, ok := buildTable(candidate, pageNum); ok {
			tables = append(tables, table)
		}
		candidate = nil
	}

	for _, row := range rows {
		if len(row) >= 2 {
			candidate = append(candidate, row)
		} else {
			flush()
		}
	}
	flush()

	return tables
}

// groupRows buckets fragments by quantized y, orders buckets top to
// bottom, sorts each row left to right and merges adjacent glyph runs
// into cell-level fragments.
func groupRows(fragments []fragment) [][]fragment {
	buckets := map[int][]fragment{}
	for _, frag := range fragments {
		key := int(math.Round(frag.y/rowBucketSize)) * int(rowBucketSize)
		buckets[key] = append(buckets[key], frag)
	}

	keys := make([]int, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	// Higher y first: PDF coordinates grow upward
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))

	rows := make([][]fragment, 0, len(keys))
	for _, key := range keys {
		row := buckets[key]
		sort.Slice(row, func(i, j int) bool { return row[i].x < row[j].x })
		if cells := mergeRuns(row); len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	return rows
}

// mergeRuns folds a left-to-right glyph row into cells, splitting where
// the gap between one run's right edge and the next run's start exceeds
// maxCellGap. Whitespace-only cells are dropped.
func mergeRuns(row []fragment) []fragment {
	var cells []fragment
	var cur fragment
	open := false

	flush := func() {
		cur.text = strings.TrimSpace(cur.text)
		if cur.text != "" {
			cells = append(cells, cur)
		}
	}

	for _, frag := range row {
		if open && frag.x-(cur.x+cur.w) <= maxCellGap {
			cur.text += frag.text
			if end := frag.x + frag.w; end > cur.x+cur.w {
				cur.w = end - cur.x
			}
			continue
		}
		if open {
			flush()
		}
		cur = frag
		open = true
	}
	if open {
		flush()
	}
	return cells
}

// buildTable validates a candidate and renders it as HTML. The first
// row becomes header cells.
func buildTable(rows [][]fragment, pageNum int) (models.ExtractedTable, bool) {
	if len(rows) < minTableRows {
		return models.ExtractedTable{}, false
	}

	total := 0
	maxCols := 0
	for _, row := range rows {
		total += len(row)
		if len(row) > maxCols {
			maxCols = len(row)
		}
	}
	mean := float64(total) / float64(len(rows))
	if mean < minMeanCols {
		return models.ExtractedTable{}, false
	}

	for _, row := range rows {
		if math.Abs(float64(len(row))-mean) > maxColDeviation {
			return models.ExtractedTable{}, false
		}
	}

	var sb strings.Builder
	sb.WriteString("<table>")
	for i, row := range rows {
		tag := "td"
		if i == 0 {
			tag = "th"
		}
		sb.WriteString("<tr>")
		for _, cell := range row {
			sb.WriteString("<" + tag + ">")
			sb.WriteString(htmlEscaper.Replace(cell.text))
			sb.WriteString("</" + tag + ">")
		}
		sb.WriteString("</tr>")
	}
	sb.WriteString("</table>")

	return models.ExtractedTable{
		HTML:       sb.String(),
		PageNumber: pageNum,
		RowCount:   len(rows),
		ColCount:   maxCols,
	}, true
}
