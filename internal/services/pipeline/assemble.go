package pipeline

import (
	"fmt"
	"strings"

	"github.com/ternarybob/folio/internal/models"
)

// sectionSeparator is embedded in chapter content before each auxiliary
// section. Readers key off the exact byte sequence, so it never changes.
const sectionSeparator = "\n\n---\n\n"

// AssembleContent builds the final chapter content: extracted text,
// then the table section, then the image placeholder section. The
// output is deterministic for fixed inputs.
func AssembleContent(text string, tables []models.ExtractedTable, images []models.ExtractedImage) string {
	var sb strings.Builder
	sb.WriteString(text)

	if len(tables) > 0 {
		parts := make([]string, len(tables))
		for i, table := range tables {
			parts[i] = fmt.Sprintf("[TABLE:%d]\n%s", i, table.HTML)
		}
		sb.WriteString(sectionSeparator)
		sb.WriteString(strings.Join(parts, "\n\n"))
	}

	if len(images) > 0 {
		lines := make([]string, len(images))
		for i, img := range images {
			lines[i] = fmt.Sprintf("[IMAGE:%s]", img.Filename)
		}
		sb.WriteString(sectionSeparator)
		sb.WriteString(strings.Join(lines, "\n"))
	}

	return sb.String()
}
