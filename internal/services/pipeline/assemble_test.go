package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/folio/internal/models"
)

func TestAssembleContentTextOnly(t *testing.T) {
	content := AssembleContent("plain extracted text", nil, nil)
	assert.Equal(t, "plain extracted text", content)
	assert.NotContains(t, content, "---")
}

func TestAssembleContentWithTables(t *testing.T) {
	tables := []models.ExtractedTable{
		{HTML: "<table><tr><th>A</th><th>B</th></tr></table>"},
		{HTML: "<table><tr><th>C</th><th>D</th></tr></table>"},
	}

	content := AssembleContent("body", tables, nil)
	assert.Equal(t,
		"body\n\n---\n\n[TABLE:0]\n<table><tr><th>A</th><th>B</th></tr></table>\n\n[TABLE:1]\n<table><tr><th>C</th><th>D</th></tr></table>",
		content)
}

func TestAssembleContentWithImages(t *testing.T) {
	images := []models.ExtractedImage{
		{Filename: "page-1.png"},
		{Filename: "page-2.png"},
	}

	content := AssembleContent("body", nil, images)
	assert.Equal(t, "body\n\n---\n\n[IMAGE:page-1.png]\n[IMAGE:page-2.png]", content)
}

func TestAssembleContentOrdering(t *testing.T) {
	tables := []models.ExtractedTable{{HTML: "<table></table>"}}
	images := []models.ExtractedImage{{Filename: "page-1.png"}}

	content := AssembleContent("body", tables, images)
	assert.Equal(t, "body\n\n---\n\n[TABLE:0]\n<table></table>\n\n---\n\n[IMAGE:page-1.png]", content)
}

func TestAssembleContentDeterministic(t *testing.T) {
	tables := []models.ExtractedTable{{HTML: "<table><tr><td>x</td></tr></table>"}}
	images := []models.ExtractedImage{{Filename: "page-1.png"}, {Filename: "page-3.png"}}

	first := AssembleContent("body text", tables, images)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, AssembleContent("body text", tables, images))
	}
}
