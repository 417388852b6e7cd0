package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsScanned(t *testing.T) {
	longText := strings.Repeat("word ", 150)

	tests := []struct {
		name    string
		text    string
		scanned bool
	}{
		{"empty text", "", true},
		{"whitespace only", "   \n\t  ", true},
		{"under 100 chars", "short text with a few words here", true},
		{"dense but few words", strings.Repeat("abcdefghij", 15), true},
		{"enough chars and words", longText, false},
		{"exactly 19 words", strings.Repeat("abcdefgh ", 19), true},
		{"exactly 20 words", strings.Repeat("abcdefgh ", 20), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.scanned, IsScanned(tt.text))
		})
	}
}

func TestIsScannedRuleCascade(t *testing.T) {
	// 99 non-whitespace characters across plenty of words still counts
	// as scanned: the density rule fires independently of word count.
	text := strings.Repeat("abc ", 33) // 99 chars stripped, 33 words
	assert.True(t, IsScanned(text))

	// 19 long words pass the density rule but fail the word-count rule.
	text = strings.Repeat("abcdefghijkl ", 19)
	assert.True(t, IsScanned(text))
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 0, WordCount("   \n "))
	assert.Equal(t, 1, WordCount("hello"))
	assert.Equal(t, 5, WordCount("one two three four five"))
	assert.Equal(t, 3, WordCount("  spaced \t out\nwords  "))
}
