package extract

import (
	"strings"
	"unicode/utf8"
)

// IsScanned reports whether extracted text looks like it came from a
// scanned or image-only PDF. The rules cascade: empty text, fewer than
// 100 non-whitespace characters, or fewer than 20 words all classify
// the document as scanned.
func IsScanned(text string) bool {
	if text == "" {
		return true
	}

	stripped := strings.Join(strings.Fields(text), "")
	if utf8.RuneCountInString(stripped) < 100 {
		return true
	}

	if WordCount(text) < 20 {
		return true
	}

	return false
}

// WordCount counts whitespace-separated words in extracted text.
func WordCount(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	return len(strings.Fields(text))
}
