package local

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// maxPreviewChars bounds the stored text preview of an attachment
const maxPreviewChars = 1000

// previewableExtensions lists the file types previewed as text
var previewableExtensions = map[string]bool{
	".txt":  true,
	".csv":  true,
	".json": true,
	".xml":  true,
	".log":  true,
}

// BuildPreview returns a short text preview of an attachment, or the
// empty string for binary types, empty content or content that is not
// valid UTF-8. It never fails: any attachment yields either a preview
// or nothing.
func BuildPreview(filename string, content []byte) string {
	if len(content) == 0 {
		return ""
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !previewableExtensions[ext] {
		return ""
	}

	if !utf8.Valid(content) {
		return ""
	}

	text := strings.TrimSpace(string(content))
	runes := []rune(text)
	if len(runes) > maxPreviewChars {
		text = string(runes[:maxPreviewChars])
	}
	return text
}
