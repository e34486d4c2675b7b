// Package pdftext extracts plain text from downloaded circular PDFs.
package pdftext

import (
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// Extract reads the PDF at path page by page and returns up to
// maxChars runes of concatenated text. The cutoff bounds
// summarization cost, not content value. Corrupt or unreadable files
// fail soft: the result is an empty string and callers skip
// summarization for that entry.
func Extract(path string, maxChars int) (text string) {
	// The pdf library panics on some malformed files.
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	var b strings.Builder
	runes := 0
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
		runes += utf8.RuneCountInString(content) + 1
		if maxChars > 0 && runes >= maxChars {
			break
		}
	}
	return truncate(b.String(), maxChars)
}

// truncate cuts s at limit runes. The same unit the chunker counts
// in, so the budget means one thing across the pipeline.
func truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
