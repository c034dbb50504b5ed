package model

import "strings"

// SourceFormat tags where a document's text came from
type SourceFormat string

const (
	FormatText     SourceFormat = "txt"
	FormatMarkdown SourceFormat = "md"
	FormatPDF      SourceFormat = "pdf"
	FormatDOCX     SourceFormat = "docx"
	FormatHTML     SourceFormat = "html"
	FormatRaw      SourceFormat = "raw" // Text handed in directly (API body, stdin)
)

// Document is the raw text of one analysis request.
// It is never stored beyond the request that created it.
type Document struct {
	Source string       // File path, URL, or "-" for direct input
	Format SourceFormat // Opaque to the pipeline, kept for the report
	Text   string       // Plain text with internal line breaks preserved
}

// IsEmpty reports whether the document carries no usable text
func (d Document) IsEmpty() bool {
	return strings.TrimSpace(d.Text) == ""
}

// Clause is one bounded, independently analyzable span of document text
type Clause struct {
	Position  int    `json:"position"`   // 0-based order of appearance after segmentation
	Text      string `json:"text"`       // Clause text, whitespace-normalized
	WordCount int    `json:"word_count"` // Derived from Text
}

// NewClauses wraps segmenter output into positioned clauses
func NewClauses(texts []string) []Clause {
	clauses := make([]Clause, len(texts))
	for i, text := range texts {
		clauses[i] = Clause{
			Position:  i,
			Text:      text,
			WordCount: WordCount(text),
		}
	}
	return clauses
}

// WordCount counts whitespace-separated words
func WordCount(text string) int {
	return len(strings.Fields(text))
}
