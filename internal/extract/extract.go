// Package extract turns a document source (file path or URL) into plain text.
//
// Line breaks are preserved so the segmenter can see headings and numbered
// points. An empty result is not an error at this level.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ppiankov/clausewise/internal/model"
)

var (
	// ErrUnsupportedFormat is returned for sources whose type cannot be read
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrMalformed is returned when a PDF or DOCX file cannot be decoded
	ErrMalformed = errors.New("malformed document")
)

// Extractor reads local files and, when a fetcher is set, URLs
type Extractor struct {
	fetcher    *Fetcher
	pdfWorkers int
}

// NewExtractor creates an extractor. fetcher may be nil to refuse URLs.
func NewExtractor(fetcher *Fetcher) *Extractor {
	return &Extractor{
		fetcher:    fetcher,
		pdfWorkers: runtime.NumCPU(),
	}
}

// Extract returns the text of source
func (e *Extractor) Extract(ctx context.Context, source string) (model.Document, error) {
	if IsURL(source) {
		return e.extractURL(ctx, source)
	}

	format, err := FormatOf(source)
	if err != nil {
		return model.Document{}, err
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return model.Document{}, fmt.Errorf("read %s: %w", source, err)
	}

	text, err := e.Decode(ctx, format, data)
	if err != nil {
		return model.Document{}, err
	}

	return model.Document{Source: source, Format: format, Text: text}, nil
}

func (e *Extractor) extractURL(ctx context.Context, rawURL string) (model.Document, error) {
	if e.fetcher == nil {
		return model.Document{}, fmt.Errorf("%w: URL sources are disabled", ErrUnsupportedFormat)
	}

	res, err := e.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return model.Document{}, err
	}

	format, err := formatFromContentType(res.ContentType, res.FinalURL)
	if err != nil {
		return model.Document{}, err
	}

	text, err := e.Decode(ctx, format, res.Body)
	if err != nil {
		return model.Document{}, err
	}

	return model.Document{Source: res.FinalURL, Format: format, Text: text}, nil
}

// Decode converts raw bytes of a known format into text
func (e *Extractor) Decode(ctx context.Context, format model.SourceFormat, data []byte) (string, error) {
	var (
		text string
		err  error
	)

	switch format {
	case model.FormatText, model.FormatMarkdown, model.FormatRaw:
		text = PlainText(data)
	case model.FormatHTML:
		text, err = HTMLText(data)
	case model.FormatPDF:
		text, err = PDFText(ctx, data, e.pdfWorkers)
	case model.FormatDOCX:
		text, err = DOCXText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", format, err)
	}

	return tidyLines(text), nil
}

// FormatOf maps a file name to its source format by extension
func FormatOf(name string) (model.SourceFormat, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".txt", ".text":
		return model.FormatText, nil
	case ".md", ".markdown":
		return model.FormatMarkdown, nil
	case ".html", ".htm", ".xhtml":
		return model.FormatHTML, nil
	case ".pdf":
		return model.FormatPDF, nil
	case ".docx":
		return model.FormatDOCX, nil
	default:
		if ext == "" {
			ext = "(none)"
		}
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// IsURL reports whether source should be fetched over HTTP
func IsURL(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// PlainText normalizes line endings and drops a UTF-8 byte order mark
func PlainText(data []byte) string {
	text := strings.TrimPrefix(string(data), "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// tidyLines collapses spaces inside each line and squeezes runs of blank
// lines to one, keeping paragraph structure intact
func tidyLines(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false

	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}
