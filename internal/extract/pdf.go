package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"
)

// maxPDFPages bounds work on very large files
const maxPDFPages = 500

// PDFText extracts page text in parallel and joins pages in order.
// Pages that cannot be decoded are skipped; a file where no page decodes
// fails with ErrMalformed. Files over maxPDFPages fail with ErrTooLarge.
func PDFText(ctx context.Context, data []byte, workers int) (string, error) {
	var (
		reader *pdf.Reader
		count  int
	)
	err := guard(func() error {
		r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return err
		}
		reader, count = r, r.NumPage()
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", ErrMalformed, err)
	}

	if count > maxPDFPages {
		return "", fmt.Errorf("%w: %d pages (limit %d)", ErrTooLarge, count, maxPDFPages)
	}
	if workers < 1 {
		workers = 1
	}

	pages := make([]string, count)
	var failed atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 1; i <= count; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			err := guard(func() error {
				page := reader.Page(i)
				if page.V.IsNull() {
					return nil
				}
				text, err := page.GetPlainText(nil)
				if err != nil {
					return err
				}
				pages[i-1] = text
				return nil
			})
			if err != nil {
				failed.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", err
	}
	if count > 0 && int(failed.Load()) == count {
		return "", fmt.Errorf("%w: no readable pages", ErrMalformed)
	}

	var buf strings.Builder
	for _, text := range pages {
		if strings.TrimSpace(text) == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(text)
	}

	return buf.String(), nil
}

// guard runs fn and turns a panic into an error. The pdf package panics on
// broken object graphs, and page work runs off the request goroutine where
// no HTTP recoverer can see it.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf panic: %v", r)
		}
	}()
	return fn()
}
