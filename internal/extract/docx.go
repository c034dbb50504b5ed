package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBody = "word/document.xml"

// maxDOCXBytes caps the decompressed document part
var maxDOCXBytes int64 = 64 << 20

// DOCXText reads the main document part of a .docx archive.
// Paragraphs become lines; tabs and explicit breaks are kept.
func DOCXText(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: open docx: %v", ErrMalformed, err)
	}

	var body *zip.File
	for _, file := range archive.File {
		if file.Name == docxBody {
			body = file
			break
		}
	}
	if body == nil {
		return "", fmt.Errorf("%w: %s not found in archive", ErrMalformed, docxBody)
	}

	if body.UncompressedSize64 > uint64(maxDOCXBytes) {
		return "", fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrTooLarge, docxBody, body.UncompressedSize64, maxDOCXBytes)
	}

	rc, err := body.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	defer func() { _ = rc.Close() }()

	// The header size can lie, so the stream is capped as well
	capped := &cappedReader{r: rc, n: maxDOCXBytes + 1}
	text, err := wordXMLText(capped)
	if capped.exceeded {
		return "", fmt.Errorf("%w: %s over %d bytes", ErrTooLarge, docxBody, maxDOCXBytes)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return text, nil
}

// cappedReader fails once more than its budget has been read
type cappedReader struct {
	r        io.Reader
	n        int64
	exceeded bool
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if c.n <= 0 {
		c.exceeded = true
		return 0, ErrTooLarge
	}
	if int64(len(p)) > c.n {
		p = p[:c.n]
	}
	n, err := c.r.Read(p)
	c.n -= int64(n)
	return n, err
}

func wordXMLText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		buf     strings.Builder
		inText  bool
		inProps int // depth inside w:pPr / w:rPr, where w:tab is a tab stop
	)

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", docxBody, err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "pPr", "rPr":
				inProps++
			case "tab":
				if inProps == 0 {
					buf.WriteByte('\t')
				}
			case "br", "cr":
				buf.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "pPr", "rPr":
				inProps--
			case "p":
				buf.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				buf.Write(t)
			}
		}
	}

	return buf.String(), nil
}
