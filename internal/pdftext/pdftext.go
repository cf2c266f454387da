package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrInvalidPDF means the payload could not be opened as a PDF.
	ErrInvalidPDF = errors.New("invalid pdf")
	// ErrNoText means the PDF opened but held no extractable text,
	// typically a scanned or encrypted document.
	ErrNoText = errors.New("no extractable text")
)

// Document is the text content of a PDF.
type Document struct {
	Text  string
	Pages int
}

// Parser extracts text from PDF bytes.
type Parser interface {
	Parse(ctx context.Context, data []byte) (Document, error)
}

// LedongthucParser implements Parser with github.com/ledongthuc/pdf.
type LedongthucParser struct{}

func (LedongthucParser) Parse(ctx context.Context, data []byte) (doc Document, err error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	if len(data) == 0 {
		return Document{}, ErrInvalidPDF
	}
	// the pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			doc = Document{}
			err = fmt.Errorf("%w: %v", ErrInvalidPDF, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	pages := reader.NumPage()

	plain, err := reader.GetPlainText()
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return Document{}, fmt.Errorf("read pdf text: %w", err)
	}

	text := NormalizeText(buf.String())
	if text == "" {
		return Document{Pages: pages}, ErrNoText
	}
	return Document{Text: text, Pages: pages}, nil
}

// NormalizeText trims each line, drops runs of blank lines and removes NUL
// bytes left by some PDF encoders.
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
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

var _ Parser = LedongthucParser{}
