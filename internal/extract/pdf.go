package extract

import (
	"bytes"
	"context"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rotisserie/eris"
)

// PDF extracts the plain text of every page, in page order, with no
// separator between pages.
type PDF struct{}

// pageSource is the part of a parsed PDF the page walk needs.
type pageSource interface {
	NumPage() int
	PageText(n int) (string, error)
}

type pdfDocument struct {
	r *pdf.Reader
}

func (d pdfDocument) NumPage() int { return d.r.NumPage() }

func (d pdfDocument) PageText(n int) (string, error) {
	p := d.r.Page(n)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}

// Extract parses data as a PDF and concatenates the page texts.
func (PDF) Extract(ctx context.Context, data []byte) (text string, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", eris.Errorf("pdf: parse: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", eris.Wrap(err, "pdf: open")
	}
	return joinPages(ctx, pdfDocument{r: r})
}

func joinPages(ctx context.Context, src pageSource) (string, error) {
	var sb strings.Builder
	for i := 1; i <= src.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", eris.Wrap(err, "pdf: extraction cancelled")
		}
		t, err := src.PageText(i)
		if err != nil {
			return "", eris.Wrapf(err, "pdf: page %d", i)
		}
		sb.WriteString(t)
	}
	return sb.String(), nil
}
