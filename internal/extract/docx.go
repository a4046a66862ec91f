package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

const documentPart = "word/document.xml"

// Docx extracts the body text of a WordprocessingML package. Paragraphs end
// with a newline, tab runs become '\t', and the result is whitespace-trimmed.
// Legacy binary .doc files are not zip packages and fail to open.
type Docx struct{}

// Extract reads word/document.xml from the package in data.
func (Docx) Extract(ctx context.Context, data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", eris.Wrap(err, "docx: open package")
	}

	for _, f := range zr.File {
		if f.Name != documentPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", eris.Wrap(err, "docx: open document part")
		}
		defer rc.Close()
		return documentText(ctx, rc)
	}
	return "", eris.Errorf("docx: %s not found", documentPart)
}

func documentText(ctx context.Context, r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		sb      strings.Builder
		inText  bool
		inProps int
	)

	for {
		if err := ctx.Err(); err != nil {
			return "", eris.Wrap(err, "docx: extraction cancelled")
		}
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", eris.Wrap(err, "docx: decode document part")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pPr":
				// tab stops live here and are not content
				inProps++
			case "t":
				inText = true
			case "tab":
				if inProps == 0 {
					sb.WriteByte('\t')
				}
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "pPr":
				inProps--
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return strings.TrimSpace(sb.String()), nil
}
