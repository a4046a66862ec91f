package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p>
      <w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr>
      <w:r><w:t>Master Services</w:t></w:r>
      <w:r><w:tab/><w:t>Agreement</w:t></w:r>
    </w:p>
    <w:p>
      <w:r><w:t xml:space="preserve">Party A &amp; Party B</w:t></w:r>
      <w:r><w:br/><w:t>Term: 12 months</w:t></w:r>
    </w:p>
  </w:body>
</w:document>`

func buildDocx(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDocx_Extract(t *testing.T) {
	data := buildDocx(t, map[string]string{
		"[Content_Types].xml": `<Types/>`,
		"word/document.xml":   sampleDocument,
	})

	text, err := Docx{}.Extract(context.Background(), data)

	require.NoError(t, err)
	assert.Equal(t, "Master Services\tAgreement\nParty A & Party B\nTerm: 12 months", text)
}

func TestDocx_MissingDocumentPart(t *testing.T) {
	data := buildDocx(t, map[string]string{"word/styles.xml": `<w:styles/>`})

	_, err := Docx{}.Extract(context.Background(), data)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "word/document.xml not found")
}

func TestDocx_LegacyBinaryDoc(t *testing.T) {
	// OLE2 compound file header, as found in .doc files.
	data := []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0, 0, 0, 0}

	_, err := Docx{}.Extract(context.Background(), data)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "docx: open package")
}
