package util

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

const sampleDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">Go </w:t></w:r><w:r><w:t>Developer</w:t></w:r></w:p>
    <w:p><w:r><w:t>Skills:</w:t><w:tab/><w:t>Go, SQL</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestExtractDocumentTextDOCX(t *testing.T) {
	data := buildDOCX(t, sampleDocumentXML)

	text, err := ExtractDocumentText(context.Background(), "cv.DOCX", data, nil)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := "Jane Doe\nGo Developer\nSkills:\tGo, SQL"
	if text != want {
		t.Fatalf("expected %q, got %q", want, text)
	}
}

func TestExtractDocumentTextTXT(t *testing.T) {
	text, err := ExtractDocumentText(context.Background(), "cv.txt", []byte("  plain resume \n"), nil)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if text != "plain resume" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractDocumentTextErrors(t *testing.T) {
	ctx := context.Background()

	if _, err := ExtractDocumentText(ctx, "cv.odt", []byte("x"), nil); !errors.Is(err, ErrUnsupportedDocument) {
		t.Fatalf("expected ErrUnsupportedDocument, got %v", err)
	}
	if _, err := ExtractDocumentText(ctx, "cv.txt", []byte("   "), nil); !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
	if _, err := ExtractDocumentText(ctx, "cv.docx", []byte("not a zip"), nil); err == nil {
		t.Fatalf("expected error for corrupt docx")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, _ = zw.Create("word/styles.xml")
	_ = zw.Close()
	if _, err := ExtractDocumentText(ctx, "cv.docx", buf.Bytes(), nil); err == nil {
		t.Fatalf("expected error for docx without document.xml")
	}
}

func TestExtractDOCXSizeCap(t *testing.T) {
	paragraph := `<w:p><w:r><w:t>` + strings.Repeat("a", 200) + `</w:t></w:r></w:p>`
	documentXML := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		strings.Repeat(paragraph, 50) + `</w:body></w:document>`
	data := buildDOCX(t, documentXML)

	if _, err := extractDOCX(data, 1024); !errors.Is(err, ErrDocumentTooLarge) {
		t.Fatalf("expected ErrDocumentTooLarge, got %v", err)
	}

	text, err := extractDOCX(data, int64(len(documentXML)))
	if err != nil {
		t.Fatalf("document at the limit should extract: %v", err)
	}
	if got := strings.Count(text, "\n"); got != 50 {
		t.Fatalf("expected 50 paragraphs, got %d", got)
	}
}

func TestCappedReaderIgnoresZipHeader(t *testing.T) {
	r := &cappedReader{r: strings.NewReader(strings.Repeat("x", 100)), left: 10 + 1}
	if _, err := io.ReadAll(r); !errors.Is(err, ErrDocumentTooLarge) {
		t.Fatalf("expected ErrDocumentTooLarge, got %v", err)
	}

	r = &cappedReader{r: strings.NewReader("short"), left: 10 + 1}
	got, err := io.ReadAll(r)
	if err != nil || string(got) != "short" {
		t.Fatalf("expected short input to pass, got %q, %v", got, err)
	}
}
