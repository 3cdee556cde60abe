package util

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"image/png"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

var (
	ErrUnsupportedDocument = errors.New("unsupported file format")
	ErrEmptyDocument       = errors.New("no text extracted from document")
	ErrDocumentTooLarge    = errors.New("document content too large")
)

// maxDocxXMLBytes caps the decompressed size of word/document.xml.
const maxDocxXMLBytes = 16 << 20

// ExtractDocumentText returns the plain text of an uploaded CV. The format is
// picked from the file extension: .pdf, .docx or .txt.
func ExtractDocumentText(ctx context.Context, filename string, data []byte, log *zap.Logger) (string, error) {
	if log == nil {
		log = zap.NewNop()
	}

	ext := strings.ToLower(filepath.Ext(filename))
	var (
		text string
		err  error
	)
	switch ext {
	case ".pdf":
		text, err = extractPDF(ctx, data, log)
	case ".docx":
		text, err = extractDOCX(data, maxDocxXMLBytes)
	case ".txt":
		text = string(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDocument, ext)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyDocument
	}
	log.Debug("document text extracted",
		zap.String("format", ext),
		zap.Int("chars", len(text)),
	)
	return text, nil
}

func extractPDF(ctx context.Context, data []byte, log *zap.Logger) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var fullText strings.Builder
	for n := 0; n < doc.NumPage(); n++ {
		pageText, err := doc.Text(n)
		if err != nil {
			return "", fmt.Errorf("page %d: failed to extract text: %w", n+1, err)
		}
		fullText.WriteString(strings.TrimSpace(pageText))
		fullText.WriteString("\n")
	}

	text := strings.TrimSpace(fullText.String())
	if text != "" {
		return text, nil
	}

	// scanned PDF without a text layer
	log.Info("pdf has no text layer, trying OCR", zap.Int("pages", doc.NumPage()))
	return ocrPDF(ctx, doc, log)
}

// ocrPDF renders every page and runs it through tesseract.
func ocrPDF(ctx context.Context, doc *fitz.Document, log *zap.Logger) (string, error) {
	if _, err := exec.LookPath("tesseract"); err != nil {
		return "", fmt.Errorf("tesseract not available for OCR: %w", err)
	}

	var fullText bytes.Buffer
	var lastErr error
	for n := 0; n < doc.NumPage(); n++ {
		img, err := doc.Image(n)
		if err != nil {
			lastErr = fmt.Errorf("page %d: failed to extract image: %w", n+1, err)
			log.Warn("ocr page skipped", zap.Error(lastErr))
			continue
		}

		tmpFile, err := os.CreateTemp("", "page-*.png")
		if err != nil {
			lastErr = fmt.Errorf("page %d: failed to create temp file: %w", n+1, err)
			log.Warn("ocr page skipped", zap.Error(lastErr))
			continue
		}
		tmpPath := tmpFile.Name()
		err = png.Encode(tmpFile, img)
		tmpFile.Close()
		if err != nil {
			os.Remove(tmpPath)
			lastErr = fmt.Errorf("page %d: failed to encode PNG: %w", n+1, err)
			log.Warn("ocr page skipped", zap.Error(lastErr))
			continue
		}

		out, err := exec.CommandContext(ctx, "tesseract", tmpPath, "stdout", "-l", "eng+fra").CombinedOutput()
		os.Remove(tmpPath)
		if err != nil {
			lastErr = fmt.Errorf("page %d: tesseract error: %w, output: %s", n+1, err, string(out))
			log.Warn("ocr page skipped", zap.Error(lastErr))
			continue
		}

		if pageText := strings.TrimSpace(string(out)); pageText != "" {
			fullText.WriteString(pageText)
			fullText.WriteString("\n\n")
		}
	}

	result := strings.TrimSpace(fullText.String())
	if result == "" && lastErr != nil {
		return "", fmt.Errorf("failed to extract text via OCR: %w", lastErr)
	}
	return result, nil
}

// extractDOCX reads the paragraphs of word/document.xml, one per line. The
// part is decompressed up to limit bytes.
func extractDOCX(data []byte, limit int64) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open Word document: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		if f.UncompressedSize64 > uint64(limit) {
			return "", fmt.Errorf("%w: document.xml is %d bytes", ErrDocumentTooLarge, f.UncompressedSize64)
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open document.xml: %w", err)
		}
		defer rc.Close()
		return docxParagraphs(&cappedReader{r: rc, left: limit + 1})
	}
	return "", fmt.Errorf("failed to read Word document: word/document.xml not found")
}

// cappedReader fails with ErrDocumentTooLarge once more than the allowed
// bytes have been read, whatever the zip header claims.
type cappedReader struct {
	r    io.Reader
	left int64
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if int64(len(p)) > c.left {
		p = p[:c.left]
	}
	n, err := c.r.Read(p)
	c.left -= int64(n)
	if c.left <= 0 {
		return n, ErrDocumentTooLarge
	}
	return n, err
}

func docxParagraphs(r io.Reader) (string, error) {
	const wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

	dec := xml.NewDecoder(r)
	var (
		out    strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read Word document: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				out.WriteByte('\t')
			case "br":
				out.WriteByte('\n')
			}
		case xml.EndElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				out.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				out.Write(t)
			}
		}
	}
	return out.String(), nil
}
