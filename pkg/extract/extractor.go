// Package extract turns uploaded byte streams into normalized text.
package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"docqa-be/pkg/rag"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

const (
	MediaTypePDF      = "application/pdf"
	MediaTypeText     = "text/plain"
	MediaTypeMarkdown = "text/markdown"
)

// PageBreak separates PDF pages in extracted text. The chunker treats the form
// feed as a paragraph boundary.
const PageBreak = "\n\f\n"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Extractor converts raw bytes of a supported media type to normalized text.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// MediaTypeFromFilename maps an upload's extension to its declared media type.
// Unknown extensions return "".
func MediaTypeFromFilename(filename string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "pdf":
		return MediaTypePDF
	case "txt":
		return MediaTypeText
	case "md", "markdown":
		return MediaTypeMarkdown
	default:
		return ""
	}
}

// Extract returns the normalized text of data. Failures are rag.KindExtraction errors.
func (e *Extractor) Extract(data []byte, mediaType string) (string, error) {
	switch normalizeMediaType(mediaType) {
	case MediaTypePDF:
		return extractPDF(data)
	case MediaTypeText, MediaTypeMarkdown:
		return decodeText(data), nil
	default:
		return "", rag.Errorf(rag.KindExtraction, "unsupported media type %q", mediaType)
	}
}

func normalizeMediaType(mediaType string) string {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if mt == "text/x-markdown" {
		return MediaTypeMarkdown
	}
	return mt
}

// decodeText never fails: invalid UTF-8 sequences become U+FFFD.
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

func extractPDF(data []byte) (text string, err error) {
	if detected := mimetype.Detect(data); !detected.Is(MediaTypePDF) {
		return "", rag.Errorf(rag.KindExtraction, "content declared as PDF is %s", detected.String())
	}

	// The parser panics on some corrupted object streams.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = rag.Errorf(rag.KindExtraction, "corrupted PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", rag.Wrap(rag.KindExtraction, "unreadable PDF", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", rag.Wrap(rag.KindExtraction, fmt.Sprintf("page %d", i), err)
		}
		pages = append(pages, strings.TrimSpace(decodeText([]byte(content))))
	}

	joined := strings.Join(pages, PageBreak)
	if strings.TrimSpace(strings.ReplaceAll(joined, "\f", "")) == "" {
		return "", rag.Errorf(rag.KindExtraction, "PDF contains no extractable text")
	}
	return joined, nil
}
