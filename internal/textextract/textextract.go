// Package textextract turns uploaded résumé files into plain text.
package textextract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

const (
	replacementChar = "�"
	// blockBreak is a private-use rune marking the end of an HTML block element.
	blockBreak = "\uE000"
)

// Extractor converts file contents into text based on the file extension.
// It never fails: missing text is reported as an empty string.
type Extractor struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Extract returns the text held in data. The extension of filename selects the
// decoder: .txt and .md are decoded as UTF-8, .pdf goes through the PDF reader,
// .html and .htm are stripped to their visible text. Anything else gets a
// best-effort UTF-8 decode.
func (e *Extractor) Extract(data []byte, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))

	var text string
	switch ext {
	case ".pdf":
		var err error
		text, err = pdfText(data)
		if err != nil {
			e.logger.Warn("pdf text extraction failed",
				zap.String("file", filename),
				zap.Error(err),
			)
			return ""
		}
	case ".html", ".htm":
		var err error
		text, err = htmlText(data)
		if err != nil {
			e.logger.Debug("html parsing failed, decoding as text",
				zap.String("file", filename),
				zap.Error(err),
			)
			text = decodeUTF8(data)
		}
	default:
		text = decodeUTF8(data)
	}

	text = normalizeNewlines(text)
	e.logger.Debug("text extracted",
		zap.String("file", filename),
		zap.String("extension", ext),
		zap.Int("bytes", len(data)),
		zap.Int("chars", len([]rune(text))),
	)

	return text
}

func decodeUTF8(data []byte) string {
	return strings.ToValidUTF8(string(data), replacementChar)
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// pdfText reads every page of the document. The PDF reader panics on some
// malformed inputs, so panics are reported as errors.
func pdfText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	if len(data) == 0 {
		return "", errors.New("empty pdf")
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	raw, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	return decodeUTF8(raw), nil
}

func htmlText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, noscript, head").Remove()
	// Block elements end a line so that headings and list items do not run together.
	doc.Find("p, div, li, br, tr, h1, h2, h3, h4, h5, h6, section, article, header, footer").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(blockBreak)
	})

	var lines []string
	for _, line := range strings.Split(decodeUTF8([]byte(doc.Text())), blockBreak) {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n"), nil
}
