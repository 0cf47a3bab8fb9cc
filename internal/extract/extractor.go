// Package extract turns uploaded documents into plain text.
package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	pdftext "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/phuslu/log"

	"github.com/devinalusiana15/KMS-OOP/internal/persistence"
)

// Extractor extracts text from PDF and plain-text files. It fulfills the
// services.TextExtractor interface.
type Extractor struct{}

// NewExtractor creates an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the text of the file at path. Any failure is logged and
// yields empty text.
func (e *Extractor) Extract(path string) string {
	text, err := e.ExtractFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("text extraction failed")
		return ""
	}
	return text
}

// ExtractFile returns the text of the file at path. ".txt" files are read
// as is; anything else is treated as a PDF and its pages are joined with
// newlines.
func (e *Extractor) ExtractFile(path string) (string, error) {
	data, err := persistence.LoadBytes(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		return string(data), nil
	}
	return extractPDF(path, data)
}

// extractPDF reads the document structure with pdfcpu, which reports broken
// cross reference tables as errors, then decodes the shown text page by page
// through each font's encoding and ToUnicode map.
func extractPDF(path string, data []byte) (text string, err error) {
	ctx, err := api.ReadContext(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return "", fmt.Errorf("reading pdf structure: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return "", fmt.Errorf("counting pdf pages: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("decoding pdf text: %v", r)
		}
	}()

	reader, err := pdftext.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("decoding page %d: %w", i, err)
		}
		pages = append(pages, strings.TrimSpace(pageText))
	}

	log.Debug().Str("path", path).Int("pages", ctx.PageCount).Msg("extracted pdf text")
	return strings.Join(pages, "\n"), nil
}
