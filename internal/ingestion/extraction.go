// Package ingestion turns uploaded resume documents into clean plain text.
package ingestion

import (
	"fmt"
	"strings"

	"github.com/skillsync/profile-builder/internal/config"
)

// Format is a document family handled by one extractor
type Format string

// Supported document formats
const (
	FormatPDF  Format = "pdf"
	FormatDocx Format = "docx"
	FormatText Format = "text"
)

// Extraction is the text pulled out of one document
type Extraction struct {
	Text   string
	Format Format
	// Units is the page count for PDFs and the paragraph count for Word documents
	Units int
}

// DetectFormat maps a file extension to the extractor that handles it.
// It returns false for anything outside the PDF, Word and plain-text families.
func DetectFormat(ext string) (Format, bool) {
	switch config.NormalizeExtension(ext) {
	case ".pdf":
		return FormatPDF, true
	case ".doc", ".docx":
		return FormatDocx, true
	case ".txt":
		return FormatText, true
	default:
		return "", false
	}
}

// ExtractText dispatches data to the extractor for ext and returns cleaned,
// non-empty text. The extension is re-checked even though admission already did,
// so the extractor is safe to call on its own.
func ExtractText(data []byte, ext string) (*Extraction, error) {
	format, ok := DetectFormat(ext)
	if !ok {
		return nil, &ExtractionError{
			Kind:    KindUnsupportedExtension,
			Format:  ext,
			Message: "only PDF, Word and plain-text documents are supported",
		}
	}

	var (
		raw   string
		units int
		err   error
	)
	switch format {
	case FormatPDF:
		raw, units, err = extractPDF(data)
	case FormatDocx:
		raw, units, err = extractDocx(data)
	case FormatText:
		raw, err = extractPlainText(data)
		units = strings.Count(raw, "\n") + 1
	default:
		err = fmt.Errorf("no extractor registered for %s", format)
	}
	if err != nil {
		return nil, err
	}

	text := CleanText(raw)
	if text == "" {
		return nil, &ExtractionError{
			Kind:    KindEmptyDocument,
			Format:  string(format),
			Message: "no text could be extracted",
		}
	}

	return &Extraction{Text: text, Format: format, Units: units}, nil
}
