package ingestion

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF concatenates the plain text of every page, one page per line group.
// A page without extractable text contributes an empty segment.
func extractPDF(data []byte) (text string, pages int, err error) {
	// the pdf reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			text, pages = "", 0
			err = &ExtractionError{
				Kind:    KindCorruptDocument,
				Format:  string(FormatPDF),
				Message: "failed to parse PDF",
				Cause:   fmt.Errorf("%v", r),
			}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, &ExtractionError{
			Kind:    KindCorruptDocument,
			Format:  string(FormatPDF),
			Message: "failed to read PDF",
			Cause:   err,
		}
	}

	pages = reader.NumPage()
	if pages == 0 {
		return "", 0, &ExtractionError{
			Kind:    KindEmptyDocument,
			Format:  string(FormatPDF),
			Message: "document has no pages",
		}
	}

	segments := make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		segments = append(segments, pageText(reader.Page(i)))
	}

	return strings.Join(segments, "\n"), pages, nil
}

// pageText returns the text of one page, or "" when the page has none
func pageText(page pdf.Page) string {
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}
