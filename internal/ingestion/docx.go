package ingestion

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// extractDocx reads word/document.xml and returns one line per paragraph
func extractDocx(data []byte) (string, int, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, &ExtractionError{
			Kind:    KindCorruptDocument,
			Format:  string(FormatDocx),
			Message: "failed to open Word document",
			Cause:   err,
		}
	}
	defer func() { _ = doc.Close() }()

	paragraphs, err := parseParagraphs(doc.Editable().GetContent())
	if err != nil {
		return "", 0, &ExtractionError{
			Kind:    KindCorruptDocument,
			Format:  string(FormatDocx),
			Message: "failed to parse document body",
			Cause:   err,
		}
	}
	if len(paragraphs) == 0 {
		return "", 0, &ExtractionError{
			Kind:    KindEmptyDocument,
			Format:  string(FormatDocx),
			Message: "document has no paragraphs",
		}
	}

	return strings.Join(paragraphs, "\n"), len(paragraphs), nil
}

// parseParagraphs walks WordprocessingML and collects the text of each w:p.
// Paragraphs nested in text boxes are emitted separately from their parent.
func parseParagraphs(documentXML string) ([]string, error) {
	decoder := xml.NewDecoder(strings.NewReader(documentXML))

	var (
		paragraphs []string
		open       []*strings.Builder
		inText     bool
	)

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				open = append(open, &strings.Builder{})
			case "t":
				inText = true
			case "tab":
				if len(open) > 0 {
					open[len(open)-1].WriteString("\t")
				}
			case "br", "cr":
				if len(open) > 0 {
					open[len(open)-1].WriteString("\n")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if len(open) > 0 {
					paragraphs = append(paragraphs, open[len(open)-1].String())
					open = open[:len(open)-1]
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText && len(open) > 0 {
				open[len(open)-1].Write(t)
			}
		}
	}

	return paragraphs, nil
}
