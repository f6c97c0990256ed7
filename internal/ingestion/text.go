package ingestion

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	spaceRunPattern  = regexp.MustCompile(`\s+`)
	blankRunPattern  = regexp.MustCompile(`\n\n\n+`)
	utf8BOM          = []byte{0xEF, 0xBB, 0xBF}
	bulletPrefixes   = []string{"- ", "* ", "• ", "· "}
	controlCharRange = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
)

// extractPlainText decodes a UTF-8 text upload, dropping a leading byte-order mark
func extractPlainText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", &ExtractionError{
			Kind:    KindInvalidEncoding,
			Format:  string(FormatText),
			Message: "text file is not valid UTF-8",
		}
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", &ExtractionError{
			Kind:    KindEmptyDocument,
			Format:  string(FormatText),
			Message: "text file contains only whitespace",
		}
	}
	return string(data), nil
}

// PrepareText checks pasted resume text and normalizes it with CleanText.
// The result may be empty when the input held nothing but whitespace and control characters.
func PrepareText(text string) (string, error) {
	text = strings.TrimPrefix(text, string(utf8BOM))
	if !utf8.ValidString(text) {
		return "", &ExtractionError{
			Kind:    KindInvalidEncoding,
			Format:  string(FormatText),
			Message: "profile text is not valid UTF-8",
		}
	}
	return CleanText(text), nil
}

// CleanText normalizes extracted text while keeping its line structure:
// line endings become LF, control characters are dropped, runs of spaces
// collapse, and no more than one blank line separates paragraphs.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = controlCharRange.ReplaceAllString(content, "")

	lines := strings.Split(content, "\n")
	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		cleanedLines = append(cleanedLines, cleanLine(line))
	}

	result := strings.Join(cleanedLines, "\n")
	result = blankRunPattern.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine cleans a single line while preserving headings, bullets and indentation
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	if strings.TrimSpace(line) == "" {
		return ""
	}

	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}

	indent := len(line) - len(trimmed)
	if isBulletLine(trimmed) {
		return strings.Repeat(" ", indent) + trimmed
	}

	return strings.Repeat(" ", indent) + spaceRunPattern.ReplaceAllString(trimmed, " ")
}

// isBulletLine checks if a line starts with a list marker
func isBulletLine(trimmed string) bool {
	for _, prefix := range bulletPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}
