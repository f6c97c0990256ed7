package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Metadata describes one ingested document
type Metadata struct {
	Filename  string `json:"filename,omitempty"`
	Format    Format `json:"format"`
	Bytes     int    `json:"bytes"`            // raw upload size
	Units     int    `json:"units"`            // pages or paragraphs
	TextChars int    `json:"text_chars"`       // length of the cleaned text in runes
	Hash      string `json:"hash"`             // SHA256 hex digest of the cleaned text
	Timestamp string `json:"timestamp"`        // RFC3339 format
	Source    string `json:"source,omitempty"` // "file" or "text"
}

// NewMetadata summarizes an extraction with the current timestamp
func NewMetadata(extraction *Extraction, filename string, rawBytes int) *Metadata {
	return &Metadata{
		Filename:  filename,
		Format:    extraction.Format,
		Bytes:     rawBytes,
		Units:     extraction.Units,
		TextChars: len([]rune(extraction.Text)),
		Hash:      computeHash(extraction.Text),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Source:    "file",
	}
}

// NewTextMetadata summarizes text that was submitted directly instead of uploaded
func NewTextMetadata(text string) *Metadata {
	return &Metadata{
		Format:    FormatText,
		Bytes:     len(text),
		Units:     1,
		TextChars: len([]rune(text)),
		Hash:      computeHash(text),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Source:    "text",
	}
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// ToJSON marshals Metadata to pretty-printed JSON
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
