package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for all profile dates
const DateLayout = "2006-01-02"

// Date is a calendar date serialized as YYYY-MM-DD
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// String returns the YYYY-MM-DD form
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON encodes the date as a YYYY-MM-DD string
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts only the strict YYYY-MM-DD form
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// ongoingMarkers are end-date tokens meaning the period has not ended
var ongoingMarkers = map[string]bool{
	"present":   true,
	"current":   true,
	"currently": true,
	"now":       true,
	"ongoing":   true,
	"today":     true,
	"to date":   true,
}

// IsOngoingMarker reports whether s is a "present"-style end-date token
func IsOngoingMarker(s string) bool {
	return ongoingMarkers[strings.ToLower(strings.TrimSpace(s))]
}

// lenientLayouts are tried in order; partial dates resolve to the first day of the period
var lenientLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01",
	"2006/01/02",
	"2006/01",
	"01/2006",
	"1/2006",
	"01-2006",
	"January 2006",
	"Jan 2006",
	"Jan. 2006",
	"January, 2006",
	"2 January 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2006",
}

// ParseDateLenient parses the date formats commonly found in resumes.
// It returns nil for empty input, ongoing markers and anything unparseable.
func ParseDateLenient(s string) *Date {
	s = strings.TrimSpace(s)
	if s == "" || IsOngoingMarker(s) {
		return nil
	}
	for _, layout := range lenientLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := NewDate(t.Year(), t.Month(), t.Day())
			return &d
		}
	}
	return nil
}

func equalFoldTrim(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
