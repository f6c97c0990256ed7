// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/skillsync/profile-builder/internal/ingestion"
	"github.com/skillsync/profile-builder/internal/pipeline"
	"github.com/skillsync/profile-builder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line))
	}
	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad truncates or right-pads line to the inner box width, counting runes
func pad(line string) string {
	width := boxWidth - 4
	n := utf8.RuneCountInString(line)
	if n > width {
		runes := []rune(line)
		return string(runes[:width-3]) + "..."
	}
	return line + strings.Repeat(" ", width-n)
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func period(start, end *types.Date) string {
	from := "?"
	if start != nil {
		from = start.Format("Jan 2006")
	}
	to := "present"
	if end != nil {
		to = end.Format("Jan 2006")
	}
	return from + " – " + to
}

// writeList writes up to maxItemsToShow items under a heading
func writeList(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "%s (%d):\n", heading, len(items))
	for _, item := range items[:min(len(items), maxItemsToShow)] {
		fmt.Fprintf(sb, "  • %s\n", item)
	}
	if len(items) > maxItemsToShow {
		fmt.Fprintf(sb, "  ... and %d more\n", len(items)-maxItemsToShow)
	}
	sb.WriteString("\n")
}

// PrintProfile outputs a human-readable summary of a built profile
func (p *Printer) PrintProfile(profile *types.UserProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Name:      %s\n", profile.FullName)
	fmt.Fprintf(&sb, "Email:     %s\n", deref(profile.Email))
	fmt.Fprintf(&sb, "Headline:  %s\n", deref(profile.Headline))
	fmt.Fprintf(&sb, "Location:  %s\n", deref(profile.Location))
	sb.WriteString("\n")

	experience := make([]string, 0, len(profile.Experience))
	for _, e := range profile.Experience {
		experience = append(experience, fmt.Sprintf("%s @ %s (%s)", e.Title, e.Company, period(e.StartDate, e.EndDate)))
	}
	writeList(&sb, "Experience", experience)

	education := make([]string, 0, len(profile.Education))
	for _, e := range profile.Education {
		education = append(education, fmt.Sprintf("%s, %s", e.Degree, e.Institution))
	}
	writeList(&sb, "Education", education)

	skills := make([]string, 0, len(profile.Skills))
	for _, s := range profile.Skills {
		if s.ProficiencyLevel != nil {
			skills = append(skills, fmt.Sprintf("%s (%d/5)", s.Name, *s.ProficiencyLevel))
			continue
		}
		skills = append(skills, s.Name)
	}
	writeList(&sb, "Skills", skills)

	certs := make([]string, 0, len(profile.Certifications))
	for _, c := range profile.Certifications {
		if c.Year != nil {
			certs = append(certs, fmt.Sprintf("%s (%d)", c.Name, *c.Year))
			continue
		}
		certs = append(certs, c.Name)
	}
	writeList(&sb, "Certifications", certs)

	links := make([]string, 0, len(profile.SocialLinks))
	for _, l := range profile.SocialLinks {
		links = append(links, l.Type+": "+l.URL)
	}
	writeList(&sb, "Links", links)

	languages := make([]string, 0, len(profile.Languages))
	for _, l := range profile.Languages {
		if l.Proficiency != nil {
			languages = append(languages, fmt.Sprintf("%s (%s)", l.Name, *l.Proficiency))
			continue
		}
		languages = append(languages, l.Name)
	}
	writeList(&sb, "Languages", languages)

	p.printBox("USER PROFILE", strings.TrimSuffix(sb.String(), "\n\n"))
}

// PrintAnomalies lists the fields coercion had to change
func (p *Printer) PrintAnomalies(anomalies []types.Anomaly) {
	if len(anomalies) == 0 {
		return
	}
	var sb strings.Builder
	for _, a := range anomalies {
		fmt.Fprintf(&sb, "%s: %s\n", a.Field, a.Message)
	}
	p.printBox(fmt.Sprintf("COERCED FIELDS (%d)", len(anomalies)), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMetadata outputs where the resume text came from
func (p *Printer) PrintMetadata(meta *ingestion.Metadata) {
	if meta == nil {
		return
	}
	var sb strings.Builder
	if meta.Filename != "" {
		fmt.Fprintf(&sb, "File:    %s\n", meta.Filename)
	}
	fmt.Fprintf(&sb, "Source:  %s\n", meta.Source)
	fmt.Fprintf(&sb, "Format:  %s\n", meta.Format)
	fmt.Fprintf(&sb, "Units:   %d\n", meta.Units)
	fmt.Fprintf(&sb, "Chars:   %d\n", meta.TextChars)
	fmt.Fprintf(&sb, "Hash:    %s", meta.Hash)
	p.printBox("INPUT", sb.String())
}

// PrintStateEvent writes one progress line
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) PrintStateEvent(event pipeline.StateEvent) {
	if event.Kind != "" {
		fmt.Fprintf(p.out, "→ %s (%s)\n", event.To, event.Kind)
		return
	}
	fmt.Fprintf(p.out, "→ %s\n", event.To)
}
