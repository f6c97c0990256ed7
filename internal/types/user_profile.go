// Package types provides type definitions for structured data used throughout the profile builder.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Length limits enforced on free-text profile fields
const (
	MaxHeadlineLength = 100
	MaxSummaryLength  = 500
)

// Proficiency bounds for skills
const (
	MinSkillProficiency = 1
	MaxSkillProficiency = 5
)

// LanguageProficiency is the closed set of spoken-language proficiency levels
type LanguageProficiency string

// Language proficiency levels
const (
	ProficiencyBasic  LanguageProficiency = "Basic"
	ProficiencyFluent LanguageProficiency = "Fluent"
	ProficiencyNative LanguageProficiency = "Native"
)

// LanguageProficiencies lists the accepted proficiency values in schema order
var LanguageProficiencies = []LanguageProficiency{ProficiencyBasic, ProficiencyFluent, ProficiencyNative}

// UserProfile is the structured professional profile produced from a resume.
// Optional scalars are pointers so they serialize as null; lists are never nil
// once the profile has been through EnsureLists.
type UserProfile struct {
	FullName        string          `json:"full_name"`
	Email           *string         `json:"email"`
	Headline        *string         `json:"headline"`
	Summary         *string         `json:"summary"`
	Location        *string         `json:"location"`
	Skills          []Skill         `json:"skills"`
	Experience      []Experience    `json:"experience"`
	Education       []Education     `json:"education"`
	Certifications  []Certification `json:"certifications"`
	SocialLinks     []SocialLink    `json:"social_links"`
	Languages       []Language      `json:"languages"`
	ProfilePhotoURL *string         `json:"profile_photo_url"`
	ResumeFileURL   *string         `json:"resume_file_url"`
	VideoIntroURL   *string         `json:"video_intro_url"`
}

// Skill represents a single skill with an optional 1-5 proficiency level
type Skill struct {
	Name             string `json:"name"`
	ProficiencyLevel *int   `json:"proficiency_level"`
	Verified         bool   `json:"verified"`
}

// Experience represents one role held at one employer
type Experience struct {
	Title       string  `json:"title"`
	Company     string  `json:"company"`
	StartDate   *Date   `json:"start_date"`
	EndDate     *Date   `json:"end_date"`
	Description *string `json:"description"`
}

// Education represents one degree or program of study
type Education struct {
	Degree      string  `json:"degree"`
	Institution string  `json:"institution"`
	StartDate   *Date   `json:"start_date"`
	EndDate     *Date   `json:"end_date"`
	Description *string `json:"description"`
}

// Certification represents a professional certification
type Certification struct {
	Name          string  `json:"name"`
	Authority     *string `json:"authority"`
	Year          *int    `json:"year"`
	CredentialURL *string `json:"credential_url"`
}

// SocialLink is a typed link to an external profile (linkedin, github, ...)
type SocialLink struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Language is a spoken language with an optional proficiency
type Language struct {
	Name        string               `json:"name"`
	Proficiency *LanguageProficiency `json:"proficiency"`
}

// Anomaly records a field that was normalized or dropped while coercing model output
type Anomaly struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// EnsureLists replaces nil list fields with empty slices so they serialize as [].
func (p *UserProfile) EnsureLists() {
	if p.Skills == nil {
		p.Skills = []Skill{}
	}
	if p.Experience == nil {
		p.Experience = []Experience{}
	}
	if p.Education == nil {
		p.Education = []Education{}
	}
	if p.Certifications == nil {
		p.Certifications = []Certification{}
	}
	if p.SocialLinks == nil {
		p.SocialLinks = []SocialLink{}
	}
	if p.Languages == nil {
		p.Languages = []Language{}
	}
}

// ParseLanguageProficiency matches s case-insensitively against the accepted levels.
func ParseLanguageProficiency(s string) (LanguageProficiency, bool) {
	for _, level := range LanguageProficiencies {
		if equalFoldTrim(string(level), s) {
			return level, true
		}
	}
	return "", false
}
