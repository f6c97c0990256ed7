package parsing

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/skillsync/profile-builder/internal/llm"
	"github.com/skillsync/profile-builder/internal/schemas"
	"github.com/skillsync/profile-builder/internal/types"
)

// minCertificationYear is the earliest plausible certification year
const minCertificationYear = 1950

var (
	fieldValidator = validator.New()

	profileSchemaOnce sync.Once
	profileSchema     *schemas.Validator
	profileSchemaErr  error

	// now is replaced in tests to pin the certification year ceiling
	now = time.Now
)

func userProfileValidator() (*schemas.Validator, error) {
	profileSchemaOnce.Do(func() {
		profileSchema, profileSchemaErr = schemas.NewUserProfileValidator()
	})
	return profileSchema, profileSchemaErr
}

// rawProfile mirrors the model's output loosely; the schema has already
// guaranteed that every field has one of the types declared here.
type rawProfile struct {
	FullName        string             `json:"full_name"`
	Email           *string            `json:"email"`
	Headline        *string            `json:"headline"`
	Summary         *string            `json:"summary"`
	Location        *string            `json:"location"`
	Skills          []rawSkill         `json:"skills"`
	Experience      []rawPeriod        `json:"experience"`
	Education       []rawPeriod        `json:"education"`
	Certifications  []rawCertification `json:"certifications"`
	SocialLinks     []rawSocialLink    `json:"social_links"`
	Languages       []rawLanguage      `json:"languages"`
	ProfilePhotoURL *string            `json:"profile_photo_url"`
	ResumeFileURL   *string            `json:"resume_file_url"`
	VideoIntroURL   *string            `json:"video_intro_url"`
}

type rawSkill struct {
	Name             *string `json:"name"`
	ProficiencyLevel any     `json:"proficiency_level"`
	Verified         *bool   `json:"verified"`
}

// rawPeriod covers both experience and education entries.
// Some models emit "name" instead of "title" for a role.
type rawPeriod struct {
	Title       *string `json:"title"`
	Name        *string `json:"name"`
	Company     *string `json:"company"`
	Degree      *string `json:"degree"`
	Institution *string `json:"institution"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	Description *string `json:"description"`
}

type rawCertification struct {
	Name          *string `json:"name"`
	Authority     *string `json:"authority"`
	Year          any     `json:"year"`
	CredentialURL *string `json:"credential_url"`
}

type rawSocialLink struct {
	Type *string `json:"type"`
	URL  *string `json:"url"`
}

type rawLanguage struct {
	Name        *string `json:"name"`
	Proficiency *string `json:"proficiency"`
}

// CoerceProfile turns raw model output into a UserProfile.
// Output that is not JSON or does not have the profile's structure fails with
// a ProfileGenerationError carrying the parser diagnostic. Everything else
// degrades field by field: bad values become null and each change is
// reported as an Anomaly. The function has no side effects.
func CoerceProfile(raw string) (*types.UserProfile, []types.Anomaly, error) {
	text := llm.CleanJSONBlock(raw)

	if !json.Valid([]byte(text)) {
		var decoded any
		err := json.Unmarshal([]byte(text), &decoded)
		if err == nil {
			err = fmt.Errorf("invalid JSON")
		}
		return nil, nil, invalidOutput("model output is not valid JSON", err)
	}

	v, err := userProfileValidator()
	if err != nil {
		return nil, nil, fmt.Errorf("profile schema unavailable: %w", err)
	}
	if err := v.Validate(text); err != nil {
		return nil, nil, invalidOutput("model output does not match the profile schema", err)
	}

	var in rawProfile
	if err := json.Unmarshal([]byte(text), &in); err != nil {
		return nil, nil, invalidOutput("model output could not be decoded", err)
	}

	c := &coercer{}
	profile := c.profile(&in)
	if profile.FullName == "" {
		return nil, nil, invalidOutput("model output has an empty full_name", nil)
	}
	return profile, c.anomalies, nil
}

type coercer struct {
	anomalies []types.Anomaly
}

func (c *coercer) note(field, format string, args ...any) {
	c.anomalies = append(c.anomalies, types.Anomaly{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (c *coercer) profile(in *rawProfile) *types.UserProfile {
	p := &types.UserProfile{
		FullName: strings.Join(strings.Fields(in.FullName), " "),
		Email:    c.email("email", in.Email),
		Headline: c.truncated("headline", in.Headline, types.MaxHeadlineLength),
		Summary:  c.truncated("summary", in.Summary, types.MaxSummaryLength),
		Location: trimmed(in.Location),

		ProfilePhotoURL: c.url("profile_photo_url", in.ProfilePhotoURL),
		ResumeFileURL:   c.url("resume_file_url", in.ResumeFileURL),
		VideoIntroURL:   c.url("video_intro_url", in.VideoIntroURL),
	}

	p.Skills = c.skills(in.Skills)
	p.Experience = c.experience(in.Experience)
	p.Education = c.education(in.Education)
	p.Certifications = c.certifications(in.Certifications)
	p.SocialLinks = c.socialLinks(in.SocialLinks)
	p.Languages = c.languages(in.Languages)
	p.EnsureLists()
	return p
}

func (c *coercer) skills(in []rawSkill) []types.Skill {
	d := newDeduper[types.Skill]()
	for i, s := range in {
		field := fmt.Sprintf("skills[%d]", i)
		name := trimmed(s.Name)
		if name == nil {
			c.note(field, "dropped skill without a name")
			continue
		}
		skill := types.Skill{
			Name:             *name,
			ProficiencyLevel: c.intInRange(field+".proficiency_level", s.ProficiencyLevel, types.MinSkillProficiency, types.MaxSkillProficiency),
		}
		if s.Verified != nil {
			skill.Verified = *s.Verified
		}
		completeness := 0
		if skill.ProficiencyLevel != nil {
			completeness++
		}
		if d.add(strings.ToLower(NormalizeSkillName(skill.Name)), skill, completeness) {
			c.note(field, "duplicate skill %q collapsed", skill.Name)
		}
	}
	return d.items
}

func (c *coercer) experience(in []rawPeriod) []types.Experience {
	d := newDeduper[types.Experience]()
	for i, e := range in {
		field := fmt.Sprintf("experience[%d]", i)
		title := trimmed(e.Title)
		if title == nil {
			title = trimmed(e.Name)
		}
		company := trimmed(e.Company)
		if title == nil || company == nil {
			c.note(field, "dropped experience entry without title and company")
			continue
		}
		start, end := c.period(field, e.StartDate, e.EndDate)
		exp := types.Experience{
			Title:       *title,
			Company:     *company,
			StartDate:   start,
			EndDate:     end,
			Description: trimmed(e.Description),
		}
		key := strings.ToLower(exp.Title) + "|" + strings.ToLower(exp.Company) + "|" + dateKey(start)
		if d.add(key, exp, countSet(start != nil, end != nil, exp.Description != nil)) {
			c.note(field, "duplicate experience %q at %q collapsed", exp.Title, exp.Company)
		}
	}
	return d.items
}

func (c *coercer) education(in []rawPeriod) []types.Education {
	d := newDeduper[types.Education]()
	for i, e := range in {
		field := fmt.Sprintf("education[%d]", i)
		degree := trimmed(e.Degree)
		institution := trimmed(e.Institution)
		if degree == nil || institution == nil {
			c.note(field, "dropped education entry without degree and institution")
			continue
		}
		start, end := c.period(field, e.StartDate, e.EndDate)
		edu := types.Education{
			Degree:      *degree,
			Institution: *institution,
			StartDate:   start,
			EndDate:     end,
			Description: trimmed(e.Description),
		}
		key := strings.ToLower(edu.Degree) + "|" + strings.ToLower(edu.Institution)
		if d.add(key, edu, countSet(start != nil, end != nil, edu.Description != nil)) {
			c.note(field, "duplicate education %q at %q collapsed", edu.Degree, edu.Institution)
		}
	}
	return d.items
}

func (c *coercer) certifications(in []rawCertification) []types.Certification {
	d := newDeduper[types.Certification]()
	maxYear := now().Year()
	for i, rc := range in {
		field := fmt.Sprintf("certifications[%d]", i)
		name := trimmed(rc.Name)
		if name == nil {
			c.note(field, "dropped certification without a name")
			continue
		}
		cert := types.Certification{
			Name:          *name,
			Authority:     trimmed(rc.Authority),
			Year:          c.intInRange(field+".year", rc.Year, minCertificationYear, maxYear),
			CredentialURL: c.url(field+".credential_url", rc.CredentialURL),
		}
		key := strings.ToLower(cert.Name) + "|" + strings.ToLower(deref(cert.Authority))
		if d.add(key, cert, countSet(cert.Authority != nil, cert.Year != nil, cert.CredentialURL != nil)) {
			c.note(field, "duplicate certification %q collapsed", cert.Name)
		}
	}
	return d.items
}

func (c *coercer) socialLinks(in []rawSocialLink) []types.SocialLink {
	d := newDeduper[types.SocialLink]()
	for i, rl := range in {
		field := fmt.Sprintf("social_links[%d]", i)
		link := c.url(field+".url", rl.URL)
		if link == nil {
			c.note(field, "dropped social link without a valid URL")
			continue
		}
		linkType := trimmed(rl.Type)
		sl := types.SocialLink{URL: *link}
		if linkType != nil {
			sl.Type = strings.ToLower(*linkType)
		} else {
			sl.Type = inferLinkType(*link)
		}
		if d.add(strings.ToLower(strings.TrimRight(sl.URL, "/")), sl, 0) {
			c.note(field, "duplicate social link %q collapsed", sl.URL)
		}
	}
	return d.items
}

func (c *coercer) languages(in []rawLanguage) []types.Language {
	d := newDeduper[types.Language]()
	for i, rl := range in {
		field := fmt.Sprintf("languages[%d]", i)
		name := trimmed(rl.Name)
		if name == nil {
			c.note(field, "dropped language without a name")
			continue
		}
		lang := types.Language{Name: *name}
		if p := trimmed(rl.Proficiency); p != nil {
			if level, ok := types.ParseLanguageProficiency(*p); ok {
				lang.Proficiency = &level
			} else {
				c.note(field+".proficiency", "unknown proficiency %q set to null", *p)
			}
		}
		if d.add(strings.ToLower(lang.Name), lang, countSet(lang.Proficiency != nil)) {
			c.note(field, "duplicate language %q collapsed", lang.Name)
		}
	}
	return d.items
}

// period parses both ends of a date range and nulls an end that precedes its start
func (c *coercer) period(field string, rawStart, rawEnd *string) (*types.Date, *types.Date) {
	start := c.date(field+".start_date", rawStart)
	end := c.date(field+".end_date", rawEnd)
	if start != nil && end != nil && end.Before(start.Time) {
		c.note(field+".end_date", "end date %s precedes start date %s, set to null", end, start)
		end = nil
	}
	return start, end
}

func (c *coercer) date(field string, raw *string) *types.Date {
	s := trimmed(raw)
	if s == nil || types.IsOngoingMarker(*s) {
		return nil
	}
	d := types.ParseDateLenient(*s)
	if d == nil {
		c.note(field, "unparseable date %q set to null", *s)
	}
	return d
}

func (c *coercer) truncated(field string, raw *string, limit int) *string {
	s := trimmed(raw)
	if s == nil || utf8.RuneCountInString(*s) <= limit {
		return s
	}
	c.note(field, "truncated to %d characters", limit)
	cut := strings.TrimSpace(string([]rune(*s)[:limit]))
	return &cut
}

func (c *coercer) email(field string, raw *string) *string {
	s := trimmed(raw)
	if s == nil {
		return nil
	}
	if err := fieldValidator.Var(*s, "email"); err != nil {
		c.note(field, "invalid email %q set to null", *s)
		return nil
	}
	return s
}

func (c *coercer) url(field string, raw *string) *string {
	s := trimmed(raw)
	if s == nil {
		return nil
	}
	if !isHTTPURL(*s) {
		c.note(field, "invalid URL %q set to null", *s)
		return nil
	}
	return s
}

// intInRange accepts integral JSON numbers or numeric strings within [lo, hi]
func (c *coercer) intInRange(field string, raw any, lo, hi int) *int {
	var n float64
	switch v := raw.(type) {
	case nil:
		return nil
	case float64:
		n = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			c.note(field, "non-numeric value %q set to null", v)
			return nil
		}
		n = parsed
	default:
		c.note(field, "unexpected value %v set to null", v)
		return nil
	}
	if n != math.Trunc(n) || n < float64(lo) || n > float64(hi) {
		c.note(field, "value %v outside %d-%d set to null", n, lo, hi)
		return nil
	}
	i := int(n)
	return &i
}

func isHTTPURL(s string) bool {
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return false
	}
	return fieldValidator.Var(s, "url") == nil
}

// inferLinkType names a social link by its host when the model gave no type
func inferLinkType(link string) string {
	lower := strings.ToLower(link)
	for _, known := range []string{"linkedin", "github", "gitlab", "twitter", "x.com", "stackoverflow", "medium", "behance", "dribbble"} {
		if strings.Contains(lower, known) {
			if known == "x.com" {
				return "twitter"
			}
			return known
		}
	}
	return "website"
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func dateKey(d *types.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func countSet(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

// deduper keeps the first position of each key. A later duplicate replaces
// the stored entry when it is at least as complete.
type deduper[T any] struct {
	items        []T
	index        map[string]int
	completeness []int
}

func newDeduper[T any]() *deduper[T] {
	return &deduper[T]{items: []T{}, index: make(map[string]int)}
}

// add stores item under key and reports whether key was already present
func (d *deduper[T]) add(key string, item T, completeness int) bool {
	if i, ok := d.index[key]; ok {
		if completeness >= d.completeness[i] {
			d.items[i] = item
			d.completeness[i] = completeness
		}
		return true
	}
	d.index[key] = len(d.items)
	d.items = append(d.items, item)
	d.completeness = append(d.completeness, completeness)
	return false
}
