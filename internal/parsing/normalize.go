package parsing

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// skillNormalizations maps common skill name variants to canonical names
var skillNormalizations = map[string]string{
	"golang":     "Go",
	"go lang":    "Go",
	"javascript": "JavaScript",
	"js":         "JavaScript",
	"typescript": "TypeScript",
	"ts":         "TypeScript",
	"k8s":        "Kubernetes",
	"kubernetes": "Kubernetes",
	"react.js":   "React",
	"reactjs":    "React",
	"vue.js":     "Vue",
	"vuejs":      "Vue",
	"node.js":    "Node.js",
	"nodejs":     "Node.js",
	"postgres":   "PostgreSQL",
	"postgresql": "PostgreSQL",
}

// NormalizeSkillName returns the canonical form of a skill name.
// It is used to detect duplicates; the name the model produced is kept in the profile.
func NormalizeSkillName(skillName string) string {
	normalized := strings.TrimSpace(skillName)
	if normalized == "" {
		return ""
	}

	lower := strings.ToLower(normalized)
	if canonical, ok := skillNormalizations[lower]; ok {
		return canonical
	}

	if strings.Contains(normalized, " ") {
		return normalized
	}

	// All-caps or all-lowercase single words get a leading capital
	if normalized == strings.ToUpper(normalized) || normalized == lower {
		first, size := utf8.DecodeRuneInString(lower)
		return string(unicode.ToUpper(first)) + lower[size:]
	}

	return normalized
}

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

	// freeMailDomains are consumer mailbox providers; addresses there read as personal
	freeMailDomains = []string{
		"gmail", "googlemail", "yahoo", "hotmail", "outlook", "live", "aol",
		"icloud", "me", "mail", "gmx", "yandex", "proton", "protonmail",
		"zoho", "qq", "163", "freemail",
	}
)

// FindEmails returns the distinct email addresses in text in order of appearance
func FindEmails(text string) []string {
	matches := emailPattern.FindAllString(text, -1)
	seen := make(map[string]bool, len(matches))
	emails := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimRight(m, ".")
		key := strings.ToLower(m)
		if seen[key] {
			continue
		}
		seen[key] = true
		emails = append(emails, m)
	}
	return emails
}

// EmailScore rates how professional an address looks. Higher is better.
func EmailScore(email string) int {
	local, domain, ok := strings.Cut(strings.ToLower(strings.TrimSpace(email)), "@")
	if !ok || local == "" || domain == "" {
		return -100
	}

	score := 0
	if strings.ContainsFunc(local, unicode.IsDigit) {
		score -= 2
	}
	if strings.ContainsAny(local, "._-") {
		score++
	}
	if isFreeMailDomain(domain) {
		score -= 2
	}
	for _, role := range []string{"info", "admin", "noreply", "no-reply", "contact", "hello"} {
		if local == role {
			score -= 3
		}
	}
	return score
}

// PreferProfessionalEmail picks the best scoring candidate; ties keep the earlier one
func PreferProfessionalEmail(candidates []string) string {
	best := ""
	bestScore := 0
	for _, c := range candidates {
		score := EmailScore(c)
		if best == "" || score > bestScore {
			best, bestScore = c, score
		}
	}
	return best
}

func isFreeMailDomain(domain string) bool {
	label, _, _ := strings.Cut(domain, ".")
	for _, provider := range freeMailDomains {
		if label == provider {
			return true
		}
	}
	return false
}
