package resume

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/spigell/job-agent/internal/profile"
)

const (
	unknownName       = "Unknown"
	summaryLength     = 300
	maxAchievements   = 3
	seniorYearsCutoff = 5
	midYearsCutoff    = 2
)

var (
	emailRe    = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phoneRe    = regexp.MustCompile(`(\+\d{1,3}[-. ]?)?\(?\d{3}\)?[-. ]?\d{3}[-. ]?\d{4}`)
	locationRe = regexp.MustCompile(`([A-Z][a-zA-Z ]+),[ \t]*([A-Z][a-zA-Z ]+)`)
	linkedInRe = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?linkedin\.com/in/[a-zA-Z0-9_-]+`)
	gitHubRe   = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?github\.com/[a-zA-Z0-9_-]+`)
	urlRe      = regexp.MustCompile(`(?:https?://)?(?:www\.)?(?:[a-zA-Z0-9-]+\.)+[a-zA-Z]{2,}(?:/[a-zA-Z0-9_-]+)*/?`)

	nameExcludeRe = regexp.MustCompile(`(?i)resume|cv|curriculum`)
	nameCleanRe   = regexp.MustCompile(`[^\p{L}\s]`)

	experienceRe = regexp.MustCompile(`(?is)(?:experience|employment|work history)(.*?)(?:education|skills|projects|$)`)
	yearsRe      = regexp.MustCompile(`(?i)(\d+)\s+years?`)
	seniorRe     = regexp.MustCompile(`(?i)senior|lead|principal|architect|manager`)

	roleLabelRe = regexp.MustCompile(`(?i)(?:current role|position|title):[ \t]*([a-zA-Z ]+)`)
	roleLineRe  = regexp.MustCompile(`(?m)^[ \t]*([a-zA-Z ]+?)(?:[ \t]+at[ \t]|[ \t]+[-–][ \t]+)`)
	ctcRe       = regexp.MustCompile(`(?i)(?:ctc|salary|package):\s*([$€£]?\d+(?:,\d{3})*(?:\.\d+)?(?:[ \t]*(?:lpa|k|l|m)\b)?)`)

	achievementRe = regexp.MustCompile(`(?i)improved|increased|reduced|led|built|launched|managed`)
	bulletRe      = regexp.MustCompile(`^[•\-\*]\s*`)
)

// portfolioHostDenylist lists hosts that never count as a personal site.
var portfolioHostDenylist = []string{"linkedin", "github", "google", "facebook"}

// ExtractName returns the first short line that looks like a person's name.
func ExtractName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		n := len([]rune(line))
		if n <= 2 || n >= 50 {
			continue
		}
		if strings.Contains(line, "@") || nameExcludeRe.MatchString(line) {
			continue
		}
		return strings.TrimSpace(nameCleanRe.ReplaceAllString(line, ""))
	}
	return unknownName
}

func ExtractEmail(text string) string {
	return emailRe.FindString(text)
}

func ExtractPhone(text string) string {
	return phoneRe.FindString(text)
}

// ExtractLocation finds the first "City, Country" pair.
func ExtractLocation(text string) (city, country string) {
	m := locationRe.FindStringSubmatch(text)
	if m == nil {
		return "", ""
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
}

func ExtractLinkedIn(text string) string {
	return withScheme(linkedInRe.FindString(text))
}

func ExtractGitHub(text string) string {
	return withScheme(gitHubRe.FindString(text))
}

// ExtractPortfolio returns the first URL-like token that is not a social
// profile, part of an email address or a dotted skill name such as Node.js.
func ExtractPortfolio(text string) string {
	for _, loc := range urlRe.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		if start > 0 && text[start-1] == '@' {
			continue
		}
		if end < len(text) && text[end] == '@' {
			continue
		}

		candidate := text[start:end]
		if isSkillLabel(candidate) || hasDeniedHost(candidate) {
			continue
		}
		return withScheme(candidate)
	}
	return ""
}

func isSkillLabel(candidate string) bool {
	for _, kw := range SkillKeywords {
		if strings.Contains(kw, ".") && strings.EqualFold(kw, candidate) {
			return true
		}
	}
	switch strings.ToLower(candidate) {
	case "next.js", "vue.js", "express.js", "nuxt.js", "three.js", "d3.js":
		return true
	}
	return false
}

func hasDeniedHost(candidate string) bool {
	lower := strings.ToLower(candidate)
	for _, host := range portfolioHostDenylist {
		if strings.Contains(lower, host) {
			return true
		}
	}
	return false
}

func withScheme(u string) string {
	if u == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(u), "http") {
		return u
	}
	return "https://" + u
}

// ExperienceSection returns the text between an experience heading and the
// next education, skills or projects heading.
func ExperienceSection(text string) string {
	m := experienceRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// ExtractYears reads the first "N years" mention from the experience section.
func ExtractYears(section string) int {
	m := yearsRe.FindStringSubmatch(section)
	if m == nil {
		return 0
	}
	years, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return years
}

// DetectSeniority derives the career tier from the years of experience and
// seniority wording anywhere in the resume.
func DetectSeniority(years int, text string) profile.Seniority {
	switch {
	case years > seniorYearsCutoff || seniorRe.MatchString(text):
		return profile.SenioritySenior
	case years > midYearsCutoff:
		return profile.SeniorityMid
	default:
		return profile.SeniorityJunior
	}
}

// DetectSkills returns the known skills mentioned in text in canonical order.
func DetectSkills(text string) []string {
	skills := []string{}
	for _, kw := range SkillKeywords {
		if ContainsKeyword(text, kw) {
			skills = append(skills, kw)
		}
	}
	return skills
}

// DetectDomains returns every domain with at least one keyword present in text.
func DetectDomains(text string) []string {
	domains := []string{}
	for _, d := range Domains {
		for _, kw := range d.Keywords {
			if ContainsKeyword(text, kw) {
				domains = append(domains, d.Name)
				break
			}
		}
	}
	return domains
}

// ExtractCurrentRole prefers an explicit "Title:" label and otherwise takes the
// first "Role at Company" line of the experience section.
func ExtractCurrentRole(text, section string) string {
	if m := roleLabelRe.FindStringSubmatch(text); m != nil {
		if role := strings.TrimSpace(m[1]); role != "" {
			return role
		}
	}
	if m := roleLineRe.FindStringSubmatch(section); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func ExtractCTC(text string) string {
	m := ctcRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// ExtractAchievements keeps up to three experience lines that describe an
// outcome, without their bullet markers.
func ExtractAchievements(section string) []string {
	achievements := []string{}
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !achievementRe.MatchString(line) {
			continue
		}
		line = strings.TrimSpace(bulletRe.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		achievements = append(achievements, line)
		if len(achievements) == maxAchievements {
			break
		}
	}
	return achievements
}

// Summarize flattens the head of the resume into a single line.
func Summarize(text string) string {
	runes := []rune(text)
	if len(runes) > summaryLength {
		runes = runes[:summaryLength]
	}
	head := strings.ReplaceAll(string(runes), "\r", "")
	head = strings.ReplaceAll(head, "\n", " ")
	return head + "..."
}
