// Package resume turns free resume text into a structured profile using
// keyword and pattern heuristics. Every field is extracted independently, so
// text that defeats one heuristic only leaves that field empty.
package resume

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spigell/job-agent/internal/profile"
)

// MinTextLength is the shortest resume text that can be analyzed.
const MinTextLength = 50

// ErrInvalidInput is returned when the text is missing or too short. Callers
// should report that the resume cannot be analyzed and stop.
var ErrInvalidInput = errors.New("invalid resume input")

// Parse extracts a profile from resume text.
func Parse(text string) (*profile.Profile, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: text is empty", ErrInvalidInput)
	}
	if utf8.RuneCountInString(trimmed) < MinTextLength {
		return nil, fmt.Errorf("%w: text is shorter than %d characters", ErrInvalidInput, MinTextLength)
	}

	section := ExperienceSection(text)
	years := ExtractYears(section)
	city, country := ExtractLocation(text)

	return &profile.Profile{
		Name:         ExtractName(text),
		Email:        ExtractEmail(text),
		Phone:        ExtractPhone(text),
		City:         city,
		Country:      country,
		LinkedInURL:  ExtractLinkedIn(text),
		GitHubURL:    ExtractGitHub(text),
		PortfolioURL: ExtractPortfolio(text),
		CurrentRole:  ExtractCurrentRole(text, section),
		CurrentCTC:   ExtractCTC(text),

		Skills:            DetectSkills(text),
		YearsOfExperience: years,
		Seniority:         DetectSeniority(years, text),
		Domains:           DetectDomains(text),
		Achievements:      ExtractAchievements(section),
		Summary:           Summarize(text),
	}, nil
}
