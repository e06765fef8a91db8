// Package profile describes the candidate profile derived from a resume and the
// rule used to rebuild it from its stored form.
package profile

// Seniority is the career tier of a candidate.
type Seniority string

const (
	SeniorityJunior    Seniority = "Junior"
	SeniorityMid       Seniority = "Mid-Level"
	SenioritySenior    Seniority = "Senior"
	SeniorityStaff     Seniority = "Staff / Principal"
	SeniorityExecutive Seniority = "Executive"
	SeniorityEntry     Seniority = "Junior / Entry-Level"
)

type Profile struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	City         string `json:"city"`
	Country      string `json:"country"`
	LinkedInURL  string `json:"linkedin_url"`
	GitHubURL    string `json:"github_url"`
	PortfolioURL string `json:"portfolio_url"`
	CurrentRole  string `json:"current_role"`
	CurrentCTC   string `json:"current_ctc"`

	Skills            []string  `json:"skills"`
	YearsOfExperience int       `json:"yearsOfExperience"`
	Seniority         Seniority `json:"seniority"`
	Domains           []string  `json:"domains"`
	Achievements      []string  `json:"achievements"`
	Summary           string    `json:"summary"`

	// Preferences are edited by the user and never produced by the parser.
	PreferredLocations []string `json:"preferredLocations,omitempty"`
	CompanyPreferences []string `json:"companyPreferences,omitempty"`
}

// HasSkills reports whether the profile carries any skill data.
func (p *Profile) HasSkills() bool {
	return p != nil && len(p.Skills) > 0
}

// Location returns the most specific location known for the profile, or def.
func (p *Profile) Location(def string) string {
	if p == nil {
		return def
	}
	if p.City != "" {
		return p.City
	}
	if p.Country != "" {
		return p.Country
	}
	return def
}

// DisplayName returns the profile name or def when it is unknown.
func (p *Profile) DisplayName(def string) string {
	if p == nil || p.Name == "" || p.Name == "Unknown" {
		return def
	}
	return p.Name
}
