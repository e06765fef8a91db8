// Package matching scores job postings against a candidate profile and ranks them.
package matching

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/spigell/job-agent/internal/jobs"
	"github.com/spigell/job-agent/internal/profile"
)

const (
	FactorSkills     = "skills"
	FactorExperience = "experience"
	FactorRole       = "role"
	FactorLocation   = "location"
	FactorCompany    = "company"
)

const (
	weightSkills     = 40
	weightExperience = 20
	weightRole       = 20
	weightLocation   = 10
	weightCompany    = 10
)

var requiredYearsRe = regexp.MustCompile(`(\d{1,2})\+?\s*(?:years?|yrs?)`)

var seniorityKeywords = map[profile.Seniority][]string{
	profile.SeniorityExecutive: {"director", "vp", "chief", "head"},
	profile.SeniorityStaff:     {"staff", "principal", "distinguished"},
	profile.SenioritySenior:    {"senior", "sr", "lead"},
	profile.SeniorityMid:       {"mid", "intermediate"},
	profile.SeniorityEntry:     {"junior", "jr", "associate", "entry", "intern"},
}

var levelledTitleRe = regexp.MustCompile(`(?i)(senior|junior|lead|intern|staff)`)

// Score compares a job with a profile. A missing job or profile yields a zero
// result with no factors.
func Score(job *jobs.Job, p *profile.Profile) jobs.MatchResult {
	if job == nil || p == nil {
		return jobs.MatchResult{Factors: map[string]jobs.Factor{}}
	}

	skill := SkillMatch(job, p)
	experience := ExperienceMatch(job, p)
	role := RoleAlignment(job, p)
	location := LocationFit(job, p)
	company := CompanyPreference(job, p)

	total := math.Round(
		float64(skill)*0.4 +
			float64(experience)*0.2 +
			float64(role)*0.2 +
			float64(location)*0.1 +
			float64(company)*0.1,
	)

	return jobs.MatchResult{
		Total: clamp(int(total)),
		Factors: map[string]jobs.Factor{
			FactorSkills:     {Score: skill, Weight: weightSkills, Label: "Skill Match"},
			FactorExperience: {Score: experience, Weight: weightExperience, Label: "Experience"},
			FactorRole:       {Score: role, Weight: weightRole, Label: "Role Alignment"},
			FactorLocation:   {Score: location, Weight: weightLocation, Label: "Location Fit"},
			FactorCompany:    {Score: company, Weight: weightCompany, Label: "Company Pref"},
		},
		Explanation: Explain(skill, experience, role),
	}
}

// Rank scores copies of the jobs and orders them by total score, highest
// first. Jobs with equal totals keep their input order. The input is not
// modified.
func Rank(list []*jobs.Job, p *profile.Profile) []*jobs.Job {
	ranked := make([]*jobs.Job, 0, len(list))
	for _, job := range list {
		if job == nil {
			continue
		}
		c := job.Clone()
		result := Score(job, p)
		c.Match = &result
		ranked = append(ranked, c)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Match.Total > ranked[j].Match.Total
	})
	return ranked
}

// SkillMatch returns the share of profile skills found in the job skills or
// description. A profile without skills scores a neutral 50.
func SkillMatch(job *jobs.Job, p *profile.Profile) int {
	if len(p.Skills) == 0 {
		return 50
	}

	jobSkills := make([]string, 0, len(job.Skills))
	for _, s := range job.Skills {
		jobSkills = append(jobSkills, strings.ToLower(s))
	}
	description := strings.ToLower(job.Description)

	matched := 0
	for _, skill := range p.Skills {
		s := strings.ToLower(skill)
		if skillOverlaps(s, jobSkills) || strings.Contains(description, s) {
			matched++
		}
	}

	return int(math.Round(float64(matched) / float64(len(p.Skills)) * 100))
}

func skillOverlaps(skill string, jobSkills []string) bool {
	for _, js := range jobSkills {
		if strings.Contains(js, skill) || strings.Contains(skill, js) {
			return true
		}
	}
	return false
}

// ExperienceMatch compares the profile years with the first requirement
// stated in the job description.
func ExperienceMatch(job *jobs.Job, p *profile.Profile) int {
	if p.YearsOfExperience == 0 {
		return 60
	}

	m := requiredYearsRe.FindStringSubmatch(strings.ToLower(job.Description))
	if m == nil {
		return 70
	}
	required, err := strconv.Atoi(m[1])
	if err != nil {
		return 70
	}

	diff := p.YearsOfExperience - required
	switch {
	case diff >= 0 && diff <= 3:
		return 100
	case diff > 3:
		return 80
	case diff >= -1:
		return 70
	case diff >= -3:
		return 40
	default:
		return 20
	}
}

// RoleAlignment rewards titles matching the profile seniority and postings
// mentioning one of the profile domains.
func RoleAlignment(job *jobs.Job, p *profile.Profile) int {
	title := strings.ToLower(job.Title)
	score := 50

	switch {
	case containsAny(title, seniorityKeywords[p.Seniority]):
		score += 30
	case p.Seniority == profile.SeniorityMid && !levelledTitleRe.MatchString(title):
		score += 25
	}

	description := strings.ToLower(job.Description)
	for _, d := range p.Domains {
		domain := strings.ToLower(d)
		if strings.Contains(title, domain) || strings.Contains(description, domain) {
			score += 20
			break
		}
	}

	return min(score, 100)
}

// LocationFit scores remote jobs high and otherwise checks the preferred locations.
func LocationFit(job *jobs.Job, p *profile.Profile) int {
	if job.IsRemote {
		return 90
	}
	if len(p.PreferredLocations) == 0 {
		return 70
	}
	if containsAnyFolded(job.Location, p.PreferredLocations) {
		return 100
	}
	return 30
}

// CompanyPreference checks the job company against the preferred companies.
func CompanyPreference(job *jobs.Job, p *profile.Profile) int {
	if len(p.CompanyPreferences) == 0 {
		return 70
	}
	if containsAnyFolded(job.Company, p.CompanyPreferences) {
		return 100
	}
	return 50
}

// Explain summarises the skill, experience and role scores in a few sentences.
func Explain(skill, experience, role int) string {
	parts := make([]string, 0, 3)

	switch {
	case skill >= 70:
		parts = append(parts, "Strong skill overlap with your profile.")
	case skill >= 40:
		parts = append(parts, "Some matching skills found.")
	default:
		parts = append(parts, "Limited skill overlap; consider upskilling.")
	}

	switch {
	case experience >= 80:
		parts = append(parts, "Your experience level is a great fit.")
	case experience < 50:
		parts = append(parts, "Experience requirements may be challenging.")
	}

	if role >= 70 {
		parts = append(parts, "Role aligns well with your career trajectory.")
	}

	return strings.Join(parts, " ")
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func containsAnyFolded(text string, candidates []string) bool {
	lower := strings.ToLower(text)
	for _, c := range candidates {
		if strings.Contains(lower, strings.ToLower(c)) {
			return true
		}
	}
	return false
}

func clamp(total int) int {
	return max(0, min(100, total))
}
