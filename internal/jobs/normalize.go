package jobs

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

const (
	maxJobSkills    = 8
	postedAtLayout  = "2006-01-02T15:04:05.000Z07:00"
	defaultTitle    = "Untitled"
	defaultCompany  = "Unknown"
	defaultFullTime = "Full-time"
)

var ErrUnknownSource = errors.New("unknown job source")

var (
	breakRe      = regexp.MustCompile(`(?i)<br\s*/?>`)
	blockTagRe   = regexp.MustCompile(`(?i)</?(?:p|div|li|h[1-6])[^>]*>`)
	anyTagRe     = regexp.MustCompile(`<[^>]+>`)
	numericEntRe = regexp.MustCompile(`&#\d+;`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
	whitespaceRe = regexp.MustCompile(`\s+`)

	entityReplacer = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&nbsp;", " ",
		"&quot;", `"`,
	)
)

// skillLabels maps a lowercase marker to the label added to a job's skills
// when the marker occurs in its description or tags.
var skillLabels = [][2]string{
	{"python", "Python"}, {"javascript", "JavaScript"}, {"typescript", "TypeScript"},
	{"react", "React"}, {"node.js", "Node.js"}, {"aws", "AWS"}, {"docker", "Docker"},
	{"kubernetes", "Kubernetes"}, {"sql", "SQL"}, {"java ", "Java"}, {"golang", "Go"},
	{"rust", "Rust"}, {"c++", "C++"}, {"angular", "Angular"}, {"vue", "Vue.js"},
	{"postgresql", "PostgreSQL"}, {"mongodb", "MongoDB"}, {"redis", "Redis"},
	{"tensorflow", "TensorFlow"}, {"pytorch", "PyTorch"}, {"kafka", "Kafka"},
	{"terraform", "Terraform"}, {"linux", "Linux"}, {"azure", "Azure"}, {"gcp", "GCP"},
	{"graphql", "GraphQL"}, {"rest api", "REST API"}, {"ci/cd", "CI/CD"},
	{"machine learning", "ML"}, {"data engineer", "Data Eng"},
	{"agile", "Agile"}, {"scrum", "Scrum"}, {"next.js", "Next.js"},
	{"django", "Django"}, {"flask", "Flask"}, {"spring", "Spring"},
}

// RemotiveJob is a raw item of the Remotive remote-jobs feed.
type RemotiveJob struct {
	ID                        string   `json:"id"`
	URL                       string   `json:"url"`
	Title                     string   `json:"title"`
	CompanyName               string   `json:"company_name"`
	CompanyLogo               string   `json:"company_logo"`
	Category                  string   `json:"category"`
	Tags                      []string `json:"tags"`
	JobType                   string   `json:"job_type"`
	PublicationDate           string   `json:"publication_date"`
	CandidateRequiredLocation string   `json:"candidate_required_location"`
	Salary                    string   `json:"salary"`
	Description               string   `json:"description"`
}

// ArbeitnowJob is a raw item of the Arbeitnow job board feed.
type ArbeitnowJob struct {
	Slug        string   `json:"slug"`
	CompanyName string   `json:"company_name"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Remote      bool     `json:"remote"`
	URL         string   `json:"url"`
	Tags        []string `json:"tags"`
	JobTypes    []string `json:"job_types"`
	Location    string   `json:"location"`
	CreatedAt   int64    `json:"created_at"`
}

// JSearchJob is a raw item of the JSearch aggregator.
type JSearchJob struct {
	ID             string   `json:"job_id"`
	Title          string   `json:"job_title"`
	EmployerName   string   `json:"employer_name"`
	EmployerLogo   string   `json:"employer_logo"`
	City           string   `json:"job_city"`
	Country        string   `json:"job_country"`
	IsRemote       bool     `json:"job_is_remote"`
	EmploymentType string   `json:"job_employment_type"`
	Description    string   `json:"job_description"`
	ApplyLink      string   `json:"job_apply_link"`
	PostedAt       string   `json:"job_posted_at_datetime_utc"`
	MinSalary      float64  `json:"job_min_salary"`
	MaxSalary      float64  `json:"job_max_salary"`
	SalaryCurrency string   `json:"job_salary_currency"`
	SalaryPeriod   string   `json:"job_salary_period"`
	RequiredSkills []string `json:"job_required_skills"`
}

// StripHTML converts an HTML description into plain text. Line breaks and
// block tags become newlines, other tags are removed and common entities are
// unescaped.
func StripHTML(html string) string {
	text := breakRe.ReplaceAllString(html, "\n")
	text = blockTagRe.ReplaceAllString(text, "\n")
	text = anyTagRe.ReplaceAllString(text, "")
	text = entityReplacer.Replace(text)
	text = numericEntRe.ReplaceAllString(text, "")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// ExtractSkills merges the provided tags with the labels of every known
// marker found in the description or tags. The result holds at most eight
// distinct entries, tags first.
func ExtractSkills(description string, tags []string) []string {
	skills := make([]string, 0, maxJobSkills)
	seen := map[string]struct{}{}
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		skills = append(skills, s)
	}

	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			add(tag)
		}
	}

	haystack := strings.ToLower(description + " " + strings.Join(tags, " "))
	for _, pair := range skillLabels {
		if strings.Contains(haystack, pair[0]) {
			add(pair[1])
		}
	}

	if len(skills) > maxJobSkills {
		skills = skills[:maxJobSkills]
	}
	return skills
}

func NormalizeRemotive(raw RemotiveJob) *Job {
	jobType := raw.JobType
	if jobType == "" {
		jobType = "full_time"
	}

	return &Job{
		ID:             "remotive-" + raw.ID,
		Title:          orDefault(raw.Title, defaultTitle),
		Company:        orDefault(raw.CompanyName, defaultCompany),
		CompanyLogo:    optional(raw.CompanyLogo),
		Location:       orDefault(raw.CandidateRequiredLocation, "Worldwide"),
		IsRemote:       true,
		EmploymentType: strings.Replace(jobType, "_", " ", 1),
		Description:    StripHTML(raw.Description),
		Salary:         optional(raw.Salary),
		ApplyLink:      raw.URL,
		PostedAt:       raw.PublicationDate,
		Skills:         ExtractSkills(raw.Description, raw.Tags),
		Source:         SourceRemotive,
		Category:       raw.Category,
	}
}

func NormalizeArbeitnow(raw ArbeitnowJob) *Job {
	id := raw.Slug
	if id == "" {
		id = whitespaceRe.ReplaceAllString(raw.Title, "-")
	}

	postedAt := ""
	if raw.CreatedAt > 0 {
		postedAt = time.Unix(raw.CreatedAt, 0).UTC().Format(postedAtLayout)
	}

	return &Job{
		ID:             "arbeitnow-" + id,
		Title:          orDefault(raw.Title, defaultTitle),
		Company:        orDefault(raw.CompanyName, defaultCompany),
		Location:       orDefault(raw.Location, "Not specified"),
		IsRemote:       raw.Remote,
		EmploymentType: defaultFullTime,
		Description:    StripHTML(raw.Description),
		ApplyLink:      raw.URL,
		PostedAt:       postedAt,
		Skills:         ExtractSkills(raw.Description, raw.Tags),
		Source:         SourceArbeitnow,
	}
}

func NormalizeJSearch(raw JSearchJob) *Job {
	var parts []string
	for _, p := range []string{raw.City, raw.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	location := strings.Join(parts, ", ")
	if location == "" && raw.IsRemote {
		location = "Remote"
	}

	return &Job{
		ID:             "jsearch-" + raw.ID,
		Title:          orDefault(raw.Title, defaultTitle),
		Company:        orDefault(raw.EmployerName, defaultCompany),
		CompanyLogo:    optional(raw.EmployerLogo),
		Location:       location,
		IsRemote:       raw.IsRemote,
		EmploymentType: orDefault(raw.EmploymentType, defaultFullTime),
		Description:    StripHTML(raw.Description),
		Salary:         jsearchSalary(raw),
		ApplyLink:      raw.ApplyLink,
		PostedAt:       raw.PostedAt,
		Skills:         ExtractSkills(raw.Description, raw.RequiredSkills),
		Source:         SourceJSearch,
	}
}

func jsearchSalary(raw JSearchJob) *string {
	if raw.MinSalary <= 0 && raw.MaxSalary <= 0 {
		return nil
	}

	var amount string
	switch {
	case raw.MinSalary > 0 && raw.MaxSalary > 0:
		amount = fmt.Sprintf("%.0f-%.0f", raw.MinSalary, raw.MaxSalary)
	case raw.MinSalary > 0:
		amount = fmt.Sprintf("from %.0f", raw.MinSalary)
	default:
		amount = fmt.Sprintf("up to %.0f", raw.MaxSalary)
	}

	salary := strings.TrimSpace(strings.Join([]string{amount, raw.SalaryCurrency}, " "))
	if raw.SalaryPeriod != "" {
		salary += " / " + strings.ToLower(raw.SalaryPeriod)
	}
	return &salary
}

// Normalize decodes a loosely typed payload of the named source and maps it
// onto a Job. Missing or mistyped fields fall back to their defaults.
func Normalize(raw map[string]any, source string) (*Job, error) {
	switch strings.ToLower(source) {
	case strings.ToLower(SourceRemotive):
		var item RemotiveJob
		if err := decode(raw, &item); err != nil {
			return nil, err
		}
		return NormalizeRemotive(item), nil
	case strings.ToLower(SourceArbeitnow):
		var item ArbeitnowJob
		if err := decode(raw, &item); err != nil {
			return nil, err
		}
		return NormalizeArbeitnow(item), nil
	case strings.ToLower(SourceJSearch):
		var item JSearchJob
		if err := decode(raw, &item); err != nil {
			return nil, err
		}
		return NormalizeJSearch(item), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
}

func decode(input any, out any) error {
	cfg := &mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("decode raw job: %w", err)
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
