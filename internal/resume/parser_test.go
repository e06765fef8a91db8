package resume

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/spigell/job-agent/internal/profile"
)

const sampleResume = `Jane Doe
jane.doe@example.com | +1 555-123-4567
Berlin, Germany
linkedin.com/in/janedoe github.com/janedoe janedoe.dev
Senior Software Engineer with 8 years of experience building Go and Kubernetes platforms.

Experience
Senior Software Engineer at Acme - 2019 to present
- Led migration to Kubernetes, increased throughput by 40%
- Reduced cloud costs with Docker and AWS
- Built CI/CD pipelines in Python
- Launched internal GraphQL gateway

Education
BSc Computer Science
`

func TestParseSampleResume(t *testing.T) {
	p, err := Parse(sampleResume)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Name != "Jane Doe" {
		t.Fatalf("unexpected name %q", p.Name)
	}
	if p.Email != "jane.doe@example.com" {
		t.Fatalf("unexpected email %q", p.Email)
	}
	if p.Phone != "+1 555-123-4567" {
		t.Fatalf("unexpected phone %q", p.Phone)
	}
	if p.City != "Berlin" || p.Country != "Germany" {
		t.Fatalf("unexpected location %q / %q", p.City, p.Country)
	}
	if p.LinkedInURL != "https://linkedin.com/in/janedoe" {
		t.Fatalf("unexpected linkedin %q", p.LinkedInURL)
	}
	if p.GitHubURL != "https://github.com/janedoe" {
		t.Fatalf("unexpected github %q", p.GitHubURL)
	}
	if p.PortfolioURL != "https://janedoe.dev" {
		t.Fatalf("unexpected portfolio %q", p.PortfolioURL)
	}
	if p.CurrentRole != "Senior Software Engineer" {
		t.Fatalf("unexpected current role %q", p.CurrentRole)
	}
	if p.Seniority != profile.SenioritySenior {
		t.Fatalf("unexpected seniority %q", p.Seniority)
	}

	wantSkills := []string{"Python", "Go", "AWS", "Docker", "Kubernetes", "GraphQL", "CI/CD"}
	if !slices.Equal(p.Skills, wantSkills) {
		t.Fatalf("unexpected skills %v, want %v", p.Skills, wantSkills)
	}
	wantDomains := []string{"Backend", "DevOps", "Data"}
	if !slices.Equal(p.Domains, wantDomains) {
		t.Fatalf("unexpected domains %v, want %v", p.Domains, wantDomains)
	}

	if len(p.Achievements) != 3 {
		t.Fatalf("expected 3 achievements, got %v", p.Achievements)
	}
	if !strings.Contains(p.Achievements[0], "increased") || strings.HasPrefix(p.Achievements[0], "-") {
		t.Fatalf("unexpected first achievement %q", p.Achievements[0])
	}
	if !strings.HasSuffix(p.Summary, "...") || strings.Contains(p.Summary, "\n") {
		t.Fatalf("unexpected summary %q", p.Summary)
	}
}

func TestParseSeniorNarrative(t *testing.T) {
	text := "Senior Software Engineer with 8 years of experience in distributed systems. " +
		"Led migration to Kubernetes, increased throughput by 40%."

	p, err := Parse(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Seniority != profile.SenioritySenior {
		t.Fatalf("unexpected seniority %q", p.Seniority)
	}
	if !slices.Contains(p.Skills, "Kubernetes") {
		t.Fatalf("expected Kubernetes in %v", p.Skills)
	}

	found := false
	for _, a := range p.Achievements {
		if strings.Contains(a, "increased") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an achievement mentioning increased, got %v", p.Achievements)
	}
}

func TestParseRejectsShortInput(t *testing.T) {
	for _, text := range []string{"", "   \n\t ", "0123456789", strings.Repeat("x", MinTextLength-1)} {
		p, err := Parse(text)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %q, got %v", text, err)
		}
		if p != nil {
			t.Fatalf("expected no profile for %q", text)
		}
	}
}

func TestParseListsAreDuplicateFree(t *testing.T) {
	text := strings.Repeat("Go go GO python Python docker Docker React react frontend. ", 5)

	p, err := Parse(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.YearsOfExperience < 0 {
		t.Fatalf("years must not be negative")
	}
	for name, list := range map[string][]string{"skills": p.Skills, "domains": p.Domains} {
		seen := map[string]bool{}
		for _, v := range list {
			if seen[v] {
				t.Fatalf("duplicate %s entry %q in %v", name, v, list)
			}
			seen[v] = true
		}
	}
}

func TestExtractName(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "first line", text: "Jane Doe\nEngineer", want: "Jane Doe"},
		{name: "skips resume heading", text: "Resume\nJohn Smith", want: "John Smith"},
		{name: "skips email line", text: "john@example.com\nJohn Smith", want: "John Smith"},
		{name: "strips punctuation", text: "Dr. John O'Neil, PhD", want: "Dr John ONeil PhD"},
		{name: "keeps non latin letters", text: "José Müller\nDeveloper", want: "José Müller"},
		{name: "fallback", text: "ab\n", want: "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractName(tt.text); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractPortfolio(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "plain site", text: "see www.jane.io for more", want: "https://www.jane.io"},
		{name: "keeps scheme", text: "http://jane.dev/work", want: "http://jane.dev/work"},
		{name: "skips email and social", text: "jane@mail.com linkedin.com/in/jane", want: ""},
		{name: "skips dotted skill", text: "Node.js and Vue.js, site: jane.dev", want: "https://jane.dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractPortfolio(tt.text); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectSeniority(t *testing.T) {
	tests := []struct {
		years int
		text  string
		want  profile.Seniority
	}{
		{years: 6, text: "engineer", want: profile.SenioritySenior},
		{years: 0, text: "Tech Lead", want: profile.SenioritySenior},
		{years: 5, text: "engineer", want: profile.SeniorityMid},
		{years: 3, text: "engineer", want: profile.SeniorityMid},
		{years: 2, text: "engineer", want: profile.SeniorityJunior},
		{years: 0, text: "", want: profile.SeniorityJunior},
	}

	for _, tt := range tests {
		if got := DetectSeniority(tt.years, tt.text); got != tt.want {
			t.Fatalf("DetectSeniority(%d, %q) = %q, want %q", tt.years, tt.text, got, tt.want)
		}
	}
}

func TestContainsKeywordBoundaries(t *testing.T) {
	tests := []struct {
		text string
		kw   string
		want bool
	}{
		{text: "I write C++ daily", kw: "C++", want: true},
		{text: "JavaScript only", kw: "Java", want: false},
		{text: "worked at Google", kw: "Go", want: false},
		{text: "golang, go and more", kw: "Go", want: true},
		{text: "profile on GitHub", kw: "Git", want: false},
		{text: "ci/cd pipelines", kw: "CI/CD", want: true},
		{text: "node.js services", kw: "Node.js", want: true},
	}

	for _, tt := range tests {
		if got := ContainsKeyword(tt.text, tt.kw); got != tt.want {
			t.Fatalf("ContainsKeyword(%q, %q) = %v, want %v", tt.text, tt.kw, got, tt.want)
		}
	}
}

func TestSecondaryHeuristics(t *testing.T) {
	if got := ExtractCTC("Current CTC: 25 LPA\n"); got != "25 LPA" {
		t.Fatalf("unexpected ctc %q", got)
	}
	if got := ExtractCTC("Expected salary: $120,000 per year"); got != "$120,000" {
		t.Fatalf("unexpected salary %q", got)
	}
	if got := ExtractCurrentRole("Current Role: Backend Engineer\nMore text", ""); got != "Backend Engineer" {
		t.Fatalf("unexpected role %q", got)
	}
	if got := ExtractYears("\nworked 4 years on payments\n"); got != 4 {
		t.Fatalf("unexpected years %d", got)
	}
	if got := ExtractYears("no numbers here"); got != 0 {
		t.Fatalf("unexpected years %d", got)
	}
}

func TestSummarize(t *testing.T) {
	long := strings.Repeat("a", 400)
	if got := Summarize(long); len(got) != summaryLength+3 {
		t.Fatalf("unexpected summary length %d", len(got))
	}
	if got := Summarize("line one\r\nline two"); got != "line one line two..." {
		t.Fatalf("unexpected summary %q", got)
	}
}
