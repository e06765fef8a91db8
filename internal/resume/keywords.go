package resume

import (
	"regexp"
)

// SkillKeywords is the canonical technology list detected in resumes. Detection
// order follows this list.
var SkillKeywords = []string{
	"JavaScript", "TypeScript", "React", "Vue", "Angular", "Node.js", "Python", "Java", "C++", "Go", "Rust",
	"AWS", "Azure", "GCP", "Docker", "Kubernetes", "SQL", "NoSQL", "MongoDB", "PostgreSQL",
	"Redis", "GraphQL", "REST", "CI/CD", "Git", "Agile", "Scrum", "TDD", "Machine Learning", "AI",
	"Data Science", "Big Data", "UI/UX", "Figma", "System Design", "Microservices",
}

// Domain is one entry of the fixed domain taxonomy.
type Domain struct {
	Name     string
	Keywords []string
}

var Domains = []Domain{
	{Name: "Frontend", Keywords: []string{"React", "Vue", "Angular", "CSS", "HTML", "Frontend", "UI"}},
	{Name: "Backend", Keywords: []string{"Node.js", "Python", "Java", "Go", "Backend", "API", "Database"}},
	{Name: "Full Stack", Keywords: []string{"Full Stack", "MERN", "MEAN"}},
	{Name: "DevOps", Keywords: []string{"Docker", "Kubernetes", "AWS", "CI/CD", "DevOps", "Terraform"}},
	{Name: "Data", Keywords: []string{"Data Science", "Machine Learning", "Big Data", "SQL", "Python", "Analytics"}},
	{Name: "Mobile", Keywords: []string{"React Native", "Flutter", "iOS", "Android", "Swift", "Kotlin"}},
}

// keywordMatchers caches compiled patterns, one per distinct keyword.
var keywordMatchers = map[string]*regexp.Regexp{}

func init() {
	for _, kw := range SkillKeywords {
		keywordMatchers[kw] = compileKeyword(kw)
	}
	for _, d := range Domains {
		for _, kw := range d.Keywords {
			if _, ok := keywordMatchers[kw]; !ok {
				keywordMatchers[kw] = compileKeyword(kw)
			}
		}
	}
}

// compileKeyword builds a case-insensitive whole-word pattern. Boundaries are
// checked against ASCII word characters on both sides instead of \b so that
// keywords ending in punctuation such as "C++" still match.
func compileKeyword(kw string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^A-Za-z0-9_])` + regexp.QuoteMeta(kw) + `(?:$|[^A-Za-z0-9_])`)
}

// ContainsKeyword reports whether kw occurs in text as a whole word, ignoring case.
func ContainsKeyword(text, kw string) bool {
	re, ok := keywordMatchers[kw]
	if !ok {
		re = compileKeyword(kw)
	}
	return re.MatchString(text)
}
