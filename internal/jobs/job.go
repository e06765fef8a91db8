// Package jobs holds the unified job posting model, the normalizers that map
// each listing source onto it and the clients that fetch those sources.
package jobs

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

const (
	SourceRemotive  = "Remotive"
	SourceArbeitnow = "Arbeitnow"
	SourceJSearch   = "JSearch"
)

type Jobs struct {
	Items []*Job
}

type Job struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	CompanyLogo    *string  `json:"companyLogo"`
	Location       string   `json:"location"`
	IsRemote       bool     `json:"isRemote"`
	EmploymentType string   `json:"employmentType"`
	Description    string   `json:"description"`
	Salary         *string  `json:"salary"`
	ApplyLink      string   `json:"applyLink"`
	PostedAt       string   `json:"postedAt"`
	Skills         []string `json:"skills"`
	Source         string   `json:"source"`
	Category       string   `json:"category"`

	Match *MatchResult  `json:"matchResult,omitempty"`
	AI    *AIAssessment `json:"ai,omitempty"`
}

// Factor is one weighted dimension of a match.
type Factor struct {
	Score  int    `json:"score"`
	Weight int    `json:"weight"`
	Label  string `json:"label"`
}

// MatchResult is the scored comparison of a job against a profile.
type MatchResult struct {
	Total       int               `json:"total"`
	Factors     map[string]Factor `json:"factors"`
	Explanation string            `json:"explanation,omitempty"`
}

// AIAssessment is the optional verdict of a language model on the posting.
type AIAssessment struct {
	Fit     bool    `json:"fit"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason,omitempty"`
	Message string  `json:"message,omitempty"`
	Raw     string  `json:"raw,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// Clone returns a copy of the job that shares no slices or pointers with it.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	c := *j
	if j.Skills != nil {
		c.Skills = append([]string(nil), j.Skills...)
	}
	if j.CompanyLogo != nil {
		logo := *j.CompanyLogo
		c.CompanyLogo = &logo
	}
	if j.Salary != nil {
		salary := *j.Salary
		c.Salary = &salary
	}
	if j.Match != nil {
		m := *j.Match
		m.Factors = make(map[string]Factor, len(j.Match.Factors))
		for k, v := range j.Match.Factors {
			m.Factors[k] = v
		}
		c.Match = &m
	}
	if j.AI != nil {
		a := *j.AI
		c.AI = &a
	}
	return &c
}

// Score returns the total match score or 0 for unscored jobs.
func (j *Job) Score() int {
	if j == nil || j.Match == nil {
		return 0
	}
	return j.Match.Total
}

func (j *Jobs) Len() int {
	if j == nil {
		return 0
	}
	return len(j.Items)
}

func (j *Jobs) FindByID(id string) *Job {
	for _, job := range j.Items {
		if job.ID == id {
			return job
		}
	}
	return nil
}

func (j *Jobs) IDs() []string {
	ids := make([]string, 0, len(j.Items))
	for _, job := range j.Items {
		ids = append(ids, job.ID)
	}
	return ids
}

// Keep retains the jobs accepted by keep and returns the ids of the dropped
// ones. The order of the remaining jobs is preserved.
func (j *Jobs) Keep(keep func(*Job) bool) []string {
	var dropped []string
	kept := j.Items[:0:0]
	for _, job := range j.Items {
		if keep(job) {
			kept = append(kept, job)
			continue
		}
		dropped = append(dropped, job.ID)
	}
	j.Items = kept
	return dropped
}

// Exclude drops every job whose id is listed in ids.
func (j *Jobs) Exclude(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return j.Keep(func(job *Job) bool {
		_, found := set[job.ID]
		return !found
	})
}

// Head returns the first n jobs.
func (j *Jobs) Head(n int) *Jobs {
	if n < 0 || n >= len(j.Items) {
		return &Jobs{Items: j.Items}
	}
	return &Jobs{Items: j.Items[:n]}
}

// ReportByCompany groups a short summary of every job under its company.
func (j *Jobs) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, job := range j.Items {
		salary := "not disclosed"
		if job.Salary != nil {
			salary = *job.Salary
		}
		report[job.Company] = append(report[job.Company], map[string]string{
			"title":    job.Title,
			"url":      job.ApplyLink,
			"location": job.Location,
			"salary":   salary,
			"score":    strconv.Itoa(job.Score()),
		})
	}
	return report
}

func (j *Jobs) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "jobs_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(j.Items); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// LoadDump reads jobs written by DumpToTmpFile.
func LoadDump(path string) (*Jobs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var items []*Job
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse jobs dump %s: %w", path, err)
	}
	return &Jobs{Items: items}, nil
}
