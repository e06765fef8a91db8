package filtering

import (
	"context"
	"strconv"
	"strings"

	"github.com/spigell/job-agent/internal/jobs"
)

// Criteria is a user search request.
type Criteria struct {
	Query          string `json:"query"`
	Location       string `json:"location"`
	EmploymentType string `json:"employmentType"`
	RemoteOnly     bool   `json:"remoteOnly"`
	// Category only narrows the upstream request and is not applied locally.
	Category string `json:"category"`
}

// Filters returns the search steps in the order they are applied.
func (c Criteria) Filters() []Filter {
	return []Filter{
		NewQuery(c.Query),
		NewLocation(c.Location),
		NewRemoteOnly(c.RemoteOnly),
		NewEmploymentType(c.EmploymentType),
		NewDedup(),
	}
}

// Search applies the criteria to a copy of list and removes duplicates. The
// order of the surviving jobs follows the input order.
func Search(ctx context.Context, list *jobs.Jobs, c Criteria) (*jobs.Jobs, error) {
	working := &jobs.Jobs{}
	if list != nil {
		working.Items = append([]*jobs.Job(nil), list.Items...)
	}
	return New(c.Filters(), nil).RunFilters(ctx, working)
}

// criterionFilter drops the jobs rejected by match. An empty value turns the
// step into a pass-through.
type criterionFilter struct {
	name  string
	value string
	match func(job *jobs.Job) bool
}

func (f *criterionFilter) Name() string { return f.name }

func (f *criterionFilter) Disable(string) {}

func (f *criterionFilter) IsEnabled() bool { return true }

func (f *criterionFilter) Validate() error { return nil }

func (f *criterionFilter) Apply(_ context.Context, v *jobs.Jobs) (*jobs.Jobs, Step, error) {
	initial := v.Len()
	if f.value == "" {
		return v, newStep(initial, v), nil
	}
	v.Keep(f.match)
	return v, newStep(initial, v), nil
}

func (f *criterionFilter) Status() Status {
	details := map[string]string{}
	if f.value != "" {
		details["value"] = f.value
	}
	return Status{Name: f.name, Enabled: true, Details: details}
}

// NewQuery keeps jobs whose title, company, description or any skill contains
// the query, ignoring case.
func NewQuery(query string) Filter {
	q := strings.ToLower(query)
	return &criterionFilter{
		name:  "query",
		value: query,
		match: func(job *jobs.Job) bool {
			if strings.Contains(strings.ToLower(job.Title), q) ||
				strings.Contains(strings.ToLower(job.Company), q) ||
				strings.Contains(strings.ToLower(job.Description), q) {
				return true
			}
			for _, skill := range job.Skills {
				if strings.Contains(strings.ToLower(skill), q) {
					return true
				}
			}
			return false
		},
	}
}

// NewLocation keeps jobs whose location contains loc, ignoring case.
func NewLocation(loc string) Filter {
	l := strings.ToLower(loc)
	return &criterionFilter{
		name:  "location",
		value: loc,
		match: func(job *jobs.Job) bool {
			return strings.Contains(strings.ToLower(job.Location), l)
		},
	}
}

// NewRemoteOnly keeps remote jobs when enabled.
func NewRemoteOnly(remoteOnly bool) Filter {
	value := ""
	if remoteOnly {
		value = strconv.FormatBool(remoteOnly)
	}
	return &criterionFilter{
		name:  "remote_only",
		value: value,
		match: func(job *jobs.Job) bool { return job.IsRemote },
	}
}

// NewEmploymentType keeps jobs whose employment type contains t after upper-casing both.
func NewEmploymentType(t string) Filter {
	want := strings.ToUpper(t)
	return &criterionFilter{
		name:  "employment_type",
		value: t,
		match: func(job *jobs.Job) bool {
			return strings.Contains(strings.ToUpper(job.EmploymentType), want)
		},
	}
}

type dedupFilter struct{}

// NewDedup removes jobs with the same title and company, keeping the first one.
func NewDedup() Filter {
	return &dedupFilter{}
}

func (f *dedupFilter) Name() string { return "dedup" }

func (f *dedupFilter) Disable(string) {}

func (f *dedupFilter) IsEnabled() bool { return true }

func (f *dedupFilter) Validate() error { return nil }

func (f *dedupFilter) Apply(_ context.Context, v *jobs.Jobs) (*jobs.Jobs, Step, error) {
	initial := v.Len()
	seen := make(map[string]struct{}, initial)
	v.Keep(func(job *jobs.Job) bool {
		key := DedupKey(job)
		if _, ok := seen[key]; ok {
			return false
		}
		seen[key] = struct{}{}
		return true
	})
	return v, newStep(initial, v), nil
}

// DedupKey identifies a posting across sources.
func DedupKey(job *jobs.Job) string {
	return strings.ToLower(job.Title) + "|" + strings.ToLower(job.Company)
}
