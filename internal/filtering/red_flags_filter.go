package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-agent/internal/jobs"
)

type redFlagsFilter struct {
	terms  []string
	logger *zap.Logger
}

// NewRedFlags creates a filter that removes jobs mentioning any of the terms
// in their title, company or description.
func NewRedFlags(terms []string, logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redFlagsFilter{terms: terms, logger: logger}
}

func (f *redFlagsFilter) Name() string { return "red_flags" }

func (f *redFlagsFilter) Disable(string) {}

func (f *redFlagsFilter) IsEnabled() bool { return true }

func (f *redFlagsFilter) Validate() error { return nil }

func (f *redFlagsFilter) Apply(_ context.Context, v *jobs.Jobs) (*jobs.Jobs, Step, error) {
	initial := v.Len()
	if len(f.terms) == 0 {
		return v, newStep(initial, v), nil
	}

	flagged := v.Keep(func(job *jobs.Job) bool {
		return !ContainsRedFlag(job, f.terms)
	})
	if len(flagged) > 0 {
		f.logger.Info("excluding jobs with red flags",
			zap.Strings("excluded_jobs", flagged),
			zap.Int("jobs_left", v.Len()),
		)
	}

	return v, newStep(initial, v), nil
}

func (f *redFlagsFilter) Status() Status {
	details := map[string]string{}
	if len(f.terms) > 0 {
		details["terms"] = strings.Join(f.terms, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

// ContainsRedFlag reports whether any non-empty term occurs in the job text, ignoring case.
func ContainsRedFlag(job *jobs.Job, terms []string) bool {
	combined := strings.ToLower(job.Title + " " + job.Company + " " + job.Description)
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		if strings.Contains(combined, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
