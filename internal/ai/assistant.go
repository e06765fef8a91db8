package ai

import (
	"context"

	"github.com/spigell/job-agent/internal/jobs"
	"github.com/spigell/job-agent/internal/profile"
)

type FitAssessment struct {
	Fit     bool
	Score   float64
	Reason  string
	Message string
	Raw     string
}

// ToJob converts the assessment into the annotation stored on a job.
func (a *FitAssessment) ToJob() *jobs.AIAssessment {
	if a == nil {
		return nil
	}
	return &jobs.AIAssessment{
		Fit:     a.Fit,
		Score:   a.Score,
		Reason:  a.Reason,
		Message: a.Message,
		Raw:     a.Raw,
	}
}

type Matcher interface {
	Evaluate(ctx context.Context, p *profile.Profile, job *jobs.Job) (*FitAssessment, error)
}
