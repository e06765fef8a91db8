package filtering

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spigell/job-agent/internal/jobs"
)

type minScoreFilter struct {
	min      int
	disabled bool
	reason   string
}

// NewMinScore creates a filter that removes ranked jobs with a total match
// score below min. Unscored jobs count as zero.
func NewMinScore(min int) Filter {
	return &minScoreFilter{min: min}
}

func (f *minScoreFilter) Name() string { return "min_score" }

func (f *minScoreFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *minScoreFilter) IsEnabled() bool { return !f.disabled }

func (f *minScoreFilter) Validate() error {
	if f.min < 0 || f.min > 100 {
		return fmt.Errorf("minimum score must be within 0..100, got %d", f.min)
	}
	return nil
}

func (f *minScoreFilter) Apply(_ context.Context, v *jobs.Jobs) (*jobs.Jobs, Step, error) {
	initial := v.Len()
	if f.min == 0 {
		return v, newStep(initial, v), nil
	}
	v.Keep(func(job *jobs.Job) bool { return job.Score() >= f.min })
	return v, newStep(initial, v), nil
}

func (f *minScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"min_score": strconv.Itoa(f.min)},
	}
}
