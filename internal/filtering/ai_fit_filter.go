package filtering

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/job-agent/internal/ai"
	"github.com/spigell/job-agent/internal/jobs"
	"github.com/spigell/job-agent/internal/profile"
)

const defaultAIConcurrency = 2

type AIFitFilterConfig struct {
	Enabled         bool
	Model           string
	MinimumFitScore float64
	// Concurrency bounds the evaluations in flight.
	Concurrency int
}

type AIFitFilterDeps struct {
	Logger      *zap.Logger
	Matcher     ai.Matcher
	Profile     *profile.Profile
	ExcludeFile string
	Now         func() time.Time
}

type aiFitFilter struct {
	enabled bool
	reason  string
	config  AIFitFilterConfig
	deps    *AIFitFilterDeps
}

// NewAIFit creates the step that asks the model about every job.
func NewAIFit(cfg *AIFitFilterConfig, deps *AIFitFilterDeps) Filter {
	f := &aiFitFilter{deps: deps}
	if cfg != nil {
		f.config = *cfg
		f.enabled = cfg.Enabled
	}
	if f.config.Concurrency <= 0 {
		f.config.Concurrency = defaultAIConcurrency
	}
	return f
}

func (f *aiFitFilter) Name() string { return "ai_fit" }

func (f *aiFitFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *aiFitFilter) IsEnabled() bool { return f.enabled }

func (f *aiFitFilter) Validate() error {
	switch {
	case f.deps == nil || f.deps.Matcher == nil || f.deps.Logger == nil:
		return errors.New("deps are not initialized: filter is not usable")
	case f.deps.Profile == nil:
		return errors.New("profile is required for AI evaluation")
	case strings.TrimSpace(f.config.Model) == "":
		return errors.New("model is required when ai filter is enabled")
	}
	return nil
}

// Apply annotates every job with the model verdict and drops the rejected
// ones. A job whose evaluation failed is kept with the error recorded.
func (f *aiFitFilter) Apply(ctx context.Context, v *jobs.Jobs) (*jobs.Jobs, Step, error) {
	initial := v.Len()
	verdicts := make([]*jobs.AIAssessment, initial)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.config.Concurrency)
	for idx, job := range v.Items {
		g.Go(func() error {
			verdicts[idx] = f.evaluate(gctx, job)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return v, Step{}, err
	}

	var rejected []*jobs.Job
	kept := v.Items[:0]
	for idx, job := range v.Items {
		job.AI = verdicts[idx]
		if job.AI.Error == "" && !job.AI.Fit {
			rejected = append(rejected, job)
			continue
		}
		kept = append(kept, job)
	}
	v.Items = kept

	if err := f.excludeRejected(rejected); err != nil {
		f.deps.Logger.Warn("failed to append rejected jobs to exclude file", zap.Error(err))
	}

	f.deps.Logger.Info("AI filtering completed",
		zap.String("model", f.config.Model),
		zap.Int("initial_jobs", initial),
		zap.Int("approved_jobs", v.Len()),
	)

	return v, newStep(initial, v), nil
}

func (f *aiFitFilter) evaluate(ctx context.Context, job *jobs.Job) *jobs.AIAssessment {
	assessment, err := f.deps.Matcher.Evaluate(ctx, f.deps.Profile, job)
	if err != nil {
		f.deps.Logger.Warn("AI evaluation failed", zap.String("job_id", job.ID), zap.Error(err))
		return &jobs.AIAssessment{Error: err.Error()}
	}

	if assessment.Fit {
		f.deps.Logger.Info("job approved by AI",
			zap.String("job_id", job.ID),
			zap.Float64("ai_score", assessment.Score),
		)
	} else {
		f.deps.Logger.Info("job rejected by AI provider",
			zap.String("job_id", job.ID),
			zap.Float64("ai_score", assessment.Score),
			zap.String("reason", assessment.Reason),
		)
	}
	return assessment.ToJob()
}

// excludeRejected remembers the rejected jobs so later searches skip them.
func (f *aiFitFilter) excludeRejected(rejected []*jobs.Job) error {
	path := strings.TrimSpace(f.deps.ExcludeFile)
	if path == "" || len(rejected) == 0 {
		return nil
	}

	excluded, err := jobs.LoadExcluded(path)
	if err != nil {
		return fmt.Errorf("load excluded jobs: %w", err)
	}

	now := time.Now
	if f.deps.Now != nil {
		now = f.deps.Now
	}
	excluded.Append((&jobs.Jobs{Items: rejected}).ToExcluded(now()))

	if err := excluded.ToFile(path); err != nil {
		return fmt.Errorf("write excluded jobs: %w", err)
	}

	f.deps.Logger.Info("rejected jobs appended to exclude file",
		zap.Int("count", len(rejected)),
		zap.String("exclude_file", path),
	)
	return nil
}

func (f *aiFitFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{
			"model":             f.config.Model,
			"minimum_fit_score": fmt.Sprintf("%.2f", f.config.MinimumFitScore),
			"concurrency":       fmt.Sprint(f.config.Concurrency),
		},
	}
}
