package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/job-agent/internal/applications"
	"github.com/spigell/job-agent/internal/jobs"
)

const forceFlagSetMsg = "force flag is set"

// ApplicationLister returns the applications a user already saved.
type ApplicationLister interface {
	ListApplications(ctx context.Context, userID string) ([]*applications.Application, error)
}

type savedApplicationsFilter struct {
	deps   *SavedApplicationsDeps
	ignore bool
}

type SavedApplicationsDeps struct {
	Store  ApplicationLister
	UserID string
	Logger *zap.Logger
}

type SavedApplicationsConfig struct {
	Ignore bool
}

// NewSavedApplications creates a filter that removes jobs the user already saved as applications.
func NewSavedApplications(cfg *SavedApplicationsConfig, deps *SavedApplicationsDeps) Filter {
	ignore := false
	if cfg != nil {
		ignore = cfg.Ignore
	}

	return &savedApplicationsFilter{
		deps:   deps,
		ignore: ignore,
	}
}

func (f *savedApplicationsFilter) Name() string { return "saved_applications" }

func (f *savedApplicationsFilter) Disable(string) {}

func (f *savedApplicationsFilter) IsEnabled() bool { return true }

func (f *savedApplicationsFilter) Validate() error {
	if f.deps == nil || f.deps.Store == nil {
		return fmt.Errorf("application store is required")
	}

	if f.deps.Logger == nil {
		return fmt.Errorf("logger is required")
	}

	return nil
}

func (f *savedApplicationsFilter) Apply(ctx context.Context, v *jobs.Jobs) (*jobs.Jobs, Step, error) {
	initial := v.Len()
	if f.ignore {
		f.deps.Logger.Info("keeping already saved jobs", zap.String("reason", forceFlagSetMsg))
		return v, newStep(initial, v), nil
	}

	saved, err := f.deps.Store.ListApplications(ctx, f.deps.UserID)
	if err != nil {
		return v, Step{}, fmt.Errorf("list saved applications: %w", err)
	}

	ids := make([]string, 0, len(saved))
	for _, app := range saved {
		ids = append(ids, app.ID)
	}

	excluded := v.Exclude(ids)
	if len(excluded) > 0 {
		f.deps.Logger.Info("excluding jobs already saved as applications",
			zap.Strings("excluded_jobs", excluded),
			zap.Int("jobs_left", v.Len()),
		)
	}

	return v, newStep(initial, v), nil
}
