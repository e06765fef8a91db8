package digest

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-agent/internal/filtering"
	"github.com/spigell/job-agent/internal/jobs"
	"github.com/spigell/job-agent/internal/logger"
	"github.com/spigell/job-agent/internal/matching"
	"github.com/spigell/job-agent/internal/profile"
	"github.com/spigell/job-agent/internal/storage"
)

const (
	defaultTopN       = 5
	defaultDatePosted = "today"
	fallbackQuery     = "Software Engineer"
	fallbackLocation  = "Remote"
)

// ProfileLister returns every profile the agent should search for.
type ProfileLister interface {
	ListProfiles(ctx context.Context) ([]storage.UserProfile, error)
}

type Config struct {
	TopN              int      `json:"top_n"`
	MinScore          int      `json:"min_score"`
	DatePosted        string   `json:"date_posted"`
	DashboardURL      string   `json:"dashboard_url"`
	RedFlags          []string `json:"red_flags"`
	ExcludedCompanies []string `json:"excluded_companies"`
}

type Deps struct {
	Profiles ProfileLister
	Sources  []jobs.Source
	Sender   Sender
	// Applications is optional. When set, jobs the user already saved are skipped.
	Applications filtering.ApplicationLister
	Logger       *zap.Logger
}

// Report summarises one agent run.
type Report struct {
	Profiles int
	Skipped  int
	Sent     int
	Failed   int
}

type Agent struct {
	cfg  Config
	deps *Deps
}

func NewAgent(cfg Config, deps *Deps) (*Agent, error) {
	if deps == nil || deps.Profiles == nil || deps.Sender == nil {
		return nil, fmt.Errorf("profiles and sender are required")
	}
	if len(deps.Sources) == 0 {
		return nil, fmt.Errorf("at least one job source is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if cfg.TopN <= 0 {
		cfg.TopN = defaultTopN
	}
	if cfg.DatePosted == "" {
		cfg.DatePosted = defaultDatePosted
	}
	return &Agent{cfg: cfg, deps: deps}, nil
}

// SearchQuery derives the upstream search for a profile from its first two
// skills and its location.
func SearchQuery(p *profile.Profile) jobs.Query {
	text := fallbackQuery
	if p.HasSkills() {
		skills := p.Skills
		if len(skills) > 2 {
			skills = skills[:2]
		}
		text = strings.Join(skills, " ") + " Developer"
	}
	return jobs.Query{Text: text, Location: p.Location(fallbackLocation)}
}

// RunOnce searches for every stored profile and emails the best matches.
// A failure for one user is logged and does not stop the others.
func (a *Agent) RunOnce(ctx context.Context) (Report, error) {
	log := a.deps.Logger
	log.Info("job agent run started")

	profiles, err := a.deps.Profiles.ListProfiles(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list profiles: %w", err)
	}

	report := Report{Profiles: len(profiles)}
	for _, up := range profiles {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if up.Profile == nil || up.Profile.Email == "" {
			report.Skipped++
			continue
		}

		sent, err := a.processProfile(ctx, up)
		switch {
		case err != nil:
			report.Failed++
			log.Error("job agent failed for user", zap.String("user_id", up.UserID), zap.Error(err))
		case sent:
			report.Sent++
		default:
			report.Skipped++
		}
	}

	log.Info("job agent run finished",
		zap.Int("profiles", report.Profiles),
		zap.Int("sent", report.Sent),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (a *Agent) processProfile(ctx context.Context, up storage.UserProfile) (bool, error) {
	log := logger.WithFields(a.deps.Logger, logger.RequestFields(up.UserID, "")...)

	q := SearchQuery(up.Profile)
	q.DatePosted = a.cfg.DatePosted
	log.Info("searching jobs", zap.String("query", q.Text), zap.String("location", q.Location))

	found := jobs.Collect(ctx, log, a.deps.Sources, q)

	steps := []filtering.Filter{
		filtering.NewDedup(),
		filtering.NewRedFlags(a.cfg.RedFlags, log),
		filtering.NewExcludedCompanies(a.cfg.ExcludedCompanies, log),
	}
	if a.deps.Applications != nil {
		steps = append(steps, filtering.NewSavedApplications(nil, &filtering.SavedApplicationsDeps{
			Store:  a.deps.Applications,
			UserID: up.UserID,
			Logger: log,
		}))
	}

	candidates, err := filtering.New(steps, log).RunFilters(ctx, found)
	if err != nil {
		return false, err
	}

	ranked := &jobs.Jobs{Items: matching.Rank(candidates.Items, up.Profile)}
	ranked, err = filtering.New([]filtering.Filter{filtering.NewMinScore(a.cfg.MinScore)}, log).RunFilters(ctx, ranked)
	if err != nil {
		return false, err
	}

	top := ranked.Head(a.cfg.TopN)
	if top.Len() == 0 {
		log.Info("no new jobs found")
		return false, nil
	}

	msg, err := Compose(up.Profile.Email, up.Profile.DisplayName(""), top.Items, a.cfg.DashboardURL)
	if err != nil {
		return false, err
	}
	if err := a.deps.Sender.Send(ctx, msg); err != nil {
		return false, err
	}

	log.Info("digest sent", zap.String("to", msg.To), zap.Int("jobs", top.Len()))
	return true, nil
}
