// Package api exposes profiles, job search, scoring, applications and letters
// over HTTP for the dashboard.
package api

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/spigell/job-agent/internal/applications"
	"github.com/spigell/job-agent/internal/jobs"
	"github.com/spigell/job-agent/internal/profile"
)

const (
	UserIDHeader = "X-User-ID"

	defaultRateLimit  = 30
	defaultRateWindow = time.Minute
	maxBodySize       = 10 * 1024 * 1024
	localsUserID      = "user_id"
)

// ProfileStore keeps the profile and resume text of each user.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*profile.Profile, error)
	SaveProfile(ctx context.Context, userID string, p *profile.Profile) error
	SaveResumeText(ctx context.Context, userID, text string) error
}

// ApplicationStore keeps the jobs each user saved.
type ApplicationStore interface {
	ListApplications(ctx context.Context, userID string) ([]*applications.Application, error)
	AddApplication(ctx context.Context, userID string, app *applications.Application) (*applications.Application, error)
	UpdateApplication(ctx context.Context, userID, jobID string, upd applications.Update) (*applications.Application, error)
	RemoveApplication(ctx context.Context, userID, jobID string) error
}

type Config struct {
	Listen string `mapstructure:"listen"`
	// RateLimit caps resume parsing and job search per user and window.
	RateLimit  int           `mapstructure:"rate-limit"`
	RateWindow time.Duration `mapstructure:"rate-window"`
}

type Deps struct {
	Profiles     ProfileStore
	Applications ApplicationStore
	Sources      []jobs.Source
	Logger       *zap.Logger
	// Now is used for application timestamps; defaults to time.Now.
	Now func() time.Time
}

type Server struct {
	app  *fiber.App
	cfg  Config
	deps *Deps
}

func New(cfg Config, deps *Deps) (*Server, error) {
	if deps == nil || deps.Profiles == nil || deps.Applications == nil {
		return nil, errors.New("profile and application stores are required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.RateWindow <= 0 {
		cfg.RateWindow = defaultRateWindow
	}

	app := fiber.New(fiber.Config{
		AppName:               "job-agent",
		BodyLimit:             maxBodySize,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(deps.Logger),
	})

	s := &Server{app: app, cfg: cfg, deps: deps}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.app.Use(recover.New())

	limit := limiter.New(limiter.Config{
		Max:        s.cfg.RateLimit,
		Expiration: s.cfg.RateWindow,
		KeyGenerator: userID,
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many requests")
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	})

	api := s.app.Group("/api", requireUser)

	api.Post("/resume/parse", limit, s.parseResume)
	api.Get("/profile", s.getProfile)
	api.Put("/profile", s.putProfile)

	api.Post("/jobs/search", limit, s.searchJobs)
	api.Post("/jobs/score", s.scoreJob)

	api.Get("/applications", s.listApplications)
	api.Post("/applications", s.addApplication)
	api.Patch("/applications/:id", s.updateApplication)
	api.Delete("/applications/:id", s.removeApplication)

	api.Post("/letters/:kind", s.renderLetter)
}

// App exposes the underlying fiber app, mostly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves until ctx is cancelled and then shuts the server down.
func (s *Server) Run(ctx context.Context) error {
	addr := s.cfg.Listen
	if addr == "" {
		addr = ":8080"
	}

	errCh := make(chan error, 1)
	go func() {
		s.deps.Logger.Info("http api listening", zap.String("addr", addr))
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.app.ShutdownWithContext(shutdownCtx)
	}
}

func requireUser(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Get(UserIDHeader))
	if id == "" {
		return fiber.NewError(fiber.StatusUnauthorized, UserIDHeader+" header is required")
	}
	c.Locals(localsUserID, id)
	return c.Next()
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals(localsUserID).(string)
	return id
}
