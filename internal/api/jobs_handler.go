package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/spigell/job-agent/internal/filtering"
	"github.com/spigell/job-agent/internal/jobs"
	"github.com/spigell/job-agent/internal/letters"
	"github.com/spigell/job-agent/internal/matching"
	"github.com/spigell/job-agent/internal/profile"
	"github.com/spigell/job-agent/internal/storage"
)

type searchRequest struct {
	filtering.Criteria
	Limit int `json:"limit"`
}

// jobRequest carries a job and, optionally, the profile to use instead of the
// stored one.
type jobRequest struct {
	Job     *jobs.Job        `json:"job"`
	Profile *profile.Profile `json:"profile,omitempty"`
}

// searchJobs queries every source, applies the criteria and ranks the result
// against the stored profile when the user has one.
func (s *Server) searchJobs(c *fiber.Ctx) error {
	if len(s.deps.Sources) == 0 {
		return fiber.NewError(fiber.StatusServiceUnavailable, "no job sources configured")
	}

	var req searchRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}

	ctx := c.UserContext()
	found := jobs.Collect(ctx, s.deps.Logger, s.deps.Sources, jobs.Query{
		Text:     req.Query,
		Location: req.Location,
		Category: req.Category,
		Limit:    req.Limit,
	})

	result, err := filtering.Search(ctx, found, req.Criteria)
	if err != nil {
		return err
	}

	p, err := s.storedProfile(ctx, userID(c))
	if err != nil {
		return err
	}
	items := result.Items
	if p != nil {
		items = matching.Rank(items, p)
	}
	if items == nil {
		items = []*jobs.Job{}
	}

	return respond(c, fiber.StatusOK, fmt.Sprintf("%d jobs found", len(items)), items)
}

func (s *Server) scoreJob(c *fiber.Ctx) error {
	req, p, err := s.decodeJobRequest(c)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("profile for %q: %w", userID(c), storage.ErrNotFound)
	}

	result := matching.Score(req.Job, p)
	return respond(c, fiber.StatusOK, "job scored", result)
}

func (s *Server) renderLetter(c *fiber.Ctx) error {
	req, p, err := s.decodeJobRequest(c)
	if err != nil {
		return err
	}

	kind := letters.Kind(c.Params("kind"))
	text, err := letters.Render(kind, req.Job, p)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "letter generated", fiber.Map{"kind": kind, "text": text})
}

// decodeJobRequest reads a jobRequest and resolves the profile, falling back
// to the stored one. The returned profile is nil when the user has none.
func (s *Server) decodeJobRequest(c *fiber.Ctx) (*jobRequest, *profile.Profile, error) {
	var req jobRequest
	if err := decodeBody(c, &req); err != nil {
		return nil, nil, err
	}
	if req.Job == nil {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "job is required")
	}
	if req.Profile != nil {
		return &req, req.Profile, nil
	}

	p, err := s.storedProfile(c.UserContext(), userID(c))
	if err != nil {
		return nil, nil, err
	}
	return &req, p, nil
}

// storedProfile returns nil without error when the user has no profile yet.
func (s *Server) storedProfile(ctx context.Context, uid string) (*profile.Profile, error) {
	p, err := s.deps.Profiles.GetProfile(ctx, uid)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return p, err
}
