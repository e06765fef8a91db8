package api

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spigell/job-agent/internal/logger"
	"github.com/spigell/job-agent/internal/profile"
	"github.com/spigell/job-agent/internal/resume"
)

const resumeFormField = "resume"

type parseResumeRequest struct {
	Text string `json:"text"`
	Save bool   `json:"save"`
}

// parseResume accepts either a multipart upload in the "resume" field or a
// JSON body with the resume text. With save set the profile and the raw text
// are stored for the user.
func (s *Server) parseResume(c *fiber.Ctx) error {
	text, save, err := s.resumeText(c)
	if err != nil {
		return err
	}

	parsed, err := resume.Parse(text)
	if err != nil {
		return err
	}

	if save {
		ctx, uid := c.UserContext(), userID(c)
		if err := s.deps.Profiles.SaveProfile(ctx, uid, parsed); err != nil {
			return err
		}
		if err := s.deps.Profiles.SaveResumeText(ctx, uid, text); err != nil {
			return err
		}
		s.deps.Logger.Info("profile saved from resume", logger.RequestFields(uid, "")...)
	}

	return respond(c, fiber.StatusOK, "resume parsed", parsed)
}

func (s *Server) resumeText(c *fiber.Ctx) (string, bool, error) {
	save := c.QueryBool("save")

	upload, err := c.FormFile(resumeFormField)
	if err != nil {
		var req parseResumeRequest
		if err := decodeBody(c, &req); err != nil {
			return "", false, err
		}
		return req.Text, save || req.Save, nil
	}

	dir, err := os.MkdirTemp("", "job-agent-resume-*")
	if err != nil {
		return "", false, fmt.Errorf("create upload dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			s.deps.Logger.Warn("removing upload dir", zap.String("dir", dir), zap.Error(err))
		}
	}()

	path := filepath.Join(dir, "resume"+strings.ToLower(filepath.Ext(upload.Filename)))
	if err := c.SaveFile(upload, path); err != nil {
		return "", false, fmt.Errorf("save upload: %w", err)
	}

	text, err := resume.ExtractText(path)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", resume.ErrInvalidInput, err)
	}
	return text, save, nil
}

func (s *Server) getProfile(c *fiber.Ctx) error {
	p, err := s.deps.Profiles.GetProfile(c.UserContext(), userID(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "profile found", p)
}

func (s *Server) putProfile(c *fiber.Ctx) error {
	var p profile.Profile
	if err := decodeBody(c, &p); err != nil {
		return err
	}
	if err := s.deps.Profiles.SaveProfile(c.UserContext(), userID(c), &p); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "profile saved", &p)
}

func decodeBody(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	return nil
}
