package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spigell/job-agent/internal/applications"
	"github.com/spigell/job-agent/internal/jobs"
	"github.com/spigell/job-agent/internal/logger"
)

func (s *Server) listApplications(c *fiber.Ctx) error {
	list, err := s.deps.Applications.ListApplications(c.UserContext(), userID(c))
	if err != nil {
		return err
	}
	if list == nil {
		list = []*applications.Application{}
	}
	return respond(c, fiber.StatusOK, "applications found", list)
}

// addApplication saves the posted job as a new application in the saved state.
func (s *Server) addApplication(c *fiber.Ctx) error {
	var job jobs.Job
	if err := decodeBody(c, &job); err != nil {
		return err
	}

	app, err := applications.FromJob(&job, s.deps.Now())
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	stored, err := s.deps.Applications.AddApplication(c.UserContext(), userID(c), app)
	if err != nil {
		return err
	}

	s.deps.Logger.Info("application saved", logger.RequestFields(userID(c), job.ID)...)
	return respond(c, fiber.StatusCreated, "application saved", stored)
}

func (s *Server) updateApplication(c *fiber.Ctx) error {
	var upd applications.Update
	if err := decodeBody(c, &upd); err != nil {
		return err
	}
	if upd.Empty() {
		return fiber.NewError(fiber.StatusBadRequest, "status or notes is required")
	}

	upd, err := upd.Normalize()
	if err != nil {
		return err
	}

	stored, err := s.deps.Applications.UpdateApplication(c.UserContext(), userID(c), c.Params("id"), upd)
	if err != nil {
		return err
	}

	fields := append(logger.RequestFields(userID(c), stored.ID), zap.String("status", string(stored.Status)))
	s.deps.Logger.Info("application updated", fields...)
	return respond(c, fiber.StatusOK, "application updated", stored)
}

func (s *Server) removeApplication(c *fiber.Ctx) error {
	if err := s.deps.Applications.RemoveApplication(c.UserContext(), userID(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
