package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/vivabem/vivabem-server/internal/errors"
	"github.com/vivabem/vivabem-server/internal/medication"
	"go.uber.org/zap"
)

// statusFor maps application error codes to HTTP statuses
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrUnauthorized.Code:
		return 403
	case errors.ErrNotFound.Code, errors.ErrTaskNotFound.Code:
		return 404
	case errors.ErrInvalidSchedule.Code, errors.ErrBadRequest.Code:
		return 400
	case errors.ErrKeyMissing.Code, errors.ErrConfigInvalid.Code:
		return 503
	case errors.ErrUpstream.Code, errors.ErrEmptyCompletion.Code:
		return 502
	case errors.ErrRateLimited.Code:
		return 429
	default:
		return 500
	}
}

func (s *Server) fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= 500 {
		s.logger.Error("Request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// parseDay reads an optional YYYY-MM-DD query parameter, defaulting to today
func parseDay(c *fiber.Ctx, param string) (time.Time, error) {
	value := c.Query(param)
	if value == "" {
		return time.Now(), nil
	}
	day, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, errors.Wrap(err, errors.ErrBadRequest.Code, param+" must be YYYY-MM-DD")
	}
	return day, nil
}

// ==================== Medicines ====================

func (s *Server) handleListMedicines(c *fiber.Ctx) error {
	meds, err := s.medication.ListMedicines(c.Context(), actorID(c))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(meds)
}

func (s *Server) handleCreateMedicine(c *fiber.Ctx) error {
	var input medication.CreateInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}

	med, err := s.medication.CreateMedicine(c.Context(), actorID(c), input)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(201).JSON(med)
}

func (s *Server) handleDeleteMedicine(c *fiber.Ctx) error {
	if err := s.medication.DeleteMedicine(c.Context(), actorID(c), c.Params("id")); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(204)
}

// ==================== Tasks ====================

func (s *Server) handleTodayTasks(c *fiber.Ctx) error {
	day, err := parseDay(c, "date")
	if err != nil {
		return s.fail(c, err)
	}

	tasks, err := s.medication.TodayTasks(c.Context(), actorID(c), day)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(tasks)
}

func (s *Server) handleSetTaskTaken(c *fiber.Ctx) error {
	var req struct {
		Taken bool `json:"taken"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}

	task, err := s.medication.SetTaskTaken(c.Context(), actorID(c), c.Params("id"), req.Taken)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(task)
}

// ==================== Reports ====================

func (s *Server) handleDailyReport(c *fiber.Ctx) error {
	day, err := parseDay(c, "date")
	if err != nil {
		return s.fail(c, err)
	}

	result, err := s.reports.GenerateDaily(c.Context(), actorID(c), day)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(result)
}

func (s *Server) handleNarrativeReport(c *fiber.Ctx) error {
	day, err := parseDay(c, "date")
	if err != nil {
		return s.fail(c, err)
	}

	text, err := s.reports.GenerateNarrative(c.Context(), actorID(c), day)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"report": text})
}

// ==================== Consent ====================

func (s *Server) handleGetConsent(c *fiber.Ctx) error {
	consent, err := s.consent.Get(c.Context(), actorID(c))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(consent)
}

func (s *Server) handleUpdateConsent(c *fiber.Ctx) error {
	var req struct {
		Active      bool `json:"active"`
		DataSharing bool `json:"data_sharing"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}

	consent, err := s.consent.Update(c.Context(), actorID(c), req.Active, req.DataSharing)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(consent)
}
