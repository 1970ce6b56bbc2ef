package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/drixpyyy/aimcore/pkg/hub"
	"github.com/drixpyyy/aimcore/pkg/tracking"
)

// statusResponse is the combined state returned by /api/status.
type statusResponse struct {
	Aim       tracking.AimStatus `json:"aim"`
	Scheduler string             `json:"scheduler"`
	Clients   int                `json:"clients"`
}

// handleStatus returns the current aim and scheduler state.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.aimMu.RLock()
	aim := s.aim
	s.aimMu.RUnlock()

	return c.JSON(statusResponse{
		Aim:       aim,
		Scheduler: s.scheduler.State().String(),
		Clients:   s.statusHub.ClientCount(),
	})
}

// handleTargets returns the latest published candidate snapshot.
func (s *Server) handleTargets(c *fiber.Ctx) error {
	snap := s.registry.Latest()
	if snap == nil {
		return c.JSON(fiber.Map{"targets": []tracking.Target{}})
	}
	return c.JSON(snap)
}

// handleEvents returns recent recoverable-error events.
func (s *Server) handleEvents(c *fiber.Ctx) error {
	s.eventsMu.RLock()
	defer s.eventsMu.RUnlock()
	return c.JSON(s.events)
}

// handleGetTuning returns the current runtime tuning parameters.
func (s *Server) handleGetTuning(c *fiber.Ctx) error {
	return c.JSON(s.config.Tuning())
}

// handleSetTuning applies runtime tuning parameters. Zero-valued fields
// are left unchanged.
func (s *Server) handleSetTuning(c *fiber.Ctx) error {
	var params tracking.TuningParams
	if err := c.BodyParser(&params); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "invalid tuning payload: " + err.Error(),
		})
	}

	s.config.ApplyTuning(params)
	return c.JSON(s.config.Tuning())
}

// SetActiveRequest is the request body for /api/active.
type SetActiveRequest struct {
	Active bool `json:"active"`
}

// handleSetActive toggles the aim-active condition.
func (s *Server) handleSetActive(c *fiber.Ctx) error {
	var req SetActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "invalid payload: " + err.Error(),
		})
	}

	s.driver.SetActive(req.Active)
	return c.JSON(fiber.Map{"active": s.driver.Active()})
}

// handleRestart returns a stopped detection scheduler to service.
func (s *Server) handleRestart(c *fiber.Ctx) error {
	s.scheduler.Restart()
	return c.JSON(fiber.Map{"scheduler": s.scheduler.State().String()})
}

// handleStatusWS streams aim status updates.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	client := hub.NewClient(s.statusHub, c)
	client.Run()
}

// handleEventsWS streams recoverable-error events. Recent history is
// replayed on connect.
func (s *Server) handleEventsWS(c *websocket.Conn) {
	s.eventsMu.RLock()
	for _, entry := range s.events {
		if err := c.WriteJSON(entry); err != nil {
			break
		}
	}
	s.eventsMu.RUnlock()

	client := hub.NewClient(s.eventHub, c)
	client.Run()
}
