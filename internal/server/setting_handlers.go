package server

import (
	"wikiadmin/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetSystemSettings handles GET /api/settings/system
// @Summary System settings
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope{data=service.SystemSettings}
// @Router /settings/system [get]
func (s *Server) GetSystemSettings(c *fiber.Ctx) error {
	settings, err := s.settings.Get(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, settings, "")
}

// UpdateSystemSettings handles PUT /api/settings/system. Every provided key
// is stored; the response is the settings after the write.
func (s *Server) UpdateSystemSettings(c *fiber.Ctx) error {
	var req map[string]any
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := s.settings.Update(c.UserContext(), req); err != nil {
		return respondError(c, err)
	}
	settings, err := s.settings.Get(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, settings, "settings updated")
}

// GetDashboardStats handles GET /api/dashboard/stats
// @Summary Dashboard statistics
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope{data=service.DashboardStats}
// @Router /dashboard/stats [get]
func (s *Server) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := s.dashboard.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, stats, "")
}
