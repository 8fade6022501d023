package server

import (
	"wikiadmin/internal/models"
	"wikiadmin/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListConfigs handles GET /api/configs
// @Summary List configs
// @Description Configs by sort order, each with its value flattened into one string
// @Tags configs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope{data=[]service.ConfigView}
// @Router /configs [get]
func (s *Server) ListConfigs(c *fiber.Ctx) error {
	configs, err := s.configs.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, configs, "")
}

// GetConfig handles GET /api/configs/:id
func (s *Server) GetConfig(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	cfg, err := s.configs.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, cfg, "")
}

// CreateConfig handles POST /api/configs
// @Summary Create a config
// @Tags configs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ConfigInput true "Config"
// @Success 201 {object} models.Envelope{data=service.ConfigView}
// @Failure 400 {object} models.Envelope
// @Failure 409 {object} models.Envelope
// @Router /configs [post]
func (s *Server) CreateConfig(c *fiber.Ctx) error {
	var req service.ConfigInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	cfg, err := s.configs.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondCreated(c, cfg, "config created")
}

// UpdateConfig handles PUT and PATCH /api/configs/:id. A value replaces the
// stored one wholesale.
func (s *Server) UpdateConfig(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.ConfigUpdateInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	cfg, err := s.configs.Update(c.UserContext(), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, cfg, "config updated")
}

// SetConfigStatus handles PATCH /api/configs/:id/status
func (s *Server) SetConfigStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		IsEnabled *bool `json:"isEnabled"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if req.IsEnabled == nil {
		return respondError(c, models.NewValidationError("isEnabled is required"))
	}
	cfg, err := s.configs.SetEnabled(c.UserContext(), id, *req.IsEnabled)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, cfg, "config status updated")
}

// DeleteConfig handles DELETE /api/configs/:id
func (s *Server) DeleteConfig(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.configs.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, nil, "config deleted")
}
