package server

import (
	"strings"

	"wikiadmin/internal/models"
	"wikiadmin/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListWikis handles GET /api/wikis
// @Summary List wikis
// @Tags wikis
// @Produce json
// @Security BearerAuth
// @Param keyword query string false "Name, subdomain or title substring"
// @Param status query string false "PENDING, DRAFT, REJECTED or PUBLISHED"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} models.Envelope{data=models.Page[models.Wiki]}
// @Failure 403 {object} models.Envelope
// @Router /wikis [get]
func (s *Server) ListWikis(c *fiber.Ctx) error {
	page, pageSize := parsePage(c)
	result, err := s.wikis.List(c.UserContext(), service.WikiListInput{
		Keyword:  c.Query("keyword"),
		Status:   models.WikiStatus(strings.ToUpper(strings.TrimSpace(c.Query("status")))),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, result, "")
}

// GetWiki handles GET /api/wikis/:id
func (s *Server) GetWiki(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	wiki, err := s.wikis.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, wiki, "")
}

// CreateWiki handles POST /api/wikis. New wikis start PENDING.
func (s *Server) CreateWiki(c *fiber.Ctx) error {
	var req service.WikiInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	wiki, err := s.wikis.Create(c.UserContext(), currentUser(c).ID, req)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondCreated(c, wiki, "wiki created")
}

// UpdateWiki handles PUT /api/wikis/:id
func (s *Server) UpdateWiki(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.WikiUpdateInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	wiki, err := s.wikis.Update(c.UserContext(), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, wiki, "wiki updated")
}

// DeleteWiki handles DELETE /api/wikis/:id
func (s *Server) DeleteWiki(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.wikis.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, nil, "wiki deleted")
}

// ApproveWiki handles POST /api/wikis/:id/approve
// @Summary Approve a pending wiki
// @Tags wikis
// @Produce json
// @Security BearerAuth
// @Param id path int true "Wiki ID"
// @Success 200 {object} models.Envelope{data=models.Wiki}
// @Failure 400 {object} models.Envelope
// @Router /wikis/{id}/approve [post]
func (s *Server) ApproveWiki(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	wiki, err := s.wikis.Approve(c.UserContext(), currentUser(c).ID, id)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, wiki, "wiki approved")
}

// RejectWiki handles POST /api/wikis/:id/reject
// @Summary Reject a pending wiki
// @Tags wikis
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Wiki ID"
// @Param request body object{reason=string} true "Rejection reason"
// @Success 200 {object} models.Envelope{data=models.Wiki}
// @Failure 400 {object} models.Envelope
// @Router /wikis/{id}/reject [post]
func (s *Server) RejectWiki(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	wiki, err := s.wikis.Reject(c.UserContext(), currentUser(c).ID, id, req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, wiki, "wiki rejected")
}
