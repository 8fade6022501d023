package server

import (
	"wikiadmin/internal/models"
	"wikiadmin/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Login handles POST /api/login
// @Summary Admin login
// @Description Exchange admin credentials for a signed bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,password=string} true "Login request"
// @Success 200 {object} models.Envelope{data=service.LoginResult}
// @Failure 400 {object} models.Envelope
// @Failure 401 {object} models.Envelope
// @Failure 403 {object} models.Envelope
// @Router /login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req service.LoginInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.IP = c.IP()

	result, err := s.accounts.Login(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, result, "login successful")
}

// Logout handles POST /api/logout
// @Summary Logout
// @Description Revoke the presented token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope
// @Failure 401 {object} models.Envelope
// @Router /logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.accounts.Logout(c.UserContext(), currentClaims(c)); err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, nil, "logged out")
}
