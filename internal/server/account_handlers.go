package server

import (
	"strings"

	"wikiadmin/internal/models"
	"wikiadmin/internal/service"

	"github.com/gofiber/fiber/v2"
)

func accountListInput(c *fiber.Ctx) service.AccountListInput {
	page, pageSize := parsePage(c)
	return service.AccountListInput{
		Keyword:  c.Query("keyword"),
		Status:   models.UserStatus(strings.ToUpper(strings.TrimSpace(c.Query("status")))),
		Page:     page,
		PageSize: pageSize,
	}
}

// ListAdmins handles GET /api/admins
// @Summary List admin accounts
// @Tags admins
// @Produce json
// @Security BearerAuth
// @Param keyword query string false "Username, email or nickname substring"
// @Param status query string false "ACTIVE, INACTIVE or BANNED"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} models.Envelope{data=models.Page[models.User]}
// @Failure 403 {object} models.Envelope
// @Router /admins [get]
func (s *Server) ListAdmins(c *fiber.Ctx) error {
	page, err := s.accounts.ListAdmins(c.UserContext(), accountListInput(c))
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, page, "")
}

// GetAdmin handles GET /api/admins/:id
func (s *Server) GetAdmin(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.accounts.GetAdmin(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, user, "")
}

// CreateAdmin handles POST /api/admins
// @Summary Create an admin account
// @Tags admins
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateAccountInput true "Account"
// @Success 201 {object} models.Envelope{data=models.User}
// @Failure 400 {object} models.Envelope
// @Failure 403 {object} models.Envelope
// @Failure 409 {object} models.Envelope
// @Router /admins [post]
func (s *Server) CreateAdmin(c *fiber.Ctx) error {
	var req service.CreateAccountInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	user, err := s.accounts.CreateAdmin(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondCreated(c, user, "admin created")
}

// UpdateAdmin handles PUT /api/admins/:id
func (s *Server) UpdateAdmin(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.UpdateAccountInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	user, err := s.accounts.UpdateAdmin(c.UserContext(), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, user, "admin updated")
}

// DeleteAdmin handles DELETE /api/admins/:id
func (s *Server) DeleteAdmin(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.accounts.DeleteAdmin(c.UserContext(), currentUser(c), id); err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, nil, "admin deleted")
}

// ListUsers handles GET /api/users
// @Summary List normal user accounts
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param keyword query string false "Username, email or nickname substring"
// @Param status query string false "ACTIVE, INACTIVE or BANNED"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} models.Envelope{data=models.Page[models.User]}
// @Router /users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	page, err := s.accounts.ListUsers(c.UserContext(), accountListInput(c))
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, page, "")
}

// CreateUser handles POST /api/users
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var req service.CreateAccountInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	user, err := s.accounts.CreateUser(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondCreated(c, user, "user created")
}

// UpdateUser handles PUT /api/users/:id. Only rows with role USER qualify.
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.UpdateAccountInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	user, err := s.accounts.UpdateUser(c.UserContext(), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, user, "user updated")
}

// DeleteUser handles DELETE /api/users/:id
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.accounts.DeleteUser(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, nil, "user deleted")
}

// SetUserStatus handles PUT /api/users/:id/status
// @Summary Change an account's status
// @Description A super admin's status can only be changed by a super admin
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Param request body object{status=string} true "New status"
// @Success 200 {object} models.Envelope{data=models.User}
// @Failure 403 {object} models.Envelope
// @Router /users/{id}/status [put]
func (s *Server) SetUserStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Status models.UserStatus `json:"status"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	user, err := s.accounts.SetStatus(c.UserContext(), currentUser(c), id, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, user, "status updated")
}

// GetProfile handles GET /api/users/profile
func (s *Server) GetProfile(c *fiber.Ctx) error {
	profile, err := s.accounts.Profile(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, profile, "")
}

// UpdateProfile handles PUT /api/users/profile
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req service.ProfileInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	profile, err := s.accounts.UpdateProfile(c.UserContext(), currentUser(c).ID, req)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, profile, "profile updated")
}

// ChangePassword handles POST /api/users/change-password
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	var req service.ChangePasswordInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := s.accounts.ChangePassword(c.UserContext(), currentUser(c).ID, req); err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, nil, "password changed")
}
