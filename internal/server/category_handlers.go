package server

import (
	"wikiadmin/internal/models"
	"wikiadmin/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListCategories handles GET /api/article-categories
func (s *Server) ListCategories(c *fiber.Ctx) error {
	categories, err := s.categories.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, categories, "")
}

// GetCategoryTree handles GET /api/article-categories/tree
// @Summary Category forest
// @Description Categories nested under their parents, siblings by name
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope{data=[]models.ArticleCategory}
// @Router /article-categories/tree [get]
func (s *Server) GetCategoryTree(c *fiber.Ctx) error {
	tree, err := s.categories.Tree(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, tree, "")
}

// CreateCategory handles POST /api/article-categories
func (s *Server) CreateCategory(c *fiber.Ctx) error {
	var req service.CategoryInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	category, err := s.categories.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondCreated(c, category, "category created")
}

// UpdateCategory handles PUT /api/article-categories/:id
func (s *Server) UpdateCategory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.CategoryUpdateInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	category, err := s.categories.Update(c.UserContext(), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, category, "category updated")
}

// DeleteCategory handles DELETE /api/article-categories/:id
// @Summary Delete a category
// @Description Refused while the category has children or articles
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 200 {object} models.Envelope
// @Failure 409 {object} models.Envelope
// @Router /article-categories/{id} [delete]
func (s *Server) DeleteCategory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.categories.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, nil, "category deleted")
}
