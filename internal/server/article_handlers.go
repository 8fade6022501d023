package server

import (
	"strings"

	"wikiadmin/internal/models"
	"wikiadmin/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListArticles handles GET /api/articles
// @Summary List articles
// @Tags articles
// @Produce json
// @Security BearerAuth
// @Param title query string false "Title substring"
// @Param status query string false "DRAFT or PUBLISHED"
// @Param categoryId query int false "Category ID"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} models.Envelope{data=models.Page[models.Article]}
// @Router /articles [get]
func (s *Server) ListArticles(c *fiber.Ctx) error {
	page, pageSize := parsePage(c)
	result, err := s.articles.List(c.UserContext(), service.ArticleListInput{
		Title:      c.Query("title"),
		Status:     models.ArticleStatus(strings.ToUpper(strings.TrimSpace(c.Query("status")))),
		CategoryID: queryUint(c, "categoryId"),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, result, "")
}

// GetArticle handles GET /api/articles/:id. Every call counts as one view.
func (s *Server) GetArticle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	article, err := s.articles.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, article, "")
}

// CreateArticle handles POST /api/articles
func (s *Server) CreateArticle(c *fiber.Ctx) error {
	var req service.ArticleInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	article, err := s.articles.Create(c.UserContext(), currentUser(c).ID, req)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondCreated(c, article, "article created")
}

// UpdateArticle handles PUT /api/articles/:id
func (s *Server) UpdateArticle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.ArticleUpdateInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	article, err := s.articles.Update(c.UserContext(), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, article, "article updated")
}

// DeleteArticle handles DELETE /api/articles/:id
func (s *Server) DeleteArticle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.articles.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, nil, "article deleted")
}

// GetTutorials handles GET /api/tutorials?parentId=. It is public.
func (s *Server) GetTutorials(c *fiber.Ctx) error {
	sections, err := s.tutorials.Sections(c.UserContext(), queryUint(c, "parentId"))
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, sections, "")
}
