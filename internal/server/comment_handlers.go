package server

import (
	"wikiadmin/internal/models"
	"wikiadmin/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListComments handles POST /api/comments. Filters travel in the body.
// @Summary List comments
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CommentListInput false "Filters and paging"
// @Success 200 {object} models.Envelope{data=models.Page[service.CommentItem]}
// @Router /comments [post]
func (s *Server) ListComments(c *fiber.Ctx) error {
	var req service.CommentListInput
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return nil
		}
	}
	page, err := s.comments.List(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, page, "")
}

// BatchUpdateComments handles PUT /api/comments
// @Summary Toggle comment flags in bulk
// @Description Unknown ids are ignored; the rest change in one statement
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.BatchCommentInput true "Ids and flags"
// @Success 200 {object} models.Envelope{data=object{updated=int}}
// @Failure 400 {object} models.Envelope
// @Router /comments [put]
func (s *Server) BatchUpdateComments(c *fiber.Ctx) error {
	var req service.BatchCommentInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	updated, err := s.comments.Batch(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, fiber.Map{"updated": updated}, "comments updated")
}
