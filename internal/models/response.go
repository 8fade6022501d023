package models

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// CodeSuccess is the envelope code of every successful response.
const CodeSuccess = 0

// Envelope is the uniform {code, message, data} response wrapper.
// Failures carry the HTTP status as code.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// Page is the paginated list shape.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// NewPage assembles a Page, computing the page count; an empty result has zero pages.
func NewPage[T any](items []T, total int64, page, pageSize int) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// RespondOK writes a 200 success envelope.
func RespondOK(c *fiber.Ctx, data any, message string) error {
	if message == "" {
		message = "success"
	}
	return c.Status(fiber.StatusOK).JSON(Envelope{Code: CodeSuccess, Message: message, Data: data})
}

// RespondCreated writes a 201 success envelope.
func RespondCreated(c *fiber.Ctx, data any, message string) error {
	if message == "" {
		message = "created"
	}
	return c.Status(fiber.StatusCreated).JSON(Envelope{Code: CodeSuccess, Message: message, Data: data})
}

// RespondWithError creates a standardized error response. Internal error
// details never reach the client.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	message := "Internal server error"
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != CodeInternal {
		message = appErr.Message
	} else if status < fiber.StatusInternalServerError && err != nil {
		message = err.Error()
	}

	return c.Status(status).JSON(Envelope{Code: status, Message: message, Data: nil})
}
