// Package middleware provides request-scoped plumbing shared by every route:
// bearer extraction, structured logging, rate limiting, tracing and metrics.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. A missing or malformed header yields ok=false.
func BearerToken(c *fiber.Ctx) (string, bool) {
	return ParseBearer(c.Get(fiber.HeaderAuthorization))
}

// ParseBearer splits a raw Authorization header value.
func ParseBearer(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
