package server

import (
	"context"
	"log/slog"

	"wikiadmin/internal/auth"
	"wikiadmin/internal/cache"
	"wikiadmin/internal/middleware"
	"wikiadmin/internal/models"

	"github.com/gofiber/fiber/v2"
)

// session is a resolved caller: the stored account as it is now, plus the
// claims of the token that identified it.
type session struct {
	user   *models.User
	claims *auth.Claims
}

// resolveSession turns the bearer token into the caller's current account.
// Every failure to authenticate is an Unauthorized error; only storage
// failures surface as something else. The token's role is never trusted, the
// account is always re-read so bans and role changes apply immediately.
func (s *Server) resolveSession(c *fiber.Ctx) (*session, error) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		return nil, models.NewUnauthorizedError("Authorization required")
	}

	claims, err := s.codec.Decode(token)
	if err != nil {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	revoked, err := cache.IsRevoked(c.UserContext(), claims.RegisteredClaims.ID)
	if err != nil {
		// Fail open: the cache being down must not lock every admin out.
		middleware.Logger.WarnContext(c.UserContext(), "revocation check failed",
			slog.String("error", err.Error()))
	}
	if revoked {
		return nil, models.NewUnauthorizedError("Token has been revoked")
	}

	user, err := s.userRepo.GetByID(c.UserContext(), claims.ID)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, models.NewUnauthorizedError("Account no longer exists")
		}
		return nil, err
	}
	if !user.IsActive() {
		return nil, models.NewUnauthorizedError("Account is not active")
	}

	return &session{user: user, claims: claims}, nil
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := s.resolveSession(c)
		if err != nil {
			return respondError(c, err)
		}

		c.Locals("userID", sess.user.ID)
		c.Locals("user", sess.user)
		c.Locals("claims", sess.claims)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, sess.user.ID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// RequireTier returns middleware that rejects callers whose current role does
// not reach tier. Must be placed after AuthRequired.
func (s *Server) RequireTier(tier auth.Tier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentUser(c)
		if user == nil {
			return respondError(c, models.NewUnauthorizedError("Authorization required"))
		}
		if !s.policy.Allows(user.Role, tier) {
			return respondError(c, models.NewForbiddenError("Insufficient permissions"))
		}
		return c.Next()
	}
}
