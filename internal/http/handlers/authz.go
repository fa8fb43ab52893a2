package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"wholesale/internal/domain"
	applog "wholesale/internal/log"
	"wholesale/internal/services"
)

func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// currentUser reads the user attached by the auth middleware, nil when the
// request is anonymous.
func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

// authenticate resolves the bearer token to a fresh user row. A nil user with
// a nil error never happens; callers get either a user or a 401 already
// written to the response.
func authenticate(c *fiber.Ctx, auth *services.AuthService) (*domain.User, error) {
	tok := bearerToken(c)
	if tok == "" {
		return nil, problem(c, fiber.StatusUnauthorized, "Unauthorized", "missing bearer token")
	}
	u, err := auth.UserFromToken(tok)
	if err != nil {
		applog.Security(c, "access.denied.token", nil)
		return nil, problem(c, fiber.StatusUnauthorized, "Unauthorized", "invalid or expired token")
	}
	return u, nil
}

// RequireAuth rejects requests without a valid access token.
func RequireAuth(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := authenticate(c, auth)
		if u == nil {
			return err
		}
		c.Locals("user", u)
		return c.Next()
	}
}

// RequireAdmin authenticates like RequireAuth and then rejects non-admins.
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := authenticate(c, auth)
		if u == nil {
			return err
		}
		if !u.IsAdmin() {
			applog.Security(c, "access.denied.admin", map[string]any{"user": u.ID})
			return problem(c, fiber.StatusForbidden, "Forbidden", "admin access required")
		}
		c.Locals("user", u)
		return c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and lets the
// request through anonymously otherwise. Catalog reads use this so admins see
// drafts while everyone else sees the active subset.
func OptionalAuth(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tok := bearerToken(c); tok != "" {
			if u, err := auth.UserFromToken(tok); err == nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	}
}
