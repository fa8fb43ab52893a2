package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "wholesale/internal/log"
	"wholesale/internal/services"
)

type AuthHandler struct {
	Auth  *services.AuthService
	Users *services.UserService
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req services.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	u, err := h.Auth.Register(req)
	if err != nil {
		applog.Security(c, "auth.register.fail", map[string]any{"email": req.Email})
		return fail(c, err)
	}
	applog.Audit(c, "auth.register", map[string]any{"email": u.Email})
	return c.Status(fiber.StatusCreated).JSON(u)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	pair, err := h.Auth.Login(req.Email, req.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": req.Email})
		return fail(c, err)
	}
	applog.Audit(c, "auth.login.success", map[string]any{"email": req.Email})
	return c.JSON(pair)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if req.RefreshToken == "" {
		return problem(c, fiber.StatusBadRequest, "Bad Request", "refreshToken is required")
	}
	pair, err := h.Auth.Refresh(req.RefreshToken)
	if err != nil {
		applog.Security(c, "auth.refresh.fail", nil)
		return fail(c, err)
	}
	return c.JSON(pair)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	u := currentUser(c)
	if err := h.Auth.Logout(u.ID); err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "auth.logout", map[string]any{"email": u.Email})
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	u := currentUser(c)
	dto, err := h.Users.Get(u.ID, u)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto)
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	u := currentUser(c)
	var req services.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	dto, err := h.Users.Update(u.ID, req, u)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "auth.profile.update", map[string]any{"email": u.Email})
	return c.JSON(dto)
}

// ValidatePassword lets a logged-in client re-check the password before a
// sensitive action. Always 200; the answer is in the body.
func (h *AuthHandler) ValidatePassword(c *fiber.Ctx) error {
	u := currentUser(c)
	var req struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	return c.JSON(fiber.Map{"valid": h.Auth.ValidatePassword(u.Email, req.Password)})
}
