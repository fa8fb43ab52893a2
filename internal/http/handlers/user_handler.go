package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "wholesale/internal/log"
	"wholesale/internal/services"
	"wholesale/internal/validate"
)

type UserHandler struct {
	Users *services.UserService
}

func userSearchRequest(c *fiber.Ctx) services.UserSearchRequest {
	return services.UserSearchRequest{
		Search:      c.Query("search"),
		Role:        c.Query("role"),
		Status:      c.Query("status"),
		CreatedFrom: c.Query("createdFrom"),
		CreatedTo:   c.Query("createdTo"),
		SortBy:      c.Query("sortBy"),
		SortDesc:    c.QueryBool("sortDesc"),
		Page:        c.QueryInt("page"),
		PageSize:    c.QueryInt("pageSize"),
	}
}

func (h *UserHandler) Search(c *fiber.Ctx) error {
	res, err := h.Users.Search(userSearchRequest(c), currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(res)
}

func (h *UserHandler) Count(c *fiber.Ctx) error {
	req := userSearchRequest(c)
	n, err := h.Users.Count(&req, currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"count": n})
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "user"})
		return problem(c, fiber.StatusNotFound, "Not Found", "user not found")
	}
	u, err := h.Users.Get(id, currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(u)
}

func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req services.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	u, err := h.Users.Create(req, currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "user.create", map[string]any{"email": u.Email, "role": u.Role})
	return c.Status(fiber.StatusCreated).JSON(u)
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	var req services.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	u, err := h.Users.Update(c.Params("id"), req, currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "user.update", map[string]any{"id": u.ID})
	return c.JSON(u)
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Users.Delete(id, currentUser(c)); err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "user.delete", map[string]any{"id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
