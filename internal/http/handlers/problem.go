package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "wholesale/internal/log"
	"wholesale/internal/services"
)

// Problem is the error body for every non-2xx response.
type Problem struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Status int    `json:"status"`
}

func problem(c *fiber.Ctx, status int, title, detail string) error {
	return c.Status(status).JSON(Problem{Title: title, Detail: detail, Status: status})
}

// fail maps service sentinel errors onto HTTP statuses. The sentinel prefix
// is stripped from the detail so clients see "order not found", not
// "not found: order not found".
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalid):
		return problem(c, fiber.StatusBadRequest, "Bad Request", detail(err, services.ErrInvalid))
	case errors.Is(err, services.ErrBadCreds):
		return problem(c, fiber.StatusUnauthorized, "Unauthorized", "invalid email or password")
	case errors.Is(err, services.ErrUnauthorized):
		return problem(c, fiber.StatusUnauthorized, "Unauthorized", detail(err, services.ErrUnauthorized))
	case errors.Is(err, services.ErrForbidden):
		return problem(c, fiber.StatusForbidden, "Forbidden", detail(err, services.ErrForbidden))
	case errors.Is(err, services.ErrNotFound):
		return problem(c, fiber.StatusNotFound, "Not Found", detail(err, services.ErrNotFound))
	case errors.Is(err, services.ErrConflict):
		return problem(c, fiber.StatusConflict, "Conflict", detail(err, services.ErrConflict))
	default:
		applog.Error(c, "server.error", err, nil)
		return problem(c, fiber.StatusInternalServerError, "Internal Server Error", "something went wrong")
	}
}

func detail(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if strings.HasPrefix(msg, prefix) {
		return strings.TrimPrefix(msg, prefix)
	}
	return sentinel.Error()
}

func badBody(c *fiber.Ctx) error {
	return problem(c, fiber.StatusBadRequest, "Bad Request", "malformed request body")
}
