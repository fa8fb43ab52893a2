package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// Register mounts the full API surface. Literal segments (count, featured,
// handle, number, revenue) are registered before the :id routes so Fiber
// does not swallow them as path parameters.
func Register(app *fiber.App, deps *Deps, loginLimiter fiber.Handler) {
	auth := app.Group("/api/auth")
	auth.Post("/register", deps.AuthH.Register)
	if loginLimiter != nil {
		auth.Post("/login", loginLimiter, deps.AuthH.Login)
	} else {
		auth.Post("/login", deps.AuthH.Login)
	}
	auth.Post("/refresh", deps.AuthH.Refresh)
	auth.Post("/logout", RequireAuth(deps.Auth), deps.AuthH.Logout)
	auth.Get("/profile", RequireAuth(deps.Auth), deps.AuthH.Profile)
	auth.Put("/profile", RequireAuth(deps.Auth), deps.AuthH.UpdateProfile)
	auth.Post("/validate-password", RequireAuth(deps.Auth), deps.AuthH.ValidatePassword)

	products := app.Group("/api/products", OptionalAuth(deps.Auth))
	products.Get("/", deps.ProdH.Search)
	products.Get("/count", deps.ProdH.Count)
	products.Get("/featured", deps.ProdH.Featured)
	products.Get("/handle/:handle", deps.ProdH.GetByHandle)
	products.Get("/category/:category", deps.ProdH.ByCategory)
	products.Get("/vendor/:vendor", deps.ProdH.ByVendor)
	products.Get("/:id", deps.ProdH.Get)
	products.Get("/:id/related", deps.ProdH.Related)
	products.Post("/", RequireAdmin(deps.Auth), deps.ProdH.Create)
	products.Put("/:id", RequireAdmin(deps.Auth), deps.ProdH.Update)
	products.Delete("/:id", RequireAdmin(deps.Auth), deps.ProdH.Delete)
	products.Put("/:id/inventory", RequireAdmin(deps.Auth), deps.ProdH.UpdateInventory)

	users := app.Group("/api/users", RequireAuth(deps.Auth))
	users.Get("/", deps.UserH.Search)
	users.Get("/count", deps.UserH.Count)
	users.Get("/:id", deps.UserH.Get)
	users.Post("/", deps.UserH.Create)
	users.Put("/:id", deps.UserH.Update)
	users.Delete("/:id", deps.UserH.Delete)

	orders := app.Group("/api/orders", RequireAuth(deps.Auth))
	orders.Get("/", deps.OrderH.Search)
	orders.Get("/count", deps.OrderH.Count)
	orders.Get("/revenue", deps.OrderH.Revenue)
	orders.Get("/number/:number", deps.OrderH.GetByNumber)
	orders.Get("/:id", deps.OrderH.Get)
	orders.Post("/", deps.OrderH.Create)
	orders.Post("/:id/cancel", deps.OrderH.Cancel)
	orders.Put("/:id/status", deps.OrderH.UpdateStatus)
	orders.Put("/:id/payment-status", deps.OrderH.UpdatePaymentStatus)
	orders.Put("/:id/tracking", deps.OrderH.UpdateTracking)
	orders.Delete("/:id", deps.OrderH.Delete)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return problem(c, fiber.StatusNotFound, "Not Found", "no such route")
	})
}
