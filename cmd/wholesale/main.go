package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"wholesale/internal/config"
	"wholesale/internal/http/handlers"
	applog "wholesale/internal/log"
	"wholesale/internal/repos"
)

func main() {
	cfg := config.Load()

	if err := applog.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatal(err)
	}

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			detail := "something went wrong"
			if code >= 500 {
				applog.Error(c, "server.error", err, nil)
			} else {
				detail = err.Error()
			}
			return c.Status(code).JSON(handlers.Problem{
				Title:  http.StatusText(code),
				Detail: detail,
				Status: code,
			})
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(handlers.Problem{
				Title:  "Too Many Requests",
				Detail: "rate limit exceeded, retry soon",
				Status: fiber.StatusTooManyRequests,
			})
		},
	}))

	loginLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|login"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(handlers.Problem{
				Title:  "Too Many Requests",
				Detail: "too many login attempts, try again later",
				Status: fiber.StatusTooManyRequests,
			})
		},
	})

	deps := handlers.NewDeps(db, cfg)
	handlers.Register(app, deps, loginLimiter)

	applog.Info(nil, "server.start", map[string]any{"port": cfg.Port, "driver": cfg.DBDriver})
	log.Fatal(app.Listen(":" + cfg.Port))
}
