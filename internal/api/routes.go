package api

import (
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tradelog/tradelog/internal/config"
)

// SetupRoutes configures the API routes and the static client fallback
func SetupRoutes(app *fiber.App, h *Handlers, cfg *config.Config) {
	api := app.Group("/api")

	api.Get("/health", h.HealthCheck)
	api.Get("/news", h.GetNews)
	api.Get("/prices", h.GetPrices)
	api.Get("/img", h.GetImage)
	api.Post("/login", h.Login)

	// Unmatched /api/* paths are a hard 404, never the SPA document.
	api.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
		})
	})

	// Static client bundle; everything else falls back to the entry
	// document so client-side routing works on deep links.
	app.Static("/", cfg.ClientDir)
	app.Use(func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api") {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendFile(filepath.Join(cfg.ClientDir, "index.html"))
	})
}
