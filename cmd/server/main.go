package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/tradelog/tradelog/internal/api"
	"github.com/tradelog/tradelog/internal/auth"
	"github.com/tradelog/tradelog/internal/config"
	"github.com/tradelog/tradelog/internal/imgproxy"
	"github.com/tradelog/tradelog/internal/logger"
	"github.com/tradelog/tradelog/internal/middleware"
	"github.com/tradelog/tradelog/internal/prices"
)

func main() {
	// Load and validate configuration
	cfg := config.Load()

	logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: "stdout",
		Pretty: cfg.Env == "development",
	})
	log := logger.Get()
	log.Info().Msg("Starting server...")

	// Cache services are constructed once and shared by every request.
	priceSvc := prices.NewService(prices.NewClient(cfg), cfg.PriceTTL, log)
	imgSvc := imgproxy.NewService(cfg, log)
	verifier := auth.NewStaticVerifier(auth.DefaultCredentials())

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  120 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())

	handlers := api.NewHandlers(cfg, priceSvc, imgSvc, verifier)
	api.SetupRoutes(app, handlers, cfg)

	// Start server in a goroutine
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("news_path", cfg.NewsPath()).
			Msg("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
