package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vitamend-data/internal/di"
	"vitamend-data/internal/donation/config"
	"vitamend-data/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	appLogger := logger.NewLogger()
	if err := run(appLogger); err != nil {
		appLogger.Errorf("Server exited: %v", err)
		os.Exit(1)
	}
}

// run owns every resource it opens, so deferred cleanup happens on error paths too.
func run(appLogger logger.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	appLogger.Infof("Configuration loaded, database provider: %s", cfg.Provider)

	container := di.NewContainer(appLogger)
	defer func() {
		if err := container.Close(); err != nil {
			appLogger.Errorf("Failed to close container: %v", err)
		}
	}()

	if err := container.InitializeDonation(cfg); err != nil {
		return fmt.Errorf("failed to initialize donation module: %w", err)
	}
	module := container.GetDonationModule()

	fiberCfg := fiber.Config{
		AppName:      "VitaMend Data API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				appLogger.Errorf("HTTP error on %s %s: %v", c.Method(), c.Path(), err)
			}
			return c.Status(code).JSON(fiber.Map{
				"message": err.Error(),
			})
		},
	}
	if len(cfg.Server.TrustedProxies) > 0 {
		fiberCfg.ProxyHeader = fiber.HeaderXForwardedFor
		fiberCfg.EnableTrustedProxyCheck = true
		fiberCfg.EnableIPValidation = true
		fiberCfg.TrustedProxies = cfg.Server.TrustedProxies
	}
	app := fiber.New(fiberCfg)

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		healthCtx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()

		if err := container.HealthCheck(healthCtx); err != nil {
			appLogger.Warnf("Health check failed: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":   "UNHEALTHY",
				"provider": cfg.Provider,
				"error":    err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"status":    "HEALTHY",
			"provider":  cfg.Provider,
			"timestamp": time.Now().UTC(),
		})
	})

	module.RegisterRoutes(app)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	module.Start(startCtx)
	cancel()

	serverAddr := cfg.Server.Addr()
	appLogger.Infof("Starting HTTP server on %s", serverAddr)

	// Start server in a goroutine for graceful shutdown
	serverShutdown := make(chan error, 1)
	go func() {
		serverShutdown <- app.Listen(serverAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverShutdown:
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
	case sig := <-quit:
		appLogger.Infof("Received shutdown signal: %v", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			appLogger.Errorf("Server forced to shutdown: %v", err)
		}
		appLogger.Info("HTTP server stopped")
	}
	return nil
}
