package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Faazil/aqiindia-backend/internal/airquality"
	"github.com/Faazil/aqiindia-backend/internal/airquality/providers"
	httpapi "github.com/Faazil/aqiindia-backend/internal/api/http"
	"github.com/Faazil/aqiindia-backend/internal/config"
	"github.com/Faazil/aqiindia-backend/internal/scheduler"
	"github.com/Faazil/aqiindia-backend/internal/store"
	"github.com/Faazil/aqiindia-backend/pkg/metrics"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	collector := metrics.NewCollector("aqiindia")

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// SQLite-backed measurement store.
	sqlStore, err := store.Open(cfg.DBPath, collector)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer sqlStore.Close()

	// Upstream provider with resilience (backoff + circuit breaker).
	provs := []airquality.Provider{
		providers.NewOpenAQProvider(httpClient, cfg.OpenAQBaseURL, cfg.OpenAQAPIKey),
	}

	// Core service orchestrating providers, calculator and store.
	service := airquality.NewService(sqlStore, provs, collector)

	// Scheduler that periodically fetches, computes and stores data.
	sched := scheduler.New(cfg.Cities, cfg.IngestInterval, cfg.StoreMaxAge, service, sqlStore)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "aqiindia-backend",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware. CORS is restricted to the configured frontend
	// origins.
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	// Basic health endpoints.
	health := func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "OK",
			"message": "AQI backend running",
		})
	}
	app.Get("/", health)
	app.Get("/health", health)

	// Prometheus metrics.
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes.
	httpapi.RegisterRoutes(app, service, collector, cfg.TopCitiesLimit)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
