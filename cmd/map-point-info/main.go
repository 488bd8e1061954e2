package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/map-point-info/internal/api/http"
	"github.com/i474232898/map-point-info/internal/config"
	"github.com/i474232898/map-point-info/internal/enrich"
	"github.com/i474232898/map-point-info/internal/enrich/providers"
	"github.com/i474232898/map-point-info/internal/localization"
	"github.com/i474232898/map-point-info/internal/scheduler"
	"github.com/i474232898/map-point-info/internal/session"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Localization tables are loaded once, before any click is handled.
	currency, language := localization.LoadOrDegrade(localization.Source(cfg.AssetsDir), cfg.Locale.Lang())
	tables := enrich.Tables{Currency: currency, Language: language}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	resolvers := enrich.Resolvers{
		Location: providers.NewNominatimResolver(httpClient, cfg.NominatimUserAgent),
		Country:  providers.NewRestCountriesResolver(httpClient),
		Weather:  providers.NewOpenWeatherResolver(httpClient, cfg.OpenWeatherAPIKey, cfg.Locale.Lang()),
		Time:     providers.NewGeoNamesResolver(httpClient, cfg.GeoNamesUsername, cfg.Locale.FormatTime),
	}

	// One orchestrator per map session.
	sessions := session.NewStore(func(p enrich.Presenter, w enrich.MapWidget, label string) *enrich.Orchestrator {
		return enrich.NewOrchestrator(resolvers, tables, p, w, label)
	})

	// Scheduler that evicts idle sessions.
	sched := scheduler.New(sessions, cfg.SessionSweepInterval, cfg.SessionMaxIdle)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "map-point-info",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "map-point-info",
			"sessions": sessions.Len(),
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, sessions, cfg.Locale)

	go func() {
		log.Printf("INFO: listening on :%s (locale %s)", cfg.Port, cfg.Locale.Tag)
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
