package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpapi "github.com/turkerssh/next-weather-app/internal/api/http"
	"github.com/turkerssh/next-weather-app/internal/config"
	"github.com/turkerssh/next-weather-app/internal/geocode"
	"github.com/turkerssh/next-weather-app/internal/refresh"
	"github.com/turkerssh/next-weather-app/internal/scheduler"
	"github.com/turkerssh/next-weather-app/internal/weather/openweather"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Shared HTTP client for outbound upstream calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	weatherClient := openweather.NewClient(httpClient, cfg.OpenWeatherAPIKey, cfg.WeatherBaseURL)
	geocoder := geocode.NewClient(httpClient, cfg.GeocoderBaseURL)

	// The refresh controller is the single owner of selection and weather
	// state; everything else reads from it.
	ctrl := refresh.NewController(weatherClient, geocoder, log.Logger)

	auto := scheduler.New(ctrl, cfg.RefreshInterval, log.Logger)
	if err := auto.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start auto-refresh")
	}
	defer auto.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "next-weather-app",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
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

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "next-weather-app",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, ctrl, cfg.RefreshInterval)

	// Browser UI bundle, when present.
	app.Static("/", "./web")

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}
