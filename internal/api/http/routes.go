package httpapi

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/turkerssh/next-weather-app/internal/refresh"
	"github.com/turkerssh/next-weather-app/internal/weather"
)

var validate = validator.New()

// selectBody is the payload for a map click.
type selectBody struct {
	Lat         float64 `json:"lat" validate:"min=-90,max=90"`
	Lon         float64 `json:"lon" validate:"min=-180,max=180"`
	DisplayName string  `json:"displayName"`
}

// searchBody is the payload for a free-text search.
type searchBody struct {
	Query string `json:"query" validate:"required"`
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. The browser UI
// is a pure consumer of /state; the POST endpoints map one-to-one onto the
// controller's user gestures.
func RegisterRoutes(app *fiber.App, ctrl *refresh.Controller, refreshInterval time.Duration) {
	v1 := app.Group("/api/v1")

	v1.Get("/state", func(c *fiber.Ctx) error {
		return c.JSON(ctrl.State())
	})

	// The countdown display derives "time until next refresh" from the
	// state's lastUpdatedAt and this interval; it does not own the timer.
	v1.Get("/config", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"refreshIntervalSeconds": int(refreshInterval.Seconds()),
		})
	})

	v1.Post("/location", func(c *fiber.Ctx) error {
		var body selectBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ctrl.SelectLocation(c.UserContext(), weather.Location{
			Lat:         body.Lat,
			Lon:         body.Lon,
			DisplayName: body.DisplayName,
		})
		return c.JSON(ctrl.State())
	})

	v1.Post("/search", func(c *fiber.Ctx) error {
		var body searchBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := ctrl.Search(c.UserContext(), body.Query); err != nil {
			if errors.Is(err, refresh.ErrLocationNotFound) {
				return fiber.NewError(fiber.StatusNotFound, refresh.NotFoundMessage)
			}
			return fiber.NewError(fiber.StatusInternalServerError, refresh.FetchFailedMessage)
		}
		return c.JSON(ctrl.State())
	})

	v1.Post("/refresh", func(c *fiber.Ctx) error {
		ctrl.ManualRefresh(c.UserContext())
		return c.JSON(ctrl.State())
	})
}
