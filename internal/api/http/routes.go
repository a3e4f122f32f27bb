package httpapi

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
)

var validate = validator.New()

const (
	msgWeatherFailed  = "Error fetching weather data"
	msgCoordsFailed   = "Failed to resolve weather for coordinates"
	msgForecastFailed = "Failed to fetch forecast"
)

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	api := app.Group("/api")

	// Registered before /weather/:city so "coords" is never taken as a city name.
	api.Get("/weather/coords", func(c *fiber.Ctx) error {
		var q coordsQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshot, err := service.CurrentByCoordinates(c.UserContext(), q.toCoordinates())
		if err != nil {
			return lookupError(err, msgCoordsFailed, false)
		}
		return c.JSON(snapshot)
	})

	api.Get("/weather/:city", func(c *fiber.Ctx) error {
		city, err := cityParam(c)
		if err != nil {
			return err
		}

		snapshot, err := service.CurrentByCity(c.UserContext(), city)
		if err != nil {
			return lookupError(err, msgWeatherFailed, true)
		}
		return c.JSON(snapshot)
	})

	api.Get("/forecast/:city", func(c *fiber.Ctx) error {
		city, err := cityParam(c)
		if err != nil {
			return err
		}

		forecast, err := service.Forecast(c.UserContext(), city)
		if err != nil {
			return lookupError(err, msgForecastFailed, false)
		}
		return c.JSON(forecast)
	})

	api.Get("/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		lookups, err := service.History(req.City, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no lookups recorded for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read lookup history")
		}

		return c.JSON(fiber.Map{
			"city":    req.City,
			"from":    req.From,
			"to":      req.To,
			"lookups": lookups,
		})
	})
}

// lookupError maps service errors to HTTP errors. passUpstreamMessage keeps the
// provider's own message instead of the fixed fallback.
func lookupError(err error, fallback string, passUpstreamMessage bool) error {
	var upstream *weather.UpstreamError
	switch {
	case errors.Is(err, weather.ErrNotConfigured):
		return fiber.NewError(fiber.StatusInternalServerError, weather.ErrNotConfigured.Error())
	case errors.Is(err, weather.ErrCityNotFound):
		return fiber.NewError(fiber.StatusNotFound, weather.ErrCityNotFound.Error())
	case errors.Is(err, weather.ErrProviderUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, weather.ErrProviderUnavailable.Error())
	case errors.As(err, &upstream):
		msg := fallback
		if passUpstreamMessage && upstream.Message != "" {
			msg = upstream.Message
		}
		return fiber.NewError(upstream.Status, msg)
	default:
		return fiber.NewError(fiber.StatusBadGateway, fallback)
	}
}

func cityParam(c *fiber.Ctx) (string, error) {
	city, err := url.PathUnescape(c.Params("city"))
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid city name")
	}
	city = strings.TrimSpace(city)
	if city == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "city name is required")
	}
	return city, nil
}

// coordsQuery holds the lat/lon query parameters.
type coordsQuery struct {
	Lat *float64 `validate:"required,gte=-90,lte=90"`
	Lon *float64 `validate:"required,gte=-180,lte=180"`
}

func (q *coordsQuery) bind(c *fiber.Ctx) error {
	var err error
	if q.Lat, err = parseOptionalFloat(c.Query("lat")); err != nil {
		return errors.New("lat must be a number")
	}
	if q.Lon, err = parseOptionalFloat(c.Query("lon")); err != nil {
		return errors.New("lon must be a number")
	}
	return validate.Struct(q)
}

func (q coordsQuery) toCoordinates() weather.Coordinates {
	return weather.Coordinates{Lat: *q.Lat, Lon: *q.Lon}
}

func parseOptionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	City string    `validate:"required"`
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	h.City = strings.TrimSpace(c.Query("city"))

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
