package httpapi

import (
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/Faazil/aqiindia-backend/internal/airquality"
	"github.com/Faazil/aqiindia-backend/pkg/metrics"
)

var validate = validator.New()

// cityResponse is the per-city payload. When no pollutant has data the AQI
// is null and Message carries an explicit "no data" indicator instead of a
// numeric zero.
type cityResponse struct {
	airquality.Snapshot
	Message string `json:"message,omitempty"`
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *airquality.Service, collector *metrics.Collector, defaultTopLimit int) {
	api := app.Group("/api", requestMetrics(collector))

	api.Get("/top-cities", func(c *fiber.Ctx) error {
		var q topCitiesQuery
		q.Limit = c.QueryInt("limit", defaultTopLimit)
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ranking, err := service.TopCities(c.Context(), q.Limit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to rank cities")
		}

		return c.JSON(fiber.Map{
			"limit":  q.Limit,
			"cities": ranking,
		})
	})

	api.Get("/city/:city", func(c *fiber.Ctx) error {
		city, err := parseCityParam(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snap, err := service.GetCity(c.Context(), city)
		if err != nil {
			if errors.Is(err, airquality.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no air quality data for requested city")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch air quality data")
		}

		resp := cityResponse{Snapshot: snap}
		if snap.AQI == nil {
			resp.Message = "no data available"
		}
		return c.JSON(resp)
	})

	api.Get("/city/:city/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshots, err := service.GetRange(c.Context(), req.City, req.From, req.To)
		if err != nil {
			if errors.Is(err, airquality.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no air quality history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch air quality history")
		}

		return c.JSON(fiber.Map{
			"city":      req.City,
			"from":      req.From,
			"to":        req.To,
			"snapshots": snapshots,
		})
	})
}

// requestMetrics counts API requests by route and response status.
func requestMetrics(collector *metrics.Collector) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
		collector.RecordAPIRequest(c.Route().Path, strconv.Itoa(status))
		return err
	}
}

// topCitiesQuery holds query parameters for the ranking endpoint.
type topCitiesQuery struct {
	Limit int `validate:"gte=1,lte=100"`
}

func parseCityParam(c *fiber.Ctx) (airquality.City, error) {
	raw := c.Params("city")
	if name, err := url.PathUnescape(raw); err == nil {
		raw = name
	}

	type cityParam struct {
		Name string `validate:"required,max=100"`
	}
	p := cityParam{Name: raw}
	if err := validate.Struct(p); err != nil {
		return "", err
	}
	return airquality.City(p.Name), nil
}

// historyQuery holds parameters for the history endpoint.
type historyQuery struct {
	City airquality.City
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	city, err := parseCityParam(c)
	if err != nil {
		return err
	}
	h.City = city

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
