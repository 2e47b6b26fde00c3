package httpapi

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/KrystalRay/KFit/internal/common"
	"github.com/KrystalRay/KFit/internal/fitness"
)

var validate = validator.New()

// FitnessService is what the routes need from the aggregator.
type FitnessService interface {
	Daily(ctx context.Context, day time.Time) fitness.DailyFitnessRecord
	Weekly(ctx context.Context, end time.Time) fitness.WeeklyFitnessRecord
	InvalidateCache(ctx context.Context) error
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service FitnessService) {
	v1 := app.Group("/api/v1")

	v1.Get("/fitness/daily", func(c *fiber.Ctx) error {
		day, err := parseDateQuery(c, "date")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(service.Daily(c.UserContext(), day))
	})

	v1.Get("/fitness/weekly", func(c *fiber.Ctx) error {
		end, err := parseDateQuery(c, "end_date")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(service.Weekly(c.UserContext(), end))
	})

	v1.Delete("/cache", func(c *fiber.Ctx) error {
		if err := service.InvalidateCache(c.UserContext()); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to clear cache")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// dateQuery holds an optional YYYY-MM-DD query parameter.
type dateQuery struct {
	Date string `validate:"omitempty,datetime=2006-01-02"`
}

// parseDateQuery reads a calendar date from the query string; absent means today.
func parseDateQuery(c *fiber.Ctx, name string) (time.Time, error) {
	q := dateQuery{Date: c.Query(name)}
	if err := validate.Struct(q); err != nil {
		return time.Time{}, err
	}
	return common.ParseDate(q.Date)
}
