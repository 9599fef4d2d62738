package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/transitops/transit-collector/internal/service"
)

const readinessTimeout = 2 * time.Second

// StatusReporter exposes the poller's point-in-time view for /statusz.
type StatusReporter interface {
	Status() service.PollerStatus
}

func RegisterHealthRoutes(app fiber.Router, sqlDB *sql.DB, rdb *redis.Client, poller StatusReporter) {
	app.Get("/livez", LivezHandler())
	app.Get("/readyz", ReadyzHandler(sqlDB, rdb))
	app.Get("/statusz", StatuszHandler(poller))
}

func LivezHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "ok",
		})
	}
}

func ReadyzHandler(sqlDB *sql.DB, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), readinessTimeout)
		defer cancel()

		pgErr := sqlDB.PingContext(ctx)
		redisErr := rdb.Ping(ctx).Err()

		pgStatus := "ok"
		if pgErr != nil {
			pgStatus = "down"
		}
		redisStatus := "ok"
		if redisErr != nil {
			redisStatus = "down"
		}

		status := "ready"
		statusCode := fiber.StatusOK
		if pgErr != nil || redisErr != nil {
			status = "not_ready"
			statusCode = fiber.StatusServiceUnavailable
		}

		return c.Status(statusCode).JSON(fiber.Map{
			"status": status,
			"checks": fiber.Map{
				"postgres": pgStatus,
				"redis":    redisStatus,
			},
		})
	}
}

// StatuszHandler reports per-feed collection health: cycle counters, failure
// streaks, and backoff deadlines.
func StatuszHandler(poller StatusReporter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if poller == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "poller not running")
		}

		return c.Status(fiber.StatusOK).JSON(poller.Status())
	}
}
