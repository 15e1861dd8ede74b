package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/config"
	"github.com/nats-io/nats.go"
)

type HealthCheckController struct {
	app *config.AppConfig
}

func NewHealthCheckController(app *config.AppConfig) *HealthCheckController {
	return &HealthCheckController{
		app: app,
	}
}

func (hc *HealthCheckController) HandleHealthCheck(c *fiber.Ctx) error {
	if hc.app.RDS != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := hc.app.RDS.Ping(ctx).Err(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).SendString("Redis connection error")
		}
	}

	if hc.app.NatsConn != nil && hc.app.NatsConn.Status() != nats.CONNECTED {
		return c.Status(fiber.StatusServiceUnavailable).SendString("NATS connection error")
	}

	return c.Status(fiber.StatusOK).SendString("Healthy")
}
