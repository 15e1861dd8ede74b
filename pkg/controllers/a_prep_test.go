package controllers

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/config"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/insights/providers/stub"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/models"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/relay"
	redisservice "github.com/mynaparrot/plugnmeet-speech-relay/pkg/services/redis"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func setupApp(t *testing.T) (*fiber.App, *models.RelayModel) {
	t.Helper()
	return setupAppWithRedis(t, nil)
}

func setupAppWithRedis(t *testing.T, rs *redisservice.RedisService) (*fiber.App, *models.RelayModel) {
	t.Helper()

	appCnf, err := config.New(&config.AppConfig{
		Relay: config.RelaySettings{HeartbeatInterval: time.Hour},
	})
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	appCnf.Logger = logger

	rm := models.NewRelayModel(context.Background(), appCnf, relay.NewBus(logger), stub.New(), rs, nil, logger)
	t.Cleanup(rm.Shutdown)

	wc := NewWebsocketController(appCnf, rm, logger)
	rc := NewRelayController(rm, logger)
	hc := NewHealthCheckController(appCnf)

	app := fiber.New()
	app.Get("/healthCheck", hc.HandleHealthCheck)
	app.Get("/stats", rc.HandleStats)
	app.Get("/usage", rc.HandleDayTranslationUsage)
	app.Get("/usage/:userid", rc.HandleTranslationUsage)
	app.Get(appCnf.Relay.PathPrefix+"/*", wc.HandleUpgradeCheck, wc.HandleWebsocket())
	app.Use(wc.HandleInvalidPath)

	return app, rm
}
