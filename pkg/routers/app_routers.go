package routers

import (
	"io"
	"runtime"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	rr "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/config"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/factory"
	"github.com/mynaparrot/plugnmeet-speech-relay/version"
)

type router struct {
	app  *fiber.App
	cnf  *config.AppConfig
	ctrl *factory.ApplicationControllers
}

func New(appConfig *config.AppConfig, ctrl *factory.ApplicationControllers) *fiber.App {
	cnf := fiber.Config{
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		AppName:               "speech-relay version: " + version.Version + " runtime: " + runtime.Version(),
		DisableStartupMessage: !appConfig.Client.Debug,
	}

	if appConfig.Client.ProxyHeader != "" {
		cnf.ProxyHeader = appConfig.Client.ProxyHeader
	}

	app := fiber.New(cnf)

	app.Use(logger.New(logger.Config{
		Done: func(c *fiber.Ctx, logString []byte) {
			appConfig.Logger.Debugln(string(logString))
		},
		Format: "${status} | ${latency} | ${ip} | ${method} | ${path} | ${error}",
		Output: io.Discard,
	}))

	if appConfig.Client.PrometheusConf.Enable {
		prometheus := fiberprometheus.New("speech-relay")
		prometheus.RegisterAt(app, appConfig.Client.PrometheusConf.MetricsPath)
		app.Use(prometheus.Middleware)
	}

	app.Use(rr.New())
	app.Use(cors.New(cors.Config{
		AllowMethods: "GET,OPTIONS",
	}))

	r := &router{
		app:  app,
		cnf:  appConfig,
		ctrl: ctrl,
	}

	r.registerBaseRoutes()
	r.registerRelayRoutes()

	// websocket clients outside the relay prefix get a close frame, everyone else a 404
	app.Use(ctrl.WebsocketController.HandleInvalidPath)
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).SendString("not found")
	})

	return app
}

func (r *router) registerBaseRoutes() {
	r.app.Get("/healthCheck", r.ctrl.HealthCheckController.HandleHealthCheck)
	r.app.Get("/stats", r.ctrl.RelayController.HandleStats)
	r.app.Get("/usage", r.ctrl.RelayController.HandleDayTranslationUsage)
	r.app.Get("/usage/:userid", r.ctrl.RelayController.HandleTranslationUsage)
}

func (r *router) registerRelayRoutes() {
	wc := r.ctrl.WebsocketController
	r.app.Get(r.cnf.Relay.PathPrefix+"/*", wc.HandleUpgradeCheck, wc.HandleWebsocket())
}
