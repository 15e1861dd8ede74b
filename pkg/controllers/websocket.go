package controllers

import (
	"strings"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/config"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/models"
	"github.com/sirupsen/logrus"
)

const endpointLocal = "relayEndpoint"

type WebsocketController struct {
	app        *config.AppConfig
	relayModel *models.RelayModel
	logger     *logrus.Entry
	handler    fiber.Handler
}

func NewWebsocketController(app *config.AppConfig, rm *models.RelayModel, logger *logrus.Logger) *WebsocketController {
	wc := &WebsocketController{
		app:        app,
		relayModel: rm,
		logger:     logger.WithField("controller", "websocket"),
	}
	wc.handler = websocket.New(wc.serve, websocket.Config{
		EnableCompression: false,
	})
	return wc
}

// HandleUpgradeCheck only lets websocket upgrade requests through and remembers
// which relay endpoint was requested. The endpoint is cut from the raw path,
// since route matching ignores a trailing slash.
func (wc *WebsocketController) HandleUpgradeCheck(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	c.Locals(endpointLocal, strings.TrimPrefix(c.Path(), wc.app.Relay.PathPrefix+"/"))
	return c.Next()
}

// HandleInvalidPath accepts upgrades outside the relay prefix, only to close
// them with a proper reason. Other requests fall through.
func (wc *WebsocketController) HandleInvalidPath(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	c.Locals(endpointLocal, "")
	return wc.handler(c)
}

// HandleWebsocket upgrades the connection and hands it to the relay.
func (wc *WebsocketController) HandleWebsocket() fiber.Handler {
	return wc.handler
}

func (wc *WebsocketController) serve(conn *websocket.Conn) {
	endpoint, _ := conn.Locals(endpointLocal).(string)
	req, ce := models.NewConnectionRequest(endpoint, conn.Query("userid"), conn.Query("langfrom"), conn.Query("langto"))
	if ce != nil {
		wc.logger.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"code":     ce.Code,
		}).Debugln(ce.Reason)
		wc.relayModel.Reject(conn, ce)
		return
	}

	wc.relayModel.Serve(conn, req)
}
