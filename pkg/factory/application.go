package factory

import (
	"context"

	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/config"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/controllers"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/models"
)

// ApplicationControllers holds all the controllers.
type ApplicationControllers struct {
	WebsocketController   *controllers.WebsocketController
	RelayController       *controllers.RelayController
	HealthCheckController *controllers.HealthCheckController
}

// Application is the root struct holding all dependencies.
type Application struct {
	Controllers *ApplicationControllers
	AppConfig   *config.AppConfig
	Ctx         context.Context
	relayModel  *models.RelayModel
}

// Shutdown closes every live relay session. It must run before the http server
// is shut down, because fiber waits for the websocket handlers to return.
func (a *Application) Shutdown() {
	a.relayModel.Shutdown()
}
