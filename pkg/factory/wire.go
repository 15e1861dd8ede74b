//go:build wireinject
// +build wireinject

package factory

import (
	"context"

	"github.com/google/wire"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/config"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/controllers"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/models"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/relay"
)

// build the dependency set for services
var serviceSet = wire.NewSet(
	provideRedisService,
	provideNatsService,
	provideTranslator,
	relay.NewBus,
)

// build the dependency set for models
var modelSet = wire.NewSet(
	models.NewRelayModel,
)

// build the dependency set for controllers
var controllerSet = wire.NewSet(
	controllers.NewWebsocketController,
	controllers.NewRelayController,
	controllers.NewHealthCheckController,
)

// NewAppFactory is the injector function that wire will implement.
func NewAppFactory(ctx context.Context, appConfig *config.AppConfig) (*Application, error) {
	wire.Build(
		serviceSet,
		modelSet,
		controllerSet,
		wire.FieldsOf(new(*config.AppConfig), "Logger"),

		wire.Struct(new(ApplicationControllers), "*"),
		wire.Struct(new(Application), "*"),
	)
	return nil, nil // This return value is ignored.
}
