package helpers

import (
	"context"
	"fmt"

	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/config"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/factory"
)

// PrepareServer opens the optional infrastructure connections.
func PrepareServer(ctx context.Context, appCnf *config.AppConfig) error {
	if err := factory.NewRedisConnection(ctx, appCnf); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	if err := factory.NewNatsConnection(appCnf); err != nil {
		return fmt.Errorf("nats: %w", err)
	}

	return nil
}
