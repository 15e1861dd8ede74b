package factory

import (
	"context"

	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/config"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/insights"
	insightsservice "github.com/mynaparrot/plugnmeet-speech-relay/pkg/services/insights"
	natsservice "github.com/mynaparrot/plugnmeet-speech-relay/pkg/services/nats"
	redisservice "github.com/mynaparrot/plugnmeet-speech-relay/pkg/services/redis"
	"github.com/sirupsen/logrus"
)

// provideRedisService returns nil when redis is not configured.
func provideRedisService(app *config.AppConfig, logger *logrus.Logger) *redisservice.RedisService {
	if app.RDS == nil || app.RedisInfo == nil {
		return nil
	}
	return redisservice.New(app.RDS, app.RedisInfo.UsageKeyTTL, logger)
}

// provideNatsService returns nil when nats is not configured.
func provideNatsService(app *config.AppConfig, logger *logrus.Logger) *natsservice.NatsService {
	if app.NatsConn == nil || app.NatsInfo == nil {
		return nil
	}
	return natsservice.New(app.NatsConn, app.NatsInfo.SubjectPrefix, logger)
}

func provideTranslator(ctx context.Context, app *config.AppConfig, logger *logrus.Logger) (insights.Translator, error) {
	return insightsservice.NewTranslator(ctx, &app.Translation, logger)
}
