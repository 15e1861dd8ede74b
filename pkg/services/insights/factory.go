package insightsservice

import (
	"context"
	"fmt"

	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/config"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/insights"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/insights/providers/azure"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/insights/providers/google"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/insights/providers/openai"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/insights/providers/stub"
	"github.com/sirupsen/logrus"
)

// NewTranslator is a factory function that creates the configured translation provider.
func NewTranslator(ctx context.Context, conf *config.TranslationConfig, logger *logrus.Logger) (insights.Translator, error) {
	log := logger.WithFields(logrus.Fields{
		"service":  "translation",
		"provider": conf.Provider,
	})

	switch conf.Provider {
	case "google":
		return google.NewProvider(ctx, conf, log)
	case "openai":
		return openai.NewProvider(conf, log)
	case "azure":
		return azure.NewProvider(conf, log)
	case "stub", "":
		return stub.New(), nil
	default:
		return nil, fmt.Errorf("unknown translation provider type: %s", conf.Provider)
	}
}
