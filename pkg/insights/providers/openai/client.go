package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/config"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/insights"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"
)

const defaultModel = "gpt-4o-mini"

// OpenAIProvider translates through any OpenAI compatible chat completions endpoint.
type OpenAIProvider struct {
	client openai.Client
	model  string
	logger *logrus.Entry
}

func NewProvider(conf *config.TranslationConfig, log *logrus.Entry) (*OpenAIProvider, error) {
	if conf.Credentials.APIKey == "" {
		return nil, fmt.Errorf("openai provider requires api_key")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(conf.Credentials.APIKey),
		option.WithMaxRetries(1),
	}
	if ep := conf.Credentials.Endpoint; ep != "" {
		if !strings.HasSuffix(ep, "/") {
			ep += "/"
		}
		opts = append(opts, option.WithBaseURL(ep))
	}

	model := conf.Model
	if model == "" {
		model = defaultModel
	}

	return &OpenAIProvider{
		client: openai.NewClient(opts...),
		model:  model,
		logger: log,
	}, nil
}

func (p *OpenAIProvider) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(insights.TranslationPrompt(sourceLang, targetLang)),
			openai.UserMessage(text),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", insights.ErrEmptyTranslation
	}

	p.logger.WithFields(logrus.Fields{
		"promptTokens":     resp.Usage.PromptTokens,
		"completionTokens": resp.Usage.CompletionTokens,
	}).Debugln("translation usage")

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
