package google

import (
	"context"
	"fmt"
	"strings"

	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/config"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/insights"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// GoogleProvider translates with Gemini models.
type GoogleProvider struct {
	client *genai.Client
	model  string
	logger *logrus.Entry
}

func NewProvider(ctx context.Context, conf *config.TranslationConfig, log *logrus.Entry) (*GoogleProvider, error) {
	if conf.Credentials.APIKey == "" {
		return nil, fmt.Errorf("google provider requires api_key")
	}

	cc := &genai.ClientConfig{
		APIKey:  conf.Credentials.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if conf.Credentials.Endpoint != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: conf.Credentials.Endpoint}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	model := conf.Model
	if model == "" {
		model = defaultModel
	}

	return &GoogleProvider{
		client: client,
		model:  model,
		logger: log,
	}, nil
}

func (p *GoogleProvider) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	cnf := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				genai.NewPartFromText(insights.TranslationPrompt(sourceLang, targetLang)),
			},
		},
	}
	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, cnf)
	if err != nil {
		return "", fmt.Errorf("failed to generate translation: %w", err)
	}

	var textBuilder strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			textBuilder.WriteString(part.Text)
		}
		// first candidate is enough
		break
	}

	if textBuilder.Len() == 0 {
		return "", insights.ErrEmptyTranslation
	}
	if resp.UsageMetadata != nil {
		p.logger.WithFields(logrus.Fields{
			"promptTokens":     resp.UsageMetadata.PromptTokenCount,
			"candidatesTokens": resp.UsageMetadata.CandidatesTokenCount,
		}).Debugln("translation usage")
	}

	return strings.TrimSpace(textBuilder.String()), nil
}
