package azure

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/config"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/insights"
	"github.com/sirupsen/logrus"
)

const (
	defaultEndpoint = "https://api.cognitive.microsofttranslator.com"
	apiVersion      = "3.0"
	keyHeader       = "Ocp-Apim-Subscription-Key"
	regionHeader    = "Ocp-Apim-Subscription-Region"
)

// AzureProvider talks to the Azure Translator text API (v3).
type AzureProvider struct {
	client   *retryablehttp.Client
	endpoint string
	apiKey   string
	region   string
	logger   *logrus.Entry
}

type translateRequest struct {
	Text string `json:"Text"`
}

type translateResponse struct {
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewProvider(conf *config.TranslationConfig, log *logrus.Entry) (*AzureProvider, error) {
	if conf.Credentials.APIKey == "" {
		return nil, fmt.Errorf("azure provider requires api_key")
	}

	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = 2
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = time.Second

	endpoint := conf.Credentials.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	return &AzureProvider{
		client:   client,
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   conf.Credentials.APIKey,
		region:   conf.Credentials.Region,
		logger:   log,
	}, nil
}

func (p *AzureProvider) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	body, err := json.Marshal([]translateRequest{{Text: text}})
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("api-version", apiVersion)
	q.Set("from", sourceLang)
	q.Set("to", targetLang)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"/translate?"+q.Encode(), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(keyHeader, p.apiKey)
	if p.region != "" {
		req.Header.Set(regionHeader, p.region)
	}

	res, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("azure: request failed: %w", err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	if res.StatusCode != http.StatusOK {
		var e errorResponse
		if json.Unmarshal(data, &e) == nil && e.Error.Message != "" {
			return "", fmt.Errorf("azure: status %d: %s", res.StatusCode, e.Error.Message)
		}
		return "", fmt.Errorf("azure: unexpected status %d", res.StatusCode)
	}

	var out []translateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("azure: invalid response: %w", err)
	}
	if len(out) == 0 || len(out[0].Translations) == 0 {
		return "", insights.ErrEmptyTranslation
	}

	return out[0].Translations[0].Text, nil
}
