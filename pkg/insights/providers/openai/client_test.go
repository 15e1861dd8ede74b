package openai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"model":"test-model"`)
		assert.Contains(t, string(body), "from English to Japanese")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "test-model",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": " こんにちは "}}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 2, "total_tokens": 12}
		}`))
	}))
	defer srv.Close()

	p, err := NewProvider(&config.TranslationConfig{
		Provider:    "openai",
		Model:       "test-model",
		Credentials: config.CredentialsConfig{APIKey: "secret", Endpoint: srv.URL + "/v1"},
	}, logrus.NewEntry(logrus.New()))
	require.NoError(t, err)

	out, err := p.Translate(context.Background(), "Hello", "en", "ja")
	require.NoError(t, err)
	assert.Equal(t, "こんにちは", out)
}

func TestNewProviderRequiresKey(t *testing.T) {
	_, err := NewProvider(&config.TranslationConfig{Provider: "openai"}, logrus.NewEntry(logrus.New()))
	assert.Error(t, err)
}
