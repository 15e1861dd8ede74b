package models

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/config"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/insights"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/insights/providers/stub"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/protocol"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpeech_RelaysFinalToListener(t *testing.T) {
	tr := stub.New()
	m := newTestRelay(t, tr, nil)

	listener, _ := connectListener(t, m, "U-1")
	speech, _ := connect(t, m, config.SpeechEndpoint, "U-1", "en", "ja")

	require.Eventually(t, listener.has(protocol.InfoLine(config.SpeechConnected)), waitFor, tick)

	speech.send(`{"type":"partialRecognition","text":"Hel"}`)
	speech.send(`{"type":"finalRecognition","text":"Hello\n"}`)

	require.Eventually(t, listener.has("partial\nHel"), waitFor, tick)
	require.Eventually(t, listener.has("final\nHello\\n\n\\[ja\\] Hello\\n"), waitFor, tick)
	assert.EqualValues(t, 1, tr.Calls())
}

func TestSpeech_NoListenerSkipsTranslation(t *testing.T) {
	tr := stub.New()
	m := newTestRelay(t, tr, func(app *config.AppConfig) {
		app.Relay.RateLimit.PerMessageLimit = 1
	})

	speech, done := connect(t, m, config.SpeechEndpoint, "U-1", "en", "ja")
	speech.send(`{"type":"finalRecognition","text":"nobody is listening"}`)
	speech.send(`{"type":"partialRecognition","text":"still nobody"}`)
	// packets are handled in order, so the close proves both were processed
	speech.send(`{"type":"unknown"}`)

	assertClosedWith(t, speech, done, config.CloseProtocolError, config.InvalidPacketType)
	assert.Zero(t, tr.Calls())
}

func TestSpeech_UnknownPacketFiresNoEvent(t *testing.T) {
	m := newTestRelay(t, stub.New(), nil)

	var events int
	partial := m.bus.Subscribe(relay.PartialTopic("U-1"), func(relay.Event) { events++ })
	final := m.bus.Subscribe(relay.FinalTopic("U-1"), func(relay.Event) { events++ })
	defer partial.Unsubscribe()
	defer final.Unsubscribe()

	speech, done := connect(t, m, config.SpeechEndpoint, "U-1", "en", "ja")
	speech.send(`{"type":"translate","text":"Hello"}`)

	assertClosedWith(t, speech, done, config.CloseProtocolError, config.InvalidPacketType)
	assert.Zero(t, events)
}

func TestSpeech_Negotiation(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		reason   string
	}{
		{"same language", "en", "en", config.SameLanguagePair},
		{"missing from", "", "ja", config.InvalidLangFrom},
		{"unsupported from", "de", "ja", config.InvalidLangFrom},
		{"missing to", "en", "", config.InvalidLangTo},
		{"unsupported to", "en", "es", config.InvalidLangTo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := stub.New()
			m := newTestRelay(t, tr, nil)

			speech, done := connect(t, m, config.SpeechEndpoint, "U-1", tt.from, tt.to)
			assertClosedWith(t, speech, done, config.CloseApplicationError, tt.reason)
			assert.Equal(t, 0, m.Stats().Speech)
			assert.Equal(t, 0, m.bus.Stats().Subscriptions)
		})
	}
}

func TestSpeech_InvalidRequest(t *testing.T) {
	tests := map[string]string{
		"not json":       `hello`,
		"not an object":  `[1,2]`,
		"missing text":   `{"type":"finalRecognition"}`,
		"wrong type":     `{"type":"partialRecognition","text":5}`,
		"missing langTo": `{"type":"changeLanguage","langFrom":"en"}`,
	}

	for name, msg := range tests {
		t.Run(name, func(t *testing.T) {
			m := newTestRelay(t, stub.New(), nil)

			speech, done := connect(t, m, config.SpeechEndpoint, "U-1", "en", "ja")
			speech.send(msg)
			assertClosedWith(t, speech, done, config.CloseApplicationError, config.InvalidRequest)
		})
	}
}

func TestSpeech_RateLimit(t *testing.T) {
	tr := stub.New()
	m := newTestRelay(t, tr, func(app *config.AppConfig) {
		app.Relay.RateLimit.PerMessageLimit = 10
		app.Relay.RateLimit.WindowLimit = 12
	})

	listener, _ := connectListener(t, m, "U-1")
	speech, done := connect(t, m, config.SpeechEndpoint, "U-1", "en", "ja")

	speech.send(`{"type":"finalRecognition","text":"こんにちは"}`)
	require.Eventually(t, listener.has(protocol.FinalLine("こんにちは", "[ja] こんにちは")), waitFor, tick)

	// 5 + 9 characters crosses the window limit of 12
	speech.send(`{"type":"finalRecognition","text":"123456789"}`)
	assertClosedWith(t, speech, done, config.CloseApplicationError, config.RateLimitReached)

	assert.EqualValues(t, 1, tr.Calls())
	assert.Equal(t, 1, listener.count("final\n"))
}

func TestSpeech_RateLimitCountsUTF16Units(t *testing.T) {
	tr := stub.New()
	m := newTestRelay(t, tr, func(app *config.AppConfig) {
		app.Relay.RateLimit.PerMessageLimit = 4
	})

	listener, _ := connectListener(t, m, "U-1")
	speech, done := connect(t, m, config.SpeechEndpoint, "U-1", "en", "ja")

	speech.send(`{"type":"finalRecognition","text":"abc"}`)
	require.Eventually(t, listener.has(protocol.FinalLine("abc", "[ja] abc")), waitFor, tick)

	// two runes, but each emoji is a surrogate pair
	speech.send(`{"type":"finalRecognition","text":"😀😀"}`)
	assertClosedWith(t, speech, done, config.CloseApplicationError, config.RateLimitReached)

	assert.EqualValues(t, 1, tr.Calls())
	assert.Equal(t, 1, listener.count("final\n"))
}

func TestSpeech_ChangeLanguage(t *testing.T) {
	m := newTestRelay(t, stub.New(), nil)

	listener, _ := connectListener(t, m, "U-1")
	speech, done := connect(t, m, config.SpeechEndpoint, "U-1", "en", "ja")

	speech.send(`{"type":"changeLanguage","langFrom":"en","langTo":"fr"}`)
	speech.send(`{"type":"heartBeat"}`)
	speech.send(`{"type":"finalRecognition","text":"Hello"}`)
	require.Eventually(t, listener.has(protocol.FinalLine("Hello", "[fr] Hello")), waitFor, tick)

	speech.send(`{"type":"changeLanguage","langFrom":"fr","langTo":"fr"}`)
	assertClosedWith(t, speech, done, config.CloseProtocolError, config.InvalidLanguage)
}

func TestSpeech_ChangeLanguageUnsupported(t *testing.T) {
	m := newTestRelay(t, stub.New(), nil)

	speech, done := connect(t, m, config.SpeechEndpoint, "U-1", "en", "ja")
	speech.send(`{"type":"changeLanguage","langFrom":"en","langTo":"xx"}`)
	assertClosedWith(t, speech, done, config.CloseProtocolError, config.InvalidLanguage)
}

var errProviderDown = errors.New("provider down")

func failingTranslator() insights.Translator {
	return insights.TranslatorFunc(func(context.Context, string, string, string) (string, error) {
		return "", errProviderDown
	})
}

func TestSpeech_TranslationFailureRelaysOriginal(t *testing.T) {
	m := newTestRelay(t, failingTranslator(), nil)

	listener, _ := connectListener(t, m, "U-1")
	speech, _ := connect(t, m, config.SpeechEndpoint, "U-1", "en", "ja")

	speech.send(`{"type":"finalRecognition","text":"Hello"}`)

	require.Eventually(t, listener.has("final\nHello\n"), waitFor, tick)
	require.Eventually(t, listener.has(protocol.InfoLine(config.TranslationUnavailable)), waitFor, tick)
	require.Eventually(t, speech.has(`{"type":"info","msg":"Translation unavailable."}`), waitFor, tick)
}

func TestSpeech_TranslationFailureCloses(t *testing.T) {
	m := newTestRelay(t, failingTranslator(), func(app *config.AppConfig) {
		app.Relay.TranslationFailurePolicy = config.TranslationFailureClose
	})

	listener, _ := connectListener(t, m, "U-1")
	speech, done := connect(t, m, config.SpeechEndpoint, "U-1", "en", "ja")

	speech.send(`{"type":"finalRecognition","text":"Hello"}`)
	assertClosedWith(t, speech, done, config.CloseApplicationError, config.TranslationFailed)
	assert.Zero(t, listener.count("final\n"))
}

func TestSpeech_TranslationTimeout(t *testing.T) {
	slow := insights.TranslatorFunc(func(ctx context.Context, _, _, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	m := newTestRelay(t, slow, func(app *config.AppConfig) {
		app.Relay.TranslationTimeout = 20 * time.Millisecond
	})

	listener, _ := connectListener(t, m, "U-1")
	speech, _ := connect(t, m, config.SpeechEndpoint, "U-1", "en", "ja")

	speech.send(`{"type":"finalRecognition","text":"Hello"}`)
	require.Eventually(t, listener.has(protocol.InfoLine(config.TranslationUnavailable)), waitFor, tick)
}

func TestSpeech_HangUpDuringTranslationDropsFinal(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	blocking := insights.TranslatorFunc(func(_ context.Context, text, _, to string) (string, error) {
		close(entered)
		<-release
		return "[" + to + "] " + text, nil
	})
	m := newTestRelay(t, blocking, nil)

	listener, _ := connectListener(t, m, "U-1")
	speech, done := connect(t, m, config.SpeechEndpoint, "U-1", "en", "ja")
	require.Eventually(t, listener.has(protocol.InfoLine(config.SpeechConnected)), waitFor, tick)

	speech.send(`{"type":"finalRecognition","text":"late"}`)
	select {
	case <-entered:
	case <-time.After(waitFor):
		t.Fatal("translation did not start")
	}

	speech.hangUp()
	// the hang-up is noticed while the translation is still pending
	require.Eventually(t, speech.isClosed, waitFor, tick)
	close(release)

	<-done
	require.Eventually(t, listener.has(protocol.InfoLine(config.SpeechDisconnected)), waitFor, tick)
	assert.Zero(t, listener.count("final\n"))
}

func TestSpeech_ReceivesListenerInfo(t *testing.T) {
	m := newTestRelay(t, stub.New(), nil)

	speech, _ := connect(t, m, config.SpeechEndpoint, "U-1", "en", "ja")
	require.Eventually(t, func() bool {
		return m.bus.HasSubscribers(relay.SpeechInfoTopic("U-1"))
	}, waitFor, tick)

	listener, listenerDone := connect(t, m, config.ListenerEndpoint, "U-1", "", "")
	require.Eventually(t, speech.has(`{"type":"info","msg":"Listener connected."}`), waitFor, tick)

	listener.hangUp()
	<-listenerDone
	require.Eventually(t, speech.has(`{"type":"info","msg":"Listener disconnected."}`), waitFor, tick)
}

func TestSpeech_Heartbeat(t *testing.T) {
	m := newTestRelay(t, stub.New(), func(app *config.AppConfig) {
		app.Relay.HeartbeatInterval = 10 * time.Millisecond
	})

	speech, done := connect(t, m, config.SpeechEndpoint, "U-1", "en", "ja")
	require.Eventually(t, speech.has(`{"type":"heartBeat"}`), waitFor, tick)

	speech.hangUp()
	<-done
	assert.Equal(t, 0, m.bus.Stats().Subscriptions)
}

func TestSpeech_DisconnectAnnounced(t *testing.T) {
	m := newTestRelay(t, stub.New(), nil)

	listener, _ := connectListener(t, m, "U-1")
	speech, done := connect(t, m, config.SpeechEndpoint, "U-1", "en", "ja")
	require.Eventually(t, listener.has(protocol.InfoLine(config.SpeechConnected)), waitFor, tick)

	speech.hangUp()
	<-done
	require.Eventually(t, listener.has(protocol.InfoLine(config.SpeechDisconnected)), waitFor, tick)

	_, _, sentClose := speech.closeFrame()
	assert.False(t, sentClose)
}
