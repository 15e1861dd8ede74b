package config

import "time"

const (
	UserKeyPrefix = "U-"

	SpeechEndpoint   = "speech"
	ListenerEndpoint = "neos"

	// close codes sent to websocket peers
	CloseGoingAway        = 1001
	CloseProtocolError    = 1002
	CloseApplicationError = 4001

	TranslationFailureRelayOriginal = "relay_original"
	TranslationFailureClose         = "close"

	DefaultPathPrefix          = "/ws"
	DefaultHeartbeatInterval   = 10 * time.Second
	DefaultOutboxSize          = 64
	DefaultMaxMessageSize      = 8192
	DefaultPerMessageLimit     = 200
	DefaultWindowLimit         = 500
	DefaultWindowDuration      = 30 * time.Second
	DefaultTranslationTimeout  = 10 * time.Second
	DefaultUsageKeyTTL         = 48 * time.Hour
	DefaultMirrorSubjectPrefix = "srelay.events"

	// how long we wait to enqueue a close frame behind pending writes
	WaitBeforeForceClose = 2 * time.Second
)

var DefaultSupportedLanguages = []string{"en", "ja", "ko", "ru", "zh", "fr"}
