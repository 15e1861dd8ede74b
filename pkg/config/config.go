package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type AppConfig struct {
	RDS      *redis.Client  `yaml:"-"`
	NatsConn *nats.Conn     `yaml:"-"`
	Logger   *logrus.Logger `yaml:"-"`

	RootWorkingDir string            `yaml:"-"`
	Client         ClientInfo        `yaml:"client"`
	LogSettings    LogSettings       `yaml:"log_settings"`
	Relay          RelaySettings     `yaml:"relay"`
	Translation    TranslationConfig `yaml:"translation"`
	RedisInfo      *RedisInfo        `yaml:"redis_info"`
	NatsInfo       *NatsInfo         `yaml:"nats_info"`
}

type ClientInfo struct {
	Port           int            `yaml:"port" validate:"gte=0,lte=65535"`
	Debug          bool           `yaml:"debug"`
	ProxyHeader    string         `yaml:"proxy_header"`
	PrometheusConf PrometheusConf `yaml:"prometheus"`
}

type PrometheusConf struct {
	Enable      bool   `yaml:"enable"`
	MetricsPath string `yaml:"metrics_path"`
}

type LogSettings struct {
	LogLevel   *string `yaml:"log_level"`
	LogFile    string  `yaml:"log_file"`
	MaxSize    int     `yaml:"max_size"`
	MaxBackups int     `yaml:"max_backups"`
	MaxAge     int     `yaml:"max_age"`
}

// RelaySettings controls the websocket relay between speech sources and listeners.
type RelaySettings struct {
	PathPrefix        string        `yaml:"path_prefix" validate:"startswith=/"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval" validate:"gt=0"`
	OutboxSize        int           `yaml:"outbox_size" validate:"gt=0"`
	// MaxMessageSize caps a single incoming websocket frame, in bytes.
	MaxMessageSize int64 `yaml:"max_message_size" validate:"gt=0"`
	// SupportedLanguages lists the language codes accepted for langfrom/langto.
	SupportedLanguages []string      `yaml:"supported_languages" validate:"min=2,dive,required"`
	RateLimit          RateLimitConf `yaml:"rate_limit"`
	TranslationTimeout time.Duration `yaml:"translation_timeout" validate:"gt=0"`
	// TranslationFailurePolicy is either "relay_original" or "close".
	TranslationFailurePolicy string `yaml:"translation_failure_policy" validate:"oneof=relay_original close"`
}

type RateLimitConf struct {
	PerMessageLimit int           `yaml:"per_message_limit" validate:"gt=0"`
	WindowLimit     int           `yaml:"window_limit" validate:"gt=0"`
	WindowDuration  time.Duration `yaml:"window_duration" validate:"gt=0"`
}

// TranslationConfig selects the translation provider used for final recognitions.
type TranslationConfig struct {
	Provider    string            `yaml:"provider" validate:"oneof=google openai azure stub"`
	Model       string            `yaml:"model"`
	Credentials CredentialsConfig `yaml:"credentials"`
}

type CredentialsConfig struct {
	APIKey   string `yaml:"api_key"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

type RedisInfo struct {
	Host              string   `yaml:"host"`
	Username          string   `yaml:"username"`
	Password          string   `yaml:"password"`
	DBName            int      `yaml:"db"`
	UseTLS            bool     `yaml:"use_tls"`
	MasterName        string   `yaml:"sentinel_master_name"`
	SentinelUsername  string   `yaml:"sentinel_username"`
	SentinelPassword  string   `yaml:"sentinel_password"`
	SentinelAddresses []string `yaml:"sentinel_addresses"`
	// UsageKeyTTL is how long the per day translation usage hash is kept.
	UsageKeyTTL time.Duration `yaml:"usage_key_ttl"`
}

type NatsInfo struct {
	NatsUrls      []string `yaml:"nats_urls" validate:"min=1"`
	User          string   `yaml:"user"`
	Password      string   `yaml:"password"`
	SubjectPrefix string   `yaml:"subject_prefix"`
}

// New fills the default values and validates the configuration.
func New(appCnf *AppConfig) (*AppConfig, error) {
	appCnf.Relay.setDefaults()

	// a relative log file is resolved against the directory the server was started in
	if lf := appCnf.LogSettings.LogFile; lf != "" && !filepath.IsAbs(lf) && appCnf.RootWorkingDir != "" {
		appCnf.LogSettings.LogFile = filepath.Join(appCnf.RootWorkingDir, lf)
	}

	if appCnf.Client.PrometheusConf.Enable && appCnf.Client.PrometheusConf.MetricsPath == "" {
		appCnf.Client.PrometheusConf.MetricsPath = "/metrics"
	}
	if appCnf.Translation.Provider == "" {
		appCnf.Translation.Provider = "stub"
	}
	if appCnf.RedisInfo != nil && appCnf.RedisInfo.UsageKeyTTL <= 0 {
		appCnf.RedisInfo.UsageKeyTTL = DefaultUsageKeyTTL
	}
	if appCnf.NatsInfo != nil && appCnf.NatsInfo.SubjectPrefix == "" {
		appCnf.NatsInfo.SubjectPrefix = DefaultMirrorSubjectPrefix
	}

	if err := validator.New().Struct(appCnf); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	seen := make(map[string]struct{}, len(appCnf.Relay.SupportedLanguages))
	for _, l := range appCnf.Relay.SupportedLanguages {
		if _, ok := seen[l]; ok {
			return nil, fmt.Errorf("invalid configuration: duplicate language %q", l)
		}
		seen[l] = struct{}{}
	}

	return appCnf, nil
}

func (r *RelaySettings) setDefaults() {
	if r.PathPrefix == "" {
		r.PathPrefix = DefaultPathPrefix
	}
	r.PathPrefix = "/" + strings.Trim(r.PathPrefix, "/")
	if r.HeartbeatInterval <= 0 {
		r.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if r.OutboxSize <= 0 {
		r.OutboxSize = DefaultOutboxSize
	}
	if r.MaxMessageSize <= 0 {
		r.MaxMessageSize = DefaultMaxMessageSize
	}
	if len(r.SupportedLanguages) == 0 {
		r.SupportedLanguages = append([]string(nil), DefaultSupportedLanguages...)
	}
	if r.RateLimit.PerMessageLimit <= 0 {
		r.RateLimit.PerMessageLimit = DefaultPerMessageLimit
	}
	if r.RateLimit.WindowLimit <= 0 {
		r.RateLimit.WindowLimit = DefaultWindowLimit
	}
	if r.RateLimit.WindowDuration <= 0 {
		r.RateLimit.WindowDuration = DefaultWindowDuration
	}
	if r.TranslationTimeout <= 0 {
		r.TranslationTimeout = DefaultTranslationTimeout
	}
	if r.TranslationFailurePolicy == "" {
		r.TranslationFailurePolicy = TranslationFailureRelayOriginal
	}
}
