package models

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/config"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/insights"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/metrics"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/protocol"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/relay"
	natsservice "github.com/mynaparrot/plugnmeet-speech-relay/pkg/services/nats"
	redisservice "github.com/mynaparrot/plugnmeet-speech-relay/pkg/services/redis"
	"github.com/sirupsen/logrus"
)

const sideEffectWorkers = 4

var ErrUsageDisabled = errors.New("translation usage accounting is not enabled")

type RelayStats struct {
	Bus       relay.BusStats `json:"bus"`
	Speech    int            `json:"speech_sessions"`
	Listeners int            `json:"listener_sessions"`
}

type DayUsage struct {
	Day   string           `json:"day"`
	Total int64            `json:"total"`
	Users map[string]int64 `json:"users"`
}

// RelayModel owns the relay bus and every live session of the process.
type RelayModel struct {
	ctx          context.Context
	app          *config.AppConfig
	bus          *relay.Bus
	translator   insights.Translator
	languages    protocol.LanguageSet
	redisService *redisservice.RedisService
	natsService  *natsservice.NatsService
	pool         *workerpool.WorkerPool
	logger       *logrus.Entry

	lock     sync.RWMutex
	sessions map[string]*session
	closed   bool
	now      func() time.Time
}

// NewRelayModel creates the relay. redisService and natsService may be nil.
func NewRelayModel(ctx context.Context, app *config.AppConfig, bus *relay.Bus, translator insights.Translator, redisService *redisservice.RedisService, natsService *natsservice.NatsService, logger *logrus.Logger) *RelayModel {
	return &RelayModel{
		ctx:          ctx,
		app:          app,
		bus:          bus,
		translator:   translator,
		languages:    protocol.NewLanguageSet(app.Relay.SupportedLanguages),
		redisService: redisService,
		natsService:  natsService,
		pool:         workerpool.New(sideEffectWorkers),
		logger:       logger.WithField("model", "relay"),
		sessions:     make(map[string]*session),
		now:          time.Now,
	}
}

// Serve runs the handler selected by req until the connection is closed.
func (m *RelayModel) Serve(conn Conn, req *ConnectionRequest) {
	if rl, ok := conn.(readLimiter); ok {
		rl.SetReadLimit(m.app.Relay.MaxMessageSize)
	}

	switch req.Endpoint {
	case config.SpeechEndpoint:
		m.ServeSpeech(conn, req)
	case config.ListenerEndpoint:
		m.ServeListener(conn, req)
	default:
		m.Reject(conn, newCloseError(config.CloseProtocolError, config.InvalidPathname))
	}
}

// Reject closes a connection that never became a session.
func (m *RelayModel) Reject(conn Conn, ce *CloseError) {
	s := newSession(m.ctx, "rejected", "", conn, 1, m.logger)
	s.start(0, nil)
	s.closeWith(ce.Code, ce.Reason)
	s.wait()
}

func (m *RelayModel) register(s *session) bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.closed {
		return false
	}
	m.sessions[s.id] = s
	metrics.ActiveSessions.WithLabelValues(s.role).Inc()
	return true
}

func (m *RelayModel) unregister(s *session) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if _, ok := m.sessions[s.id]; ok {
		delete(m.sessions, s.id)
		metrics.ActiveSessions.WithLabelValues(s.role).Dec()
	}
}

func (m *RelayModel) Stats() *RelayStats {
	st := &RelayStats{
		Bus: m.bus.Stats(),
	}

	m.lock.RLock()
	defer m.lock.RUnlock()
	for _, s := range m.sessions {
		switch s.role {
		case RoleSpeech:
			st.Speech++
		case RoleListener:
			st.Listeners++
		}
	}
	return st
}

// TranslationUsage returns the characters translated today for userKey.
func (m *RelayModel) TranslationUsage(ctx context.Context, userKey string) (int64, error) {
	if m.redisService == nil {
		return 0, ErrUsageDisabled
	}
	return m.redisService.GetTranslationUserUsage(ctx, userKey, m.now())
}

// DayTranslationUsage returns the characters translated today for every user key,
// along with the day total.
func (m *RelayModel) DayTranslationUsage(ctx context.Context) (*DayUsage, error) {
	if m.redisService == nil {
		return nil, ErrUsageDisabled
	}
	day := m.now()
	fields, err := m.redisService.GetTranslationDayUsage(ctx, day)
	if err != nil {
		return nil, err
	}
	return newDayUsage(day, fields), nil
}

// newDayUsage splits the day hash into the total and the per user counters.
func newDayUsage(day time.Time, fields map[string]int64) *DayUsage {
	usage := &DayUsage{
		Day:   redisservice.UsageDay(day),
		Users: make(map[string]int64, len(fields)),
	}
	for k, v := range fields {
		if k == redisservice.TotalUsageField {
			usage.Total = v
			continue
		}
		usage.Users[k] = v
	}
	return usage
}

// recordFinal hands the side effects of a relayed final to the worker pool.
func (m *RelayModel) recordFinal(userKey string, pair protocol.LanguagePair, ev relay.Event, chars int) {
	if m.redisService == nil && m.natsService == nil {
		return
	}
	at := m.now()

	m.lock.RLock()
	defer m.lock.RUnlock()
	if m.closed {
		return
	}
	m.pool.Submit(func() {
		if m.redisService != nil && chars > 0 {
			ctx, cancel := context.WithTimeout(m.ctx, 5*time.Second)
			err := m.redisService.UpdateTranslationUsage(ctx, userKey, chars, at)
			cancel()
			if err != nil {
				m.logger.WithError(err).Warnln("failed to update translation usage")
			}
		}

		if m.natsService != nil {
			err := m.natsService.PublishFinal(&natsservice.FinalEvent{
				UserKey:    userKey,
				Text:       ev.Text,
				Translated: ev.Translated,
				LangFrom:   pair.From,
				LangTo:     pair.To,
				CreatedAt:  at,
			})
			if err != nil {
				m.logger.WithError(err).Warnln("failed to mirror final event")
			}
		}
	})
}

// Shutdown closes every live session with 1001 and waits for pending side effects.
func (m *RelayModel) Shutdown() {
	m.lock.Lock()
	m.closed = true
	list := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	m.lock.Unlock()

	m.logger.Infof("closing %d live sessions", len(list))
	for _, s := range list {
		s.closeWith(config.CloseGoingAway, config.ServerShuttingDown)
	}
	for _, s := range list {
		s.wait()
	}

	m.pool.StopWait()
}

func (m *RelayModel) publish(topic relay.Topic, ev relay.Event) int {
	n := m.bus.Publish(topic, ev)
	if n > 0 {
		metrics.PublishedEvents.WithLabelValues(topic.Kind.String()).Inc()
	}
	return n
}

// admit starts s or, while shutting down, closes it right away.
func (m *RelayModel) admit(s *session) bool {
	if m.register(s) {
		return true
	}
	s.start(0, nil)
	s.closeWith(config.CloseGoingAway, config.ServerShuttingDown)
	s.wait()
	return false
}
