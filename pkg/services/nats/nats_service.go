package natsservice

import (
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// FinalEvent is the payload mirrored for every relayed final recognition.
type FinalEvent struct {
	UserKey    string    `json:"user_key"`
	Text       string    `json:"text"`
	Translated string    `json:"translated"`
	LangFrom   string    `json:"lang_from"`
	LangTo     string    `json:"lang_to"`
	CreatedAt  time.Time `json:"created_at"`
}

// NatsService mirrors relay events to NATS subjects for external consumers.
type NatsService struct {
	nc            *nats.Conn
	subjectPrefix string
	logger        *logrus.Entry
}

func New(nc *nats.Conn, subjectPrefix string, logger *logrus.Logger) *NatsService {
	return &NatsService{
		nc:            nc,
		subjectPrefix: strings.TrimSuffix(subjectPrefix, "."),
		logger:        logger.WithField("service", "nats"),
	}
}

// SubjectFor returns the subject a user key's events are published on.
func (s *NatsService) SubjectFor(userKey string) string {
	return s.subjectPrefix + "." + sanitizeToken(userKey)
}

func (s *NatsService) PublishFinal(ev *FinalEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.nc.Publish(s.SubjectFor(ev.UserKey), data)
}

// sanitizeToken turns an arbitrary user key into a single subject token.
func sanitizeToken(s string) string {
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r == '.', r == '*', r == '>', r <= ' ', r == 0x7f:
			return '_'
		}
		return r
	}, s)
}
