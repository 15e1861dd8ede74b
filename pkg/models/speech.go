package models

import (
	"context"
	"time"

	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/config"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/metrics"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/protocol"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/ratelimit"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/relay"
	"github.com/sirupsen/logrus"
)

// speechHandler serves one speech source. Packets are handled one at a time in
// arrival order, while a separate reader keeps watching the socket so a peer
// hang-up aborts the session even in the middle of a translation.
type speechHandler struct {
	*session
	m        *RelayModel
	pair     protocol.LanguagePair
	bucket   *ratelimit.Bucket
	scope    *relay.Scope
	readDone chan struct{}
}

// ServeSpeech negotiates the language pair and then relays recognitions until the
// connection is closed.
func (m *RelayModel) ServeSpeech(conn Conn, req *ConnectionRequest) {
	rc := m.app.Relay
	s := newSession(m.ctx, RoleSpeech, req.UserKey, conn, rc.OutboxSize, m.logger)

	if err := m.languages.Validate(req.Pair); err != nil {
		s.logger.WithError(err).Debugln("language negotiation failed")
		ce := negotiationError(err)
		s.start(0, nil)
		s.closeWith(ce.Code, ce.Reason)
		s.wait()
		return
	}

	if !m.admit(s) {
		return
	}
	defer m.unregister(s)

	h := &speechHandler{
		session:  s,
		m:        m,
		pair:     req.Pair,
		bucket:   ratelimit.NewBucket(rc.RateLimit.PerMessageLimit, rc.RateLimit.WindowLimit, rc.RateLimit.WindowDuration),
		scope:    relay.NewScope(m.bus),
		readDone: make(chan struct{}),
	}

	s.start(rc.HeartbeatInterval, protocol.HeartBeatPacket())
	h.open()
	h.readLoop()
	h.teardown()
	s.wait()
	<-h.readDone
}

func (h *speechHandler) open() {
	h.scope.Subscribe(relay.SpeechInfoTopic(h.userKey), func(ev relay.Event) {
		h.sendInfo(ev.Text)
	})
	h.m.publish(relay.ListenerInfoTopic(h.userKey), relay.Event{Text: config.SpeechConnected})

	h.logger.WithFields(logrus.Fields{
		"langFrom": h.pair.From,
		"langTo":   h.pair.To,
	}).Infoln("speech source connected")
}

func (h *speechHandler) teardown() {
	h.abort()
	h.scope.ReleaseAll()
	h.m.publish(relay.ListenerInfoTopic(h.userKey), relay.Event{Text: config.SpeechDisconnected})
	h.logger.Infoln("speech source disconnected")
}

func (h *speechHandler) readLoop() {
	msgs := make(chan []byte)
	go h.receive(msgs)

	for data := range msgs {
		if ce := h.handleMessage(data); ce != nil {
			h.closeWith(ce.Code, ce.Reason)
			return
		}
		if h.isClosing() {
			return
		}
	}
}

// receive hands frames to readLoop. It ends when the connection fails, which
// happens either because the peer went away or because the writer closed it.
func (h *speechHandler) receive(msgs chan<- []byte) {
	defer close(h.readDone)
	defer close(msgs)

	for {
		_, data, err := h.conn.ReadMessage()
		if err != nil {
			if !h.isClosing() {
				h.logger.WithError(err).Debugln("read failed")
			}
			h.abort()
			return
		}

		select {
		case msgs <- data:
		case <-h.stop:
			return
		}
	}
}

// handleMessage returns a non nil CloseError when the connection must be closed.
func (h *speechHandler) handleMessage(data []byte) *CloseError {
	pkt, err := protocol.ParsePacket(data)
	if err != nil {
		h.logger.WithError(err).Debugln("rejected packet")
		return packetError(err)
	}

	switch p := pkt.(type) {
	case *protocol.PartialRecognition:
		h.handlePartial(p.Text)
	case *protocol.FinalRecognition:
		return h.handleFinal(p.Text)
	case *protocol.ChangeLanguage:
		return h.changeLanguage(p)
	case *protocol.HeartBeat:
		// nothing to do, receiving it is enough
	}
	return nil
}

func (h *speechHandler) handlePartial(text string) {
	topic := relay.PartialTopic(h.userKey)
	if !h.m.bus.HasSubscribers(topic) {
		return
	}
	h.m.publish(topic, relay.Event{Text: text})
}

func (h *speechHandler) handleFinal(text string) *CloseError {
	topic := relay.FinalTopic(h.userKey)
	// nobody listens: no translation and no rate accounting
	if !h.m.bus.HasSubscribers(topic) {
		return nil
	}

	chars := protocol.TextLength(text)
	h.bucket.Add(chars)
	if h.bucket.HasTripped() {
		metrics.RateLimitTrips.Inc()
		h.logger.WithField("windowTotal", h.bucket.WindowTotal()).Warnln("rate limit reached")
		return newCloseError(config.CloseApplicationError, config.RateLimitReached)
	}

	pair := h.pair
	translated, err := h.translate(text, pair)
	if h.isClosing() {
		// the session ended while translating, including a peer hang-up
		metrics.StaleTranslations.Inc()
		return nil
	}

	if err != nil {
		metrics.TranslationFailures.Inc()
		h.logger.WithError(err).Errorln("translation failed")
		if h.m.app.Relay.TranslationFailurePolicy == config.TranslationFailureClose {
			return newCloseError(config.CloseApplicationError, config.TranslationFailed)
		}

		h.m.publish(topic, relay.Event{Text: text})
		h.m.publish(relay.ListenerInfoTopic(h.userKey), relay.Event{Text: config.TranslationUnavailable})
		h.sendInfo(config.TranslationUnavailable)
		return nil
	}

	ev := relay.Event{Text: text, Translated: translated}
	h.m.publish(topic, ev)
	h.m.recordFinal(h.userKey, pair, ev, chars)
	return nil
}

func (h *speechHandler) translate(text string, pair protocol.LanguagePair) (string, error) {
	ctx, cancel := context.WithTimeout(h.ctx, h.m.app.Relay.TranslationTimeout)
	defer cancel()

	start := time.Now()
	translated, err := h.m.translator.Translate(ctx, text, pair.From, pair.To)
	metrics.TranslationDuration.Observe(time.Since(start).Seconds())
	if err == nil {
		metrics.TranslatedCharacters.Add(float64(protocol.TextLength(text)))
	}
	return translated, err
}

func (h *speechHandler) changeLanguage(p *protocol.ChangeLanguage) *CloseError {
	pair := protocol.LanguagePair{From: p.LangFrom, To: p.LangTo}
	if err := h.m.languages.Validate(pair); err != nil {
		h.logger.WithError(err).Debugln("invalid language change")
		return newCloseError(config.CloseProtocolError, config.InvalidLanguage)
	}

	h.pair = pair
	h.logger.WithFields(logrus.Fields{
		"langFrom": pair.From,
		"langTo":   pair.To,
	}).Infoln("language changed")
	return nil
}

func (h *speechHandler) sendInfo(msg string) {
	data, err := protocol.MarshalPacket(&protocol.Info{Msg: msg})
	if err != nil {
		h.logger.WithError(err).Errorln("failed to marshal info packet")
		return
	}
	h.enqueue(data)
}
