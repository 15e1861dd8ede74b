package models

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/config"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/metrics"
	"github.com/sirupsen/logrus"
)

const (
	RoleSpeech   = "speech"
	RoleListener = "listener"
)

// session owns the write side of one websocket connection. All writes go through
// the outbox and are performed by a single writer goroutine, so relay handlers
// running on other connections never touch the socket directly.
type session struct {
	id      string
	role    string
	userKey string
	conn    Conn
	logger  *logrus.Entry

	ctx    context.Context
	cancel context.CancelFunc

	outbox  chan []byte
	stop    chan struct{}
	done    chan struct{}
	closing atomic.Bool
	once    sync.Once
	dropped atomic.Int64

	// set once by close, read by the writer after stop is closed
	closeCode   int
	closeReason string
}

func newSession(ctx context.Context, role, userKey string, conn Conn, outboxSize int, logger *logrus.Entry) *session {
	id := uuid.NewString()
	sCtx, cancel := context.WithCancel(ctx)

	return &session{
		id:      id,
		role:    role,
		userKey: userKey,
		conn:    conn,
		ctx:     sCtx,
		cancel:  cancel,
		outbox:  make(chan []byte, outboxSize),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		logger: logger.WithFields(logrus.Fields{
			"session": id,
			"role":    role,
			"userKey": userKey,
		}),
	}
}

func (s *session) start(heartbeat time.Duration, beat []byte) {
	go s.writeLoop()
	if heartbeat > 0 {
		go s.heartbeatLoop(heartbeat, beat)
	}
}

// enqueue never blocks. Messages are dropped when the session is closing or the
// outbox is full.
func (s *session) enqueue(msg []byte) bool {
	if s.closing.Load() {
		return false
	}
	select {
	case s.outbox <- msg:
		return true
	default:
		s.dropped.Add(1)
		metrics.DroppedMessages.WithLabelValues(s.role).Inc()
		s.logger.Debugln("outbox full, message dropped")
		return false
	}
}

func (s *session) isClosing() bool {
	return s.closing.Load()
}

// closeWith queues a close frame behind the pending writes. Only the first call has an effect.
func (s *session) closeWith(code int, reason string) {
	s.once.Do(func() {
		s.closeCode = code
		s.closeReason = reason
		s.closing.Store(true)
		s.cancel()
		close(s.stop)

		if code != 0 {
			metrics.ClosedSessions.WithLabelValues(strconv.Itoa(code)).Inc()
			s.logger.WithField("code", code).Infof("closing connection: %s", reason)
		}
	})
}

// abort is used once the peer is gone; no close frame is sent.
func (s *session) abort() {
	s.closeWith(0, "")
}

// wait blocks until the writer has released the connection.
func (s *session) wait() {
	<-s.done
}

func (s *session) writeLoop() {
	defer close(s.done)
	defer func() {
		_ = s.conn.Close()
	}()

	for {
		select {
		case msg := <-s.outbox:
			if !s.write(msg) {
				return
			}
		case <-s.stop:
			s.flush()
			return
		}
	}
}

func (s *session) write(msg []byte) bool {
	if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		s.logger.WithError(err).Debugln("write failed")
		s.closing.Store(true)
		s.cancel()
		return false
	}
	return true
}

// flush drains what is already queued, then writes the close frame if one was requested.
func (s *session) flush() {
	for drained := false; !drained; {
		select {
		case msg := <-s.outbox:
			if !s.write(msg) {
				return
			}
		default:
			drained = true
		}
	}

	if s.closeCode == 0 {
		return
	}
	deadline := time.Now().Add(config.WaitBeforeForceClose)
	err := s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(s.closeCode, s.closeReason), deadline)
	if err != nil {
		s.logger.WithError(err).Debugln("failed to send close frame")
	}
}

func (s *session) heartbeatLoop(interval time.Duration, beat []byte) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.enqueue(beat)
		}
	}
}
