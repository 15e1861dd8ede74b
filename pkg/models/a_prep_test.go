package models

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/config"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/insights"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/relay"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// fakeConn is an in-memory websocket connection.
type fakeConn struct {
	in chan []byte

	mu          sync.Mutex
	written     []string
	closeCode   int
	closeReason string
	gotClose    bool
	readLimit   int64

	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case data, ok := <-c.in:
		if !ok {
			return 0, nil, io.EOF
		}
		return websocket.TextMessage, data, nil
	case <-c.closed:
		return 0, nil, net.ErrClosed
	}
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	select {
	case <-c.closed:
		return net.ErrClosed
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, string(data))
	return nil
}

func (c *fakeConn) WriteControl(messageType int, data []byte, _ time.Time) error {
	if messageType != websocket.CloseMessage {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gotClose = true
	if len(data) >= 2 {
		c.closeCode = int(binary.BigEndian.Uint16(data))
		c.closeReason = string(data[2:])
	}
	return nil
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
	return nil
}

func (c *fakeConn) SetReadLimit(limit int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readLimit = limit
}

func (c *fakeConn) limit() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readLimit
}

func (c *fakeConn) send(msg string) {
	c.in <- []byte(msg)
}

// hangUp simulates the peer going away.
func (c *fakeConn) hangUp() {
	close(c.in)
}

func (c *fakeConn) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.written...)
}

func (c *fakeConn) has(msg string) func() bool {
	return func() bool {
		for _, m := range c.messages() {
			if m == msg {
				return true
			}
		}
		return false
	}
}

func (c *fakeConn) count(prefix string) int {
	n := 0
	for _, m := range c.messages() {
		if strings.HasPrefix(m, prefix) {
			n++
		}
	}
	return n
}

func (c *fakeConn) closeFrame() (int, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeCode, c.closeReason, c.gotClose
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func newTestRelay(t *testing.T, tr insights.Translator, mutate func(*config.AppConfig)) *RelayModel {
	t.Helper()

	app := &config.AppConfig{}
	app.Relay.HeartbeatInterval = time.Hour
	if mutate != nil {
		mutate(app)
	}
	app, err := config.New(app)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	m := NewRelayModel(context.Background(), app, relay.NewBus(logger), tr, nil, nil, logger)
	t.Cleanup(m.Shutdown)
	return m
}

// connect serves a new fake connection and returns it with a channel closed when
// the handler has returned.
func connect(t *testing.T, m *RelayModel, endpoint, userKey, from, to string) (*fakeConn, <-chan struct{}) {
	t.Helper()

	conn := newFakeConn()
	done := make(chan struct{})
	req, ce := NewConnectionRequest(endpoint, userKey, from, to)
	require.Nil(t, ce)

	go func() {
		defer close(done)
		m.Serve(conn, req)
	}()
	return conn, done
}

func connectListener(t *testing.T, m *RelayModel, userKey string) (*fakeConn, <-chan struct{}) {
	t.Helper()
	conn, done := connect(t, m, config.ListenerEndpoint, userKey, "", "")
	require.Eventually(t, func() bool {
		return m.bus.HasSubscribers(relay.ListenerInfoTopic(userKey))
	}, waitFor, tick)
	return conn, done
}

func assertClosedWith(t *testing.T, conn *fakeConn, done <-chan struct{}, code int, reason string) {
	t.Helper()

	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("handler did not return")
	}

	gotCode, gotReason, ok := conn.closeFrame()
	require.True(t, ok, "no close frame sent")
	assert.Equal(t, code, gotCode)
	assert.Equal(t, reason, gotReason)
	assert.True(t, conn.isClosed())
}
