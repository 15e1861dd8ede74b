package models

import (
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/config"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/protocol"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/relay"
)

// ServeListener forwards every partial, final and info event of the user key to
// the connection as an escaped line, until the connection is closed.
func (m *RelayModel) ServeListener(conn Conn, req *ConnectionRequest) {
	s := newSession(m.ctx, RoleListener, req.UserKey, conn, m.app.Relay.OutboxSize, m.logger)
	if !m.admit(s) {
		return
	}
	defer m.unregister(s)

	key := req.UserKey
	scope := relay.NewScope(m.bus)
	scope.Subscribe(relay.PartialTopic(key), func(ev relay.Event) {
		s.enqueue([]byte(protocol.PartialLine(ev.Text)))
	})
	scope.Subscribe(relay.FinalTopic(key), func(ev relay.Event) {
		s.enqueue([]byte(protocol.FinalLine(ev.Text, ev.Translated)))
	})
	scope.Subscribe(relay.ListenerInfoTopic(key), func(ev relay.Event) {
		s.enqueue([]byte(protocol.InfoLine(ev.Text)))
	})

	s.start(m.app.Relay.HeartbeatInterval, []byte(protocol.HeartbeatLine))
	m.publish(relay.SpeechInfoTopic(key), relay.Event{Text: config.ListenerConnected})
	s.logger.Infoln("listener connected")

	// listeners are not expected to send anything, reading only detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.abort()
	scope.ReleaseAll()
	m.publish(relay.SpeechInfoTopic(key), relay.Event{Text: config.ListenerDisconnected})
	s.logger.Infoln("listener disconnected")
	s.wait()
}
