package models

import (
	"fmt"
	"time"
)

// Conn is the part of a websocket connection used by relay sessions.
// *websocket.Conn from gofiber/contrib/websocket satisfies it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// readLimiter is implemented by connections that can cap the size of incoming frames.
type readLimiter interface {
	SetReadLimit(limit int64)
}

// CloseError asks the session to close the connection with Code and Reason.
type CloseError struct {
	Code   int
	Reason string
}

func (e *CloseError) Error() string {
	return fmt.Sprintf("close %d: %s", e.Code, e.Reason)
}

func newCloseError(code int, reason string) *CloseError {
	return &CloseError{Code: code, Reason: reason}
}
