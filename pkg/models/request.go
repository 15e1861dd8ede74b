package models

import (
	"errors"
	"strings"

	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/config"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/protocol"
)

// ConnectionRequest is what a websocket client asked for in its upgrade URL.
type ConnectionRequest struct {
	Endpoint string
	UserKey  string
	Pair     protocol.LanguagePair
}

// NewConnectionRequest validates the user key and the endpoint. The endpoint is
// the path below the prefix and must match exactly, so "speech/" or "/neos" are
// rejected. The language pair is only checked later by the speech handler.
func NewConnectionRequest(endpoint, userID, langFrom, langTo string) (*ConnectionRequest, *CloseError) {
	if !strings.HasPrefix(userID, config.UserKeyPrefix) {
		return nil, newCloseError(config.CloseProtocolError, config.InvalidUserId)
	}

	switch endpoint {
	case config.SpeechEndpoint, config.ListenerEndpoint:
	default:
		return nil, newCloseError(config.CloseProtocolError, config.InvalidPathname)
	}

	return &ConnectionRequest{
		Endpoint: endpoint,
		UserKey:  userID,
		Pair: protocol.LanguagePair{
			From: langFrom,
			To:   langTo,
		},
	}, nil
}

// negotiationError maps a language validation error to the close sent during negotiation.
func negotiationError(err error) *CloseError {
	switch {
	case errors.Is(err, protocol.ErrInvalidLangFrom):
		return newCloseError(config.CloseApplicationError, config.InvalidLangFrom)
	case errors.Is(err, protocol.ErrInvalidLangTo):
		return newCloseError(config.CloseApplicationError, config.InvalidLangTo)
	case errors.Is(err, protocol.ErrSameLanguage):
		return newCloseError(config.CloseApplicationError, config.SameLanguagePair)
	}
	return newCloseError(config.CloseApplicationError, config.InvalidRequest)
}

// packetError maps a ParsePacket error to the close sent to the speech source.
func packetError(err error) *CloseError {
	if errors.Is(err, protocol.ErrUnknownPacket) {
		return newCloseError(config.CloseProtocolError, config.InvalidPacketType)
	}
	return newCloseError(config.CloseApplicationError, config.InvalidRequest)
}
