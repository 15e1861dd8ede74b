package protocol

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

type PacketType string

const (
	PacketPartialRecognition PacketType = "partialRecognition"
	PacketFinalRecognition   PacketType = "finalRecognition"
	PacketChangeLanguage     PacketType = "changeLanguage"
	PacketHeartBeat          PacketType = "heartBeat"
	PacketInfo               PacketType = "info"
)

var (
	// ErrInvalidRequest is returned for malformed JSON or a known packet with a bad shape.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnknownPacket is returned when the type tag is missing or not an inbound packet.
	ErrUnknownPacket = errors.New("unknown packet type")
)

// Packet is one of the JSON messages exchanged with a speech source.
type Packet interface {
	PacketType() PacketType
}

type PartialRecognition struct {
	Text string `json:"text"`
}

type FinalRecognition struct {
	Text string `json:"text"`
}

type ChangeLanguage struct {
	LangFrom string `json:"langFrom"`
	LangTo   string `json:"langTo"`
}

type HeartBeat struct{}

// Info carries a status message to the speech source. Outbound only.
type Info struct {
	Msg string `json:"msg"`
}

func (*PartialRecognition) PacketType() PacketType { return PacketPartialRecognition }
func (*FinalRecognition) PacketType() PacketType   { return PacketFinalRecognition }
func (*ChangeLanguage) PacketType() PacketType     { return PacketChangeLanguage }
func (*HeartBeat) PacketType() PacketType          { return PacketHeartBeat }
func (*Info) PacketType() PacketType               { return PacketInfo }

// ParsePacket decodes an inbound packet sent by a speech source.
func ParsePacket(data []byte) (Packet, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: not an object", ErrInvalidRequest)
	}

	tag, _ := raw["type"].(string)
	var p Packet
	switch PacketType(tag) {
	case PacketPartialRecognition:
		p = new(PartialRecognition)
	case PacketFinalRecognition:
		p = new(FinalRecognition)
	case PacketChangeLanguage:
		p = new(ChangeLanguage)
	case PacketHeartBeat:
		p = new(HeartBeat)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPacket, tag)
	}

	if err := inboundSchemas[p.PacketType()].Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return p, nil
}

// MarshalPacket encodes a packet together with its type tag.
func MarshalPacket(p Packet) ([]byte, error) {
	switch v := p.(type) {
	case *HeartBeat:
		return HeartBeatPacket(), nil
	case *Info:
		return json.Marshal(struct {
			Type PacketType `json:"type"`
			Msg  string     `json:"msg"`
		}{PacketInfo, v.Msg})
	case *PartialRecognition:
		return json.Marshal(struct {
			Type PacketType `json:"type"`
			Text string     `json:"text"`
		}{PacketPartialRecognition, v.Text})
	case *FinalRecognition:
		return json.Marshal(struct {
			Type PacketType `json:"type"`
			Text string     `json:"text"`
		}{PacketFinalRecognition, v.Text})
	case *ChangeLanguage:
		return json.Marshal(struct {
			Type     PacketType `json:"type"`
			LangFrom string     `json:"langFrom"`
			LangTo   string     `json:"langTo"`
		}{PacketChangeLanguage, v.LangFrom, v.LangTo})
	}
	return nil, fmt.Errorf("cannot marshal packet %T", p)
}

var heartBeatPacket = []byte(`{"type":"heartBeat"}`)

// HeartBeatPacket returns a fresh copy of the encoded heartBeat packet.
func HeartBeatPacket() []byte {
	return append([]byte(nil), heartBeatPacket...)
}
