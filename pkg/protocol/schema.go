package protocol

import (
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	schemaBaseURL = "https://speech-relay.local/schemas/"

	recognitionSchema = `{
  "type": "object",
  "required": ["type", "text"],
  "properties": {
    "type": {"type": "string"},
    "text": {"type": "string"}
  }
}`
	changeLanguageSchema = `{
  "type": "object",
  "required": ["type", "langFrom", "langTo"],
  "properties": {
    "type": {"type": "string"},
    "langFrom": {"type": "string"},
    "langTo": {"type": "string"}
  }
}`
	heartBeatSchema = `{
  "type": "object",
  "required": ["type"]
}`
)

var inboundSchemas = map[PacketType]*jsonschema.Schema{
	PacketPartialRecognition: jsonschema.MustCompileString(schemaBaseURL+"partialRecognition.json", recognitionSchema),
	PacketFinalRecognition:   jsonschema.MustCompileString(schemaBaseURL+"finalRecognition.json", recognitionSchema),
	PacketChangeLanguage:     jsonschema.MustCompileString(schemaBaseURL+"changeLanguage.json", changeLanguageSchema),
	PacketHeartBeat:          jsonschema.MustCompileString(schemaBaseURL+"heartBeat.json", heartBeatSchema),
}
