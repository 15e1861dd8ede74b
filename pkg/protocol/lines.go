package protocol

// Listener lines are plain text so that in-world clients can parse them without JSON.
const (
	partialPrefix = "partial\n"
	finalPrefix   = "final\n"
	infoPrefix    = "info\n"

	HeartbeatLine = "heartbeat\n"
)

func PartialLine(text string) string {
	return partialPrefix + Escape(text)
}

func FinalLine(text, translated string) string {
	return finalPrefix + Escape(text) + "\n" + Escape(translated)
}

func InfoLine(msg string) string {
	return infoPrefix + Escape(msg)
}
