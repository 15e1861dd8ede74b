package config

const (
	InvalidUserId          = "userid query parameter missing, undefined or invalid."
	InvalidPathname        = "Invalid pathname."
	InvalidLangFrom        = "langfrom query parameter missing or invalid."
	InvalidLangTo          = "langto query parameter missing or undefined."
	SameLanguagePair       = "langfrom and langto are the same."
	InvalidRequest         = "Invalid request."
	InvalidPacketType      = "Invalid packet type."
	InvalidLanguage        = "Invalid language."
	RateLimitReached       = "Rate limit reached."
	TranslationFailed      = "Translation failed."
	ServerShuttingDown     = "Server shutting down."
	TranslationUnavailable = "Translation unavailable."

	SpeechConnected      = "Speech recognition connected."
	SpeechDisconnected   = "Speech recognition disconnected."
	ListenerConnected    = "Listener connected."
	ListenerDisconnected = "Listener disconnected."
)
