package relay

import "fmt"

// Kind is the kind of event carried on a topic.
type Kind uint8

const (
	KindPartial Kind = iota + 1
	KindFinal
	// KindListenerInfo carries status messages towards listeners.
	KindListenerInfo
	// KindSpeechInfo carries status messages towards the speech source.
	KindSpeechInfo
)

func (k Kind) String() string {
	switch k {
	case KindPartial:
		return "partial"
	case KindFinal:
		return "final"
	case KindListenerInfo:
		return "info-listener"
	case KindSpeechInfo:
		return "info-speech"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Topic identifies a channel on the bus. Two connections using the same user key
// share all of their topics.
type Topic struct {
	Kind    Kind
	UserKey string
}

func (t Topic) String() string {
	return t.Kind.String() + "/" + t.UserKey
}

func PartialTopic(userKey string) Topic {
	return Topic{Kind: KindPartial, UserKey: userKey}
}

func FinalTopic(userKey string) Topic {
	return Topic{Kind: KindFinal, UserKey: userKey}
}

func ListenerInfoTopic(userKey string) Topic {
	return Topic{Kind: KindListenerInfo, UserKey: userKey}
}

func SpeechInfoTopic(userKey string) Topic {
	return Topic{Kind: KindSpeechInfo, UserKey: userKey}
}

// Event is the payload delivered to subscribers. Partial and info events only use Text.
type Event struct {
	Text       string
	Translated string
}
