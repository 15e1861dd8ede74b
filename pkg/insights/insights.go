package insights

import (
	"context"
	"errors"
)

var ErrEmptyTranslation = errors.New("provider returned an empty translation")

// Translator translates a single block of text between two language codes.
// Implementations must honour ctx cancellation.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// TranslatorFunc adapts a plain function to the Translator interface.
type TranslatorFunc func(ctx context.Context, text, sourceLang, targetLang string) (string, error)

func (f TranslatorFunc) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	return f(ctx, text, sourceLang, targetLang)
}

var languageNames = map[string]string{
	"en": "English",
	"ja": "Japanese",
	"ko": "Korean",
	"ru": "Russian",
	"zh": "Chinese",
	"fr": "French",
	"de": "German",
	"es": "Spanish",
}

// LanguageName returns the English name of a language code, or the code itself.
func LanguageName(code string) string {
	if n, ok := languageNames[code]; ok {
		return n
	}
	return code
}

// TranslationPrompt is the system instruction used by the LLM based providers.
func TranslationPrompt(sourceLang, targetLang string) string {
	return "You are a live caption translator. Translate the user's text from " +
		LanguageName(sourceLang) + " to " + LanguageName(targetLang) +
		". Reply with the translated text only, keep line breaks, and never add explanations."
}
