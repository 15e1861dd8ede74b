package protocol

import "errors"

var (
	ErrInvalidLangFrom = errors.New("source language missing or unsupported")
	ErrInvalidLangTo   = errors.New("target language missing or unsupported")
	ErrSameLanguage    = errors.New("source and target language are the same")
)

// LanguagePair is the from/to pair used when translating final recognitions.
type LanguagePair struct {
	From string
	To   string
}

// LanguageSet is the set of supported language codes.
type LanguageSet map[string]struct{}

func NewLanguageSet(codes []string) LanguageSet {
	s := make(LanguageSet, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

func (s LanguageSet) Contains(code string) bool {
	if code == "" {
		return false
	}
	_, ok := s[code]
	return ok
}

// Validate checks that both sides are supported and that they differ.
func (s LanguageSet) Validate(p LanguagePair) error {
	if !s.Contains(p.From) {
		return ErrInvalidLangFrom
	}
	if !s.Contains(p.To) {
		return ErrInvalidLangTo
	}
	if p.From == p.To {
		return ErrSameLanguage
	}
	return nil
}
