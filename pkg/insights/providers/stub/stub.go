// Package stub provides a deterministic translator for development and tests.
package stub

import (
	"context"
	"sync/atomic"
)

type Translator struct {
	calls atomic.Int64
}

func New() *Translator {
	return &Translator{}
}

// Translate returns text prefixed with the target language, e.g. "[ja] Hello".
func (t *Translator) Translate(ctx context.Context, text, _, targetLang string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	t.calls.Add(1)
	return "[" + targetLang + "] " + text, nil
}

// Calls reports how many translations were performed.
func (t *Translator) Calls() int64 {
	return t.calls.Load()
}
