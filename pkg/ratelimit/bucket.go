package ratelimit

import (
	"time"
)

type entry struct {
	at     time.Time
	amount int
}

// Bucket is a sliding-window volume counter. A single amount at or above the per
// message limit, or a window total at or above the window limit, trips the bucket.
// Once tripped it stays tripped even after the window ages out.
//
// A Bucket belongs to one connection and is not safe for concurrent use.
type Bucket struct {
	perMessageLimit int
	windowLimit     int
	window          time.Duration
	now             func() time.Time

	history []entry
	total   int
	tripped bool
}

type Option func(*Bucket)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Bucket) {
		b.now = now
	}
}

func NewBucket(perMessageLimit, windowLimit int, window time.Duration, opts ...Option) *Bucket {
	b := &Bucket{
		perMessageLimit: perMessageLimit,
		windowLimit:     windowLimit,
		window:          window,
		now:             time.Now,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Add records amount at the current time and evaluates both limits.
func (b *Bucket) Add(amount int) {
	now := b.now()
	b.history = append(b.history, entry{at: now, amount: amount})
	b.total += amount
	b.prune(now)

	if amount >= b.perMessageLimit || b.total >= b.windowLimit {
		b.tripped = true
	}
}

func (b *Bucket) HasTripped() bool {
	return b.tripped
}

// WindowTotal is the volume currently inside the window.
func (b *Bucket) WindowTotal() int {
	return b.total
}

// prune drops entries older than the window; history is ordered by time.
func (b *Bucket) prune(now time.Time) {
	i := 0
	for ; i < len(b.history); i++ {
		if now.Sub(b.history[i].at) <= b.window {
			break
		}
		b.total -= b.history[i].amount
	}
	if i > 0 {
		b.history = append(b.history[:0], b.history[i:]...)
	}
}
