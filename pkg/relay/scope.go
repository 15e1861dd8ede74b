package relay

import "sync"

// Scope collects the subscriptions owned by one connection so they can be released
// together when the connection ends.
type Scope struct {
	bus  *Bus
	mu   sync.Mutex
	subs []*Subscription
}

func NewScope(bus *Bus) *Scope {
	return &Scope{bus: bus}
}

func (s *Scope) Subscribe(topic Topic, fn HandlerFunc) *Subscription {
	sub := s.bus.Subscribe(topic, fn)
	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()
	return sub
}

// ReleaseAll unsubscribes everything acquired through the scope.
func (s *Scope) ReleaseAll() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
}

func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
