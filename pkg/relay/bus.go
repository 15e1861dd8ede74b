package relay

import (
	"sync"

	"github.com/sirupsen/logrus"
)

type HandlerFunc func(Event)

// Subscription is the handle returned by Subscribe. Unsubscribe may be called any
// number of times; only the first call has an effect.
type Subscription struct {
	bus   *Bus
	topic Topic
	fn    HandlerFunc
	once  sync.Once
}

func (s *Subscription) Topic() Topic {
	return s.topic
}

func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.remove(s)
	})
}

type BusStats struct {
	Topics        int `json:"topics"`
	Subscriptions int `json:"subscriptions"`
}

// Bus is an in-memory keyed event multiplexer. Publish delivers synchronously, in
// subscription order, to every handler registered on the topic at the time of the call.
type Bus struct {
	mu     sync.RWMutex
	topics map[Topic][]*Subscription
	subs   int
	logger *logrus.Entry
}

func NewBus(logger *logrus.Logger) *Bus {
	return &Bus{
		topics: make(map[Topic][]*Subscription),
		logger: logger.WithField("service", "relay-bus"),
	}
}

func (b *Bus) Subscribe(topic Topic, fn HandlerFunc) *Subscription {
	sub := &Subscription{bus: b, topic: topic, fn: fn}

	b.mu.Lock()
	b.topics[topic] = append(b.topics[topic], sub)
	b.subs++
	b.mu.Unlock()

	return sub
}

// Unsubscribe releases sub. It is the same as sub.Unsubscribe().
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	sub.Unsubscribe()
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.topics[sub.topic]
	for i, s := range list {
		if s != sub {
			continue
		}
		if len(list) == 1 {
			delete(b.topics, sub.topic)
		} else {
			// copy so that snapshots held by publishers stay intact
			n := make([]*Subscription, 0, len(list)-1)
			n = append(n, list[:i]...)
			b.topics[sub.topic] = append(n, list[i+1:]...)
		}
		b.subs--
		return
	}
}

func (b *Bus) HasSubscribers(topic Topic) bool {
	return b.SubscriberCount(topic) > 0
}

func (b *Bus) SubscriberCount(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// Publish delivers ev to the current subscribers of topic and returns how many
// handlers completed. Publishing on a topic without subscribers is a no-op.
func (b *Bus) Publish(topic Topic, ev Event) int {
	b.mu.RLock()
	list := b.topics[topic]
	b.mu.RUnlock()

	delivered := 0
	for _, sub := range list {
		if b.deliver(sub, ev) {
			delivered++
		}
	}
	return delivered
}

// deliver isolates a panicking handler from the rest of the fan-out.
func (b *Bus) deliver(sub *Subscription, ev Event) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.WithField("topic", sub.topic.String()).Errorf("subscriber panicked: %v", r)
			ok = false
		}
	}()
	sub.fn(ev)
	return true
}

func (b *Bus) Stats() BusStats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return BusStats{
		Topics:        len(b.topics),
		Subscriptions: b.subs,
	}
}
