// Package bus is the in-process change notification channel. Any surface
// (bot handlers, caches, future views) can subscribe to a topic and react
// when a user's data changes, replacing ambient global events with
// defined ordering and unsubscribe semantics.
package bus

import "sync"

type Topic string

const (
	TransactionsChanged Topic = "transactions-changed"
	BudgetChanged       Topic = "budget-changed"
	SettingsChanged     Topic = "settings-changed"
)

// Event carries the affected user. Subscribers re-read that user's data
// themselves; events are notifications, not payloads.
type Event struct {
	Topic   Topic
	OwnerID string
}

type Handler func(Event)

type subscriber struct {
	id int64
	fn Handler
}

type Bus struct {
	mu     sync.Mutex
	nextID int64
	subs   map[Topic][]subscriber

	// dispatchMu serializes publishes so handlers observe events for a
	// given owner in publish order.
	dispatchMu sync.Mutex
}

func New() *Bus {
	return &Bus{subs: make(map[Topic][]subscriber)}
}

// Subscribe registers fn for a topic. Only events published after
// registration are delivered; there is no replay.
func (b *Bus) Subscribe(topic Topic, fn Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subs[topic] = append(b.subs[topic], subscriber{id: b.nextID, fn: fn})
	return &Subscription{bus: b, topic: topic, id: b.nextID}
}

// Publish delivers the event synchronously to subscribers in
// registration order.
func (b *Bus) Publish(topic Topic, ownerID string) {
	b.dispatchMu.Lock()
	defer b.dispatchMu.Unlock()

	b.mu.Lock()
	subs := make([]subscriber, len(b.subs[topic]))
	copy(subs, b.subs[topic])
	b.mu.Unlock()

	ev := Event{Topic: topic, OwnerID: ownerID}
	for _, s := range subs {
		s.fn(ev)
	}
}

type Subscription struct {
	bus   *Bus
	topic Topic
	id    int64
	once  sync.Once
}

// Unsubscribe removes the handler. Views must call it on teardown so the
// bus does not leak callbacks.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		defer s.bus.mu.Unlock()

		subs := s.bus.subs[s.topic]
		for i, sub := range subs {
			if sub.id == s.id {
				s.bus.subs[s.topic] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	})
}
