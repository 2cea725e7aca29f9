package hub

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Predicate is a pure, fast matching test evaluated during Publish.
// It must not block or call back into the bus.
type Predicate func(Event) bool

// Publisher is the narrow interface producers depend on.
type Publisher interface {
	Publish(Event)
}

// subscription is one blocked waiter. The channel has capacity 1 and
// receives at most one event; resolved guards against double delivery.
type subscription struct {
	pred     Predicate
	ch       chan Event
	resolved bool
}

// Bus fans published events out to matching subscriptions. The
// subscriber set is the bus's only mutable state and is guarded by one
// mutex, which is also what makes the no-lost-event guarantee hold: a
// subscription registered under the lock observes every event published
// after it, and every event published before it has already finished
// its fan-out.
type Bus struct {
	mu     sync.Mutex
	subs   map[int]*subscription
	nextID int
	log    *zap.Logger
}

// New creates an empty bus. A nil logger is replaced with a no-op one.
func New(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{subs: make(map[int]*subscription), log: log}
}

// Publish delivers the event to every registered subscription whose
// predicate matches, then returns. It never blocks on subscriber
// processing: each subscription's channel holds exactly one event and
// receives at most one.
func (b *Bus) Publish(e Event) {
	if e.Timestamp == "" {
		e.Timestamp = timeNow().UTC().Format(time.RFC3339)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	matched := 0
	for id, sub := range b.subs {
		if sub.resolved || !sub.pred(e) {
			continue
		}
		sub.resolved = true
		sub.ch <- e
		delete(b.subs, id)
		matched++
	}

	b.log.Debug("event published",
		zap.String("type", string(e.Type)),
		zap.String("session_id", e.SessionID),
		zap.String("task_id", e.TaskID),
		zap.Int("waiters_resolved", matched),
	)
}

// subscribe registers a waiter and returns its id and delivery channel.
func (b *Bus) subscribe(pred Predicate) (int, chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	sub := &subscription{pred: pred, ch: make(chan Event, 1)}
	b.subs[id] = sub
	return id, sub.ch
}

// unsubscribe removes a subscription and reports whether an event had
// already been delivered to it. When it returns true the event is
// sitting in the subscription's channel and the caller must drain it.
func (b *Bus) unsubscribe(id int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subs[id]
	if !ok {
		// Already resolved and removed by Publish.
		return true
	}
	delete(b.subs, id)
	return sub.resolved
}

// Waiting returns the number of currently blocked subscriptions.
// Used by tests and observability, never by core logic.
func (b *Bus) Waiting() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
