package hub

import (
	"context"
	"errors"
	"time"
)

// ErrNoTimeout rejects wait calls issued without a positive timeout.
// Unbounded waits are disallowed by contract: an abandoned subscription
// with no deadline would leak for the process lifetime.
var ErrNoTimeout = errors.New("hub: wait requires a positive timeout")

// WaitResult is the outcome of a Wait call. Exactly one of Event or
// TimedOut is set; a timeout is a valid "no news yet" outcome, not an
// error, so callers can simply re-issue the wait.
type WaitResult struct {
	Event    *Event `json:"event,omitempty"`
	TimedOut bool   `json:"timed_out,omitempty"`
}

// Wait blocks the caller until an event matching pred is published, the
// timeout elapses, or ctx is cancelled — whichever happens first. The
// subscription is removed on every path; cancellation returns ctx's
// error with no event delivered and no leak.
//
// Exactly one of {matched event, timeout, cancellation} wins. When a
// publish races a timer expiry, the published event wins: it was
// delivered before the subscription could be torn down, and dropping it
// would violate exactly-once resolution.
func (b *Bus) Wait(ctx context.Context, pred Predicate, timeout time.Duration) (WaitResult, error) {
	if timeout <= 0 {
		return WaitResult{}, ErrNoTimeout
	}

	id, ch := b.subscribe(pred)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case e := <-ch:
		return WaitResult{Event: &e}, nil
	case <-timer.C:
		if b.unsubscribe(id) {
			e := <-ch
			return WaitResult{Event: &e}, nil
		}
		return WaitResult{TimedOut: true}, nil
	case <-ctx.Done():
		if b.unsubscribe(id) {
			e := <-ch
			return WaitResult{Event: &e}, nil
		}
		return WaitResult{}, ctx.Err()
	}
}

// MatchAll returns a predicate matching every event. Useful as the base
// for "anything new in this session" waits.
func MatchAll(Event) bool { return true }

// MatchSession returns a predicate matching events for one session,
// optionally narrowed to a set of event types. An empty type set
// matches all types.
func MatchSession(sessionID string, types ...EventType) Predicate {
	return func(e Event) bool {
		if sessionID != "" && e.SessionID != sessionID {
			return false
		}
		return matchType(e.Type, types)
	}
}

// MatchTask returns a predicate matching events for one task,
// optionally narrowed to a set of event types.
func MatchTask(taskID string, types ...EventType) Predicate {
	return func(e Event) bool {
		if taskID != "" && e.TaskID != taskID {
			return false
		}
		return matchType(e.Type, types)
	}
}

func matchType(t EventType, types []EventType) bool {
	if len(types) == 0 {
		return true
	}
	for _, want := range types {
		if t == want {
			return true
		}
	}
	return false
}
