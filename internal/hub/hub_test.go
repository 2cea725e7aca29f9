package hub

import (
	"context"
	"sync"
	"testing"
	"time"
)

// --- Publish / Wait resolution ---

func TestWait_ResolvesOnMatchingPublish(t *testing.T) {
	b := New(nil)

	done := make(chan WaitResult, 1)
	go func() {
		r, err := b.Wait(context.Background(), MatchSession("s-1", EventThoughtAdded), 2*time.Second)
		if err != nil {
			t.Errorf("Wait error: %v", err)
		}
		done <- r
	}()

	waitForWaiters(t, b, 1)

	b.Publish(Event{Type: EventThoughtAdded, SessionID: "s-1"})

	r := <-done
	if r.TimedOut || r.Event == nil {
		t.Fatalf("Wait result = %+v, want matched event", r)
	}
	if r.Event.Type != EventThoughtAdded || r.Event.SessionID != "s-1" {
		t.Errorf("resolved with wrong event: %+v", r.Event)
	}
	if r.Event.Timestamp == "" {
		t.Error("published event missing timestamp")
	}
}

func TestWait_TimesOutWithNoResidualSubscription(t *testing.T) {
	b := New(nil)

	r, err := b.Wait(context.Background(), MatchAll, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("Wait error: %v", err)
	}
	if !r.TimedOut || r.Event != nil {
		t.Fatalf("Wait result = %+v, want timeout", r)
	}
	if n := b.Waiting(); n != 0 {
		t.Errorf("residual subscriptions after timeout: %d", n)
	}
}

func TestWait_RejectsMissingTimeout(t *testing.T) {
	b := New(nil)
	if _, err := b.Wait(context.Background(), MatchAll, 0); err != ErrNoTimeout {
		t.Errorf("Wait(timeout=0) error = %v, want ErrNoTimeout", err)
	}
	if n := b.Waiting(); n != 0 {
		t.Errorf("rejected wait left a subscription: %d", n)
	}
}

func TestWait_CancellationCleansUp(t *testing.T) {
	b := New(nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := b.Wait(ctx, MatchAll, 5*time.Second)
		done <- err
	}()

	waitForWaiters(t, b, 1)
	cancel()

	if err := <-done; err != context.Canceled {
		t.Errorf("cancelled Wait error = %v, want context.Canceled", err)
	}
	if n := b.Waiting(); n != 0 {
		t.Errorf("residual subscriptions after cancellation: %d", n)
	}
}

func TestWait_NonMatchingEventDoesNotResolve(t *testing.T) {
	b := New(nil)

	done := make(chan WaitResult, 1)
	go func() {
		r, _ := b.Wait(context.Background(), MatchSession("s-1"), 60*time.Millisecond)
		done <- r
	}()

	waitForWaiters(t, b, 1)
	b.Publish(Event{Type: EventThoughtAdded, SessionID: "other-session"})

	r := <-done
	if !r.TimedOut {
		t.Errorf("waiter resolved by non-matching event: %+v", r.Event)
	}
}

func TestPublish_SingleEventResolvesMultipleWaiters(t *testing.T) {
	b := New(nil)
	const waiters = 5

	var wg sync.WaitGroup
	results := make(chan WaitResult, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, _ := b.Wait(context.Background(), MatchTask("task-9"), 2*time.Second)
			results <- r
		}()
	}

	waitForWaiters(t, b, waiters)
	b.Publish(Event{Type: EventTaskStatusChanged, TaskID: "task-9"})
	wg.Wait()
	close(results)

	resolved := 0
	for r := range results {
		if r.Event != nil {
			resolved++
		}
	}
	if resolved != waiters {
		t.Errorf("resolved %d of %d waiters", resolved, waiters)
	}
	if n := b.Waiting(); n != 0 {
		t.Errorf("residual subscriptions: %d", n)
	}
}

func TestPublish_EachWaiterResolvedExactlyOnce(t *testing.T) {
	b := New(nil)

	done := make(chan WaitResult, 1)
	go func() {
		r, _ := b.Wait(context.Background(), MatchAll, 2*time.Second)
		done <- r
	}()

	waitForWaiters(t, b, 1)
	b.Publish(Event{Type: EventThoughtAdded, SessionID: "s-1"})
	// A second publish must find no subscription left to resolve.
	b.Publish(Event{Type: EventThoughtAdded, SessionID: "s-1"})

	r := <-done
	if r.Event == nil {
		t.Fatal("waiter not resolved")
	}
	if n := b.Waiting(); n != 0 {
		t.Errorf("residual subscriptions: %d", n)
	}
}

func TestPublish_NoWaitersIsHarmless(t *testing.T) {
	b := New(nil)
	b.Publish(Event{Type: EventSessionCompleted, SessionID: "s-1"})
	if n := b.Waiting(); n != 0 {
		t.Errorf("Waiting = %d, want 0", n)
	}
}

// --- Predicates ---

func TestMatchSession_TypeFilter(t *testing.T) {
	pred := MatchSession("s-1", EventConflictDetected)

	if pred(Event{Type: EventThoughtAdded, SessionID: "s-1"}) {
		t.Error("matched wrong type")
	}
	if pred(Event{Type: EventConflictDetected, SessionID: "s-2"}) {
		t.Error("matched wrong session")
	}
	if !pred(Event{Type: EventConflictDetected, SessionID: "s-1"}) {
		t.Error("did not match intended event")
	}
}

func TestMatchSession_EmptyTypesMatchAllTypes(t *testing.T) {
	pred := MatchSession("s-1")
	for _, et := range []EventType{EventThoughtAdded, EventConflictDetected, EventTaskStatusChanged, EventTaskNoteAdded, EventSessionCompleted} {
		if !pred(Event{Type: et, SessionID: "s-1"}) {
			t.Errorf("type %s not matched", et)
		}
	}
}

// --- Helpers ---

// waitForWaiters polls until the bus reports n blocked subscriptions.
// Registration happens on another goroutine, so the test has to
// synchronize on the observable subscriber count.
func waitForWaiters(t *testing.T, b *Bus, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if b.Waiting() >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("never saw %d waiters (have %d)", n, b.Waiting())
}
