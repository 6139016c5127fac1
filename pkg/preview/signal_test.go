package preview

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestSignal_NotifyWakesWaiter(t *testing.T) {
	sig := NewSignal()
	last := sig.Generation()

	done := make(chan uint64, 1)
	go func() {
		gen, ok := sig.Wait(context.Background(), last)
		if !ok {
			done <- 0
			return
		}
		done <- gen
	}()

	// Give the waiter time to park before notifying.
	time.Sleep(50 * time.Millisecond)
	sig.Notify()

	select {
	case gen := <-done:
		if gen != last+1 {
			t.Errorf("Wait returned generation %d, want %d", gen, last+1)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for wake")
	}
}

func TestSignal_NotifyWithoutWaiters(t *testing.T) {
	sig := NewSignal()

	// Must return immediately regardless of subscriber count.
	for i := 0; i < 3; i++ {
		sig.Notify()
	}

	if got := sig.Generation(); got != 3 {
		t.Errorf("Generation = %d, want 3", got)
	}
}

func TestSignal_CoalescesNotifications(t *testing.T) {
	sig := NewSignal()
	last := sig.Generation()

	sig.Notify()
	sig.Notify()
	sig.Notify()

	// A late waiter sees only the final generation.
	gen, ok := sig.Wait(context.Background(), last)
	if !ok {
		t.Fatal("Wait returned ok=false")
	}
	if gen != 3 {
		t.Errorf("Wait returned generation %d, want 3", gen)
	}

	// Nothing further is pending: a bounded wait times out.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, ok := sig.Wait(ctx, gen); ok {
		t.Error("Wait reported a change after draining all notifications")
	}
}

func TestSignal_CloseWakesAllWaiters(t *testing.T) {
	sig := NewSignal()
	last := sig.Generation()

	const waiters = 5
	var wg sync.WaitGroup
	results := make(chan bool, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := sig.Wait(context.Background(), last)
			results <- ok
		}()
	}

	time.Sleep(50 * time.Millisecond)
	sig.Close()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for waiters to exit after Close")
	}

	for i := 0; i < waiters; i++ {
		if ok := <-results; ok {
			t.Error("Wait returned ok=true after Close")
		}
	}
}

func TestSignal_CloseIsIdempotent(t *testing.T) {
	sig := NewSignal()
	sig.Close()
	sig.Close()

	if !sig.Closed() {
		t.Error("Closed() = false after Close")
	}
}

func TestSignal_WaitReturnsOnContextCancel(t *testing.T) {
	sig := NewSignal()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan bool, 1)
	go func() {
		_, ok := sig.Wait(ctx, sig.Generation())
		done <- ok
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case ok := <-done:
		if ok {
			t.Error("Wait returned ok=true after context cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for Wait to observe cancellation")
	}
}

func TestSignal_GenerationIsMonotonic(t *testing.T) {
	sig := NewSignal()

	prev := sig.Generation()
	for i := 0; i < 100; i++ {
		sig.Notify()
		cur := sig.Generation()
		if cur <= prev {
			t.Fatalf("generation went from %d to %d", prev, cur)
		}
		prev = cur
	}
}
