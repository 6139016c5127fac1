package preview

import (
	"context"
	"sync"
)

// Signal is the broadcast primitive behind live reload. It carries a
// monotonically increasing generation counter and a shutdown flag; waiters
// park on it and are all woken whenever either changes.
//
// There is no queue. A waiter that sleeps through several notifications
// observes only the latest generation, which is exactly what "reload the
// page" needs.
type Signal struct {
	mu     sync.Mutex
	cond   *sync.Cond
	gen    uint64
	closed bool
}

// NewSignal creates a Signal at generation zero.
func NewSignal() *Signal {
	s := &Signal{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Notify advances the generation and wakes every waiter.
// It never blocks and is safe to call with no waiters.
func (s *Signal) Notify() {
	s.mu.Lock()
	s.gen++
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Close marks the signal shut down and wakes every waiter. Subsequent
// Wait calls return immediately with ok=false. Close is idempotent.
func (s *Signal) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Generation returns the current generation. New subscribers use it to
// initialize their last-seen value.
func (s *Signal) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Closed reports whether Close has been called.
func (s *Signal) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// wake broadcasts without changing any state. Waiters re-evaluate their
// condition and go back to sleep if nothing happened; it exists so context
// cancellation can unpark a waiter.
func (s *Signal) wake() {
	s.cond.Broadcast()
}

// Wait blocks until the generation differs from last, the signal is closed,
// or ctx is done. The generation check and the wait happen under the same
// lock used by Notify, so a notification between check and sleep cannot be
// missed.
//
// It returns the new generation and ok=true on a generation change, or
// ok=false when the caller should stop (shutdown or cancelled context).
func (s *Signal) Wait(ctx context.Context, last uint64) (uint64, bool) {
	// Unpark the cond wait when the subscriber goes away. The wakeup is
	// spurious for every other waiter; they re-check and sleep again.
	stop := context.AfterFunc(ctx, s.wake)
	defer stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	for s.gen == last && !s.closed && ctx.Err() == nil {
		s.cond.Wait()
	}
	if s.closed || ctx.Err() != nil {
		return 0, false
	}
	return s.gen, true
}
