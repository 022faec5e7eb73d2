package txsender

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/semaphore"
)

// ErrLimiterClosed is returned by VmConcurrencyLimiter.Acquire once the
// limiter has been closed, e.g. during process shutdown.
var ErrLimiterClosed = errors.New("vm concurrency limiter is closed")

// VmConcurrencyLimiter is a bounded permit pool guarding concurrent access
// to the sandbox. Acquisition yields a VmPermit whose Release returns the
// slot; submit_tx holds one permit across its dry-run and validation
// steps, estimate_fee holds one for the entire binary search, and eth_call
// holds one for its single sandbox call — so iteration cost inside the
// estimator is bounded by one permit, not one per probe.
//
// Built on golang.org/x/sync/semaphore rather than a hand-rolled buffered
// channel: this is the one place in the domain where a weighted,
// context-cancelable Acquire is the natural fit, since cancellation at an
// acquisition suspension point must not leak a slot.
type VmConcurrencyLimiter struct {
	sem *semaphore.Weighted

	mu     sync.Mutex
	closed bool
}

// NewVmConcurrencyLimiter builds a limiter with the given number of
// sandbox slots.
func NewVmConcurrencyLimiter(capacity int64) *VmConcurrencyLimiter {
	return &VmConcurrencyLimiter{sem: semaphore.NewWeighted(capacity)}
}

// VmPermit is a scoped acquisition; Release must be called exactly once,
// typically via defer, on every exit path including cancellation.
type VmPermit struct {
	sem *semaphore.Weighted
}

// Release returns the slot to the pool. Safe to call on a zero-value
// VmPermit (e.g. if Acquire never succeeded) as a no-op.
func (p VmPermit) Release() {
	if p.sem != nil {
		p.sem.Release(1)
	}
}

// Acquire blocks until a slot is available, ctx is canceled, or the
// limiter has been closed. A closed limiter always returns
// ErrLimiterClosed immediately, even if slots are nominally free.
func (l *VmConcurrencyLimiter) Acquire(ctx context.Context) (VmPermit, error) {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return VmPermit{}, ErrLimiterClosed
	}

	if err := l.sem.Acquire(ctx, 1); err != nil {
		return VmPermit{}, err
	}

	// Re-check after acquiring: Close may have raced us to the slot.
	l.mu.Lock()
	closed = l.closed
	l.mu.Unlock()
	if closed {
		l.sem.Release(1)
		return VmPermit{}, ErrLimiterClosed
	}

	return VmPermit{sem: l.sem}, nil
}

// Close marks the limiter closed; subsequent Acquire calls fail fast with
// ErrLimiterClosed instead of blocking on a sandbox that is going away.
func (l *VmConcurrencyLimiter) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
}
