package ring

import (
	"sync"
	"time"
)

// Blocking wraps Ring (C2) with a mutex and a single condition variable
// that is broadcast on *any* state change — both "room available" and
// "data available" wake every waiter, which then re-checks its own
// predicate. This mirrors the single-mutex, single-notify-all-condvar
// shape the ring buffer design is pinned to: never split into separate
// read/write condvars, and never hold the lock across a blocking wait.
type Blocking struct {
	mu   sync.Mutex
	cond *sync.Cond
	r    *Ring
}

// NewBlocking wraps an existing Ring.
func NewBlocking(r *Ring) *Blocking {
	b := &Blocking{r: r}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Channels and SampleRate are immutable after construction, so they are
// exposed lock-free straight from the wrapped Ring.
func (b *Blocking) Channels() int     { return b.r.Channels() }
func (b *Blocking) SampleRate() int   { return b.r.SampleRate() }
func (b *Blocking) CapacityFrames() uint64 { return b.r.CapacityFrames() }

// ReadableFrames and WritableFrames take the lock so callers see a
// consistent snapshot alongside other guarded state.
func (b *Blocking) ReadableFrames() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.r.ReadableFrames()
}

func (b *Blocking) WritableFrames() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.r.WritableFrames()
}

// ReadInto blocks until n frames are readable, then reads them and
// notifies waiters (freed space may unblock a writer).
func (b *Blocking) ReadInto(n uint64, out []float32) {
	b.mu.Lock()
	for b.r.ReadableFrames() < n {
		b.cond.Wait()
	}
	b.r.ReadInto(n, out)
	b.cond.Broadcast()
	b.mu.Unlock()
}

// TryReadInto waits up to timeout for n frames to become readable. Returns
// false on timeout without reading anything.
func (b *Blocking) TryReadInto(n uint64, out []float32, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.r.ReadableFrames() < n {
		if !b.waitUntil(deadline) {
			return false
		}
	}
	b.r.ReadInto(n, out)
	b.cond.Broadcast()
	return true
}

// WriteInto blocks until n frames of space are writable, then writes and
// notifies waiters.
func (b *Blocking) WriteInto(n uint64, in []float32) {
	b.mu.Lock()
	for b.r.WritableFrames() < n {
		b.cond.Wait()
	}
	b.r.WriteInto(n, in)
	b.cond.Broadcast()
	b.mu.Unlock()
}

// TryWriteInto waits up to timeout for n frames of space. Returns false on
// timeout without writing anything.
func (b *Blocking) TryWriteInto(n uint64, in []float32, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.r.WritableFrames() < n {
		if !b.waitUntil(deadline) {
			return false
		}
	}
	b.r.WriteInto(n, in)
	b.cond.Broadcast()
	return true
}

// TrySetTimeInBounds waits up to timeout for t to fall within the buffer's
// readable range, then advances head to it. Returns false on timeout.
func (b *Blocking) TrySetTimeInBounds(t float64, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	b.mu.Lock()
	defer b.mu.Unlock()

	for !b.r.IsTimeInBounds(t) {
		if !b.waitUntil(deadline) {
			return false
		}
	}
	b.r.SetTimeInBounds(t)
	b.cond.Broadcast()
	return true
}

// PeekInto copies up to n frames starting at head into out without
// consuming them, clamped to however many frames are actually readable.
// Returns the number of frames copied.
func (b *Blocking) PeekInto(n uint64, out []float32) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	avail := b.r.ReadableFrames()
	if n > avail {
		n = avail
	}
	if n > 0 {
		b.r.PeekInto(n, out)
	}
	return n
}

// Clear resets the buffer under lock and wakes every waiter so blocked
// producers/consumers re-evaluate their predicate against the new state.
func (b *Blocking) Clear(newStart float64) {
	b.mu.Lock()
	b.r.Clear(newStart)
	b.cond.Broadcast()
	b.mu.Unlock()
}

func (b *Blocking) CurrentTime() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.r.CurrentTime()
}

func (b *Blocking) EndTime() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.r.EndTime()
}

// waitUntil blocks on the condvar until woken or deadline passes. Because
// sync.Cond has no native timed wait, a timer goroutine broadcasts the
// condvar once the deadline elapses, guaranteeing the caller's Wait() call
// returns to re-check its predicate. Must be called with b.mu held.
func (b *Blocking) waitUntil(deadline time.Time) bool {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return false
	}

	timer := time.AfterFunc(remaining, func() {
		b.mu.Lock()
		b.cond.Broadcast()
		b.mu.Unlock()
	})
	b.cond.Wait()
	timer.Stop()

	return time.Now().Before(deadline)
}
