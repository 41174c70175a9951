// Package ring implements the fixed-capacity single-producer
// single-consumer audio ring buffer at the core of the playback engine,
// and a blocking wrapper over it. Indices count samples, not frames or
// bytes; a frame is channels interleaved samples.
package ring

import (
	"sync/atomic"
)

// Ring is the lock-free SPSC core (spec component C2). Write must only be
// called by the producer thread; Read/Peek/SetTimeInBounds only by the
// consumer thread. head and tail count samples; they advance by channels
// per frame. One sample's worth of gap per channel-frame is reserved so
// head==tail is unambiguously "empty" and the buffer can never report
// itself full in a way indistinguishable from empty.
type Ring struct {
	buffer   []float32
	channels int
	capacity uint64 // frames
	size     uint64 // samples = capacity*channels; indices wrap modulo size

	sampleRate int
	startTime  float64
	framesRead uint64

	head atomic.Uint64 // read index, in samples
	tail atomic.Uint64 // write index, in samples
}

// New creates a ring buffer with room for capacity frames of the given
// channel count, sampled at sampleRate Hz, whose first frame corresponds
// to media time startTime. capacity is rounded up to the next power of 2
// (in frames).
func New(capacity uint64, channels, sampleRate int, startTime float64) *Ring {
	capacity = nextPowerOf2(capacity)
	size := capacity * uint64(channels)

	return &Ring{
		buffer:     make([]float32, size),
		channels:   channels,
		capacity:   capacity,
		size:       size,
		sampleRate: sampleRate,
		startTime:  startTime,
	}
}

// Channels returns the fixed channel count. Lock-free: immutable after
// construction.
func (r *Ring) Channels() int { return r.channels }

// SampleRate returns the fixed sample rate. Lock-free: immutable after
// construction.
func (r *Ring) SampleRate() int { return r.sampleRate }

// CapacityFrames returns the total frame capacity.
func (r *Ring) CapacityFrames() uint64 { return r.capacity }

// ReadableFrames returns the number of frames available to read.
func (r *Ring) ReadableFrames() uint64 {
	tail := r.tail.Load()
	head := r.head.Load()
	return (tail - head) / uint64(r.channels)
}

// WritableFrames returns the number of frames available to write, honoring
// the one-frame reserved gap.
func (r *Ring) WritableFrames() uint64 {
	return r.capacity - r.ReadableFrames() - 1
}

// ReadInto copies n frames starting at head into out (which must hold at
// least n*channels samples), advances head, and increments frames_read.
// Precondition: n <= ReadableFrames().
func (r *Ring) ReadInto(n uint64, out []float32) {
	if n == 0 {
		return
	}
	head := r.head.Load()
	r.copyOut(head, n, out)
	r.head.Store(head + n*uint64(r.channels))
	r.framesRead += n
}

// PeekInto copies n frames starting at head into out without advancing
// head or frames_read. Two consecutive peeks return identical data.
func (r *Ring) PeekInto(n uint64, out []float32) {
	if n == 0 {
		return
	}
	r.copyOut(r.head.Load(), n, out)
}

func (r *Ring) copyOut(head, n uint64, out []float32) {
	count := n * uint64(r.channels)
	start := head % r.size
	end := (head + count) % r.size

	if end > start || count == 0 {
		copy(out[:count], r.buffer[start:start+count])
		return
	}
	first := r.size - start
	copy(out[:first], r.buffer[start:])
	copy(out[first:count], r.buffer[:end])
}

// WriteInto copies n frames from in (which must hold at least
// n*channels samples) at tail, and advances tail. Precondition:
// n <= WritableFrames().
func (r *Ring) WriteInto(n uint64, in []float32) {
	if n == 0 {
		return
	}
	tail := r.tail.Load()
	count := n * uint64(r.channels)
	start := tail % r.size
	end := (tail + count) % r.size

	if end > start || count == 0 {
		copy(r.buffer[start:start+count], in[:count])
	} else {
		first := r.size - start
		copy(r.buffer[start:], in[:first])
		copy(r.buffer[:end], in[first:count])
	}

	r.tail.Store(tail + count)
}

// Clear resets the buffer to empty and rebases its time origin to
// newStart. Not safe to call concurrently with ReadInto/WriteInto; callers
// needing that synchronization should use Blocking.Clear instead.
func (r *Ring) Clear(newStart float64) {
	r.head.Store(0)
	r.tail.Store(0)
	r.framesRead = 0
	r.startTime = newStart
}

// CurrentTime is the media time of the frame currently at head.
func (r *Ring) CurrentTime() float64 {
	return r.startTime + float64(r.framesRead)/float64(r.sampleRate)
}

// EndTime is the media time one past the last readable frame.
func (r *Ring) EndTime() float64 {
	return r.CurrentTime() + float64(r.ReadableFrames())/float64(r.sampleRate)
}

// IsTimeInBounds reports whether t falls within [CurrentTime, EndTime].
func (r *Ring) IsTimeInBounds(t float64) bool {
	return t >= r.CurrentTime() && t <= r.EndTime()
}

// SetTimeInBounds advances head to the frame corresponding to media time t.
// Precondition: the caller has already verified IsTimeInBounds(t).
func (r *Ring) SetTimeInBounds(t float64) {
	deltaFrames := uint64((t - r.CurrentTime()) * float64(r.sampleRate))
	if deltaFrames == 0 {
		return
	}
	head := r.head.Load()
	r.head.Store(head + deltaFrames*uint64(r.channels))
	r.framesRead += deltaFrames
}

func nextPowerOf2(n uint64) uint64 {
	if n == 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	n++
	return n
}
