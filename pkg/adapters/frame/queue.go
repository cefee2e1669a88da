// Package frame provides the "next frame" primitive used by the dialog controller.
package frame

import "sync"

// Queue implements ports.FrameScheduler.
// Callbacks requested before a Flush run during that Flush, in request order.
// Callbacks requested while a Flush is running wait for the next one.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	frames  uint64
}

// NewQueue creates an empty frame queue.
func NewQueue() *Queue {
	return &Queue{}
}

// RequestFrame schedules fn for the next frame. It never runs fn itself.
func (q *Queue) RequestFrame(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, fn)
}

// Flush runs one frame and returns how many callbacks it ran.
func (q *Queue) Flush() int {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.frames++
	q.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

// Pending returns the number of callbacks waiting for the next frame.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Frames returns how many frames have been flushed.
func (q *Queue) Frames() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.frames
}
