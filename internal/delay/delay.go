// Package delay provides the blocking wait used between signal changes.
package delay

import (
	"fmt"
	"sync"
	"time"
)

// Delayer blocks the calling goroutine for ms milliseconds. It cannot fail.
type Delayer interface {
	DelayMs(ms uint32)
}

// Busy spins until the deadline passes without yielding to a timer.
type Busy struct {
	// Now defaults to time.Now, which carries a monotonic reading.
	Now func() time.Time
}

func (b Busy) DelayMs(ms uint32) {
	now := b.Now
	if now == nil {
		now = time.Now
	}
	deadline := now().Add(time.Duration(ms) * time.Millisecond)
	for now().Before(deadline) {
	}
}

// Sleep hands the wait to the Go scheduler.
type Sleep struct{}

func (Sleep) DelayMs(ms uint32) { time.Sleep(time.Duration(ms) * time.Millisecond) }

// Recorder returns immediately and keeps every requested wait.
type Recorder struct {
	mu    sync.Mutex
	calls []uint32
}

func (r *Recorder) DelayMs(ms uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, ms)
}

// Calls returns a copy of the recorded waits, oldest first.
func (r *Recorder) Calls() []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint32(nil), r.calls...)
}

// Total is the sum of all recorded waits.
func (r *Recorder) Total() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	var d time.Duration
	for _, ms := range r.calls {
		d += time.Duration(ms) * time.Millisecond
	}
	return d
}

// Reset forgets all recorded waits.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}

// New returns the named delay service: "busy" or "sleep".
func New(kind string) (Delayer, error) {
	switch kind {
	case "busy":
		return Busy{}, nil
	case "sleep", "":
		return Sleep{}, nil
	default:
		return nil, fmt.Errorf("delay: unknown kind %q", kind)
	}
}
