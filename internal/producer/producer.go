// Package producer holds the session's event sources: transcript,
// translation, question capture, and engagement analytics. Each producer
// is a periodic task on the shared scheduler; the data behind it comes
// from an injectable source so the simulated feeds shipped here can be
// swapped for real capture or inference without touching the event
// contract.
package producer

import (
	"sync"
	"sync/atomic"

	"github.com/itzperi/omnimeet/internal/clock"
)

// runner is the start/stop bookkeeping shared by all producers. The
// active flag doubles as the cancellation token: emit paths check it
// immediately before mutating the store, so a stopped producer can never
// land a late event.
type runner struct {
	mu     sync.Mutex
	cancel clock.CancelFunc
	active atomic.Bool
}

// begin schedules the producer's task if it is not already running.
func (r *runner) begin(schedule func() clock.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active.Load() {
		return
	}
	r.active.Store(true)
	r.cancel = schedule()
}

// end cancels the scheduled task. Safe to call repeatedly.
func (r *runner) end() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active.Store(false)
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func (r *runner) running() bool {
	return r.active.Load()
}
