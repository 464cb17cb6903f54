package clock

import (
	"sync"
	"time"
)

// CancelFunc stops a scheduled task. Calling it more than once is safe.
type CancelFunc func()

// Scheduler is the timing facility all periodic work runs on. Production
// code uses Wall; tests drive a Manual scheduler so the duration clock and
// the mock producers are deterministic.
type Scheduler interface {
	// Every runs fn once per interval until cancelled.
	Every(interval time.Duration, fn func()) CancelFunc
	// After runs fn once after delay unless cancelled first.
	After(delay time.Duration, fn func()) CancelFunc
}

// Wall schedules on real time using the runtime's timers.
type Wall struct{}

func (Wall) Every(interval time.Duration, fn func()) CancelFunc {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()

	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

func (Wall) After(delay time.Duration, fn func()) CancelFunc {
	timer := time.AfterFunc(delay, fn)
	return func() { timer.Stop() }
}
