package clock

import (
	"sort"
	"sync"
	"time"
)

// Manual is a virtual-time Scheduler. Time only moves when Advance is
// called, and due tasks fire on the calling goroutine in timestamp order,
// so callbacks never interleave.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks map[int]*manualTask
}

type manualTask struct {
	id       int
	at       time.Duration
	interval time.Duration // zero for one-shot tasks
	fn       func()
}

func NewManual() *Manual {
	return &Manual{tasks: make(map[int]*manualTask)}
}

func (m *Manual) Every(interval time.Duration, fn func()) CancelFunc {
	return m.schedule(interval, interval, fn)
}

func (m *Manual) After(delay time.Duration, fn func()) CancelFunc {
	return m.schedule(delay, 0, fn)
}

// Now reports how much virtual time has elapsed.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves virtual time forward by d, firing every task that comes
// due along the way. A repeating task fires once per elapsed interval.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		task := m.popDue(target)
		if task == nil {
			break
		}
		task.fn()
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()
}

func (m *Manual) schedule(delay, interval time.Duration, fn func()) CancelFunc {
	m.mu.Lock()
	m.seq++
	id := m.seq
	m.tasks[id] = &manualTask{id: id, at: m.now + delay, interval: interval, fn: fn}
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.tasks, id)
		m.mu.Unlock()
	}
}

// popDue removes and returns the earliest task due at or before target,
// rescheduling it first if it repeats. The callback runs outside the lock
// so it can schedule or cancel other tasks.
func (m *Manual) popDue(target time.Duration) *manualTask {
	m.mu.Lock()
	defer m.mu.Unlock()

	due := make([]*manualTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		if t.at <= target {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}

	sort.Slice(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].id < due[j].id
	})

	next := due[0]
	if next.at > m.now {
		m.now = next.at
	}
	if next.interval > 0 {
		m.tasks[next.id] = &manualTask{id: next.id, at: next.at + next.interval, interval: next.interval, fn: next.fn}
	} else {
		delete(m.tasks, next.id)
	}
	return next
}
