package clock

import (
	"sync"
	"time"
)

// Manual is a controllable Source. Time only moves when Advance is called,
// and due callbacks fire in deadline order on the goroutine calling Advance.
// Callbacks with equal deadlines fire in registration order.
type Manual struct {
	mu    sync.Mutex
	now   time.Time
	tasks []*manualTask
	seq   uint64
}

type manualTask struct {
	seq      uint64
	interval time.Duration
	next     time.Time
	fn       func()
	canceled bool
}

// NewManual creates a Manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the current manual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Every registers fn to run every interval of manual time.
func (m *Manual) Every(interval time.Duration, fn func()) CancelFunc {
	if interval <= 0 {
		interval = time.Nanosecond
	}
	m.mu.Lock()
	m.seq++
	task := &manualTask{
		seq:      m.seq,
		interval: interval,
		next:     m.now.Add(interval),
		fn:       fn,
	}
	m.tasks = append(m.tasks, task)
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		task.canceled = true
		m.compact()
	}
}

// Advance moves time forward by d, firing every callback that comes due on
// the way. Callbacks may register or cancel other callbacks.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	deadline := m.now.Add(d)
	for {
		task := m.nextDue(deadline)
		if task == nil {
			break
		}
		m.now = task.next
		task.next = task.next.Add(task.interval)
		fn := task.fn
		m.mu.Unlock()
		fn()
		m.mu.Lock()
	}
	if m.now.Before(deadline) {
		m.now = deadline
	}
	m.mu.Unlock()
}

// Pending returns the number of live recurring callbacks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// nextDue returns the earliest live task due at or before deadline. Caller holds mu.
func (m *Manual) nextDue(deadline time.Time) *manualTask {
	var best *manualTask
	for _, t := range m.tasks {
		if t.canceled || t.next.After(deadline) {
			continue
		}
		if best == nil || t.next.Before(best.next) || (t.next.Equal(best.next) && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

// compact drops canceled tasks. Caller holds mu.
func (m *Manual) compact() {
	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.canceled {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(m.tasks); i++ {
		m.tasks[i] = nil
	}
	m.tasks = live
}
