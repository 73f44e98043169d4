package loop

import (
	"sort"
	"time"
)

// Manual is a deterministic Scheduler driven by explicit Advance calls.
// Callbacks run synchronously inside Advance, in deadline order, with Now()
// reporting each callback's deadline while it runs.
type Manual struct {
	now    time.Duration
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	m        *Manual
	deadline time.Duration
	seq      uint64
	f        func()
	done     bool
}

// NewManual returns a Manual scheduler at time zero.
func NewManual() *Manual {
	return &Manual{}
}

// Now returns the current virtual time.
func (m *Manual) Now() time.Duration {
	return m.now
}

// AfterFunc schedules f at Now()+d.
func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{m: m, deadline: m.now + d, seq: m.seq, f: f}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves virtual time forward by d, firing every callback that falls due.
func (m *Manual) Advance(d time.Duration) {
	m.AdvanceTo(m.now + d)
}

// AdvanceTo moves virtual time to t, firing every callback due at or before t.
func (m *Manual) AdvanceTo(t time.Duration) {
	for {
		next := m.next()
		if next == nil || next.deadline > t {
			break
		}
		m.remove(next)
		next.done = true
		if next.deadline > m.now {
			m.now = next.deadline
		}
		next.f()
	}
	if t > m.now {
		m.now = t
	}
}

// Pending returns the number of scheduled callbacks that have not run.
func (m *Manual) Pending() int {
	return len(m.timers)
}

func (m *Manual) next() *manualTimer {
	if len(m.timers) == 0 {
		return nil
	}
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].deadline == m.timers[j].deadline {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].deadline < m.timers[j].deadline
	})
	return m.timers[0]
}

func (m *Manual) remove(t *manualTimer) {
	for i, x := range m.timers {
		if x == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}

func (t *manualTimer) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	t.m.remove(t)
	return true
}
