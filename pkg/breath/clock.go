// Package breath implements the breathing-pace state machine.
//
// The Clock cycles Inhale → Hold → Exhale → Rest → Inhale on a one-shot timer and
// stamps the start of every phase so the renderer can derive progress from it. It is
// not safe for concurrent use: every method must run on the scheduler's loop.
package breath

import (
	"time"

	"github.com/teslashibe/go-lotus/internal/log"
	"github.com/teslashibe/go-lotus/pkg/debug"
	"github.com/teslashibe/go-lotus/pkg/loop"
)

// Status is a snapshot of the breathing cycle.
type Status struct {
	Phase      Phase         `json:"phase"`
	PhaseStart time.Duration `json:"phase_start"`
	Cycles     int           `json:"cycles"`
	Running    bool          `json:"running"`
	Mode       Mode          `json:"mode"`
}

// Instruction returns the prompt for the current phase.
func (s Status) Instruction() string {
	return s.Phase.Instruction()
}

// CycleText returns the completed-cycle label.
func (s Status) CycleText() string {
	return CycleText(s.Cycles)
}

// PhaseDuration returns how long the current phase lasts.
func (s Status) PhaseDuration() time.Duration {
	return s.Mode.PhaseDuration(s.Phase)
}

// PhaseDuration returns how long phase p lasts in this mode.
func (m Mode) PhaseDuration(p Phase) time.Duration {
	switch p {
	case Inhale:
		return m.Inhale
	case Hold:
		return m.Hold
	case Exhale:
		return m.Exhale
	case Rest:
		return RestDuration
	default:
		return IdleDuration
	}
}

// Clock is the breath-phase state machine.
type Clock struct {
	sched loop.Scheduler

	mode       Mode
	phase      Phase
	phaseStart time.Duration
	cycles     int
	running    bool

	// pending is the single outstanding phase-advance callback.
	pending loop.Timer

	observers []func(Status)
}

// NewClock creates an idle clock. mode must already be validated.
func NewClock(sched loop.Scheduler, mode Mode) *Clock {
	return &Clock{
		sched:      sched,
		mode:       mode,
		phase:      Idle,
		phaseStart: sched.Now(),
	}
}

// Subscribe registers fn to receive the status after every transition.
func (c *Clock) Subscribe(fn func(Status)) {
	c.observers = append(c.observers, fn)
}

// Start begins a new sequence at Inhale with the cycle count reset.
// It does nothing if the clock is already running.
func (c *Clock) Start() {
	if c.running {
		return
	}
	c.running = true
	c.cycles = 0
	log.Info("breathing started", "mode", c.mode.Name)
	c.enter(Inhale)
}

// Stop cancels the pending advance and returns to Idle.
// The completed cycle count is kept for display until the next Start.
func (c *Clock) Stop() {
	c.cancel()
	wasRunning := c.running
	c.running = false
	c.phase = Idle
	c.phaseStart = c.sched.Now()
	if wasRunning {
		log.Info("breathing stopped", "cycles", c.cycles)
	}
	c.notify()
}

// Toggle starts a stopped clock or stops a running one, reporting the new state.
func (c *Clock) Toggle() bool {
	if c.running {
		c.Stop()
	} else {
		c.Start()
	}
	return c.running
}

// ChangeMode selects a new rhythm. A running sequence restarts from Inhale with
// the cycle count reset rather than resuming in place.
func (c *Clock) ChangeMode(m Mode) {
	c.mode = m
	log.Info("breath mode changed", "mode", m.Name, "running", c.running)
	if !c.running {
		c.notify()
		return
	}
	c.Stop()
	c.Start()
}

// Phase returns the active phase.
func (c *Clock) Phase() Phase {
	return c.phase
}

// PhaseStart returns when the active phase began.
func (c *Clock) PhaseStart() time.Duration {
	return c.phaseStart
}

// Cycles returns the number of completed cycles.
func (c *Clock) Cycles() int {
	return c.cycles
}

// Running reports whether a sequence is in progress.
func (c *Clock) Running() bool {
	return c.running
}

// Mode returns the selected mode.
func (c *Clock) Mode() Mode {
	return c.mode
}

// Status returns a snapshot of the cycle state.
func (c *Clock) Status() Status {
	return Status{
		Phase:      c.phase,
		PhaseStart: c.phaseStart,
		Cycles:     c.cycles,
		Running:    c.running,
		Mode:       c.mode,
	}
}

// enter switches to p, stamps the phase start and schedules the next advance.
func (c *Clock) enter(p Phase) {
	c.cancel()
	c.phase = p
	c.phaseStart = c.sched.Now()

	d := c.mode.PhaseDuration(p)
	c.pending = c.sched.AfterFunc(d, c.advance)

	if debug.Breath {
		log.Debug("phase", "phase", p, "at", c.phaseStart, "duration", d, "cycles", c.cycles)
	}
	c.notify()
}

// advance is the phase-advance callback.
func (c *Clock) advance() {
	c.pending = nil
	if !c.running {
		return
	}
	next := c.phase.next()
	if c.phase == Rest {
		c.cycles++
	}
	c.enter(next)
}

func (c *Clock) cancel() {
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}

func (c *Clock) notify() {
	if len(c.observers) == 0 {
		return
	}
	s := c.Status()
	for _, fn := range c.observers {
		fn(s)
	}
}
