package session

import (
	"github.com/teslashibe/go-lotus/pkg/breath"
	"github.com/teslashibe/go-lotus/pkg/lotus"
	"github.com/teslashibe/go-lotus/pkg/render"
	"github.com/teslashibe/go-lotus/pkg/web"
)

var _ web.Controller = (*Session)(nil)

// Status returns the current dashboard status.
func (s *Session) Status() web.Status {
	var st web.Status
	s.do(func() { st = s.status() })
	return st
}

// Modes lists the selectable rhythms.
func (s *Session) Modes() []breath.Mode {
	return s.modes.Modes()
}

// Petals returns every petal's world transform at the last tick.
func (s *Session) Petals() []web.Petal {
	var out []web.Petal
	s.do(func() {
		yaw := lotus.GroupYaw(s.sched.Now())
		for _, p := range s.engine.Petals() {
			w := lotus.World(p.Transform, yaw)
			out = append(out, web.Petal{Index: p.Index, Position: w.Position, Rotation: w.Rotation})
		}
	})
	return out
}

// Start begins breathing from Inhale.
func (s *Session) Start() {
	s.do(s.clock.Start)
}

// Stop returns the flower to rest.
func (s *Session) Stop() {
	s.do(s.clock.Stop)
}

// Toggle starts or stops breathing and reports whether it is now running.
func (s *Session) Toggle() bool {
	var running bool
	s.do(func() { running = s.clock.Toggle() })
	return running
}

// ChangeMode switches to the named mode.
func (s *Session) ChangeMode(name string) error {
	m, err := s.modes.Lookup(name)
	if err != nil {
		return err
	}
	s.do(func() { s.clock.ChangeMode(m) })
	return nil
}

// NextMode cycles to the next mode in name order and returns it.
func (s *Session) NextMode() breath.Mode {
	var m breath.Mode
	s.do(func() {
		m = s.modes.Next(s.clock.Mode().Name)
		s.clock.ChangeMode(m)
	})
	if s.pub != nil {
		s.pub.AddLog("mode", "Mode: "+m.Title())
	}
	return m
}

// Handle applies a renderer command. It returns false when the user quits.
func (s *Session) Handle(cmd render.Command) bool {
	switch cmd {
	case render.CmdToggle:
		s.Toggle()
	case render.CmdStart:
		s.Start()
	case render.CmdStop:
		s.Stop()
	case render.CmdNextMode:
		s.NextMode()
	case render.CmdCamera:
		go func() {
			if err := s.EnableCamera(); err != nil {
				s.logger.Warn("camera", "error", err)
			}
		}()
	case render.CmdMusic:
		go func() {
			if _, err := s.ToggleMusic(); err != nil {
				s.logger.Warn("music", "error", err)
			}
		}()
	case render.CmdChooseMusic:
		go func() {
			if err := s.ChooseMusic(); err != nil {
				s.logger.Warn("music folder", "error", err)
			}
		}()
	case render.CmdQuit:
		return false
	}
	return true
}
