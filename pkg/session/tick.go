package session

import (
	"github.com/teslashibe/go-lotus/pkg/breath"
	"github.com/teslashibe/go-lotus/pkg/geom"
	"github.com/teslashibe/go-lotus/pkg/lotus"
	"github.com/teslashibe/go-lotus/pkg/render"
	"github.com/teslashibe/go-lotus/pkg/web"
)

// Tick lays out every petal for the current time and pushes the result to the
// renderer. It runs on the event loop once per displayed frame.
func (s *Session) Tick() {
	now := s.sched.Now()
	st := s.clock.Status()
	frame := lotus.NewFrame(st, s.anchor.Current(), now)

	for _, p := range s.engine.Apply(frame) {
		s.r.SetTransform(s.petals[p.Index], p.Transform.Position, p.Transform.Rotation)
	}
	s.r.SetGroupYaw(lotus.GroupYaw(now))

	occ := s.anchor.Occluder()
	s.r.SetVisible(s.occluder, occ.Visible)
	if occ.Visible {
		s.r.SetTransform(s.occluder, occ.Position, geom.Euler{})
		s.r.SetScale(s.occluder, occ.Scale)
	}

	s.r.SetHUD(s.hud(st))
	s.ticks++
}

func (s *Session) hud(st breath.Status) render.HUD {
	h := render.HUD{
		Instruction: st.Instruction(),
		Cycles:      st.CycleText(),
		Mode:        st.Mode.Title(),
		FaceStatus:  s.faceStatus,
		Running:     st.Running,
	}
	if s.music != nil && s.music.IsOn() {
		h.Music = true
		h.Levels = s.music.Levels(levelBands)
	}
	return h
}

// status builds the dashboard view. It must run on the event loop.
func (s *Session) status() web.Status {
	st := s.clock.Status()
	now := s.sched.Now()
	a := s.anchor.Current()

	out := web.Status{
		Session:     s.id,
		Phase:       st.Phase,
		Instruction: st.Instruction(),
		Mode:        st.Mode.Name,
		Running:     st.Running,
		Cycles:      st.Cycles,
		CycleText:   st.CycleText(),
		ElapsedMs:   (now - st.PhaseStart).Milliseconds(),
		DurationMs:  st.PhaseDuration().Milliseconds(),
		HasTarget:   a.HasTarget,
		Anchor:      a.Position,
		FaceStatus:  s.faceStatus,
	}

	out.Camera = s.cameraOn.Load()

	if s.music != nil {
		out.Music = s.music.IsOn()
		if out.Music {
			out.Track = s.music.Track()
		}
	}
	return out
}

func (s *Session) publish() {
	if s.pub == nil {
		return
	}
	s.pub.UpdateStatus(s.status())
}

func (s *Session) onTransition(st breath.Status) {
	s.publish()
	if s.pub != nil && st.Running {
		s.pub.AddLog("phase", st.Instruction())
	}
}
