package term

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/teslashibe/go-lotus/pkg/geom"
	"github.com/teslashibe/go-lotus/pkg/render"
)

var _ render.Driver = (*Renderer)(nil)

func newSim(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	s.SetSize(w, h)
	t.Cleanup(s.Fini)
	return s
}

func TestDraw_PetalCoversCentre(t *testing.T) {
	s := newSim(t, 80, 40)

	scene := render.NewScene()
	h := scene.CreateShape(1, render.Geometry{
		Kind:    render.KindDisc,
		Outline: render.DiscOutline(1, 24),
		Color:   render.DiscColor,
	})[0]
	// Face the camera at its eye height.
	scene.SetTransform(h, geom.V(0, 2, 0), geom.Euler{})

	cam := render.DefaultCamera()
	cam.CellAspect = cellAspect
	Draw(s, scene.Snapshot(), cam, render.NewPalette(1), 0)

	mainc, _, _, _ := s.GetContent(40, 20)
	if mainc != '█' {
		t.Errorf("centre cell = %q, want block", mainc)
	}
	corner, _, _, _ := s.GetContent(79, 10)
	if corner != ' ' {
		t.Errorf("corner cell = %q, want blank", corner)
	}
}

func TestDraw_OccluderBlanksBehind(t *testing.T) {
	s := newSim(t, 80, 40)

	scene := render.NewScene()
	disc := scene.CreateShape(1, render.Geometry{Kind: render.KindDisc, Outline: render.DiscOutline(1, 24)})[0]
	occ := scene.CreateShape(1, render.Geometry{Kind: render.KindOccluder, Outline: render.DiscOutline(1, 24)})[0]
	scene.SetTransform(disc, geom.V(0, 2, 0), geom.Euler{})
	scene.SetTransform(occ, geom.V(0, 2, 2), geom.Euler{})
	scene.SetScale(occ, 2)

	cam := render.DefaultCamera()
	cam.CellAspect = cellAspect
	Draw(s, scene.Snapshot(), cam, render.NewPalette(1), 0)

	mainc, _, _, _ := s.GetContent(40, 20)
	if mainc == '█' {
		t.Error("disc behind occluder should be hidden")
	}
}

func TestDraw_HUD(t *testing.T) {
	s := newSim(t, 80, 24)

	scene := render.NewScene()
	scene.SetHUD(render.HUD{Instruction: "Breathe In", Mode: "box", Cycles: "Cycles: 2", Running: true})
	Draw(s, scene.Snapshot(), render.DefaultCamera(), render.NewPalette(1), time.Second)

	var row []rune
	for x := 0; x < 80; x++ {
		c, _, _, _ := s.GetContent(x, 20)
		row = append(row, c)
	}
	if got := string(row); !strings.Contains(got, "Breathe In") {
		t.Errorf("instruction row = %q", got)
	}
}

func TestHandleEvent(t *testing.T) {
	r := New(newSim(t, 20, 10), 30, 1)

	tests := []struct {
		name     string
		ev       tcell.Event
		wantCmd  render.Command
		wantMore bool
	}{
		{"space", tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), render.CmdToggle, true},
		{"mode", tcell.NewEventKey(tcell.KeyRune, 'm', tcell.ModNone), render.CmdNextMode, true},
		{"quit rune", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), render.CmdQuit, false},
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), render.CmdQuit, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.handleEvent(tc.ev); got != tc.wantMore {
				t.Errorf("handleEvent = %v, want %v", got, tc.wantMore)
			}
			select {
			case cmd := <-r.Commands():
				if cmd != tc.wantCmd {
					t.Errorf("command = %v, want %v", cmd, tc.wantCmd)
				}
			default:
				t.Error("no command sent")
			}
		})
	}
}

func TestHandleEvent_UnknownKeyIgnored(t *testing.T) {
	r := New(newSim(t, 20, 10), 30, 1)
	if !r.handleEvent(tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone)) {
		t.Error("unknown key should not stop the renderer")
	}
	select {
	case cmd := <-r.Commands():
		t.Errorf("unexpected command %v", cmd)
	default:
	}
}

func TestLevelGlyph(t *testing.T) {
	if levelGlyph(0) != ' ' {
		t.Error("zero level should be blank")
	}
	if levelGlyph(1) != '█' {
		t.Error("full level should be a full block")
	}
	if levelGlyph(5) != '█' {
		t.Error("overflow should clamp")
	}
	if levelGlyph(-1) != ' ' {
		t.Error("negative should clamp")
	}
}
