// Package term draws the lotus as coloured blocks in a terminal with tcell.
package term

import (
	"context"
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/teslashibe/go-lotus/pkg/render"
)

// Terminal cells are roughly twice as tall as they are wide.
const cellAspect = 2.0

// Renderer is a render.Driver backed by a tcell screen.
type Renderer struct {
	*render.Scene

	screen   tcell.Screen
	camera   render.Camera
	palette  *render.Palette
	interval time.Duration
	commands chan render.Command
	start    time.Time

	mu sync.Mutex
}

// New wraps screen. Passing nil opens the real terminal in Run.
func New(screen tcell.Screen, fps int, seed int64) *Renderer {
	if fps <= 0 {
		fps = 30
	}
	cam := render.DefaultCamera()
	cam.CellAspect = cellAspect
	return &Renderer{
		Scene:    render.NewScene(),
		screen:   screen,
		camera:   cam,
		palette:  render.NewPalette(seed),
		interval: time.Second / time.Duration(fps),
		commands: make(chan render.Command, 16),
		start:    time.Now(),
	}
}

// Commands delivers key actions.
func (r *Renderer) Commands() <-chan render.Command {
	return r.commands
}

// Run takes over the terminal, calling frame and drawing at the configured
// rate until ctx is cancelled or the user quits.
func (r *Renderer) Run(ctx context.Context, frame func()) error {
	if r.screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		r.screen = s
	}
	if err := r.screen.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	defer r.screen.Fini()
	r.screen.SetStyle(tcell.StyleDefault.Background(toColor(render.BackgroundColor)))
	r.screen.Clear()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := r.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			if !r.handleEvent(ev) {
				return nil
			}

		case <-ticker.C:
			frame()
			if err := r.RenderFrame(); err != nil {
				return err
			}
		}
	}
}

// RenderFrame draws the current scene to the terminal.
func (r *Renderer) RenderFrame() error {
	if err := r.Scene.RenderFrame(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.screen == nil {
		return nil
	}

	Draw(r.screen, r.Snapshot(), r.camera, r.palette, time.Since(r.start))
	r.screen.Show()
	return nil
}

func (r *Renderer) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			r.send(render.CmdQuit)
			return false
		}
		if ev.Key() == tcell.KeyRune {
			cmd := render.KeyCommand(ev.Rune())
			if cmd == render.CmdNone {
				return true
			}
			r.send(cmd)
			return cmd != render.CmdQuit
		}

	case *tcell.EventResize:
		r.mu.Lock()
		r.screen.Sync()
		r.mu.Unlock()
	}
	return true
}

func (r *Renderer) send(cmd render.Command) {
	select {
	case r.commands <- cmd:
	default:
	}
}

// Draw paints a snapshot onto screen without showing it.
func Draw(screen tcell.Screen, snap render.Snapshot, cam render.Camera, pal *render.Palette, now time.Duration) {
	w, h := screen.Size()
	bg := tcell.StyleDefault.Background(toColor(render.BackgroundColor))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			screen.SetContent(x, y, ' ', nil, bg)
		}
	}

	for _, poly := range snap.Project(cam, w, h) {
		c := toColor(pal.Shade(poly, now))
		style := tcell.StyleDefault.Foreground(c).Background(toColor(render.BackgroundColor))
		glyph := '█'
		if poly.Kind == render.KindOccluder {
			glyph = ' '
			style = bg
		}
		render.FillPolygon(poly.Points, w, h, func(x, y int) {
			screen.SetContent(x, y, glyph, nil, style)
		})
	}

	text := tcell.StyleDefault.Foreground(toColor(render.TextColor)).Background(toColor(render.BackgroundColor))
	hud := snap.HUD
	status := "paused"
	if hud.Running {
		status = "running"
	}
	putString(screen, 1, 0, fmt.Sprintf("%s  [%s]  %s", hud.Mode, status, hud.Cycles), text)
	putString(screen, (w-len([]rune(hud.Instruction)))/2, h-4, hud.Instruction, text.Bold(true))
	putString(screen, 1, h-2, hud.FaceStatus, text)
	putString(screen, 1, h-1, render.KeyHelp, text.Dim(true))

	if hud.Music {
		x := w - len(hud.Levels) - 1
		for i, l := range hud.Levels {
			screen.SetContent(x+i, 0, levelGlyph(l), nil, text)
		}
	}
}

var levelGlyphs = []rune(" ▁▂▃▄▅▆▇█")

func levelGlyph(l float64) rune {
	i := int(l * float64(len(levelGlyphs)-1))
	if i < 0 {
		i = 0
	}
	if i >= len(levelGlyphs) {
		i = len(levelGlyphs) - 1
	}
	return levelGlyphs[i]
}

func putString(screen tcell.Screen, x, y int, s string, style tcell.Style) {
	if x < 0 {
		x = 0
	}
	for _, ch := range s {
		screen.SetContent(x, y, ch, nil, style)
		x++
	}
}

func toColor(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
