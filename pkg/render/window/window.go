// Package window draws the lotus in a desktop window with ebiten.
package window

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/teslashibe/go-lotus/pkg/render"
)

// Config holds window settings.
type Config struct {
	Width  int
	Height int
	Title  string
	TPS    int
	Seed   int64
}

// DefaultConfig returns a 960x720 window at 60 updates per second.
func DefaultConfig() Config {
	return Config{
		Width:  960,
		Height: 720,
		Title:  "Lotus Breathing",
		TPS:    60,
		Seed:   1,
	}
}

// Renderer is a render.Driver backed by an ebiten window.
type Renderer struct {
	*render.Scene

	config   Config
	camera   render.Camera
	palette  *render.Palette
	commands chan render.Command
	start    time.Time

	mu    sync.Mutex
	frame func()
	ctx   context.Context
}

// New creates a window renderer. The window opens in Run.
func New(cfg Config) *Renderer {
	return &Renderer{
		Scene:    render.NewScene(),
		config:   cfg,
		camera:   render.DefaultCamera(),
		palette:  render.NewPalette(cfg.Seed),
		commands: make(chan render.Command, 16),
	}
}

// Commands delivers key and mouse actions.
func (r *Renderer) Commands() <-chan render.Command {
	return r.commands
}

// Run opens the window and blocks until it closes or ctx is cancelled. ebiten
// requires this to be called from the main goroutine.
func (r *Renderer) Run(ctx context.Context, frame func()) error {
	r.mu.Lock()
	r.frame = frame
	r.ctx = ctx
	r.start = time.Now()
	r.mu.Unlock()

	ebiten.SetWindowSize(r.config.Width, r.config.Height)
	ebiten.SetWindowTitle(r.config.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if r.config.TPS > 0 {
		ebiten.SetTPS(r.config.TPS)
	}

	if err := ebiten.RunGame(&game{r: r}); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("window: %w", err)
	}
	return nil
}

func (r *Renderer) send(cmd render.Command) {
	select {
	case r.commands <- cmd:
	default:
	}
}

// game adapts Renderer to ebiten.Game.
type game struct {
	r *Renderer
}

func (g *game) Update() error {
	r := g.r
	r.mu.Lock()
	ctx, frame := r.ctx, r.frame
	r.mu.Unlock()

	if ctx != nil && ctx.Err() != nil {
		return ebiten.Termination
	}

	for _, ch := range ebiten.AppendInputChars(nil) {
		if cmd := render.KeyCommand(ch); cmd != render.CmdNone {
			r.send(cmd)
			if cmd == render.CmdQuit {
				return ebiten.Termination
			}
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		r.send(render.CmdQuit)
		return ebiten.Termination
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		r.send(render.CmdToggle)
	}

	if frame != nil {
		frame()
	}
	return r.RenderFrame()
}

func (g *game) Draw(screen *ebiten.Image) {
	r := g.r
	screen.Fill(render.BackgroundColor)

	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	snap := r.Snapshot()
	now := time.Since(r.start)

	for _, poly := range snap.Project(r.camera, w, h) {
		fillPolygon(screen, poly.Points, r.palette.Shade(poly, now))
	}

	drawHUD(screen, snap.HUD, w, h)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

func fillPolygon(dst *ebiten.Image, pts [][2]float64, c color.RGBA) {
	if len(pts) < 3 {
		return
	}
	var path vector.Path
	path.MoveTo(float32(pts[0][0]), float32(pts[0][1]))
	for _, p := range pts[1:] {
		path.LineTo(float32(p[0]), float32(p[1]))
	}
	path.Close()

	vs, is := path.AppendVerticesAndIndicesForFilling(nil, nil)
	cr, cg, cb, ca := float32(c.R)/255, float32(c.G)/255, float32(c.B)/255, float32(c.A)/255
	for i := range vs {
		vs[i].SrcX = 1
		vs[i].SrcY = 1
		vs[i].ColorR = cr
		vs[i].ColorG = cg
		vs[i].ColorB = cb
		vs[i].ColorA = ca
	}
	dst.DrawTriangles(vs, is, white(), &ebiten.DrawTrianglesOptions{
		FillRule: ebiten.FillRuleNonZero,
	})
}

var (
	whiteOnce     sync.Once
	whiteSubImage *ebiten.Image
)

// white returns a 1x1 white source image for DrawTriangles.
func white() *ebiten.Image {
	whiteOnce.Do(func() {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		whiteSubImage = img.SubImage(img.Bounds().Inset(1)).(*ebiten.Image)
	})
	return whiteSubImage
}

func drawHUD(screen *ebiten.Image, hud render.HUD, w, h int) {
	status := "paused"
	if hud.Running {
		status = "running"
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s  [%s]", hud.Mode, status), 12, 12)
	if hud.Cycles != "" {
		ebitenutil.DebugPrintAt(screen, hud.Cycles, 12, 28)
	}

	if hud.Instruction != "" {
		x := w/2 - len(hud.Instruction)*3
		ebitenutil.DebugPrintAt(screen, hud.Instruction, x, h-96)
	}
	if hud.FaceStatus != "" {
		ebitenutil.DebugPrintAt(screen, hud.FaceStatus, 12, h-44)
	}
	ebitenutil.DebugPrintAt(screen, render.KeyHelp, 12, h-24)

	if !hud.Music || len(hud.Levels) == 0 {
		return
	}
	const barMax = 60
	barW := float32(6)
	x0 := float32(w) - float32(len(hud.Levels))*(barW+2) - 12
	for i, l := range hud.Levels {
		bh := float32(l) * barMax
		x := x0 + float32(i)*(barW+2)
		vector.DrawFilledRect(screen, x, 12+barMax-bh, barW, bh, render.TextColor, false)
	}
}
