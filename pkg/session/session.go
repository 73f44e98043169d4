// Package session wires the breath clock, anchor tracker and petal layout to a
// renderer, the face tracker, background music and the dashboard.
package session

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/teslashibe/go-lotus/internal/log"
	"github.com/teslashibe/go-lotus/pkg/anchor"
	"github.com/teslashibe/go-lotus/pkg/audio"
	"github.com/teslashibe/go-lotus/pkg/breath"
	"github.com/teslashibe/go-lotus/pkg/camera"
	"github.com/teslashibe/go-lotus/pkg/geom"
	"github.com/teslashibe/go-lotus/pkg/loop"
	"github.com/teslashibe/go-lotus/pkg/lotus"
	"github.com/teslashibe/go-lotus/pkg/render"
	"github.com/teslashibe/go-lotus/pkg/tracking"
	"github.com/teslashibe/go-lotus/pkg/tracking/detection"
	"github.com/teslashibe/go-lotus/pkg/web"
)

// Face status messages shown under the flower.
const (
	FaceIdle         = `Click "Enable Camera" to start face detection.`
	FaceLoading      = "Loading face detector model..."
	FaceFailed       = "Failed to load face detector."
	FaceCameraFailed = "Could not access camera. Check permissions and try again."
	FaceCameraOn     = "Camera on – move your head and inhale to let petals follow."
	FaceDetected     = "Face detected – petals follow your head on inhale."
	FaceMissing      = "No face detected – stay in frame, facing the camera."
)

const (
	petalSegments = 12
	discSegments  = 32
	discRadius    = 0.4
	levelBands    = 16
)

// discPosition puts the flower centre just above the origin, lying flat.
var discPosition = geom.V(0, 0.1, 0)

// Music is the background music player.
type Music interface {
	Toggle() (bool, error)
	IsOn() bool
	Track() string
	Levels(bands int) []float64
	SetLibrary(lib *audio.Library)
	Close()
}

// FrameSource is a running camera.
type FrameSource interface {
	tracking.VideoSource
	Run(ctx context.Context) error
	Apply(cfg camera.Config) error
	Close() error
}

// Publisher receives status for remote viewers.
type Publisher interface {
	UpdateStatus(st web.Status)
	AddLog(kind, message string)
	SendCameraFrame(jpeg []byte)
	CameraClients() int
}

// Options configures a Session.
type Options struct {
	Modes     *breath.Registry
	Mode      breath.Mode
	Petals    int
	Anchor    anchor.Config
	Camera    camera.Config
	Tracking  tracking.Config
	Detection detection.Config

	// EnableCamera turns face tracking on as soon as Run starts.
	EnableCamera bool

	// Scheduler defaults to a new event loop.
	Scheduler loop.Scheduler

	Music     Music
	Publisher Publisher

	OpenCamera  func(camera.Config) (FrameSource, error)
	NewDetector func(detection.Config) (detection.Detector, error)
}

// DefaultOptions uses the built-in modes, a webcam and the YuNet detector.
func DefaultOptions() Options {
	return Options{
		Modes:       breath.NewRegistry(),
		Mode:        breath.Balance,
		Petals:      lotus.DefaultPetals,
		Anchor:      anchor.DefaultConfig(),
		Camera:      camera.DefaultConfig(),
		Tracking:    tracking.DefaultConfig(),
		Detection:   detection.DefaultConfig(),
		OpenCamera:  openWebcam,
		NewDetector: newYuNet,
	}
}

func openWebcam(cfg camera.Config) (FrameSource, error) {
	return camera.Open(cfg)
}

func newYuNet(cfg detection.Config) (detection.Detector, error) {
	return detection.NewYuNet(cfg)
}

// Session is one running lotus. Breath, anchor and layout state belong to the
// scheduler's goroutine. With a *loop.Loop scheduler exported methods are safe
// from any goroutine; with any other scheduler (loop.Manual in tests) they run
// inline on the caller and must stay on one goroutine.
type Session struct {
	id     string
	opts   Options
	sched  loop.Scheduler
	loop   *loop.Loop
	logger *slog.Logger

	clock  *breath.Clock
	modes  *breath.Registry
	anchor *anchor.Tracker
	engine *lotus.Engine

	r        render.Renderer
	petals   []render.Handle
	disc     render.Handle
	occluder render.Handle

	faceStatus string
	ticks      uint64

	cameras *camera.Manager
	music   Music
	pub     Publisher

	camMu    sync.Mutex
	tracker  *tracking.Tracker
	source   FrameSource
	cameraOn atomic.Bool

	ctxMu sync.Mutex
	ctx   context.Context
}

// New builds the scene on r and an idle clock.
func New(opts Options, r render.Renderer) *Session {
	if opts.Modes == nil {
		opts.Modes = breath.NewRegistry()
	}
	if opts.Mode.Name == "" {
		opts.Mode = breath.Balance
	}
	if opts.OpenCamera == nil {
		opts.OpenCamera = openWebcam
	}
	if opts.NewDetector == nil {
		opts.NewDetector = newYuNet
	}

	sched := opts.Scheduler
	if sched == nil {
		sched = loop.New(256)
	}

	s := &Session{
		id:         uuid.NewString(),
		opts:       opts,
		sched:      sched,
		clock:      breath.NewClock(sched, opts.Mode),
		modes:      opts.Modes,
		anchor:     anchor.NewTracker(opts.Anchor),
		engine:     lotus.NewEngine(opts.Petals),
		r:          r,
		faceStatus: FaceIdle,
		cameras:    camera.NewManager(opts.Camera),
		music:      opts.Music,
		pub:        opts.Publisher,
	}
	s.loop, _ = sched.(*loop.Loop)
	s.logger = log.Component("session").With("session", s.id)

	s.buildScene()
	s.clock.Subscribe(s.onTransition)
	s.Tick()
	return s
}

// SetPublisher attaches the dashboard. Call it before Run.
func (s *Session) SetPublisher(p Publisher) {
	s.pub = p
	s.publish()
}

// ID identifies the session in logs and status messages.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) buildScene() {
	s.petals = s.r.CreateShape(s.engine.Count(), render.Geometry{
		Kind:    render.KindPetal,
		Outline: render.PetalOutline(petalSegments),
		Color:   render.PetalColor,
		Grouped: true,
	})

	s.disc = s.r.CreateShape(1, render.Geometry{
		Kind:    render.KindDisc,
		Outline: render.DiscOutline(discRadius, discSegments),
		Color:   render.DiscColor,
		Grouped: true,
	})[0]
	s.r.SetTransform(s.disc, discPosition, geom.Euler{Pitch: -math.Pi / 2})

	s.occluder = s.r.CreateShape(1, render.Geometry{
		Kind:    render.KindOccluder,
		Outline: render.DiscOutline(1, discSegments),
		Color:   render.BackgroundColor,
	})[0]
	s.r.SetVisible(s.occluder, false)
}

// Run drives the renderer until ctx is cancelled or the user quits. The
// renderer passed to New must be a render.Driver. Run must be called from the
// goroutine that owns the display.
func (s *Session) Run(ctx context.Context) error {
	driver, ok := s.r.(render.Driver)
	if !ok {
		return ErrNotDriver
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.ctxMu.Lock()
	s.ctx = ctx
	s.ctxMu.Unlock()

	if s.loop != nil {
		go func() {
			if err := s.loop.Run(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("event loop", "error", err)
			}
		}()
	}

	go s.dispatch(ctx, driver.Commands(), cancel)

	if s.opts.EnableCamera {
		go func() {
			if err := s.EnableCamera(); err != nil {
				s.logger.Warn("camera", "error", err)
			}
		}()
	}

	s.logger.Info("session started", "mode", s.opts.Mode.Name, "petals", s.engine.Count())

	err := driver.Run(ctx, func() {
		if err := s.call(ctx, s.Tick); err != nil && ctx.Err() == nil {
			s.logger.Warn("frame", "error", err)
		}
	})
	cancel()
	s.Close()
	return err
}

// Close releases the camera, detector and music.
func (s *Session) Close() {
	s.camMu.Lock()
	if s.tracker != nil {
		if err := s.tracker.Close(); err != nil {
			s.logger.Warn("close detector", "error", err)
		}
		s.tracker = nil
		s.cameraOn.Store(false)
	}
	if s.source != nil {
		s.cameras.Attach(nil)
		if err := s.source.Close(); err != nil {
			s.logger.Warn("close camera", "error", err)
		}
		s.source = nil
	}
	s.camMu.Unlock()

	if s.music != nil {
		s.music.Close()
	}
}

func (s *Session) dispatch(ctx context.Context, cmds <-chan render.Command, quit context.CancelFunc) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-cmds:
			if !s.Handle(cmd) {
				quit()
				return
			}
		}
	}
}

func (s *Session) runContext() context.Context {
	s.ctxMu.Lock()
	defer s.ctxMu.Unlock()
	return s.ctx
}

// call runs f on the event loop and waits. Without a loop f runs inline.
func (s *Session) call(ctx context.Context, f func()) error {
	if s.loop == nil {
		f()
		return nil
	}
	return s.loop.Call(ctx, f)
}

// do runs f on the event loop from outside it.
func (s *Session) do(f func()) {
	ctx := s.runContext()
	if ctx == nil || s.loop == nil {
		f()
		return
	}
	if err := s.loop.Call(ctx, f); err != nil {
		s.logger.Debug("dropped call", "error", err)
	}
}

// post queues f on the event loop without waiting.
func (s *Session) post(f func()) {
	if s.loop == nil {
		f()
		return
	}
	s.loop.Post(f)
}
