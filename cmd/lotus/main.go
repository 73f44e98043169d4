// Lotus is a breathing guide: a ring of petals that opens on the inhale,
// holds, and folds back on the exhale, optionally following your face.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/teslashibe/go-lotus/internal/config"
	"github.com/teslashibe/go-lotus/internal/log"
	"github.com/teslashibe/go-lotus/pkg/anchor"
	"github.com/teslashibe/go-lotus/pkg/audio"
	"github.com/teslashibe/go-lotus/pkg/debug"
	"github.com/teslashibe/go-lotus/pkg/render"
	"github.com/teslashibe/go-lotus/pkg/render/term"
	"github.com/teslashibe/go-lotus/pkg/render/window"
	"github.com/teslashibe/go-lotus/pkg/session"
	"github.com/teslashibe/go-lotus/pkg/web"
)

func main() {
	cfg, debugFlags, err := parseFlags()
	if err != nil {
		fatal("configuration error", err)
	}
	if err := cfg.Validate(); err != nil {
		fatal("configuration error", err)
	}

	if err := initLogging(cfg); err != nil {
		fatal("log file", err)
	}
	if debugFlags != "" {
		debug.Set(strings.Split(debugFlags, ",")...)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		fatal("runtime error", err)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	opts, err := sessionOptions(cfg)
	if err != nil {
		return err
	}

	var driver render.Driver
	switch cfg.Renderer {
	case config.RendererTerm:
		driver = term.New(nil, cfg.FPS, cfg.Seed)
	case config.RendererHeadless:
		driver = render.NewHeadless(cfg.FPS)
	default:
		wc := window.DefaultConfig()
		wc.TPS = cfg.FPS
		wc.Seed = cfg.Seed
		driver = window.New(wc)
	}

	s := session.New(opts, driver)

	if cfg.WebPort != "" {
		srv := web.NewServer(cfg.WebPort, s)
		s.SetPublisher(srv)
		go func() {
			if err := srv.Start(ctx); err != nil {
				log.Error("dashboard stopped", "error", err)
			}
		}()
	}

	// ebiten needs the main goroutine, so the session runs here.
	return s.Run(ctx)
}

func sessionOptions(cfg config.Config) (session.Options, error) {
	opts := session.DefaultOptions()

	reg, err := cfg.Registry()
	if err != nil {
		return opts, err
	}
	mode, err := reg.Lookup(cfg.Mode)
	if err != nil {
		return opts, err
	}
	cam, err := cfg.CameraConfig()
	if err != nil {
		return opts, err
	}

	opts.Modes = reg
	opts.Mode = mode
	opts.Petals = cfg.Petals
	opts.Camera = cam
	opts.EnableCamera = cfg.Camera
	opts.Detection.ModelPath = cfg.FaceModel

	opts.Anchor = anchor.DefaultConfig()
	opts.Anchor.Smoothing = cfg.Smoothing

	lib, err := audio.Scan(cfg.MusicDir)
	if err != nil {
		log.Warn("no music", "dir", cfg.MusicDir, "error", err)
	}
	opts.Music = audio.NewPlayer(audio.DefaultConfig(), lib, audio.Speaker{})

	return opts, nil
}

// parseFlags layers command line flags over the LOTUS_* environment.
func parseFlags() (config.Config, string, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, "", err
	}

	flag.StringVar(&cfg.Mode, "mode", cfg.Mode, "Breath mode: balance, calm, energize or one from -modes")
	flag.StringVar(&cfg.Modes, "modes", cfg.Modes, `Extra modes, e.g. "box=4/4/4,sleep=4/7/8" (seconds)`)
	flag.IntVar(&cfg.Petals, "petals", cfg.Petals, "Number of petals")
	flag.StringVar(&cfg.Renderer, "renderer", cfg.Renderer, "Renderer: window, term or headless")
	flag.IntVar(&cfg.FPS, "fps", cfg.FPS, "Frames per second")
	flag.StringVar(&cfg.WebPort, "web-port", cfg.WebPort, "Dashboard port (empty disables it)")
	flag.BoolVar(&cfg.Camera, "camera", cfg.Camera, "Enable face tracking at startup")
	flag.IntVar(&cfg.CameraDevice, "camera-device", cfg.CameraDevice, "Camera device index")
	flag.StringVar(&cfg.CameraPreset, "camera-preset", cfg.CameraPreset, "Camera preset: default, low, 720p, 1080p, selfie")
	flag.BoolVar(&cfg.Mirror, "mirror", cfg.Mirror, "Mirror the camera image")
	flag.StringVar(&cfg.FaceModel, "face-model", cfg.FaceModel, "Path to the YuNet ONNX model")
	flag.StringVar(&cfg.MusicDir, "music", cfg.MusicDir, "Folder of background music")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	flag.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Write logs to this file")
	debugFlags := flag.String("debug", "", "Verbose logs: all, breath, tracking (comma separated)")
	flag.Parse()

	cfg.Renderer = strings.ToLower(cfg.Renderer)
	cfg.Mode = strings.ToLower(cfg.Mode)
	return cfg, *debugFlags, nil
}

// initLogging keeps logs off the terminal the term renderer draws on.
func initLogging(cfg config.Config) error {
	path := cfg.LogFile
	if path == "" && cfg.Renderer == config.RendererTerm {
		path = "lotus.log"
	}
	if path == "" {
		log.Init(cfg.LogLevel)
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	log.InitWriter(cfg.LogLevel, f)
	return nil
}

func fatal(what string, err error) {
	fmt.Fprintf(os.Stderr, "lotus: %s: %v\n", what, err)
	os.Exit(1)
}
