// Package config loads go-lotus settings from LOTUS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/teslashibe/go-lotus/pkg/breath"
	"github.com/teslashibe/go-lotus/pkg/camera"
	"github.com/teslashibe/go-lotus/pkg/lotus"
)

// Renderer names.
const (
	RendererWindow   = "window"
	RendererTerm     = "term"
	RendererHeadless = "headless"
)

// Config is the full application configuration.
type Config struct {
	Mode     string `env:"MODE" envDefault:"balance"`
	Modes    string `env:"MODES"` // extra modes, "name=in/hold/out,..."
	Petals   int    `env:"PETALS" envDefault:"10"`
	Renderer string `env:"RENDERER" envDefault:"window"`
	FPS      int    `env:"FPS" envDefault:"60"`
	Seed     int64  `env:"SEED" envDefault:"7"`

	WebPort  string `env:"WEB_PORT" envDefault:"8080"` // empty disables the dashboard
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	Camera       bool    `env:"CAMERA"` // enable face tracking at startup
	CameraDevice int     `env:"CAMERA_DEVICE" envDefault:"0"`
	CameraPreset string  `env:"CAMERA_PRESET" envDefault:"default"`
	FaceModel    string  `env:"FACE_MODEL" envDefault:"models/face_detection_yunet_2023mar.onnx"`
	Mirror       bool    `env:"MIRROR"`
	Smoothing    float64 `env:"SMOOTHING" envDefault:"0.1"`

	MusicDir string `env:"MUSIC_DIR" envDefault:"music"`
}

// Default returns the configuration with every default applied and no
// environment read.
func Default() Config {
	var c Config
	// Parsing an empty environment only applies envDefault tags.
	if err := env.ParseWithOptions(&c, env.Options{Environment: map[string]string{}}); err != nil {
		panic(err)
	}
	return c
}

// Load parses LOTUS_* variables over the defaults.
func Load() (Config, error) {
	return load(env.Options{Prefix: "LOTUS_"})
}

func load(opts env.Options) (Config, error) {
	var c Config
	if opts.Prefix == "" {
		opts.Prefix = "LOTUS_"
	}
	if err := env.ParseWithOptions(&c, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	c.Renderer = strings.ToLower(c.Renderer)
	c.Mode = strings.ToLower(c.Mode)
	return c, nil
}

// Registry returns the built-in modes plus any defined in Modes.
func (c Config) Registry() (*breath.Registry, error) {
	reg := breath.NewRegistry()
	extra, err := breath.ParseModes(c.Modes)
	if err != nil {
		return nil, err
	}
	for _, m := range extra {
		if err := reg.Add(m); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	reg, err := c.Registry()
	if err != nil {
		errs = append(errs, fmt.Errorf("modes: %w", err))
	} else if _, err := reg.Lookup(c.Mode); err != nil {
		errs = append(errs, fmt.Errorf("mode: %w", err))
	}

	if c.Petals < lotus.MinPetals || c.Petals > lotus.MaxPetals {
		errs = append(errs, fmt.Errorf("petals must be %d-%d, got %d", lotus.MinPetals, lotus.MaxPetals, c.Petals))
	}

	switch c.Renderer {
	case RendererWindow, RendererTerm, RendererHeadless:
	default:
		errs = append(errs, fmt.Errorf("renderer must be window, term or headless, got %q", c.Renderer))
	}

	if c.FPS < 1 || c.FPS > 240 {
		errs = append(errs, fmt.Errorf("fps must be 1-240, got %d", c.FPS))
	}

	if c.Smoothing <= 0 || c.Smoothing > 1 {
		errs = append(errs, fmt.Errorf("smoothing must be in (0, 1], got %v", c.Smoothing))
	}

	if _, err := c.CameraConfig(); err != nil {
		errs = append(errs, fmt.Errorf("camera: %w", err))
	}

	return errors.Join(errs...)
}

// CameraConfig resolves the camera preset with the device and mirror
// settings applied.
func (c Config) CameraConfig() (camera.Config, error) {
	preset := camera.GetPreset(c.CameraPreset)
	if preset == nil {
		return camera.Config{}, fmt.Errorf("%w: %q", camera.ErrUnknownPreset, c.CameraPreset)
	}
	cfg := *preset
	cfg.DeviceID = c.CameraDevice
	cfg.Mirror = c.Mirror
	if err := cfg.Validate(); err != nil {
		return camera.Config{}, err
	}
	return cfg, nil
}
