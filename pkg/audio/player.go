// Package audio plays background music behind the breathing guide.
package audio

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/teslashibe/go-lotus/internal/log"
)

// Output is the audio device. Speaker is the real one.
type Output interface {
	Init(sr beep.SampleRate, bufferSize int) error
	Play(s ...beep.Streamer)
	Clear()
	Lock()
	Unlock()
}

// Speaker plays through the default sound card.
type Speaker struct{}

func (Speaker) Init(sr beep.SampleRate, bufferSize int) error { return speaker.Init(sr, bufferSize) }
func (Speaker) Play(s ...beep.Streamer)                        { speaker.Play(s...) }
func (Speaker) Clear()                                         { speaker.Clear() }
func (Speaker) Lock()                                          { speaker.Lock() }
func (Speaker) Unlock()                                        { speaker.Unlock() }

// Config holds music playback settings.
type Config struct {
	Volume       float64       // level reached by fade-in
	FadeDuration time.Duration // length of a fade
	FadeSteps    int           // volume changes per fade
	TapSize      int           // samples kept for the visualiser
}

// DefaultConfig fades to half volume over 1.2s in 30 steps.
func DefaultConfig() Config {
	return Config{
		Volume:       MusicVolume,
		FadeDuration: FadeDuration,
		FadeSteps:    FadeSteps,
		TapSize:      4096,
	}
}

// Player toggles background music on and off with fades.
type Player struct {
	config Config
	lib    *Library
	out    Output
	rng    *rand.Rand
	open   func(string) (beep.StreamSeekCloser, beep.Format, error)
	logger *slog.Logger

	mu         sync.Mutex
	on         bool
	initRate   beep.SampleRate
	track      string
	streamer   beep.StreamSeekCloser
	ctrl       *beep.Ctrl
	gain       *effects.Gain
	tap        *Tap
	volume     float64
	cancelFade context.CancelFunc
	fadeDone   chan struct{}
}

// NewPlayer creates a player over lib writing to out.
func NewPlayer(cfg Config, lib *Library, out Output) *Player {
	return &Player{
		config: cfg,
		lib:    lib,
		out:    out,
		rng:    rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x10705)),
		open:   Open,
		logger: log.Component("music"),
	}
}

// SetLibrary swaps the track folder. The playing track is not interrupted.
func (p *Player) SetLibrary(lib *Library) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lib = lib
}

// Toggle turns music on with a random track and a fade-in, or fades it out
// and pauses. It returns the new state.
func (p *Player) Toggle() (bool, error) {
	p.mu.Lock()
	on := p.on
	p.mu.Unlock()

	if on {
		p.Off()
		return false, nil
	}
	if err := p.On(); err != nil {
		return false, err
	}
	return true, nil
}

// On starts a random track at zero volume and fades in.
func (p *Player) On() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.on {
		return nil
	}

	path, err := p.lib.Random(p.rng)
	if err != nil {
		return err
	}
	streamer, format, err := p.open(path)
	if err != nil {
		return err
	}

	if err := p.ensureInit(format.SampleRate); err != nil {
		_ = streamer.Close()
		return fmt.Errorf("init speaker: %w", err)
	}

	p.stopLocked()

	p.gain = &effects.Gain{Streamer: beep.Loop(-1, streamer), Gain: -1}
	p.tap = NewTap(p.gain, p.config.TapSize)
	p.ctrl = &beep.Ctrl{Streamer: p.tap}
	p.streamer = streamer
	p.track = path
	p.volume = 0
	p.on = true

	p.out.Play(p.ctrl)
	p.logger.Info("music on", "track", filepath.Base(path), "rate", int(format.SampleRate))

	p.fadeLocked(p.config.Volume)
	return nil
}

// Off fades the music to silence and pauses it.
func (p *Player) Off() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.on {
		return
	}
	p.on = false
	p.logger.Info("music off")
	p.fadeLocked(0)
}

// IsOn reports whether music is on. A fade-out in progress counts as off.
func (p *Player) IsOn() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.on
}

// Track returns the path of the current track.
func (p *Player) Track() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.track
}

// Volume returns the current playback level.
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Levels returns visualiser bar heights, all zero when nothing plays.
func (p *Player) Levels(bands int) []float64 {
	p.mu.Lock()
	tap := p.tap
	p.mu.Unlock()
	if tap == nil {
		return make([]float64, bands)
	}
	return tap.Levels(bands)
}

// Wait blocks until the running fade finishes.
func (p *Player) Wait() {
	p.mu.Lock()
	done := p.fadeDone
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Close stops playback and releases the track.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancelFade != nil {
		p.cancelFade()
	}
	p.on = false
	p.stopLocked()
}

func (p *Player) ensureInit(sr beep.SampleRate) error {
	if p.initRate == sr {
		return nil
	}
	if p.initRate != 0 {
		p.out.Lock()
		p.out.Clear()
		p.out.Unlock()
	}
	if err := p.out.Init(sr, sr.N(time.Second/20)); err != nil {
		return err
	}
	p.initRate = sr
	return nil
}

func (p *Player) stopLocked() {
	if p.ctrl == nil {
		return
	}
	p.out.Lock()
	p.out.Clear()
	p.out.Unlock()
	if p.streamer != nil {
		_ = p.streamer.Close()
	}
	p.streamer = nil
	p.ctrl = nil
	p.gain = nil
	p.tap = nil
}

// fadeLocked replaces any running fade with one toward target.
func (p *Player) fadeLocked(target float64) {
	if p.cancelFade != nil {
		p.cancelFade()
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancelFade = cancel
	p.fadeDone = done

	schedule := FadeSchedule(p.volume, target, p.config.FadeSteps)
	interval := p.config.FadeDuration / time.Duration(len(schedule))
	ctrl, gain := p.ctrl, p.gain

	go func() {
		defer close(done)
		completed := runFade(ctx, schedule, interval, func(v float64) {
			p.mu.Lock()
			defer p.mu.Unlock()
			if ctx.Err() != nil {
				return
			}
			p.volume = v
			p.setGain(ctrl, gain, v)
		})
		if completed && target == 0 {
			p.mu.Lock()
			if ctx.Err() == nil {
				p.pause(ctrl)
			}
			p.mu.Unlock()
		}
	}()
}

func (p *Player) setGain(ctrl *beep.Ctrl, gain *effects.Gain, v float64) {
	if gain == nil {
		return
	}
	p.out.Lock()
	gain.Gain = v - 1
	if ctrl != nil && v > 0 {
		ctrl.Paused = false
	}
	p.out.Unlock()
}

func (p *Player) pause(ctrl *beep.Ctrl) {
	if ctrl == nil {
		return
	}
	p.out.Lock()
	ctrl.Paused = true
	p.out.Unlock()
}
