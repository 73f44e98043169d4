// Package tracking runs face detection against the latest camera frame and hands
// results to the animation through a channel.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/teslashibe/go-lotus/internal/log"
	"github.com/teslashibe/go-lotus/pkg/anchor"
	"github.com/teslashibe/go-lotus/pkg/camera"
	"github.com/teslashibe/go-lotus/pkg/tracking/detection"
)

// VideoSource supplies the most recent camera frame.
type VideoSource interface {
	Capture() (camera.Frame, error)
}

// Result is the outcome of one detection pass. Face is nil when nobody is in frame.
type Result struct {
	Face       *anchor.Face `json:"face,omitempty"`
	Detections int          `json:"detections"`
	Seq        uint64       `json:"seq"`
	At         time.Time    `json:"at"`
}

// Stats counts what the tracker has done since it was created.
type Stats struct {
	Processed uint64 `json:"processed"`
	Skipped   uint64 `json:"skipped"`
	Dropped   uint64 `json:"dropped"`
	Errors    uint64 `json:"errors"`
	Misses    int    `json:"misses"`
}

// Tracker polls a video source, runs the detector on each new frame and
// publishes a Result per frame.
type Tracker struct {
	config     Config
	video      VideoSource
	detector   detection.Detector
	perception *Perception
	results    chan Result
	logger     *slog.Logger

	mu        sync.RWMutex
	lastAt    time.Time
	lastSeq   uint64
	stats     Stats
	lost      bool
	isRunning bool
}

// New creates a tracker. It does not start polling until Run.
func New(config Config, video VideoSource, detector detection.Detector) *Tracker {
	if config.ResultBuffer < 1 {
		config.ResultBuffer = 1
	}
	return &Tracker{
		config:     config,
		video:      video,
		detector:   detector,
		perception: NewPerception(config),
		results:    make(chan Result, config.ResultBuffer),
		logger:     log.Component("tracking"),
	}
}

// Results delivers one Result per processed frame.
func (t *Tracker) Results() <-chan Result {
	return t.results
}

// Run polls for frames every DetectionInterval until ctx is cancelled.
func (t *Tracker) Run(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return errors.New("tracking: already running")
	}
	t.isRunning = true
	interval := t.config.DetectionInterval
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.isRunning = false
		t.mu.Unlock()
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	t.logger.Info("face tracker started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			if _, err := t.Step(); err != nil && !errors.Is(err, ErrNotReady) {
				t.logger.Warn("detection failed", "error", err)
			}

			if next := t.interval(); next != interval {
				interval = next
				ticker.Reset(interval)
			}
		}
	}
}

// Step processes the latest frame once. It returns ErrNotReady when the source
// has no frame or the frame was already processed.
func (t *Tracker) Step() (Result, error) {
	if t.video == nil || t.detector == nil {
		return Result{}, ErrNotReady
	}

	frame, err := t.video.Capture()
	if err != nil {
		if errors.Is(err, camera.ErrNoFrame) {
			t.skip()
			return Result{}, ErrNotReady
		}
		t.fail()
		return Result{}, fmt.Errorf("capture: %w", err)
	}

	t.mu.Lock()
	if frame.Seq == t.lastSeq && frame.At.Equal(t.lastAt) {
		t.stats.Skipped++
		t.mu.Unlock()
		return Result{}, ErrNotReady
	}
	t.lastSeq = frame.Seq
	t.lastAt = frame.At
	t.mu.Unlock()

	dets, err := t.detector.Detect(frame.JPEG)
	if err != nil {
		t.fail()
		return Result{}, fmt.Errorf("detect: %w", err)
	}

	t.mu.Lock()
	face := t.perception.Face(dets)
	misses := t.perception.GetConsecutiveMisses()
	t.stats.Processed++
	t.stats.Misses = misses
	wasLost := t.lost
	t.lost = face == nil && misses >= t.config.LostAfter
	t.mu.Unlock()

	if t.lost && !wasLost {
		t.logger.Info("face lost", "misses", misses)
	} else if face != nil && wasLost {
		t.logger.Info("face found")
	}

	res := Result{Face: face, Detections: len(dets), Seq: frame.Seq, At: frame.At}
	select {
	case t.results <- res:
	default:
		t.mu.Lock()
		t.stats.Dropped++
		t.mu.Unlock()
	}

	return res, nil
}

// Stats returns a snapshot of the tracker counters.
func (t *Tracker) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stats
}

// IsRunning reports whether Run is active.
func (t *Tracker) IsRunning() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.isRunning
}

// Close releases the detector.
func (t *Tracker) Close() error {
	if t.detector == nil {
		return nil
	}
	return t.detector.Close()
}

func (t *Tracker) interval() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.config.DetectionInterval
}

func (t *Tracker) skip() {
	t.mu.Lock()
	t.stats.Skipped++
	t.mu.Unlock()
}

func (t *Tracker) fail() {
	t.mu.Lock()
	t.stats.Errors++
	t.mu.Unlock()
}
