package audio

import (
	"math"
	"sync"

	"github.com/gopxl/beep"
)

// Tap wraps a streamer and records the most recent samples into a ring buffer
// so the renderer can draw bars from what is playing.
type Tap struct {
	Source    beep.Streamer
	buffer    [][2]float64
	nextIndex int
	filled    bool
	mu        sync.RWMutex
}

// NewTap records up to ringSize samples from src.
func NewTap(src beep.Streamer, ringSize int) *Tap {
	if ringSize < 1 {
		ringSize = 1
	}
	return &Tap{
		Source: src,
		buffer: make([][2]float64, ringSize),
	}
}

// Stream implements beep.Streamer.
func (t *Tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.Source.Stream(samples)
	if n > 0 {
		t.mu.Lock()
		for i := 0; i < n; i++ {
			t.buffer[t.nextIndex] = samples[i]
			t.nextIndex++
			if t.nextIndex >= len(t.buffer) {
				t.nextIndex = 0
				t.filled = true
			}
		}
		t.mu.Unlock()
	}
	return n, ok
}

// Err implements beep.Streamer.
func (t *Tap) Err() error { return t.Source.Err() }

// Snapshot returns up to the last n samples, oldest first.
func (t *Tap) Snapshot(n int) [][2]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	avail := t.nextIndex
	if t.filled {
		avail = len(t.buffer)
	}
	if n > avail {
		n = avail
	}

	out := make([][2]float64, n)
	idx := t.nextIndex - n
	if idx < 0 {
		idx += len(t.buffer)
	}
	for i := range out {
		out[i] = t.buffer[idx]
		idx++
		if idx >= len(t.buffer) {
			idx = 0
		}
	}
	return out
}

// Levels splits the recorded samples into bands equal slices and returns the
// RMS of each, scaled to 0-1.
func (t *Tap) Levels(bands int) []float64 {
	if bands < 1 {
		return nil
	}
	samples := t.Snapshot(len(t.buffer))
	out := make([]float64, bands)
	if len(samples) < bands {
		return out
	}

	per := len(samples) / bands
	for b := range out {
		var sum float64
		for _, s := range samples[b*per : (b+1)*per] {
			m := (s[0] + s[1]) / 2
			sum += m * m
		}
		out[b] = math.Min(1, math.Sqrt(sum/float64(per)))
	}
	return out
}
