package audio

import (
	"context"
	"time"
)

// Fade defaults.
const (
	FadeSteps    = 30
	FadeDuration = 1200 * time.Millisecond
	MusicVolume  = 0.5
)

// FadeSchedule returns the volume after each of steps equal steps from one
// level to another. The last entry is always exactly to.
func FadeSchedule(from, to float64, steps int) []float64 {
	if steps < 1 {
		return []float64{to}
	}
	out := make([]float64, steps)
	for i := 1; i <= steps; i++ {
		out[i-1] = from + (to-from)*float64(i)/float64(steps)
	}
	out[steps-1] = to
	return out
}

// runFade applies the schedule one step per tick. It stops early when ctx is
// cancelled and reports whether the fade completed.
func runFade(ctx context.Context, schedule []float64, interval time.Duration, set func(float64)) bool {
	if interval <= 0 {
		for _, v := range schedule {
			set(v)
		}
		return true
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for _, v := range schedule {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			set(v)
		}
	}
	return true
}
