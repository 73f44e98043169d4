// Package easing maps time spent in a breath phase onto smoothed [0,1] progress.
package easing

import "time"

// Progress returns eased progress for elapsed time within a phase of the given duration.
// The linear fraction is clamped to [0,1] before easing; a non-positive duration is
// treated as already complete.
func Progress(elapsed, duration time.Duration) float64 {
	return InOutQuad(Linear(elapsed, duration))
}

// Linear returns elapsed/duration clamped to [0,1].
func Linear(elapsed, duration time.Duration) float64 {
	if duration <= 0 {
		return 1
	}
	p := float64(elapsed) / float64(duration)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// InOutQuad is the symmetric quadratic ease-in-out curve.
func InOutQuad(p float64) float64 {
	if p < 0.5 {
		return 2 * p * p
	}
	q := -2*p + 2
	return 1 - q*q/2
}
