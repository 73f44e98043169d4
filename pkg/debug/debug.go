// Package debug provides global verbose-logging switches
package debug

import "github.com/teslashibe/go-lotus/internal/log"

// Enabled controls whether general debug logging is active
var Enabled bool

// Breath controls per-transition breath clock logs
var Breath bool

// Tracking controls whether verbose tracking logs are shown (frames, detections, anchor)
// Use --debug-tracking flag to enable these very verbose logs
var Tracking bool

// Set enables the named switches ("all", "breath", "tracking").
func Set(names ...string) {
	for _, n := range names {
		switch n {
		case "all":
			Enabled, Breath, Tracking = true, true, true
		case "breath":
			Breath = true
		case "tracking":
			Tracking = true
		case "debug":
			Enabled = true
		}
	}
}

// Log emits a debug record only if debug mode is enabled
func Log(msg string, args ...any) {
	if Enabled {
		log.Debug(msg, args...)
	}
}

// TrackLog emits a debug record only if tracking debug mode is enabled
func TrackLog(msg string, args ...any) {
	if Tracking {
		log.Component("tracking").Debug(msg, args...)
	}
}
