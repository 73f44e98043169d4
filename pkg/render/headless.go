package render

import (
	"context"
	"time"
)

// Headless drives a Scene from a ticker with no display. It is used when no
// window or terminal is wanted, such as a dashboard-only run.
type Headless struct {
	*Scene
	interval time.Duration
	commands chan Command
}

// NewHeadless ticks fps times per second.
func NewHeadless(fps int) *Headless {
	if fps <= 0 {
		fps = 30
	}
	return &Headless{
		Scene:    NewScene(),
		interval: time.Second / time.Duration(fps),
		commands: make(chan Command),
	}
}

// Run calls frame and renders until ctx is cancelled.
func (h *Headless) Run(ctx context.Context, frame func()) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			frame()
			if err := h.RenderFrame(); err != nil {
				return err
			}
		}
	}
}

// Commands never delivers; there is no input.
func (h *Headless) Commands() <-chan Command {
	return h.commands
}
