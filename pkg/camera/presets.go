package camera

import "strings"

// Preset names accepted by GetPreset and the "preset" config key.
const (
	PresetDefault = "default"
	PresetLow     = "low"
	Preset720p    = "720p"
	Preset1080p   = "1080p"
	PresetSelfie  = "selfie"
)

// presets is ordered as PresetNames reports it.
var presets = []struct {
	name  string
	build func() Config
}{
	{PresetDefault, DefaultConfig},
	{PresetLow, LowPowerConfig},
	{Preset720p, HD720Config},
	{Preset1080p, HD1080Config},
	{PresetSelfie, SelfieConfig},
}

// Presets returns a fresh copy of every preset keyed by name.
func Presets() map[string]Config {
	out := make(map[string]Config, len(presets))
	for _, p := range presets {
		out[p.name] = p.build()
	}
	return out
}

// PresetNames lists preset names, default first.
func PresetNames() []string {
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.name
	}
	return names
}

// GetPreset looks a preset up case-insensitively. Unknown names yield nil.
func GetPreset(name string) *Config {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range presets {
		if p.name == name {
			cfg := p.build()
			return &cfg
		}
	}
	return nil
}

// LowPowerConfig drops to QVGA at 15 fps. Faces must be closer to be found.
func LowPowerConfig() Config {
	return resized(DefaultConfig(), 320, 240, 15)
}

// HD720Config captures 1280x720 at the default rate.
func HD720Config() Config {
	d := DefaultConfig()
	return resized(d, 1280, 720, d.Framerate)
}

// HD1080Config captures 1920x1080 at 15 fps, for sitting far from the camera.
func HD1080Config() Config {
	return resized(DefaultConfig(), 1920, 1080, 15)
}

// SelfieConfig is the default with the preview mirrored.
func SelfieConfig() Config {
	cfg := DefaultConfig()
	cfg.Mirror = true
	return cfg
}

func resized(cfg Config, w, h, fps int) Config {
	cfg.Width, cfg.Height, cfg.Framerate = w, h, fps
	return cfg
}
