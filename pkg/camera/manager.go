package camera

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Manager holds the live camera configuration and pushes changes to the open
// device.
type Manager struct {
	mu     sync.RWMutex
	config Config
	apply  func(Config) error
}

// NewManager starts from cfg with no device attached.
func NewManager(cfg Config) *Manager {
	return &Manager{config: cfg}
}

// Attach sets the function that applies a config to the open device. Pass nil
// to detach.
func (m *Manager) Attach(apply func(Config) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apply = apply
}

// GetConfig returns the current configuration.
func (m *Manager) GetConfig() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// SetConfig validates cfg, stores it and applies it to the attached device.
func (m *Manager) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid camera config: %w", err)
	}

	m.mu.Lock()
	m.config = cfg
	apply := m.apply
	m.mu.Unlock()

	if apply == nil {
		return nil
	}
	if err := apply(cfg); err != nil {
		return fmt.Errorf("apply camera config: %w", err)
	}
	return nil
}

// setters maps JSON field names to config updates. Each reports whether the
// value had a usable type.
var setters = map[string]func(*Config, any) bool{
	"device_id":  intField(func(c *Config) *int { return &c.DeviceID }),
	"width":      intField(func(c *Config) *int { return &c.Width }),
	"height":     intField(func(c *Config) *int { return &c.Height }),
	"framerate":  intField(func(c *Config) *int { return &c.Framerate }),
	"quality":    intField(func(c *Config) *int { return &c.Quality }),
	"brightness": floatField(func(c *Config) *float64 { return &c.Brightness }),
	"mirror":     boolField(func(c *Config) *bool { return &c.Mirror }),
}

// UpdateConfig changes the named fields, as decoded from a JSON object. A
// "preset" key replaces the whole config first; other keys then apply on top.
// Unknown keys are ignored; a known key with the wrong type is an error.
func (m *Manager) UpdateConfig(params map[string]any) error {
	cfg := m.GetConfig()

	if v, ok := params["preset"]; ok {
		name, _ := v.(string)
		preset := GetPreset(name)
		if preset == nil {
			return fmt.Errorf("%w: %v", ErrUnknownPreset, v)
		}
		cfg = *preset
	}

	for key, value := range params {
		set, ok := setters[key]
		if !ok {
			continue
		}
		if !set(&cfg, value) {
			return fmt.Errorf("camera config %s: unexpected value %v", key, value)
		}
	}

	return m.SetConfig(cfg)
}

// GetConfigJSON returns the configuration as a generic JSON object.
func (m *Manager) GetConfigJSON() map[string]any {
	data, err := json.Marshal(m.GetConfig())
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

func intField(field func(*Config) *int) func(*Config, any) bool {
	return func(c *Config, v any) bool {
		n, ok := toInt(v)
		if ok {
			*field(c) = n
		}
		return ok
	}
}

func floatField(field func(*Config) *float64) func(*Config, any) bool {
	return func(c *Config, v any) bool {
		f, ok := toFloat(v)
		if ok {
			*field(c) = f
		}
		return ok
	}
}

func boolField(field func(*Config) *bool) func(*Config, any) bool {
	return func(c *Config, v any) bool {
		b, ok := v.(bool)
		if ok {
			*field(c) = b
		}
		return ok
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
