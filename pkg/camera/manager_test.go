package camera

import (
	"errors"
	"testing"
)

func TestManager_SetConfig(t *testing.T) {
	m := NewManager(DefaultConfig())

	var applied []Config
	m.Attach(func(cfg Config) error {
		applied = append(applied, cfg)
		return nil
	})

	cfg := HD720Config()
	if err := m.SetConfig(cfg); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	if m.GetConfig() != cfg {
		t.Errorf("GetConfig = %+v, want %+v", m.GetConfig(), cfg)
	}
	if len(applied) != 1 || applied[0] != cfg {
		t.Errorf("callback got %+v", applied)
	}

	bad := cfg
	bad.Quality = 0
	if err := m.SetConfig(bad); err == nil {
		t.Error("expected validation error")
	}
	if m.GetConfig() != cfg {
		t.Error("invalid config should not be stored")
	}
	if len(applied) != 1 {
		t.Error("callback should not run for invalid config")
	}
}

func TestManager_CallbackError(t *testing.T) {
	m := NewManager(DefaultConfig())
	boom := errors.New("device busy")
	m.Attach(func(Config) error { return boom })

	if err := m.SetConfig(LowPowerConfig()); !errors.Is(err, boom) {
		t.Errorf("SetConfig error = %v, want wrapped callback error", err)
	}
}

func TestManager_UpdateConfig(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		check  func(Config) bool
	}{
		{
			name:   "json numbers",
			params: map[string]any{"width": float64(1280), "height": float64(720)},
			check:  func(c Config) bool { return c.Width == 1280 && c.Height == 720 },
		},
		{
			name:   "mirror",
			params: map[string]any{"mirror": true},
			check:  func(c Config) bool { return c.Mirror },
		},
		{
			name:   "preset with override",
			params: map[string]any{"preset": PresetLow, "quality": 50},
			check:  func(c Config) bool { return c.Width == 320 && c.Quality == 50 },
		},
		{
			name:   "unknown keys ignored",
			params: map[string]any{"zoom": 2.0},
			check:  func(c Config) bool { return c == DefaultConfig() },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewManager(DefaultConfig())
			if err := m.UpdateConfig(tc.params); err != nil {
				t.Fatalf("UpdateConfig: %v", err)
			}
			if !tc.check(m.GetConfig()) {
				t.Errorf("unexpected config %+v", m.GetConfig())
			}
		})
	}
}

func TestManager_UpdateConfigWrongType(t *testing.T) {
	m := NewManager(DefaultConfig())
	if err := m.UpdateConfig(map[string]any{"width": "wide"}); err == nil {
		t.Error("string width accepted")
	}
	if m.GetConfig() != DefaultConfig() {
		t.Error("config changed after a rejected update")
	}
}

func TestManager_Detach(t *testing.T) {
	m := NewManager(DefaultConfig())
	calls := 0
	m.Attach(func(Config) error {
		calls++
		return nil
	})
	m.Attach(nil)
	if err := m.SetConfig(HD720Config()); err != nil || calls != 0 {
		t.Errorf("detached manager: err=%v calls=%d", err, calls)
	}
}

func TestManager_UnknownPreset(t *testing.T) {
	m := NewManager(DefaultConfig())
	err := m.UpdateConfig(map[string]any{"preset": "8k"})
	if !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("got %v, want ErrUnknownPreset", err)
	}
}

func TestManager_GetConfigJSON(t *testing.T) {
	m := NewManager(SelfieConfig())
	got := m.GetConfigJSON()
	if got["mirror"] != true {
		t.Errorf("mirror = %v", got["mirror"])
	}
	if got["width"] != float64(640) {
		t.Errorf("width = %v", got["width"])
	}
}
