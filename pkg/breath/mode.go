package breath

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// RestDuration is the fixed pause between exhale and the next inhale.
const RestDuration = time.Second

// IdleDuration is the nominal duration used for easing while idle.
const IdleDuration = time.Second

// Mode is a named breathing rhythm.
type Mode struct {
	Name   string        `json:"name"`
	Inhale time.Duration `json:"inhale"`
	Hold   time.Duration `json:"hold"`
	Exhale time.Duration `json:"exhale"`
}

// Built-in modes.
var (
	Balance  = Mode{Name: "balance", Inhale: 4 * time.Second, Hold: 4 * time.Second, Exhale: 4 * time.Second}
	Calm     = Mode{Name: "calm", Inhale: 4 * time.Second, Hold: 7 * time.Second, Exhale: 8 * time.Second}
	Energize = Mode{Name: "energize", Inhale: 4 * time.Second, Hold: 4 * time.Second, Exhale: 2 * time.Second}
)

// DefaultMode is selected at startup unless configured otherwise.
var DefaultMode = Balance

// Validate rejects modes that would stall or spin the clock.
func (m Mode) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidMode)
	}
	if m.Inhale <= 0 || m.Hold <= 0 || m.Exhale <= 0 {
		return fmt.Errorf("%w: %s durations must be positive (inhale=%v hold=%v exhale=%v)",
			ErrInvalidMode, m.Name, m.Inhale, m.Hold, m.Exhale)
	}
	return nil
}

// Cycle returns the length of one full inhale-hold-exhale-rest traversal.
func (m Mode) Cycle() time.Duration {
	return m.Inhale + m.Hold + m.Exhale + RestDuration
}

// Title returns the display name ("Calm").
func (m Mode) Title() string {
	if m.Name == "" {
		return ""
	}
	return strings.ToUpper(m.Name[:1]) + m.Name[1:]
}

// Registry holds the selectable modes by name.
type Registry struct {
	modes map[string]Mode
}

// NewRegistry returns a registry seeded with the built-in modes.
func NewRegistry() *Registry {
	r := &Registry{modes: make(map[string]Mode)}
	for _, m := range []Mode{Balance, Calm, Energize} {
		r.modes[m.Name] = m
	}
	return r
}

// Add registers or replaces a mode after validating it.
func (r *Registry) Add(m Mode) error {
	if err := m.Validate(); err != nil {
		return err
	}
	r.modes[strings.ToLower(m.Name)] = m
	return nil
}

// Lookup finds a mode by case-insensitive name.
func (r *Registry) Lookup(name string) (Mode, error) {
	m, ok := r.modes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Mode{}, fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
	return m, nil
}

// Modes returns all modes ordered by name.
func (r *Registry) Modes() []Mode {
	out := make([]Mode, 0, len(r.modes))
	for _, m := range r.modes {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Next returns the mode after current in name order, wrapping around.
func (r *Registry) Next(current string) Mode {
	modes := r.Modes()
	for i, m := range modes {
		if m.Name == current {
			return modes[(i+1)%len(modes)]
		}
	}
	return modes[0]
}

// Lookup finds a built-in mode by name.
func Lookup(name string) (Mode, error) {
	return NewRegistry().Lookup(name)
}

// ParseModes parses "name=inhale/hold/exhale" definitions separated by commas,
// durations in seconds (fractions allowed), e.g. "box=4/4/4,sleep=4/7/8".
func ParseModes(spec string) ([]Mode, error) {
	var modes []Mode
	for _, item := range strings.Split(spec, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, durations, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q missing '='", ErrInvalidMode, item)
		}
		parts := strings.Split(durations, "/")
		if len(parts) != 3 {
			return nil, fmt.Errorf("%w: %q needs inhale/hold/exhale", ErrInvalidMode, item)
		}

		var secs [3]time.Duration
		for i, p := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrInvalidMode, item, err)
			}
			secs[i] = time.Duration(v * float64(time.Second))
		}

		m := Mode{
			Name:   strings.ToLower(strings.TrimSpace(name)),
			Inhale: secs[0],
			Hold:   secs[1],
			Exhale: secs[2],
		}
		if err := m.Validate(); err != nil {
			return nil, err
		}
		modes = append(modes, m)
	}
	return modes, nil
}
