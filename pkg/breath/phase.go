package breath

import "fmt"

// Phase is one segment of the breathing cycle.
type Phase int

const (
	// Idle means the sequence is not running.
	Idle Phase = iota
	Inhale
	Hold
	Exhale
	Rest
)

// String returns the lowercase phase name.
func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Inhale:
		return "inhale"
	case Hold:
		return "hold"
	case Exhale:
		return "exhale"
	case Rest:
		return "rest"
	default:
		return "unknown"
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Instruction is the prompt shown to the user during the phase.
func (p Phase) Instruction() string {
	switch p {
	case Inhale:
		return "Breathe In"
	case Hold:
		return "Hold"
	case Exhale:
		return "Breathe Out"
	case Rest:
		return "Rest"
	default:
		return "Ready to Begin"
	}
}

// next returns the phase that follows p in a running cycle.
func (p Phase) next() Phase {
	switch p {
	case Inhale:
		return Hold
	case Hold:
		return Exhale
	case Exhale:
		return Rest
	default:
		return Inhale
	}
}

// CycleText formats a completed cycle count for display; empty for zero.
func CycleText(n int) string {
	switch {
	case n <= 0:
		return ""
	case n == 1:
		return "1 cycle"
	default:
		return fmt.Sprintf("%d cycles", n)
	}
}
