// Package mode holds the shared acquisition/LED mode state of the instrument.
package mode

import (
	"fmt"
	"sync/atomic"
)

const (
	// MaxSelector is the highest encoder selector value (Burst of 10).
	MaxSelector = 10
	// MinBurst is the smallest burst size.
	MinBurst = 2
)

// Kind is the acquisition protocol.
type Kind uint8

const (
	Single Kind = iota
	Continuous
	Burst
)

// Acquisition is an acquisition mode. Shots is only meaningful for Burst.
type Acquisition struct {
	Kind  Kind
	Shots int
}

// FromSelector decodes an encoder selector value: 0 is Single, 1 is
// Continuous and 2..10 is Burst(n). Values outside the range are clamped.
func FromSelector(sel int) Acquisition {
	sel = clampSelector(sel)
	switch sel {
	case 0:
		return Acquisition{Kind: Single}
	case 1:
		return Acquisition{Kind: Continuous}
	default:
		return Acquisition{Kind: Burst, Shots: sel}
	}
}

// Selector encodes the mode back into the encoder selector range.
func (a Acquisition) Selector() int {
	switch a.Kind {
	case Continuous:
		return 1
	case Burst:
		return clampSelector(max(a.Shots, MinBurst))
	default:
		return 0
	}
}

// String returns the label shown on the panel.
func (a Acquisition) String() string {
	switch a.Kind {
	case Single:
		return "Single Fire"
	case Continuous:
		return "Continuous"
	case Burst:
		return fmt.Sprintf("Burst %d", a.Shots)
	default:
		return "Invalid Mode"
	}
}

func clampSelector(sel int) int {
	return min(max(sel, 0), MaxSelector)
}

// LED selects the illumination used during a capture.
type LED uint8

const (
	LEDNone LED = iota
	LEDInternal
	LEDExternal
	LEDBoth
)

// Valid reports whether l is one of the defined LED modes.
func (l LED) Valid() bool {
	return l <= LEDBoth
}

// Next returns the next LED mode in the None→Internal→External→Both cycle.
// Invalid values restart the cycle at None.
func (l LED) Next() LED {
	if l >= LEDBoth {
		return LEDNone
	}
	return l + 1
}

// String returns the label shown on the panel.
func (l LED) String() string {
	switch l {
	case LEDNone:
		return "No LEDs"
	case LEDInternal:
		return "Internal LEDs"
	case LEDExternal:
		return "External LEDs"
	case LEDBoth:
		return "All LEDs"
	default:
		return "Invalid Mode"
	}
}

// ParseLED parses a config name (none, internal, external, both).
func ParseLED(s string) (LED, error) {
	switch s {
	case "none":
		return LEDNone, nil
	case "internal":
		return LEDInternal, nil
	case "external":
		return LEDExternal, nil
	case "both":
		return LEDBoth, nil
	}
	return LEDNone, fmt.Errorf("unknown led mode %q", s)
}

// ParseAcquisition parses a config name (single, continuous, burst<n>).
func ParseAcquisition(s string) (Acquisition, error) {
	switch s {
	case "single":
		return Acquisition{Kind: Single}, nil
	case "continuous":
		return Acquisition{Kind: Continuous}, nil
	}
	var n int
	if _, err := fmt.Sscanf(s, "burst%d", &n); err != nil || n < MinBurst || n > MaxSelector {
		return Acquisition{}, fmt.Errorf("unknown acquisition mode %q", s)
	}
	return Acquisition{Kind: Burst, Shots: n}, nil
}

// State is the process-wide mode state. The input machine mutates the mode
// fields, the acquisition controller owns the busy flag. Every field is a
// word-sized atomic so interrupt-context writers never tear a value.
type State struct {
	selector atomic.Int32
	led      atomic.Uint32
	busy     atomic.Bool
}

// New creates a State in the given modes, not busy.
func New(acq Acquisition, led LED) *State {
	s := &State{}
	s.selector.Store(int32(acq.Selector()))
	s.led.Store(uint32(led))
	return s
}

// Acquisition returns the current acquisition mode.
func (s *State) Acquisition() Acquisition {
	return FromSelector(int(s.selector.Load()))
}

// SetAcquisition replaces the acquisition mode.
func (s *State) SetAcquisition(a Acquisition) {
	s.selector.Store(int32(a.Selector()))
}

// Step moves the selector by delta, clamped to [0, MaxSelector], and
// returns the resulting mode.
func (s *State) Step(delta int) Acquisition {
	for {
		old := s.selector.Load()
		next := int32(clampSelector(int(old) + delta))
		if s.selector.CompareAndSwap(old, next) {
			return FromSelector(int(next))
		}
	}
}

// ToggleContinuous flips between Single and Continuous. A burst selection
// goes back to Single.
func (s *State) ToggleContinuous() Acquisition {
	for {
		old := s.selector.Load()
		next := int32(1)
		if old != 0 {
			next = 0
		}
		if s.selector.CompareAndSwap(old, next) {
			return FromSelector(int(next))
		}
	}
}

// LED returns the current LED mode.
func (s *State) LED() LED {
	return LED(s.led.Load())
}

// SetLED replaces the LED mode.
func (s *State) SetLED(l LED) {
	s.led.Store(uint32(l))
}

// CycleLED advances the LED mode and returns the new value.
func (s *State) CycleLED() LED {
	for {
		old := s.led.Load()
		next := LED(old).Next()
		if s.led.CompareAndSwap(old, uint32(next)) {
			return next
		}
	}
}

// Busy reports whether an acquisition protocol is running.
func (s *State) Busy() bool {
	return s.busy.Load()
}

// TryBegin sets busy if it was clear. It returns false when another
// protocol already holds it.
func (s *State) TryBegin() bool {
	return s.busy.CompareAndSwap(false, true)
}

// End clears busy unconditionally.
func (s *State) End() {
	s.busy.Store(false)
}

// Cancel clears busy and reports whether it was set. A running protocol
// observes the cleared flag at its next loop boundary.
func (s *State) Cancel() bool {
	return s.busy.Swap(false)
}
