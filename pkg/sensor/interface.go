package sensor

import (
	"context"
	"errors"

	"github.com/itohio/gospectro/pkg/mode"
)

var (
	// ErrSensorUnavailable is returned when a backend has no sensor to talk to.
	ErrSensorUnavailable = errors.New("sensor unavailable")
	// ErrCommunication wraps bus failures. Callers do not retry it.
	ErrCommunication = errors.New("sensor communication error")
)

// Vector is one capture: calibrated intensities in backend channel order.
type Vector []float32

// Backend produces one raw channel vector per capture request.
type Backend interface {
	Capture(ctx context.Context, led mode.LED) (Vector, error)
	Layout() Layout
}

// Lamp drives the external LED.
type Lamp interface {
	Set(on bool)
}

// AS7265x is the subset of the 18-channel driver used by Device18.
type AS7265x interface {
	Connected() bool
	TakeMeasurements(bulb bool) error
	Calibrated() ([18]float32, error)
}

// AS7341 is the subset of the 10-channel driver used by Device10. Channels
// are returned in the device order F1,F2,F3,F4,Clear,NIR,F5,F6,F7,F8.
type AS7341 interface {
	Connected() bool
	ReadAllChannels(led bool) ([10]uint16, error)
}

// Ensure the variants implement Backend.
var (
	_ Backend = (*Device18)(nil)
	_ Backend = (*Device10)(nil)
	_ Backend = (*Simulated)(nil)
)

type noLamp struct{}

func (noLamp) Set(bool) {}

// illumination maps an LED mode to the internal bulb and external lamp
// states. Unknown modes measure without illumination.
func illumination(led mode.LED) (internal, external bool) {
	switch led {
	case mode.LEDNone:
		return false, false
	case mode.LEDInternal:
		return true, false
	case mode.LEDExternal:
		return false, true
	case mode.LEDBoth:
		return true, true
	default:
		return false, false
	}
}
