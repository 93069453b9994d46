package sensor

import (
	"context"
	"fmt"

	"github.com/itohio/gospectro/pkg/mode"
)

// Device18 captures through an AS7265x triad.
type Device18 struct {
	dev  AS7265x
	lamp Lamp
}

// NewDevice18 creates an 18-channel backend. lamp may be nil when no
// external LED is wired.
func NewDevice18(dev AS7265x, lamp Lamp) *Device18 {
	if lamp == nil {
		lamp = noLamp{}
	}
	return &Device18{dev: dev, lamp: lamp}
}

// Layout returns the 18-channel layout.
func (d *Device18) Layout() Layout {
	return Layout18
}

// Capture triggers one measurement and returns the calibrated channels in
// wavelength order.
func (d *Device18) Capture(ctx context.Context, led mode.LED) (Vector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bulb, external := illumination(led)
	if external {
		d.lamp.Set(true)
		defer d.lamp.Set(false)
	}

	if err := d.dev.TakeMeasurements(bulb); err != nil {
		return nil, fmt.Errorf("%w: take measurements: %w", ErrCommunication, err)
	}
	cal, err := d.dev.Calibrated()
	if err != nil {
		return nil, fmt.Errorf("%w: read calibrated channels: %w", ErrCommunication, err)
	}

	out := make(Vector, len(cal))
	copy(out, cal[:])
	return out, nil
}

// Device10 captures through an AS7341.
type Device10 struct {
	dev  AS7341
	lamp Lamp
}

// NewDevice10 creates a 10-channel backend. lamp may be nil.
func NewDevice10(dev AS7341, lamp Lamp) *Device10 {
	if lamp == nil {
		lamp = noLamp{}
	}
	return &Device10{dev: dev, lamp: lamp}
}

// Layout returns the 10-channel layout.
func (d *Device10) Layout() Layout {
	return Layout10
}

// Capture reads all channels and returns them as F1..F8, NIR, Clear.
func (d *Device10) Capture(ctx context.Context, led mode.LED) (Vector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	onboard, external := illumination(led)
	if external {
		d.lamp.Set(true)
		defer d.lamp.Set(false)
	}

	native, err := d.dev.ReadAllChannels(onboard)
	if err != nil {
		return nil, fmt.Errorf("%w: read channels: %w", ErrCommunication, err)
	}
	return Reorder10(native), nil
}

// Reorder10 converts the AS7341 order F1,F2,F3,F4,Clear,NIR,F5,F6,F7,F8
// into F1..F8, NIR, Clear.
func Reorder10(native [10]uint16) Vector {
	out := make(Vector, 10)
	for i := range 4 {
		out[i] = float32(native[i])
	}
	for i := range 4 {
		out[4+i] = float32(native[6+i])
	}
	out[8] = float32(native[5]) // NIR
	out[9] = float32(native[4]) // Clear
	return out
}
