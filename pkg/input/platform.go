package input

import (
	"sync/atomic"
	"time"
)

// Pin is a digital input. Pressed reports the active level.
type Pin interface {
	Pressed() bool
}

// Decoder is a quadrature decoder. Position counts ticks, positive
// clockwise.
type Decoder interface {
	Position() int
}

// Timer is a pending one-shot callback.
type Timer interface {
	Stop() bool
}

// Timers schedules one-shot callbacks.
type Timers interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemTimers schedules callbacks with time.AfterFunc.
type SystemTimers struct{}

// AfterFunc implements Timers.
func (SystemTimers) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Platform bundles the hardware the input machine reads.
type Platform struct {
	Button      Pin
	EncoderPush Pin
	Decoder     Decoder
	Timers      Timers
	Now         func() time.Time
}

// VirtualPin is a Pin driven by software.
type VirtualPin struct {
	pressed atomic.Bool
}

// Set changes the pin level.
func (p *VirtualPin) Set(pressed bool) {
	p.pressed.Store(pressed)
}

// Pressed implements Pin.
func (p *VirtualPin) Pressed() bool {
	return p.pressed.Load()
}

// VirtualDecoder is a Decoder driven by software.
type VirtualDecoder struct {
	position atomic.Int64
}

// Step turns the virtual knob by ticks.
func (d *VirtualDecoder) Step(ticks int) {
	d.position.Add(int64(ticks))
}

// Position implements Decoder.
func (d *VirtualDecoder) Position() int {
	return int(d.position.Load())
}
