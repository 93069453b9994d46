package main

import (
	"sync"
	"time"

	"github.com/itohio/gospectro/pkg/input"
)

// clickDuration is how long an on-screen button holds its virtual pin.
const clickDuration = 100 * time.Millisecond

// frontPanel emulates the handheld's button and rotary encoder with virtual
// pins driven by toolbar buttons.
type frontPanel struct {
	state *appState

	button  input.VirtualPin
	push    input.VirtualPin
	decoder input.VirtualDecoder

	mu      sync.Mutex
	machine *input.Machine
}

func newFrontPanel(state *appState) *frontPanel {
	return &frontPanel{state: state}
}

// Platform returns the virtual hardware for an input machine.
func (f *frontPanel) Platform() input.Platform {
	return input.Platform{
		Button:      &f.button,
		EncoderPush: &f.push,
		Decoder:     &f.decoder,
		Timers:      input.SystemTimers{},
		Now:         time.Now,
	}
}

// Attach routes edges to m. A nil machine detaches.
func (f *frontPanel) Attach(m *input.Machine) {
	f.mu.Lock()
	f.machine = m
	f.mu.Unlock()
}

// Measure clicks the measure button.
func (f *frontPanel) Measure() {
	f.click(&f.button, clickDuration, func(m *input.Machine) { m.ButtonEdge() })
}

// Rotate turns the encoder by ticks.
func (f *frontPanel) Rotate(ticks int) {
	f.decoder.Step(ticks)
	f.edge(func(m *input.Machine) { m.EncoderEdge() })
}

// ShortPush clicks the encoder, cycling the LED mode.
func (f *frontPanel) ShortPush() {
	f.click(&f.push, clickDuration, func(m *input.Machine) { m.EncoderEdge() })
}

// LongPush holds the encoder past the long press threshold, toggling
// between single and continuous acquisition.
func (f *frontPanel) LongPush() {
	f.click(&f.push, f.state.cfg.Input.LongPress+clickDuration, func(m *input.Machine) { m.EncoderEdge() })
}

// click presses pin, fires the edge and releases it after hold.
func (f *frontPanel) click(pin *input.VirtualPin, hold time.Duration, edge func(*input.Machine)) {
	pin.Set(true)
	f.edge(edge)
	time.AfterFunc(hold, func() {
		pin.Set(false)
		f.edge(edge)
	})
}

func (f *frontPanel) edge(fn func(*input.Machine)) {
	f.mu.Lock()
	m := f.machine
	f.mu.Unlock()
	if m != nil {
		fn(m)
	}
}
