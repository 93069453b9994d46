//go:build tinygo

package main

import (
	"sync/atomic"
	"time"

	"machine"

	"tinygo.org/x/drivers/encoders"

	"github.com/itohio/gospectro/pkg/input"
)

// frontPanel connects the button and encoder pins to the input machine.
// Pin interrupts only latch a flag; a polling goroutine forwards the edges
// so timers are never armed from interrupt context.
type frontPanel struct {
	encoder *encoders.QuadratureDevice

	buttonEdge atomic.Bool
	pushEdge   atomic.Bool
}

func newFrontPanel() *frontPanel {
	f := &frontPanel{
		encoder: encoders.NewQuadratureViaInterrupt(PIN_ENC_A, PIN_ENC_B),
	}
	f.encoder.Configure(encoders.QuadratureConfig{Precision: ENCODER_PRECISION})

	PIN_BUTTON.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	PIN_ENC_PUSH.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return f
}

// Platform returns the pins and decoder for the input machine.
func (f *frontPanel) Platform() input.Platform {
	return input.Platform{
		Button:      activeLow{PIN_BUTTON},
		EncoderPush: activeLow{PIN_ENC_PUSH},
		Decoder:     f.encoder,
		Timers:      input.SystemTimers{},
	}
}

// Start enables the pin interrupts and forwards edges to m.
func (f *frontPanel) Start(m *input.Machine) {
	PIN_BUTTON.SetInterrupt(machine.PinToggle, func(machine.Pin) {
		f.buttonEdge.Store(true)
	})
	PIN_ENC_PUSH.SetInterrupt(machine.PinToggle, func(machine.Pin) {
		f.pushEdge.Store(true)
	})

	go f.poll(m)
}

func (f *frontPanel) poll(m *input.Machine) {
	last := f.encoder.Position()
	for {
		if f.buttonEdge.Swap(false) {
			m.ButtonEdge()
		}
		encoderEdge := f.pushEdge.Swap(false)
		if pos := f.encoder.Position(); pos != last {
			last = pos
			encoderEdge = true
		}
		if encoderEdge {
			m.EncoderEdge()
		}
		time.Sleep(POLL_INTERVAL)
	}
}

// activeLow is a pulled up input that reads pressed when low.
type activeLow struct {
	machine.Pin
}

func (p activeLow) Pressed() bool {
	return !p.Get()
}
