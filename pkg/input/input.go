// Package input turns debounced button and rotary encoder edges into mode
// changes and main loop commands.
//
// ButtonEdge and EncoderEdge are called from interrupt context. They only
// flip an atomic and arm a timer. All decisions happen in the timer
// callbacks, which touch atomics and push onto a bounded command queue.
package input

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/itohio/gospectro/pkg/config"
	"github.com/itohio/gospectro/pkg/mode"
)

// Command is a request for the main loop.
type Command uint8

const (
	CmdStart Command = iota + 1
	CmdRedraw
)

func (c Command) String() string {
	switch c {
	case CmdStart:
		return "start"
	case CmdRedraw:
		return "redraw"
	default:
		return "unknown"
	}
}

// Machine is the debounced input state machine.
type Machine struct {
	state *mode.State
	p     Platform

	buttonConfirm  time.Duration
	encoderConfirm time.Duration
	longPress      time.Duration

	buttonArmed  atomic.Bool
	encoderArmed atomic.Bool

	buttonWin  *Window
	encoderWin *Window

	position  atomic.Int64
	retry     atomic.Bool // a held back rotation is waiting for the window
	pushStart atomic.Int64 // unix nanos of the current encoder push, 0 when released

	commands chan Command
	dropped  atomic.Uint64
}

// New creates an input machine. Missing platform parts are treated as an
// unpressed pin, a still decoder and the system timers and clock.
func New(state *mode.State, p Platform, cfg *config.InputConfig) *Machine {
	if cfg == nil {
		cfg = &config.Default().Input
	}
	if p.Timers == nil {
		p.Timers = SystemTimers{}
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.Button == nil {
		p.Button = &VirtualPin{}
	}
	if p.EncoderPush == nil {
		p.EncoderPush = &VirtualPin{}
	}
	if p.Decoder == nil {
		p.Decoder = &VirtualDecoder{}
	}

	m := &Machine{
		state:          state,
		p:              p,
		buttonConfirm:  cfg.ButtonConfirm,
		encoderConfirm: cfg.EncoderConfirm,
		longPress:      cfg.LongPress,
		buttonWin:      NewWindow(cfg.Debounce),
		encoderWin:     NewWindow(cfg.Debounce),
		commands:       make(chan Command, max(cfg.QueueSize, 1)),
	}
	m.position.Store(int64(p.Decoder.Position()))
	m.buttonArmed.Store(true)
	m.encoderArmed.Store(true)
	return m
}

// Commands returns the queue consumed by the main loop.
func (m *Machine) Commands() <-chan Command {
	return m.commands
}

// Dropped returns how many commands were dropped on a full queue.
func (m *Machine) Dropped() uint64 {
	return m.dropped.Load()
}

// ButtonEdge handles a measure button edge.
func (m *Machine) ButtonEdge() {
	if m.buttonArmed.CompareAndSwap(true, false) {
		m.p.Timers.AfterFunc(m.buttonConfirm, m.confirmButton)
	}
}

// EncoderEdge handles an encoder rotation or push edge.
func (m *Machine) EncoderEdge() {
	if m.encoderArmed.CompareAndSwap(true, false) {
		m.p.Timers.AfterFunc(m.encoderConfirm, m.confirmEncoder)
	}
}

func (m *Machine) confirmButton() {
	defer m.buttonArmed.Store(true)

	if !m.p.Button.Pressed() || !m.buttonWin.Accept(m.p.Now()) {
		return
	}

	if !m.state.Busy() {
		m.send(CmdStart)
		return
	}

	// Single captures are not cancellable.
	if m.state.Acquisition().Kind != mode.Single && m.state.Cancel() {
		log.Printf("Acquisition cancel requested")
	}
}

func (m *Machine) confirmEncoder() {
	defer m.encoderArmed.Store(true)

	now := m.p.Now()
	pos := int64(m.p.Decoder.Position())
	if last := m.position.Load(); pos != last {
		if !m.encoderWin.Accept(now) {
			m.retryRotation(m.encoderWin.Remaining(now))
			return
		}
		m.position.Store(pos)
		m.rotate(int(pos - last))
		m.send(CmdRedraw)
		return
	}

	pressed := m.p.EncoderPush.Pressed()
	start := m.pushStart.Load()
	switch {
	case pressed && start == 0:
		m.pushStart.Store(now.UnixNano())
	case !pressed && start != 0:
		m.pushStart.Store(0)
		if !m.encoderWin.Accept(now) {
			return
		}
		m.push(time.Duration(now.UnixNano() - start))
		m.send(CmdRedraw)
	}
}

// retryRotation replays the encoder edge once the window closes so held
// back ticks are applied without waiting for another edge.
func (m *Machine) retryRotation(wait time.Duration) {
	if !m.retry.CompareAndSwap(false, true) {
		return
	}
	m.p.Timers.AfterFunc(wait, func() {
		m.retry.Store(false)
		m.EncoderEdge()
	})
}

// rotate steps the selector one position per tick in the direction of delta.
func (m *Machine) rotate(delta int) {
	acq := m.state.Step(delta)
	log.Printf("Acquisition mode: %s", acq)
}

func (m *Machine) push(held time.Duration) {
	if held >= m.longPress {
		acq := m.state.ToggleContinuous()
		if m.state.Cancel() {
			log.Printf("Acquisition cancelled by mode change")
		}
		log.Printf("Acquisition mode: %s", acq)
		return
	}
	led := m.state.CycleLED()
	log.Printf("LED mode: %s", led)
}

// send enqueues without blocking. A full queue drops the command.
func (m *Machine) send(c Command) {
	select {
	case m.commands <- c:
	default:
		m.dropped.Add(1)
	}
}
