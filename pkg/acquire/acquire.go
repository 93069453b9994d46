// Package acquire runs the single, continuous and burst capture protocols.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/itohio/gospectro/pkg/config"
	"github.com/itohio/gospectro/pkg/mode"
	"github.com/itohio/gospectro/pkg/render"
	"github.com/itohio/gospectro/pkg/sensor"
	"github.com/itohio/gospectro/pkg/spectrum"
)

// ErrBusy is returned by Acquire when a protocol is already running.
var ErrBusy = errors.New("acquisition already running")

// Screen texts.
const (
	TextMeasuring   = "Measuring..."
	TextReady       = "Ready"
	TextSensorError = "Sensor Error"
)

// Reading is one published result.
type Reading struct {
	Time   time.Time
	Raw    sensor.Vector
	Values spectrum.Normalized
	Result spectrum.Result
	Layout sensor.Layout
	Mode   mode.Acquisition
	LED    mode.LED
	Shots  int // captures averaged into Raw
}

// Controller runs capture protocols against a backend and publishes the
// results to a render sink.
type Controller struct {
	state *mode.State
	sink  render.Sink

	continuousPause time.Duration
	burstPause      time.Duration
	method          spectrum.Method

	// Yield is called between loop iterations. Defaults to runtime.Gosched.
	Yield func()
	// Sleep pauses between loop iterations and returns early when ctx ends.
	Sleep func(ctx context.Context, d time.Duration) error
	// Fallback builds the backend used after a communication error.
	Fallback func() sensor.Backend

	mu      sync.Mutex
	backend sensor.Backend
	last    *Reading
	acc     spectrum.Accumulator

	callbacks []func(Reading)
	cbMu      sync.RWMutex
}

// New creates a controller. state is shared with the input machine.
func New(state *mode.State, backend sensor.Backend, sink render.Sink, cfg *config.AcquisitionConfig) *Controller {
	if cfg == nil {
		cfg = &config.Default().Acquisition
	}

	method, err := spectrum.ParseMethod(cfg.Classifier)
	if err != nil {
		log.Printf("Invalid classifier, using auto: %v", err)
	}

	return &Controller{
		state:           state,
		sink:            sink,
		backend:         backend,
		continuousPause: cfg.ContinuousPause,
		burstPause:      cfg.BurstPause,
		method:          method,
		Yield:           runtime.Gosched,
		Sleep:           sleep,
		Fallback: func() sensor.Backend {
			return sensor.NewSimulated(nil)
		},
	}
}

// Backend returns the backend currently in use.
func (c *Controller) Backend() sensor.Backend {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backend
}

// Last returns the last published reading.
func (c *Controller) Last() (Reading, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return Reading{}, false
	}
	return *c.last, true
}

// OnPublish registers a callback invoked after every published reading.
func (c *Controller) OnPublish(callback func(Reading)) {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()
	c.callbacks = append(c.callbacks, callback)
}

// Acquire runs the protocol of the current acquisition mode. It returns
// ErrBusy without side effects when another protocol holds the busy flag.
// The flag is cleared on every return path.
func (c *Controller) Acquire(ctx context.Context) error {
	if !c.state.TryBegin() {
		return ErrBusy
	}
	defer c.state.End()

	acq := c.state.Acquisition()
	led := c.state.LED()
	log.Printf("Acquisition started: %s, %s", acq, led)

	c.sink.Text(TextMeasuring)

	var err error
	switch acq.Kind {
	case mode.Continuous:
		err = c.continuous(ctx, acq, led)
	case mode.Burst:
		err = c.burst(ctx, acq, led)
	default:
		err = c.single(ctx, acq, led)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Acquisition failed: %v", err)
	}
	return err
}

// Redraw shows the ready screen with the last readings and the current
// modes.
func (c *Controller) Redraw() {
	var values []uint8
	if last, ok := c.Last(); ok {
		values = last.Values
	}
	c.sink.Bars(TextReady, values, c.state.Acquisition().String(), c.state.LED().String())
}

func (c *Controller) single(ctx context.Context, acq mode.Acquisition, led mode.LED) error {
	backend := c.Backend()
	raw, err := c.capture(ctx, backend, led)
	if err != nil {
		return err
	}
	c.publish(raw, backend.Layout(), acq, led, 1)
	return nil
}

func (c *Controller) continuous(ctx context.Context, acq mode.Acquisition, led mode.LED) error {
	for c.state.Busy() {
		backend := c.Backend()
		raw, err := c.capture(ctx, backend, led)
		if err != nil {
			return err
		}
		c.publish(raw, backend.Layout(), acq, led, 1)

		c.Yield()
		if err := c.Sleep(ctx, c.continuousPause); err != nil {
			return err
		}
	}
	log.Printf("Continuous acquisition stopped")
	return nil
}

func (c *Controller) burst(ctx context.Context, acq mode.Acquisition, led mode.LED) error {
	backend := c.Backend()
	layout := backend.Layout()
	n := max(acq.Shots, mode.MinBurst)

	c.acc.Reset(layout.Channels())
	for k := 1; k <= n; k++ {
		if !c.state.Busy() {
			break
		}
		c.sink.Text(fmt.Sprintf("Measure %d/%d", k, n))

		raw, err := c.capture(ctx, backend, led)
		if err != nil {
			return err
		}
		if err := c.acc.Add(raw); err != nil {
			return err
		}

		c.Yield()
		if err := c.Sleep(ctx, c.burstPause); err != nil {
			return err
		}
	}

	if !c.state.Busy() || c.acc.Count() < n {
		log.Printf("Burst cancelled after %d of %d shots", c.acc.Count(), n)
		return nil
	}
	c.publish(c.acc.Mean(), layout, acq, led, n)
	return nil
}

func (c *Controller) capture(ctx context.Context, backend sensor.Backend, led mode.LED) (sensor.Vector, error) {
	raw, err := backend.Capture(ctx, led)
	if err == nil {
		return raw, nil
	}

	if errors.Is(err, sensor.ErrCommunication) {
		c.sink.Text(TextSensorError)
		c.mu.Lock()
		c.backend = c.Fallback()
		c.mu.Unlock()
		log.Printf("Sensor communication failed, using simulated sensor for this session: %v", err)
	}
	return nil, err
}

func (c *Controller) publish(raw sensor.Vector, layout sensor.Layout, acq mode.Acquisition, led mode.LED, shots int) {
	values := spectrum.Normalize(raw)
	result := spectrum.Classify(raw, values, layout, c.method)

	reading := Reading{
		Time:   time.Now(),
		Raw:    raw,
		Values: values,
		Result: result,
		Layout: layout,
		Mode:   acq,
		LED:    led,
		Shots:  shots,
	}

	c.mu.Lock()
	c.last = &reading
	c.mu.Unlock()

	if result.Ripeness {
		c.sink.Ripeness(result.Score, values, acq.String(), led.String())
	} else {
		c.sink.Bars(string(result.Band), values, acq.String(), led.String())
	}

	c.notifyCallbacks(reading)
}

// notifyCallbacks invokes all registered callbacks without holding locks.
func (c *Controller) notifyCallbacks(reading Reading) {
	c.cbMu.RLock()
	callbacks := make([]func(Reading), len(c.callbacks))
	copy(callbacks, c.callbacks)
	c.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(reading)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
