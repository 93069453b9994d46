// Package instrument wires the sensor, acquisition controller, input machine
// and render sinks into the handheld's main loop.
package instrument

import (
	"context"
	"errors"
	"fmt"
	"log"

	"tinygo.org/x/drivers"

	"github.com/itohio/gospectro/pkg/acquire"
	"github.com/itohio/gospectro/pkg/config"
	"github.com/itohio/gospectro/pkg/input"
	"github.com/itohio/gospectro/pkg/mode"
	"github.com/itohio/gospectro/pkg/render"
	"github.com/itohio/gospectro/pkg/sensor"
)

// Instrument is one running handheld.
type Instrument struct {
	State      *mode.State
	Controller *acquire.Controller
	Input      *input.Machine
}

// New builds the mode state, controller and input machine from cfg.
func New(cfg *config.Config, backend sensor.Backend, sink render.Sink, p input.Platform) (*Instrument, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	acq, err := mode.ParseAcquisition(cfg.Acquisition.Mode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse acquisition mode: %w", err)
	}
	led, err := mode.ParseLED(cfg.Acquisition.LED)
	if err != nil {
		return nil, fmt.Errorf("failed to parse led mode: %w", err)
	}

	state := mode.New(acq, led)
	return &Instrument{
		State:      state,
		Controller: acquire.New(state, backend, sink, &cfg.Acquisition),
		Input:      input.New(state, p, &cfg.Input),
	}, nil
}

// Run draws the ready screen and executes input commands until ctx ends.
func (in *Instrument) Run(ctx context.Context) error {
	log.Printf("Instrument started: %s backend, %s, %s",
		in.Controller.Backend().Layout().Kind, in.State.Acquisition(), in.State.LED())
	in.Controller.Redraw()

	var dropped uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-in.Input.Commands():
			in.dispatch(ctx, cmd)
		}

		if n := in.Input.Dropped(); n != dropped {
			log.Printf("Input queue full, %d commands dropped", n-dropped)
			dropped = n
		}
	}
}

func (in *Instrument) dispatch(ctx context.Context, cmd input.Command) {
	switch cmd {
	case input.CmdStart:
		err := in.Controller.Acquire(ctx)
		if errors.Is(err, acquire.ErrBusy) {
			log.Printf("Start ignored, acquisition already running")
		}
	case input.CmdRedraw:
		in.Controller.Redraw()
	default:
		log.Printf("Unknown command: %v", cmd)
	}
}

// SelectBackend picks the sensor backend at boot. Backend "auto" probes the
// bus; an explicit device that does not answer falls back to the simulated
// sensor. Only an unknown backend name is an error.
func SelectBackend(cfg *config.SensorConfig, bus drivers.I2C, lamp sensor.Lamp) (sensor.Backend, error) {
	if cfg == nil {
		cfg = &config.Default().Sensor
	}

	var kind sensor.Kind
	if cfg.Backend == "" || cfg.Backend == "auto" {
		kind = sensor.Detect(bus)
	} else {
		var err error
		kind, err = sensor.ParseKind(cfg.Backend)
		if err != nil {
			return nil, err
		}
	}

	backend, err := sensor.Open(kind, bus, lamp, cfg)
	if err != nil {
		log.Printf("Sensor %s not available, using simulated sensor: %v", kind, err)
		return sensor.NewSimulated(cfg), nil
	}
	log.Printf("Sensor backend: %s", kind)
	return backend, nil
}
