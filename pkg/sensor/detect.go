package sensor

import (
	"fmt"

	"tinygo.org/x/drivers"

	"github.com/itohio/gospectro/pkg/as7265x"
	"github.com/itohio/gospectro/pkg/as7341"
	"github.com/itohio/gospectro/pkg/config"
)

// Detect probes bus for a supported sensor. The 18-channel triad is checked
// first. KindNone means nothing answered.
func Detect(bus drivers.I2C) Kind {
	if bus == nil {
		return KindNone
	}
	if as7265x.New(bus).Connected() {
		return KindDevice18
	}
	if as7341.New(bus).Connected() {
		return KindDevice10
	}
	return KindNone
}

// Open configures the sensor of the given kind on bus and wraps it in a
// backend. KindNone returns a simulated backend.
func Open(kind Kind, bus drivers.I2C, lamp Lamp, cfg *config.SensorConfig) (Backend, error) {
	switch kind {
	case KindNone:
		return NewSimulated(cfg), nil

	case KindDevice18:
		if bus == nil {
			return nil, ErrSensorUnavailable
		}
		dev := as7265x.New(bus)
		if !dev.Connected() {
			return nil, ErrSensorUnavailable
		}
		err := dev.Configure(as7265x.Config{
			Gain:              as7265x.GAIN_64X,
			IntegrationCycles: 49,
			BulbCurrent:       as7265x.LED_CURRENT_12_5MA,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: configure device18: %w", ErrCommunication, err)
		}
		return NewDevice18(dev, lamp), nil

	case KindDevice10:
		if bus == nil {
			return nil, ErrSensorUnavailable
		}
		dev := as7341.New(bus)
		if !dev.Connected() {
			return nil, ErrSensorUnavailable
		}
		err := dev.Configure(as7341.Config{
			ATime:      100,
			AStep:      999,
			Gain:       as7341.GAIN_256X,
			LEDCurrent: 10,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: configure device10: %w", ErrCommunication, err)
		}
		return NewDevice10(dev, lamp), nil
	}
	return nil, fmt.Errorf("unsupported sensor kind %v", kind)
}
