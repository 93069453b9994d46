// Package as7265x provides a driver for the AS7265x 18-channel spectral
// sensor triad (AS72651 master with AS72652 and AS72653 slaves).
//
// The master exposes a virtual register file behind three physical I2C
// registers. Every virtual access polls the STATUS register for the
// TX_VALID and RX_VALID handshake bits.
package as7265x

import (
	"errors"
	"time"

	"github.com/chewxy/math32"
	"tinygo.org/x/drivers"
)

// ErrTimeout is returned when the virtual register handshake or a
// measurement does not complete in time.
var ErrTimeout = errors.New("as7265x: timeout")

// Config holds the measurement settings written by Configure.
type Config struct {
	Gain              Gain
	IntegrationCycles uint8 // 2.8ms per cycle
	BulbCurrent       uint8 // one of LED_CURRENT_*
}

// Device wraps an I2C connection to an AS7265x triad.
type Device struct {
	bus     drivers.I2C
	Address uint16

	// Sleep is used while polling. Defaults to time.Sleep.
	Sleep func(time.Duration)
	// MaxPolls bounds every STATUS poll loop.
	MaxPolls int

	cycles   uint8
	readings [18]float32
}

// New creates a new AS7265x connection. The I2C bus must already be
// configured.
//
// This function only creates the Device object, it does not touch the device.
func New(bus drivers.I2C) *Device {
	return &Device{
		bus:      bus,
		Address:  Address,
		Sleep:    time.Sleep,
		MaxPolls: 100,
		cycles:   49,
	}
}

// Connected returns whether an AS7265x master answers on the bus.
func (d *Device) Connected() bool {
	v, err := d.readVirtual(HW_VERSION_HIGH)
	return err == nil && v == DEVICE_TYPE
}

// Configure sets gain, integration time and bulb current, turns all bulbs
// off and selects one-shot six channel mode.
func (d *Device) Configure(cfg Config) error {
	if cfg.IntegrationCycles == 0 {
		cfg.IntegrationCycles = 49
	}
	d.cycles = cfg.IntegrationCycles

	if err := d.writeVirtual(INTEGRATION_TIME, cfg.IntegrationCycles); err != nil {
		return err
	}
	if err := d.updateVirtual(CONFIG, CONFIG_GAIN_MASK, byte(cfg.Gain)<<4); err != nil {
		return err
	}
	for _, die := range []byte{NIR, VIS, UV} {
		if err := d.selectDevice(die); err != nil {
			return err
		}
		if err := d.updateVirtual(LED_CONFIG, LED_CURRENT_MASK|LED_DRV_ENABLE, cfg.BulbCurrent&LED_CURRENT_MASK); err != nil {
			return err
		}
	}
	return d.setMode(MODE_6CHAN_ONE_SHOT)
}

// TakeMeasurements runs one six channel one-shot conversion on all dies,
// with the white bulb on when bulb is set.
func (d *Device) TakeMeasurements(bulb bool) error {
	if bulb {
		if err := d.setBulb(NIR, true); err != nil {
			return err
		}
	}

	err := d.measure()

	if bulb {
		if berr := d.setBulb(NIR, false); err == nil {
			err = berr
		}
	}
	return err
}

// Calibrated reads the calibrated channels of all dies in wavelength order
// A,B,C,D,E,F,G,H,R,I,S,J,T,U,V,W,K,L.
func (d *Device) Calibrated() ([18]float32, error) {
	var uv, vis, nir [6]float32
	for _, die := range []struct {
		sel byte
		out *[6]float32
	}{{UV, &uv}, {VIS, &vis}, {NIR, &nir}} {
		if err := d.selectDevice(die.sel); err != nil {
			return d.readings, err
		}
		for i := range 6 {
			v, err := d.readFloat(byte(R_G_A_CAL + 4*i))
			if err != nil {
				return d.readings, err
			}
			die.out[i] = v
		}
	}

	d.readings = [18]float32{
		uv[0], uv[1], uv[2], uv[3], uv[4], uv[5],
		vis[0], vis[1], nir[0], vis[2], nir[1], vis[3],
		nir[2], nir[3], nir[4], nir[5], vis[4], vis[5],
	}
	return d.readings, nil
}

// Update implements drivers.Sensor. Luminosity triggers a measurement
// without the bulb and refreshes the calibrated readings.
func (d *Device) Update(which drivers.Measurement) error {
	if which&drivers.Luminosity == 0 {
		return nil
	}
	if err := d.TakeMeasurements(false); err != nil {
		return err
	}
	_, err := d.Calibrated()
	return err
}

// Readings returns the channels from the last Calibrated or Update call.
func (d *Device) Readings() [18]float32 {
	return d.readings
}

func (d *Device) measure() error {
	if err := d.setMode(MODE_6CHAN_ONE_SHOT); err != nil {
		return err
	}

	// Integration time times two conversions, with margin.
	wait := (time.Duration(d.cycles) + 1) * 2800 * time.Microsecond * 3
	step := wait / time.Duration(d.MaxPolls)
	for range d.MaxPolls {
		v, err := d.readVirtual(CONFIG)
		if err != nil {
			return err
		}
		if v&CONFIG_DATA_RDY != 0 {
			return nil
		}
		d.Sleep(step)
	}
	return ErrTimeout
}

func (d *Device) setMode(mode byte) error {
	return d.updateVirtual(CONFIG, CONFIG_BANK_MASK, mode<<2)
}

func (d *Device) setBulb(die byte, on bool) error {
	if err := d.selectDevice(die); err != nil {
		return err
	}
	var v byte
	if on {
		v = LED_DRV_ENABLE
	}
	return d.updateVirtual(LED_CONFIG, LED_DRV_ENABLE, v)
}

func (d *Device) selectDevice(die byte) error {
	return d.writeVirtual(DEV_SELECT_CONTROL, die)
}

func (d *Device) readFloat(reg byte) (float32, error) {
	var bits uint32
	for i := range 4 {
		b, err := d.readVirtual(reg + byte(i))
		if err != nil {
			return 0, err
		}
		bits = bits<<8 | uint32(b)
	}
	return math32.Float32frombits(bits), nil
}

func (d *Device) updateVirtual(reg, mask, value byte) error {
	v, err := d.readVirtual(reg)
	if err != nil {
		return err
	}
	return d.writeVirtual(reg, v&^mask|value&mask)
}

func (d *Device) readVirtual(reg byte) (byte, error) {
	status, err := d.status()
	if err != nil {
		return 0, err
	}
	if status&RX_VALID != 0 {
		// Drop a stale byte left in the read register.
		if _, err := d.read(READ_REG); err != nil {
			return 0, err
		}
	}

	if err := d.waitStatus(TX_VALID, false); err != nil {
		return 0, err
	}
	if err := d.write(WRITE_REG, reg); err != nil {
		return 0, err
	}
	if err := d.waitStatus(RX_VALID, true); err != nil {
		return 0, err
	}
	return d.read(READ_REG)
}

func (d *Device) writeVirtual(reg, value byte) error {
	if err := d.waitStatus(TX_VALID, false); err != nil {
		return err
	}
	if err := d.write(WRITE_REG, reg|0x80); err != nil {
		return err
	}
	if err := d.waitStatus(TX_VALID, false); err != nil {
		return err
	}
	return d.write(WRITE_REG, value)
}

func (d *Device) waitStatus(bit byte, set bool) error {
	for range d.MaxPolls {
		s, err := d.status()
		if err != nil {
			return err
		}
		if (s&bit != 0) == set {
			return nil
		}
		d.Sleep(time.Millisecond)
	}
	return ErrTimeout
}

func (d *Device) status() (byte, error) {
	return d.read(STATUS_REG)
}

func (d *Device) read(reg byte) (byte, error) {
	buf := []byte{0}
	err := d.bus.Tx(d.Address, []byte{reg}, buf)
	return buf[0], err
}

func (d *Device) write(reg, value byte) error {
	return d.bus.Tx(d.Address, []byte{reg, value}, nil)
}
