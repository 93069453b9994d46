// Package as7341 provides a driver for the AS7341 11-channel spectral
// sensor.
//
// The sensor has six ADCs. Reading all ten spectral channels takes two
// passes with different SMUX routings: F1..F4 first, then F5..F8. Clear and
// NIR are routed in both passes and reported from the first one.
package as7341

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

// ErrTimeout is returned when SMUX or spectral data never becomes ready.
var ErrTimeout = errors.New("as7341: timeout")

// Config holds the measurement settings written by Configure.
type Config struct {
	ATime      uint8
	AStep      uint16
	Gain       Gain   // zero selects GAIN_256X
	LEDCurrent uint16 // mA, 4..258
}

// Device wraps an I2C connection to an AS7341 device.
type Device struct {
	bus     drivers.I2C
	Address uint16

	// Sleep is used while polling. Defaults to time.Sleep.
	Sleep func(time.Duration)
	// MaxPolls bounds every poll loop.
	MaxPolls int

	atime    uint8
	astep    uint16
	channels [10]uint16
}

// New creates a new AS7341 connection. The I2C bus must already be
// configured.
//
// This function only creates the Device object, it does not touch the device.
func New(bus drivers.I2C) *Device {
	return &Device{
		bus:      bus,
		Address:  Address,
		Sleep:    time.Sleep,
		MaxPolls: 100,
		atime:    100,
		astep:    999,
	}
}

// Connected returns whether the device ID matches an AS7341.
func (d *Device) Connected() bool {
	id, err := d.read(ID)
	return err == nil && id>>2 == CHIP_ID
}

// Configure powers the device on and writes integration time, gain and LED
// drive current.
func (d *Device) Configure(cfg Config) error {
	if cfg.ATime == 0 && cfg.AStep == 0 {
		cfg.ATime, cfg.AStep = 100, 999
	}
	if cfg.Gain == 0 {
		cfg.Gain = GAIN_256X
	}
	if cfg.LEDCurrent < 4 {
		cfg.LEDCurrent = 10
	}
	d.atime, d.astep = cfg.ATime, cfg.AStep

	writes := [][2]byte{
		{ENABLE, ENABLE_PON},
		{ATIME, cfg.ATime},
		{ASTEP_L, byte(cfg.AStep)},
		{ASTEP_H, byte(cfg.AStep >> 8)},
		{CFG1, byte(cfg.Gain)},
	}
	for _, w := range writes {
		if err := d.write(w[0], w[1]); err != nil {
			return err
		}
	}
	return d.setLED(false, cfg.LEDCurrent)
}

// ReadAllChannels runs both SMUX passes and returns the channels in device
// order F1,F2,F3,F4,Clear,NIR,F5,F6,F7,F8. The onboard LED is lit for the
// duration when led is set.
func (d *Device) ReadAllChannels(led bool) ([10]uint16, error) {
	if led {
		if err := d.setLEDActive(true); err != nil {
			return d.channels, err
		}
		defer d.setLEDActive(false)
	}

	low, err := d.pass(smuxLow)
	if err != nil {
		return d.channels, err
	}
	high, err := d.pass(smuxHigh)
	if err != nil {
		return d.channels, err
	}

	copy(d.channels[:6], low[:])
	copy(d.channels[6:], high[:4])
	return d.channels, nil
}

// Update implements drivers.Sensor. Luminosity reads all channels without
// the LED.
func (d *Device) Update(which drivers.Measurement) error {
	if which&drivers.Luminosity == 0 {
		return nil
	}
	_, err := d.ReadAllChannels(false)
	return err
}

// Channels returns the readings from the last ReadAllChannels or Update.
func (d *Device) Channels() [10]uint16 {
	return d.channels
}

func (d *Device) pass(smux [20]byte) ([6]uint16, error) {
	var out [6]uint16

	if err := d.update(ENABLE, ENABLE_SP_EN, 0); err != nil {
		return out, err
	}
	if err := d.update(CFG6, CFG6_SMUX_MASK, CFG6_SMUX_WRITE); err != nil {
		return out, err
	}
	for i, v := range smux {
		if err := d.write(SMUX_CONFIG+byte(i), v); err != nil {
			return out, err
		}
	}
	if err := d.update(ENABLE, ENABLE_SMUXEN, ENABLE_SMUXEN); err != nil {
		return out, err
	}
	if err := d.poll(ENABLE, ENABLE_SMUXEN, false, time.Millisecond); err != nil {
		return out, err
	}

	if err := d.update(ENABLE, ENABLE_SP_EN, ENABLE_SP_EN); err != nil {
		return out, err
	}
	if err := d.poll(STATUS2, STATUS2_AVALID, true, d.integration()/time.Duration(d.MaxPolls)*3); err != nil {
		return out, err
	}

	buf := make([]byte, 12)
	if err := d.bus.Tx(d.Address, []byte{CH0_DATA_L}, buf); err != nil {
		return out, err
	}
	for i := range out {
		out[i] = uint16(buf[2*i]) | uint16(buf[2*i+1])<<8
	}
	return out, nil
}

// integration returns (ATIME+1)*(ASTEP+1)*2.78us.
func (d *Device) integration() time.Duration {
	return (time.Duration(d.atime) + 1) * time.Duration(uint32(d.astep)+1) * 2780 * time.Nanosecond
}

func (d *Device) setLED(on bool, mA uint16) error {
	steps := (mA - 4) / 2
	if steps > LED_DRIVE_MASK {
		steps = LED_DRIVE_MASK
	}
	drive := byte(steps)
	if on {
		drive |= LED_ACT
	}
	return d.inBank1(func() error {
		sel := byte(0)
		if on {
			sel = CONFIG_LED_SEL
		}
		if err := d.update(CONFIG, CONFIG_LED_SEL, sel); err != nil {
			return err
		}
		return d.write(LED, drive)
	})
}

func (d *Device) setLEDActive(on bool) error {
	return d.inBank1(func() error {
		sel, act := byte(0), byte(0)
		if on {
			sel, act = CONFIG_LED_SEL, LED_ACT
		}
		if err := d.update(CONFIG, CONFIG_LED_SEL, sel); err != nil {
			return err
		}
		return d.update(LED, LED_ACT, act)
	})
}

// inBank1 runs fn with registers 0x60..0x74 mapped.
func (d *Device) inBank1(fn func() error) error {
	if err := d.update(CFG0, CFG0_REG_BANK, CFG0_REG_BANK); err != nil {
		return err
	}
	err := fn()
	if berr := d.update(CFG0, CFG0_REG_BANK, 0); err == nil {
		err = berr
	}
	return err
}

func (d *Device) poll(reg, bit byte, set bool, step time.Duration) error {
	for range d.MaxPolls {
		v, err := d.read(reg)
		if err != nil {
			return err
		}
		if (v&bit != 0) == set {
			return nil
		}
		d.Sleep(step)
	}
	return ErrTimeout
}

func (d *Device) update(reg, mask, value byte) error {
	v, err := d.read(reg)
	if err != nil {
		return err
	}
	return d.write(reg, v&^mask|value&mask)
}

func (d *Device) read(reg byte) (byte, error) {
	buf := []byte{0}
	err := d.bus.Tx(d.Address, []byte{reg}, buf)
	return buf[0], err
}

func (d *Device) write(reg, value byte) error {
	return d.bus.Tx(d.Address, []byte{reg, value}, nil)
}
