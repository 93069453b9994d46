package as7341

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tinygo.org/x/drivers"
)

// fakeBus is a register file that applies SMUX routings and produces data
// for whichever routing is active.
type fakeBus struct {
	regs [256]byte

	low, high [6]uint16
	active    [6]uint16

	smuxStuck bool
	err       error

	bankViolations int
	ledDuringData  []bool
}

func newFakeBus() *fakeBus {
	b := &fakeBus{}
	b.regs[ID] = CHIP_ID<<2 | 0x01
	return b
}

func (b *fakeBus) Tx(addr uint16, w, r []byte) error {
	if b.err != nil {
		return b.err
	}
	if addr != Address {
		return errors.New("nack")
	}
	reg := w[0]

	if len(w) == 2 {
		if (reg == CONFIG || reg == LED) && b.regs[CFG0]&CFG0_REG_BANK == 0 {
			b.bankViolations++
		}
		b.write(reg, w[1])
		return nil
	}

	if reg == CH0_DATA_L {
		for i, v := range b.active {
			r[2*i] = byte(v)
			r[2*i+1] = byte(v >> 8)
		}
		b.ledDuringData = append(b.ledDuringData, b.regs[LED]&LED_ACT != 0)
		return nil
	}
	copy(r, b.regs[reg:])
	return nil
}

func (b *fakeBus) write(reg, v byte) {
	b.regs[reg] = v
	if reg != ENABLE {
		return
	}

	if v&ENABLE_SMUXEN != 0 && !b.smuxStuck {
		switch [20]byte(b.regs[SMUX_CONFIG : SMUX_CONFIG+20]) {
		case smuxLow:
			b.active = b.low
		case smuxHigh:
			b.active = b.high
		}
		b.regs[ENABLE] &^= ENABLE_SMUXEN
	}
	if v&ENABLE_SP_EN != 0 {
		b.regs[STATUS2] |= STATUS2_AVALID
	} else {
		b.regs[STATUS2] &^= STATUS2_AVALID
	}
}

func newTestDevice(bus drivers.I2C) *Device {
	d := New(bus)
	d.Sleep = func(time.Duration) {}
	d.MaxPolls = 5
	return d
}

func TestConnected(t *testing.T) {
	bus := newFakeBus()
	assert.True(t, newTestDevice(bus).Connected())

	bus.regs[ID] = 0x40
	assert.False(t, newTestDevice(bus).Connected())

	bus.err = errors.New("bus fault")
	assert.False(t, newTestDevice(bus).Connected())
}

func TestConfigure(t *testing.T) {
	bus := newFakeBus()
	d := newTestDevice(bus)

	require.NoError(t, d.Configure(Config{ATime: 29, AStep: 599, Gain: GAIN_64X, LEDCurrent: 20}))

	assert.Equal(t, byte(ENABLE_PON), bus.regs[ENABLE]&ENABLE_PON)
	assert.Equal(t, byte(29), bus.regs[ATIME])
	assert.Equal(t, byte(599&0xFF), bus.regs[ASTEP_L])
	assert.Equal(t, byte(599>>8), bus.regs[ASTEP_H])
	assert.Equal(t, byte(GAIN_64X), bus.regs[CFG1])
	assert.Equal(t, byte(8), bus.regs[LED], "20mA is (20-4)/2 steps, LED off")
	assert.Zero(t, bus.regs[CFG0]&CFG0_REG_BANK, "bank must be restored")
	assert.Zero(t, bus.bankViolations)
}

func TestReadAllChannels(t *testing.T) {
	bus := newFakeBus()
	bus.low = [6]uint16{10, 20, 30, 40, 5, 90}
	bus.high = [6]uint16{50, 60, 70, 80, 6, 91}
	d := newTestDevice(bus)

	got, err := d.ReadAllChannels(false)
	require.NoError(t, err)

	assert.Equal(t, [10]uint16{10, 20, 30, 40, 5, 90, 50, 60, 70, 80}, got)
	assert.Equal(t, got, d.Channels())
	assert.Equal(t, []bool{false, false}, bus.ledDuringData)
}

func TestReadAllChannels_LED(t *testing.T) {
	bus := newFakeBus()
	d := newTestDevice(bus)

	_, err := d.ReadAllChannels(true)
	require.NoError(t, err)

	assert.Equal(t, []bool{true, true}, bus.ledDuringData)
	assert.Zero(t, bus.regs[LED]&LED_ACT, "LED must be off afterwards")
	assert.Zero(t, bus.regs[CFG0]&CFG0_REG_BANK)
	assert.Zero(t, bus.bankViolations)
}

func TestReadAllChannels_SMUXTimeout(t *testing.T) {
	bus := newFakeBus()
	bus.smuxStuck = true
	d := newTestDevice(bus)

	_, err := d.ReadAllChannels(true)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Zero(t, bus.regs[LED]&LED_ACT)
}

func TestUpdate(t *testing.T) {
	bus := newFakeBus()
	bus.low = [6]uint16{1, 2, 3, 4, 5, 6}
	d := newTestDevice(bus)

	require.NoError(t, d.Update(drivers.Humidity))
	assert.Zero(t, d.Channels()[0])

	require.NoError(t, d.Update(drivers.Luminosity))
	assert.Equal(t, uint16(1), d.Channels()[0])
}
