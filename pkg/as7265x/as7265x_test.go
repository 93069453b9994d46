package as7265x

import (
	"errors"
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tinygo.org/x/drivers"
)

// fakeBus emulates the master's virtual register handshake.
type fakeBus struct {
	global map[byte]byte
	dies   [3]map[byte]byte

	pendingWrite int
	rx           byte
	rxPending    bool

	neverReady bool
	err        error

	bulbLog []bool
}

func newFakeBus() *fakeBus {
	b := &fakeBus{
		global:       map[byte]byte{HW_VERSION_HIGH: DEVICE_TYPE},
		pendingWrite: -1,
	}
	for i := range b.dies {
		b.dies[i] = map[byte]byte{}
	}
	return b
}

func perDie(reg byte) bool {
	return reg == LED_CONFIG || (reg >= R_G_A_CAL && reg < W_L_F_CAL+4)
}

func (b *fakeBus) regs(reg byte) map[byte]byte {
	if perDie(reg) {
		return b.dies[b.global[DEV_SELECT_CONTROL]]
	}
	return b.global
}

func (b *fakeBus) setFloat(die byte, channel int, v float32) {
	bits := math32.Float32bits(v)
	base := byte(R_G_A_CAL + 4*channel)
	for i := range 4 {
		b.dies[die][base+byte(i)] = byte(bits >> (24 - 8*i))
	}
}

func (b *fakeBus) Tx(addr uint16, w, r []byte) error {
	if b.err != nil {
		return b.err
	}
	if addr != Address {
		return errors.New("nack")
	}

	switch {
	case len(w) == 1 && len(r) == 1:
		switch w[0] {
		case STATUS_REG:
			r[0] = 0
			if b.rxPending {
				r[0] |= RX_VALID
			}
		case READ_REG:
			r[0] = b.rx
			b.rxPending = false
		}
	case len(w) == 2 && w[0] == WRITE_REG:
		b.writeVirtual(w[1])
	}
	return nil
}

func (b *fakeBus) writeVirtual(v byte) {
	if b.pendingWrite >= 0 {
		reg := byte(b.pendingWrite)
		b.pendingWrite = -1
		b.regs(reg)[reg] = v

		switch reg {
		case CONFIG:
			if (v&CONFIG_BANK_MASK)>>2 == MODE_6CHAN_ONE_SHOT && !b.neverReady {
				b.global[CONFIG] |= CONFIG_DATA_RDY
			}
		case LED_CONFIG:
			if b.global[DEV_SELECT_CONTROL] == NIR {
				b.bulbLog = append(b.bulbLog, v&LED_DRV_ENABLE != 0)
			}
		}
		return
	}
	if v&0x80 != 0 {
		b.pendingWrite = int(v & 0x7F)
		return
	}
	b.rx = b.regs(v)[v]
	b.rxPending = true
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

	bus.global[HW_VERSION_HIGH] = 0x11
	assert.False(t, newTestDevice(bus).Connected())

	bus.err = errors.New("bus fault")
	assert.False(t, newTestDevice(bus).Connected())
}

func TestConfigure(t *testing.T) {
	bus := newFakeBus()
	bus.dies[NIR][LED_CONFIG] = LED_DRV_ENABLE
	d := newTestDevice(bus)

	require.NoError(t, d.Configure(Config{Gain: GAIN_64X, IntegrationCycles: 20, BulbCurrent: LED_CURRENT_25MA}))

	assert.Equal(t, byte(20), bus.global[INTEGRATION_TIME])
	assert.Equal(t, byte(GAIN_64X)<<4, bus.global[CONFIG]&CONFIG_GAIN_MASK)
	assert.Equal(t, byte(MODE_6CHAN_ONE_SHOT)<<2, bus.global[CONFIG]&CONFIG_BANK_MASK)
	for die := range bus.dies {
		assert.Equal(t, byte(LED_CURRENT_25MA), bus.dies[die][LED_CONFIG], "die %d", die)
	}
}

func TestCalibratedOrder(t *testing.T) {
	bus := newFakeBus()
	for ch := range 6 {
		bus.setFloat(UV, ch, float32(100+ch))
		bus.setFloat(VIS, ch, float32(200+ch))
		bus.setFloat(NIR, ch, float32(300+ch))
	}
	d := newTestDevice(bus)

	got, err := d.Calibrated()
	require.NoError(t, err)

	// A..F, G, H, R, I, S, J, T, U, V, W, K, L
	want := [18]float32{
		100, 101, 102, 103, 104, 105,
		200, 201, 300, 202, 301, 203,
		302, 303, 304, 305, 204, 205,
	}
	assert.Equal(t, want, got)
	assert.Equal(t, want, d.Readings())
}

func TestTakeMeasurements_Bulb(t *testing.T) {
	bus := newFakeBus()
	d := newTestDevice(bus)

	require.NoError(t, d.TakeMeasurements(true))
	assert.Equal(t, []bool{true, false}, bus.bulbLog)
	assert.NotZero(t, bus.global[CONFIG]&CONFIG_DATA_RDY)

	bus.bulbLog = nil
	require.NoError(t, d.TakeMeasurements(false))
	assert.Empty(t, bus.bulbLog)
}

func TestTakeMeasurements_Timeout(t *testing.T) {
	bus := newFakeBus()
	bus.neverReady = true
	d := newTestDevice(bus)

	err := d.TakeMeasurements(true)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, []bool{true, false}, bus.bulbLog, "bulb must be switched off after a failed measurement")
}

func TestUpdate(t *testing.T) {
	bus := newFakeBus()
	bus.setFloat(UV, 0, 1.5)
	d := newTestDevice(bus)

	require.NoError(t, d.Update(drivers.Temperature))
	assert.Zero(t, d.Readings()[0])

	require.NoError(t, d.Update(drivers.Luminosity))
	assert.Equal(t, float32(1.5), d.Readings()[0])
}
