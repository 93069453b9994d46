package acquire

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/gospectro/pkg/config"
	"github.com/itohio/gospectro/pkg/mode"
	"github.com/itohio/gospectro/pkg/render"
	"github.com/itohio/gospectro/pkg/sensor"
	"github.com/itohio/gospectro/pkg/spectrum"
)

// scriptedBackend returns vectors in order, repeating the last one.
type scriptedBackend struct {
	mu      sync.Mutex
	layout  sensor.Layout
	vectors []sensor.Vector
	err     error
	calls   int
	leds    []mode.LED

	// onCapture runs before returning the n-th (1-based) capture.
	onCapture func(n int)
}

func (b *scriptedBackend) Capture(_ context.Context, led mode.LED) (sensor.Vector, error) {
	b.mu.Lock()
	b.calls++
	n := b.calls
	b.leds = append(b.leds, led)
	b.mu.Unlock()

	if b.onCapture != nil {
		b.onCapture(n)
	}
	if b.err != nil {
		return nil, b.err
	}
	i := min(n-1, len(b.vectors)-1)
	return append(sensor.Vector(nil), b.vectors[i]...), nil
}

func (b *scriptedBackend) Layout() sensor.Layout { return b.layout }

func peak18(pos int, v float32) sensor.Vector {
	out := make(sensor.Vector, 18)
	out[pos-1] = v
	return out
}

func newTestController(state *mode.State, backend sensor.Backend) (*Controller, *render.Recorder) {
	rec := &render.Recorder{}
	c := New(state, backend, rec, &config.AcquisitionConfig{Classifier: "auto"})
	c.Yield = func() {}
	c.Sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return c, rec
}

func bars(rec *render.Recorder) []render.Screen {
	var out []render.Screen
	for _, s := range rec.Screens() {
		if s.Kind != render.KindText {
			out = append(out, s)
		}
	}
	return out
}

func TestAcquire_Single(t *testing.T) {
	state := mode.New(mode.Acquisition{Kind: mode.Single}, mode.LEDInternal)
	backend := &scriptedBackend{layout: sensor.Layout18, vectors: []sensor.Vector{peak18(10, 40)}}
	c, rec := newTestController(state, backend)

	var published []Reading
	c.OnPublish(func(r Reading) { published = append(published, r) })

	require.NoError(t, c.Acquire(context.Background()))

	assert.False(t, state.Busy())
	assert.Equal(t, 1, backend.calls)
	assert.Equal(t, []mode.LED{mode.LEDInternal}, backend.leds)
	assert.Equal(t, []string{TextMeasuring}, rec.Texts())

	screens := bars(rec)
	require.Len(t, screens, 1)
	assert.Equal(t, "Red", screens[0].Text)
	assert.Equal(t, "Single Fire", screens[0].ModeLabel)
	assert.Equal(t, "Internal LEDs", screens[0].LEDLabel)
	assert.Equal(t, uint8(69), screens[0].Values[9])

	require.Len(t, published, 1)
	assert.Equal(t, spectrum.Red, published[0].Result.Band)
	assert.Equal(t, 1, published[0].Shots)

	last, ok := c.Last()
	require.True(t, ok)
	assert.Equal(t, published[0].Values, last.Values)
}

func TestAcquire_Busy(t *testing.T) {
	state := mode.New(mode.Acquisition{Kind: mode.Single}, mode.LEDNone)
	backend := &scriptedBackend{layout: sensor.Layout18, vectors: []sensor.Vector{peak18(1, 5)}}
	c, rec := newTestController(state, backend)

	require.True(t, state.TryBegin())
	assert.ErrorIs(t, c.Acquire(context.Background()), ErrBusy)
	assert.True(t, state.Busy(), "a refused call must not clear the flag")
	assert.Zero(t, backend.calls)
	assert.Empty(t, rec.Screens())
}

func TestAcquire_ContinuousCancel(t *testing.T) {
	state := mode.New(mode.Acquisition{Kind: mode.Continuous}, mode.LEDNone)
	backend := &scriptedBackend{layout: sensor.Layout18, vectors: []sensor.Vector{peak18(1, 5)}}
	backend.onCapture = func(n int) {
		if n == 3 {
			// Button press while busy.
			assert.True(t, state.Cancel())
		}
	}
	c, rec := newTestController(state, backend)

	require.NoError(t, c.Acquire(context.Background()))

	assert.Equal(t, 3, backend.calls, "no capture after the cancelling boundary")
	assert.Len(t, bars(rec), 3)
	assert.False(t, state.Busy())
}

func TestAcquire_ContinuousContext(t *testing.T) {
	state := mode.New(mode.Acquisition{Kind: mode.Continuous}, mode.LEDNone)
	ctx, cancel := context.WithCancel(context.Background())
	backend := &scriptedBackend{layout: sensor.Layout18, vectors: []sensor.Vector{peak18(1, 5)}}
	backend.onCapture = func(n int) {
		if n == 2 {
			cancel()
		}
	}
	c, _ := newTestController(state, backend)

	err := c.Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, backend.calls)
	assert.False(t, state.Busy())
}

func TestAcquire_Burst(t *testing.T) {
	state := mode.New(mode.FromSelector(3), mode.LEDBoth)
	backend := &scriptedBackend{
		layout: sensor.Layout18,
		vectors: []sensor.Vector{
			peak18(2, 30),
			peak18(2, 60),
			peak18(2, 90),
		},
	}
	c, rec := newTestController(state, backend)

	var published []Reading
	c.OnPublish(func(r Reading) { published = append(published, r) })

	require.NoError(t, c.Acquire(context.Background()))

	assert.Equal(t, []string{TextMeasuring, "Measure 1/3", "Measure 2/3", "Measure 3/3"}, rec.Texts())
	require.Len(t, published, 1)
	assert.Equal(t, float32(60), published[0].Raw[1])
	assert.Equal(t, 3, published[0].Shots)
	assert.Equal(t, spectrum.Blue, published[0].Result.Band)

	screens := bars(rec)
	require.Len(t, screens, 1)
	assert.Equal(t, "Burst 3", screens[0].ModeLabel)
	assert.Equal(t, "All LEDs", screens[0].LEDLabel)
	assert.False(t, state.Busy())
}

func TestAcquire_BurstCancelled(t *testing.T) {
	for _, cancelAt := range []int{1, 2, 4} {
		t.Run(fmt.Sprintf("cancel at shot %d", cancelAt), func(t *testing.T) {
			state := mode.New(mode.FromSelector(4), mode.LEDNone)
			backend := &scriptedBackend{layout: sensor.Layout18, vectors: []sensor.Vector{peak18(5, 10)}}
			backend.onCapture = func(n int) {
				if n == cancelAt {
					state.Cancel()
				}
			}
			c, rec := newTestController(state, backend)

			published := 0
			c.OnPublish(func(Reading) { published++ })

			require.NoError(t, c.Acquire(context.Background()))
			assert.Equal(t, cancelAt, backend.calls)
			assert.Zero(t, published)
			assert.Empty(t, bars(rec))
			_, ok := c.Last()
			assert.False(t, ok)
			assert.False(t, state.Busy())
		})
	}
}

func TestAcquire_CommunicationFallback(t *testing.T) {
	state := mode.New(mode.Acquisition{Kind: mode.Single}, mode.LEDNone)
	broken := &scriptedBackend{
		layout: sensor.Layout10,
		err:    fmt.Errorf("%w: read channels: %w", sensor.ErrCommunication, errors.New("nack")),
	}
	fallback := &scriptedBackend{layout: sensor.LayoutSimulated, vectors: []sensor.Vector{peak18(1, 50)}}
	c, rec := newTestController(state, broken)
	c.Fallback = func() sensor.Backend { return fallback }

	err := c.Acquire(context.Background())
	assert.ErrorIs(t, err, sensor.ErrCommunication)
	assert.Equal(t, []string{TextMeasuring, TextSensorError}, rec.Texts())
	assert.Empty(t, bars(rec))
	assert.False(t, state.Busy())
	assert.Same(t, fallback, c.Backend())

	require.NoError(t, c.Acquire(context.Background()))
	assert.Equal(t, 1, broken.calls, "the broken backend is not retried")
	assert.Equal(t, 1, fallback.calls)
}

func TestAcquire_RipenessForDevice10(t *testing.T) {
	state := mode.New(mode.Acquisition{Kind: mode.Single}, mode.LEDInternal)
	raw := sensor.Vector{1, 1, 1, 1, 40, 1, 1, 60, 1, 69}
	backend := &scriptedBackend{layout: sensor.Layout10, vectors: []sensor.Vector{raw}}
	c, rec := newTestController(state, backend)

	require.NoError(t, c.Acquire(context.Background()))

	screens := bars(rec)
	require.Len(t, screens, 1)
	assert.Equal(t, render.KindRipeness, screens[0].Kind)
	n := spectrum.Normalize(raw)
	assert.Equal(t, spectrum.ClassifyRipeness(n, 7, 4), screens[0].Score)
}

func TestRedraw(t *testing.T) {
	state := mode.New(mode.Acquisition{Kind: mode.Single}, mode.LEDNone)
	backend := &scriptedBackend{layout: sensor.Layout18, vectors: []sensor.Vector{peak18(1, 10)}}
	c, rec := newTestController(state, backend)

	c.Redraw()
	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, TextReady, last.Text)
	assert.Empty(t, last.Values)

	require.NoError(t, c.Acquire(context.Background()))
	state.Step(+1)
	state.CycleLED()
	c.Redraw()

	last, _ = rec.Last()
	assert.Equal(t, TextReady, last.Text)
	assert.Equal(t, uint8(69), last.Values[0])
	assert.Equal(t, "Continuous", last.ModeLabel)
	assert.Equal(t, "Internal LEDs", last.LEDLabel)
}
