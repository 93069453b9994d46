package mode

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSelector(t *testing.T) {
	tests := []struct {
		sel  int
		want Acquisition
	}{
		{sel: -3, want: Acquisition{Kind: Single}},
		{sel: 0, want: Acquisition{Kind: Single}},
		{sel: 1, want: Acquisition{Kind: Continuous}},
		{sel: 2, want: Acquisition{Kind: Burst, Shots: 2}},
		{sel: 10, want: Acquisition{Kind: Burst, Shots: 10}},
		{sel: 11, want: Acquisition{Kind: Burst, Shots: 10}},
	}

	for _, tt := range tests {
		got := FromSelector(tt.sel)
		assert.Equal(t, tt.want, got, "selector %d", tt.sel)
		assert.Equal(t, clampSelector(tt.sel), got.Selector())
	}
}

func TestAcquisition_String(t *testing.T) {
	assert.Equal(t, "Single Fire", Acquisition{Kind: Single}.String())
	assert.Equal(t, "Continuous", Acquisition{Kind: Continuous}.String())
	assert.Equal(t, "Burst 4", Acquisition{Kind: Burst, Shots: 4}.String())
}

func TestLED_Cycle(t *testing.T) {
	assert.Equal(t, LEDInternal, LEDNone.Next())
	assert.Equal(t, LEDExternal, LEDInternal.Next())
	assert.Equal(t, LEDBoth, LEDExternal.Next())
	assert.Equal(t, LEDNone, LEDBoth.Next())
	assert.Equal(t, LEDNone, LED(9).Next())
	assert.False(t, LED(9).Valid())
	assert.Equal(t, "Invalid Mode", LED(9).String())
}

func TestParse(t *testing.T) {
	led, err := ParseLED("external")
	require.NoError(t, err)
	assert.Equal(t, LEDExternal, led)

	_, err = ParseLED("strobe")
	assert.Error(t, err)

	acq, err := ParseAcquisition("burst5")
	require.NoError(t, err)
	assert.Equal(t, Acquisition{Kind: Burst, Shots: 5}, acq)

	acq, err = ParseAcquisition("continuous")
	require.NoError(t, err)
	assert.Equal(t, Continuous, acq.Kind)

	_, err = ParseAcquisition("burst1")
	assert.Error(t, err)
	_, err = ParseAcquisition("burst11")
	assert.Error(t, err)
}

func TestState_StepClamps(t *testing.T) {
	s := New(Acquisition{Kind: Burst, Shots: 10}, LEDInternal)
	assert.Equal(t, Acquisition{Kind: Burst, Shots: 10}, s.Step(+1))

	s.SetAcquisition(Acquisition{Kind: Single})
	assert.Equal(t, Acquisition{Kind: Single}, s.Step(-1))

	assert.Equal(t, Acquisition{Kind: Continuous}, s.Step(+1))
	assert.Equal(t, Acquisition{Kind: Burst, Shots: 2}, s.Step(+1))
}

func TestState_ToggleContinuous(t *testing.T) {
	s := New(Acquisition{Kind: Single}, LEDNone)
	assert.Equal(t, Continuous, s.ToggleContinuous().Kind)
	assert.Equal(t, Single, s.ToggleContinuous().Kind)

	s.SetAcquisition(Acquisition{Kind: Burst, Shots: 6})
	assert.Equal(t, Single, s.ToggleContinuous().Kind)
}

func TestState_Busy(t *testing.T) {
	s := New(Acquisition{Kind: Single}, LEDNone)
	assert.False(t, s.Busy())
	assert.True(t, s.TryBegin())
	assert.False(t, s.TryBegin(), "second protocol must be refused")
	assert.True(t, s.Cancel())
	assert.False(t, s.Busy())
	assert.False(t, s.Cancel())
	s.End()
	assert.False(t, s.Busy())
}

func TestState_ConcurrentTryBegin(t *testing.T) {
	s := New(Acquisition{Kind: Single}, LEDNone)

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.TryBegin() {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, winners)
}

func TestState_CycleLED(t *testing.T) {
	s := New(Acquisition{Kind: Single}, LEDBoth)
	assert.Equal(t, LEDNone, s.CycleLED())
	assert.Equal(t, LEDInternal, s.CycleLED())
	assert.Equal(t, LEDInternal, s.LED())
}
