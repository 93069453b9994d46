package render

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMulti(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	m := Multi{a, b}

	m.Text("Ready")
	m.Bars("Green", []uint8{1, 69}, "Single Fire", "No LEDs")
	m.Ripeness(42, []uint8{3}, "Burst 4", "All LEDs")

	for _, r := range []*Recorder{a, b} {
		screens := r.Screens()
		require.Len(t, screens, 3)
		assert.Equal(t, Screen{Kind: KindText, Text: "Ready"}, screens[0])
		assert.Equal(t, Screen{Kind: KindBars, Text: "Green", Values: []uint8{1, 69}, ModeLabel: "Single Fire", LEDLabel: "No LEDs"}, screens[1])
		assert.Equal(t, KindRipeness, screens[2].Kind)
		assert.Equal(t, uint8(42), screens[2].Score)
	}
}

func TestRecorder_CopiesValues(t *testing.T) {
	r := &Recorder{}
	values := []uint8{1, 2, 3}
	r.Bars("Red", values, "", "")
	values[0] = 99

	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, []uint8{1, 2, 3}, last.Values)
}

func TestRecorder_Texts(t *testing.T) {
	r := &Recorder{}
	_, ok := r.Last()
	assert.False(t, ok)

	r.Text("Measuring...")
	r.Bars("Red", nil, "", "")
	r.Text("Ready")
	assert.Equal(t, []string{"Measuring...", "Ready"}, r.Texts())
}

func TestHistogram(t *testing.T) {
	assert.Equal(t, " ▄█", Histogram([]uint8{0, 35, 69}))
	assert.Equal(t, "█", Histogram([]uint8{255}))
	assert.Empty(t, Histogram(nil))
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	flags := log.Flags()
	log.SetFlags(0)
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	}()

	l := &Log{Prefix: "panel: "}
	l.Text("Ready")
	l.Bars("Blue", []uint8{69}, "Continuous", "Internal LEDs")
	l.Ripeness(7, []uint8{0}, "Single Fire", "No LEDs")

	assert.Equal(t,
		"panel: Ready\n"+
			"panel: Blue [Continuous, Internal LEDs] █\n"+
			"panel: ripeness 7 [Single Fire, No LEDs]  \n",
		buf.String())
}
