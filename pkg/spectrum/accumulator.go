package spectrum

import (
	"fmt"

	"github.com/itohio/gospectro/pkg/sensor"
)

// Accumulator sums burst shots per channel.
type Accumulator struct {
	sums  []float64
	count int
}

// Reset clears the sums and sizes the buffer for channels.
func (a *Accumulator) Reset(channels int) {
	if cap(a.sums) < channels {
		a.sums = make([]float64, channels)
	}
	a.sums = a.sums[:channels]
	clear(a.sums)
	a.count = 0
}

// Add adds one shot.
func (a *Accumulator) Add(raw sensor.Vector) error {
	if len(raw) != len(a.sums) {
		return fmt.Errorf("shot has %d channels, accumulator has %d", len(raw), len(a.sums))
	}
	for i, v := range raw {
		a.sums[i] += float64(v)
	}
	a.count++
	return nil
}

// Count returns the number of accumulated shots.
func (a *Accumulator) Count() int {
	return a.count
}

// Mean returns the per-channel average, or nil when nothing was added.
func (a *Accumulator) Mean() sensor.Vector {
	if a.count == 0 {
		return nil
	}
	out := make(sensor.Vector, len(a.sums))
	n := float64(a.count)
	for i, s := range a.sums {
		out[i] = float32(s / n)
	}
	return out
}
