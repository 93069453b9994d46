package sensor

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/itohio/gospectro/pkg/config"
	"github.com/itohio/gospectro/pkg/mode"
)

// simulatedMax bounds simulated readings: values are drawn from [0, 68).
const simulatedMax = 68

// Simulated produces random 18-channel readings for running without a
// sensor.
type Simulated struct {
	delay time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulated creates a simulated backend. A zero seed seeds from the
// clock.
func NewSimulated(cfg *config.SensorConfig) *Simulated {
	if cfg == nil {
		cfg = &config.SensorConfig{
			SimulatedDelay: 750 * time.Millisecond,
		}
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return &Simulated{
		delay: cfg.SimulatedDelay,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Layout returns the simulated 18-channel layout.
func (s *Simulated) Layout() Layout {
	return LayoutSimulated
}

// Capture waits for the emulated integration time and returns random
// channels. The LED mode is ignored.
func (s *Simulated) Capture(ctx context.Context, _ mode.LED) (Vector, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(Vector, LayoutSimulated.Channels())
	for i := range out {
		out[i] = float32(s.rng.IntN(simulatedMax))
	}
	return out, nil
}
