// Package spectrum turns raw channel vectors into display values and
// classification results.
package spectrum

import (
	"github.com/chewxy/math32"

	"github.com/itohio/gospectro/pkg/sensor"
)

// Scale is the normalized value of the strongest channel.
const Scale = 69

// Normalized holds channel values scaled to [0, Scale].
type Normalized []uint8

// Normalize scales raw so that its maximum maps to Scale. When no channel
// is above zero every output is zero.
func Normalize(raw sensor.Vector) Normalized {
	out := make(Normalized, len(raw))

	var maxVal float32
	for _, v := range raw {
		maxVal = math32.Max(maxVal, v)
	}
	if maxVal <= 0 {
		return out
	}

	for i, v := range raw {
		x := math32.Round(v / maxVal * Scale)
		x = math32.Max(0, math32.Min(Scale, x))
		out[i] = uint8(x)
	}
	return out
}
