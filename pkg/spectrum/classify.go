package spectrum

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/itohio/gospectro/pkg/sensor"
)

// Band is a dominant wavelength band label.
type Band string

const (
	Violet  Band = "Violet"
	Blue    Band = "Blue"
	Green   Band = "Green"
	Yellow  Band = "Yellow"
	Orange  Band = "Orange"
	Red     Band = "Red"
	NIR     Band = "NIR"
	NoLight Band = "No Light"
)

// MaxRipeness is the upper bound of the ripeness score.
const MaxRipeness = 158

// ripenessOffset is subtracted from the red/green ratio.
const ripenessOffset = 0.7

// bucket maps the last 1-based channel position of a band to the band.
type bucket struct {
	upTo int
	band Band
}

var buckets18 = []bucket{
	{1, Violet}, {3, Blue}, {5, Green}, {7, Yellow}, {9, Orange}, {14, Red},
}

var buckets10 = []bucket{
	{1, Violet}, {3, Blue}, {5, Green}, {6, Yellow}, {7, Orange}, {8, Red},
}

// ClassifyBand returns the band of the strongest channel. The trailing Clear
// channel is ignored when the layout has one, and ties go to the lowest
// index. A maximum of 1 or less is reported as NoLight.
func ClassifyBand(raw sensor.Vector, layout sensor.Layout) Band {
	n := len(raw)
	if layout.HasClear && n > 0 {
		n--
	}

	var maxVal float32
	idx := -1
	for i := range n {
		if idx < 0 || raw[i] > maxVal {
			maxVal, idx = raw[i], i
		}
	}
	if idx < 0 || maxVal <= 1 {
		return NoLight
	}

	table := buckets18
	if layout.Kind == sensor.KindDevice10 {
		table = buckets10
	}

	pos := idx + 1
	for _, b := range table {
		if pos <= b.upTo {
			return b.band
		}
	}
	return NIR
}

// ClassifyRipeness maps the red to green ratio of a normalized vector onto
// [0, MaxRipeness]. A zero green channel or an out of range index gives 0.
func ClassifyRipeness(n Normalized, red, green int) uint8 {
	if red < 0 || green < 0 || red >= len(n) || green >= len(n) || n[green] == 0 {
		return 0
	}

	ratio := float32(n[red])/float32(n[green]) - ripenessOffset
	ratio = math32.Max(0, math32.Min(1, ratio))
	return uint8(math32.Trunc(ratio * MaxRipeness))
}

// Method selects how results are classified.
type Method uint8

const (
	MethodAuto Method = iota // ripeness for Device10, band otherwise
	MethodBand
	MethodRipeness
)

func (m Method) String() string {
	switch m {
	case MethodAuto:
		return "auto"
	case MethodBand:
		return "band"
	case MethodRipeness:
		return "ripeness"
	default:
		return fmt.Sprintf("method(%d)", uint8(m))
	}
}

// ParseMethod parses a classifier method name.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "auto", "":
		return MethodAuto, nil
	case "band":
		return MethodBand, nil
	case "ripeness":
		return MethodRipeness, nil
	}
	return MethodAuto, fmt.Errorf("unknown classifier %q", s)
}

// Result is either a band label or a ripeness score.
type Result struct {
	Ripeness bool
	Band     Band
	Score    uint8
}

func (r Result) String() string {
	if r.Ripeness {
		return fmt.Sprintf("ripeness %d", r.Score)
	}
	return string(r.Band)
}

// Resolve returns the concrete method used for a layout.
func (m Method) Resolve(layout sensor.Layout) Method {
	if m != MethodAuto {
		return m
	}
	if layout.Kind == sensor.KindDevice10 {
		return MethodRipeness
	}
	return MethodBand
}

// Classify applies method to one reading.
func Classify(raw sensor.Vector, n Normalized, layout sensor.Layout, method Method) Result {
	if method.Resolve(layout) == MethodRipeness {
		return Result{Ripeness: true, Score: ClassifyRipeness(n, layout.Red, layout.Green)}
	}
	return Result{Band: ClassifyBand(raw, layout)}
}
