// Package scope provides a fyne widget that plots a spectrum as colored
// channel bars.
package scope

import (
	"image/color"
	"strconv"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// FullScale is the bar value drawn at the top of the plot.
const FullScale = 69

// SpectrumWidget is a custom Fyne widget that displays normalized channels
// as a bar chart.
type SpectrumWidget struct {
	widget.BaseWidget

	// Data (protected by mu)
	mu     sync.RWMutex
	title  string
	names  []string
	values []uint8
}

// New creates a new SpectrumWidget instance.
func New() *SpectrumWidget {
	s := &SpectrumWidget{}
	s.ExtendBaseWidget(s)
	return s
}

// UpdateData replaces the plotted spectrum. Names label the channels and may
// be shorter than values. Call it on the fyne main thread.
func (s *SpectrumWidget) UpdateData(title string, names []string, values []uint8) {
	s.mu.Lock()
	s.title = title
	s.names = append(s.names[:0], names...)
	s.values = append(s.values[:0], values...)
	s.mu.Unlock()

	s.Refresh()
}

// Data returns a copy of the plotted spectrum.
func (s *SpectrumWidget) Data() (title string, names []string, values []uint8) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.title, append([]string(nil), s.names...), append([]uint8(nil), s.values...)
}

// CreateRenderer creates the widget renderer.
func (s *SpectrumWidget) CreateRenderer() fyne.WidgetRenderer {
	background := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255})
	return &spectrumRenderer{
		spectrum:   s,
		background: background,
		objects:    []fyne.CanvasObject{background},
	}
}

// Wavelength extracts the leading wavelength in nm from a channel name such
// as "645nm (I) Red". It returns 0 when the name carries none.
func Wavelength(name string) int {
	digits, _, ok := strings.Cut(name, "nm")
	if !ok {
		return 0
	}
	nm, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return nm
}

// ChannelColor returns the display color of a channel by its wavelength.
// Infrared and unfiltered channels are grey.
func ChannelColor(name string) color.RGBA {
	nm := Wavelength(name)
	switch {
	case nm == 0:
		return color.RGBA{R: 220, G: 220, B: 220, A: 255}
	case nm < 450:
		return color.RGBA{R: 138, G: 43, B: 226, A: 255}
	case nm < 490:
		return color.RGBA{R: 30, G: 100, B: 255, A: 255}
	case nm < 565:
		return color.RGBA{R: 40, G: 200, B: 60, A: 255}
	case nm < 590:
		return color.RGBA{R: 240, G: 220, B: 30, A: 255}
	case nm < 625:
		return color.RGBA{R: 255, G: 140, B: 0, A: 255}
	case nm < 720:
		return color.RGBA{R: 230, G: 30, B: 30, A: 255}
	default:
		return color.RGBA{R: 120, G: 120, B: 120, A: 255}
	}
}
