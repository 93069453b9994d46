// Package panel draws the instrument screens on a tinygo Displayer.
package panel

import (
	"image/color"
	"log"
	"sync"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
	"tinygo.org/x/tinyfont/proggy"

	"github.com/itohio/gospectro/pkg/render"
)

var (
	Black = color.RGBA{A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

var (
	textFont  = &freemono.Bold9pt7b
	titleFont = &freemono.Bold18pt7b
	labelFont = &proggy.TinySZ8pt7b
)

// Screen layout for the 250x122 landscape panel.
const (
	margin        = 3
	titleX        = 0
	titleY        = 27
	modeLabelY    = 10
	ledLabelY     = 23
	baselineInset = 15 // bars grow up from height-15
	scaleX        = 3
	scaleY        = 8
	scaleH        = 16
	arrowY        = 25
	arrowW        = 7
	arrowH        = 10
)

// ScaleWidth is the ripeness scale width; score s points at x = scaleX+s.
const ScaleWidth = 158

var bars18 = []int16{3, 16, 30, 44, 58, 72, 85, 99, 113, 127, 140, 154, 168, 182, 195, 209, 223, 237}

const (
	bar18Width = 9
	bar10Pitch = 25
	bar10Width = 19
)

// Panel renders screens onto a Displayer. It is safe for concurrent use.
type Panel struct {
	mu sync.Mutex
	d  drivers.Displayer

	FG, BG color.RGBA
}

var _ render.Sink = (*Panel)(nil)

// New creates a panel drawing black on white.
func New(d drivers.Displayer) *Panel {
	return &Panel{d: d, FG: Black, BG: White}
}

// Text clears the screen and shows message centered.
func (p *Panel) Text(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.clear()
	w, h := p.d.Size()
	inner, _ := tinyfont.LineWidth(textFont, message)
	x := (w - int16(inner)) / 2
	tinyfont.WriteLine(p.d, textFont, max(x, 0), h/2+5, message, p.FG)
	p.flush()
}

// Bars shows the title, the mode labels and one bar per value.
func (p *Panel) Bars(title string, values []uint8, modeLabel, ledLabel string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.clear()
	tinyfont.WriteLine(p.d, titleFont, titleX, titleY, title, p.FG)
	p.labels(modeLabel, ledLabel)
	p.bars(values)
	p.flush()
}

// Ripeness shows the ripeness scale with an arrow at score, the mode
// labels and the bars.
func (p *Panel) Ripeness(score uint8, values []uint8, modeLabel, ledLabel string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.clear()
	p.scale()
	p.arrow(scaleX + int16(min(score, ScaleWidth)))
	p.labels(modeLabel, ledLabel)
	p.bars(values)
	p.flush()
}

func (p *Panel) labels(modeLabel, ledLabel string) {
	w, _ := p.d.Size()
	for _, l := range []struct {
		text string
		y    int16
	}{{modeLabel, modeLabelY}, {ledLabel, ledLabelY}} {
		inner, _ := tinyfont.LineWidth(labelFont, l.text)
		tinyfont.WriteLine(p.d, labelFont, w-margin-int16(inner), l.y, l.text, p.FG)
	}
}

func (p *Panel) bars(values []uint8) {
	w, h := p.d.Size()
	baseline := h - baselineInset

	for i, v := range values {
		x, width := barGeometry(i, len(values), w)
		p.fill(x, baseline-int16(v), width, int16(v))
	}
}

// barGeometry returns the left edge and width of bar i out of n.
func barGeometry(i, n int, screenW int16) (x, width int16) {
	switch n {
	case len(bars18):
		return bars18[i], bar18Width
	case 10:
		return margin + int16(i)*bar10Pitch, bar10Width
	}
	pitch := (screenW - margin) / int16(n)
	return margin + int16(i)*pitch, max(pitch-4, 1)
}

// scale draws the ripeness scale: an outlined box shaded from sparse on
// the left to solid on the right.
func (p *Panel) scale() {
	width := int16(ScaleWidth + arrowW)
	p.outline(scaleX, scaleY, width, scaleH)
	for dx := int16(1); dx < width-1; dx++ {
		density := 1 + dx*7/width // 1..7 of 8 rows
		for dy := int16(1); dy < scaleH-1; dy++ {
			if (dy+dx)%8 < density {
				p.d.SetPixel(scaleX+dx, scaleY+dy, p.FG)
			}
		}
	}
}

// arrow draws an upward pointing triangle with its tip at (x+arrowW/2, arrowY).
func (p *Panel) arrow(x int16) {
	for row := range int16(arrowH) {
		half := min(row/2, arrowW/2)
		p.fill(x+arrowW/2-half, arrowY+row, 2*half+1, 1)
	}
}

func (p *Panel) outline(x, y, w, h int16) {
	p.fill(x, y, w, 1)
	p.fill(x, y+h-1, w, 1)
	p.fill(x, y, 1, h)
	p.fill(x+w-1, y, 1, h)
}

func (p *Panel) fill(x, y, w, h int16) {
	for j := y; j < y+h; j++ {
		for i := x; i < x+w; i++ {
			p.d.SetPixel(i, j, p.FG)
		}
	}
}

func (p *Panel) clear() {
	w, h := p.d.Size()
	for y := range h {
		for x := range w {
			p.d.SetPixel(x, y, p.BG)
		}
	}
}

func (p *Panel) flush() {
	if err := p.d.Display(); err != nil {
		log.Printf("Failed to refresh panel: %v", err)
	}
}
