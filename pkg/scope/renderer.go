package scope

import (
	"image/color"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
)

var (
	gridColor  = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	titleColor = color.RGBA{R: 255, G: 165, B: 0, A: 255}
)

// spectrumRenderer renders the spectrum widget.
type spectrumRenderer struct {
	spectrum *SpectrumWidget

	// Background
	background *canvas.Rectangle

	bars []*canvas.Rectangle

	// Objects list for Fyne
	objects []fyne.CanvasObject
}

// MinSize returns the minimum size of the widget.
func (r *spectrumRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 200)
}

// Layout arranges the widget components.
func (r *spectrumRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	r.build(size)
}

// Refresh updates the widget display.
func (r *spectrumRenderer) Refresh() {
	r.build(r.spectrum.Size())
	canvas.Refresh(r.spectrum)
}

func (r *spectrumRenderer) build(size fyne.Size) {
	title, names, values := r.spectrum.Data()

	r.objects = []fyne.CanvasObject{r.background}
	r.bars = r.bars[:0]
	if size.Width == 0 || size.Height == 0 {
		return
	}

	marginLeft := float32(40.0)
	marginRight := float32(10.0)
	marginTop := float32(30.0)
	marginBottom := float32(40.0)

	plotWidth := size.Width - marginLeft - marginRight
	plotHeight := size.Height - marginTop - marginBottom
	plotX := marginLeft
	plotY := marginTop

	r.drawGrid(plotX, plotY, plotWidth, plotHeight)
	r.drawBars(plotX, plotY, plotWidth, plotHeight, names, values)

	if title != "" {
		text := canvas.NewText(title, titleColor)
		text.TextSize = 16
		text.TextStyle = fyne.TextStyle{Bold: true}
		text.Move(fyne.NewPos(plotX, 5))
		r.objects = append(r.objects, text)
	}
}

// drawGrid draws horizontal lines at quarters of full scale.
func (r *spectrumRenderer) drawGrid(plotX, plotY, plotWidth, plotHeight float32) {
	const numHLines = 4
	for i := range numHLines + 1 {
		y := plotY + float32(i)*plotHeight/numHLines
		line := canvas.NewLine(gridColor)
		line.Position1 = fyne.NewPos(plotX, y)
		line.Position2 = fyne.NewPos(plotX+plotWidth, y)
		line.StrokeWidth = 1
		r.objects = append(r.objects, line)

		value := FullScale - i*FullScale/numHLines
		text := canvas.NewText(strconv.Itoa(value), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignTrailing
		text.Move(fyne.NewPos(plotX-25, y-6))
		r.objects = append(r.objects, text)
	}
}

// drawBars draws one colored bar per channel with its wavelength below.
func (r *spectrumRenderer) drawBars(plotX, plotY, plotWidth, plotHeight float32, names []string, values []uint8) {
	if len(values) == 0 {
		return
	}

	pitch := plotWidth / float32(len(values))
	width := pitch * 0.7
	for i, v := range values {
		name := ""
		if i < len(names) {
			name = names[i]
		}

		h := float32(min(v, FullScale)) / FullScale * plotHeight
		x := plotX + float32(i)*pitch + (pitch-width)/2

		bar := canvas.NewRectangle(ChannelColor(name))
		bar.Move(fyne.NewPos(x, plotY+plotHeight-h))
		bar.Resize(fyne.NewSize(width, h))
		r.bars = append(r.bars, bar)
		r.objects = append(r.objects, bar)

		label := channelLabel(name, i)
		text := canvas.NewText(label, labelColor)
		text.TextSize = 9
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(plotX+float32(i)*pitch+pitch/2, plotY+plotHeight+5))
		r.objects = append(r.objects, text)
	}
}

// Objects returns all canvas objects for rendering.
func (r *spectrumRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *spectrumRenderer) Destroy() {}

func channelLabel(name string, i int) string {
	if nm := Wavelength(name); nm > 0 {
		return strconv.Itoa(nm)
	}
	if name != "" {
		return name
	}
	return strconv.Itoa(i + 1)
}
