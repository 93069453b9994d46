package panel

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blackInColumn(fb *Framebuffer, x, y0, y1 int) int {
	n := 0
	for y := y0; y < y1; y++ {
		if fb.At(x, y) == Black {
			n++
		}
	}
	return n
}

func blackInRow(fb *Framebuffer, y, x0, x1 int) int {
	n := 0
	for x := x0; x < x1; x++ {
		if fb.At(x, y) == Black {
			n++
		}
	}
	return n
}

func blackPixels(fb *Framebuffer) int {
	w, h := fb.Size()
	n := 0
	for y := range int(h) {
		n += blackInRow(fb, y, 0, int(w))
	}
	return n
}

func TestPanel_Bars18(t *testing.T) {
	fb := NewFramebuffer(250, 122)
	displays := 0
	fb.OnDisplay = func(*image.RGBA) { displays++ }
	p := New(fb)

	values := make([]uint8, 18)
	for i := range values {
		values[i] = uint8(i * 4)
	}
	values[17] = 69
	p.Bars("Green", values, "Single Fire", "Internal LEDs")

	assert.Equal(t, 1, displays)
	for i, v := range values {
		x := int(bars18[i]) + bar18Width/2
		assert.Equal(t, int(v), blackInColumn(fb, x, 107-69, 107), "bar %d", i)
		assert.Zero(t, blackInColumn(fb, x, 107, 122), "below baseline, bar %d", i)
	}
}

func TestPanel_Bars10(t *testing.T) {
	fb := NewFramebuffer(250, 122)
	p := New(fb)

	values := []uint8{10, 20, 30, 40, 50, 60, 69, 5, 0, 1}
	p.Bars("Red", values, "Burst 3", "No LEDs")

	for i, v := range values {
		x := margin + i*bar10Pitch + bar10Width/2
		assert.Equal(t, int(v), blackInColumn(fb, x, 107-69, 107), "bar %d", i)
	}
	// Gap between bars stays white.
	assert.Zero(t, blackInColumn(fb, margin+bar10Width+1, 107-69, 107))
}

func TestPanel_TextClears(t *testing.T) {
	fb := NewFramebuffer(250, 122)
	p := New(fb)

	p.Bars("Red", []uint8{69, 69, 69, 69, 69, 69, 69, 69, 69, 69}, "Continuous", "All LEDs")
	p.Text("Ready")

	assert.Positive(t, blackPixels(fb))
	assert.Zero(t, blackInColumn(fb, margin+bar10Width/2, 100, 107), "bars must be cleared")
}

func TestPanel_RipenessArrow(t *testing.T) {
	for _, score := range []uint8{0, 79, 158, 200} {
		fb := NewFramebuffer(250, 122)
		p := New(fb)
		p.Ripeness(score, []uint8{1, 2, 3}, "Single Fire", "External LEDs")

		tip := scaleX + int(min(score, ScaleWidth)) + arrowW/2
		assert.Equal(t, Black, fb.At(tip, arrowY), "score %d", score)

		assert.Equal(t, 1, blackInRow(fb, arrowY, 0, 168), "only the arrow tip on its first row, score %d", score)
	}
}

func TestBarGeometry_Generic(t *testing.T) {
	x0, w := barGeometry(0, 5, 250)
	x1, _ := barGeometry(1, 5, 250)
	assert.Equal(t, int16(margin), x0)
	assert.Equal(t, int16(49), x1-x0)
	assert.Equal(t, int16(45), w)
}

func TestRotated(t *testing.T) {
	fb := NewFramebuffer(122, 250)

	r := Rotated{Displayer: fb, Turns: 1}
	w, h := r.Size()
	require.Equal(t, int16(250), w)
	require.Equal(t, int16(122), h)

	r.SetPixel(0, 0, Black)
	assert.Equal(t, Black, fb.At(121, 0))

	r.SetPixel(249, 121, Black)
	assert.Equal(t, Black, fb.At(0, 249))

	r = Rotated{Displayer: fb, Turns: 2}
	r.SetPixel(0, 0, Black)
	assert.Equal(t, Black, fb.At(121, 249))

	r = Rotated{Displayer: fb, Turns: -1}
	r.SetPixel(5, 0, Black)
	assert.Equal(t, Black, fb.At(0, 244))
}

func TestRotated_PaddedNative(t *testing.T) {
	fb := NewFramebuffer(128, 250)

	r := Rotated{Displayer: fb, Turns: 1, Width: 122, Height: 250}
	w, h := r.Size()
	assert.Equal(t, int16(250), w)
	assert.Equal(t, int16(122), h)

	r.SetPixel(0, 0, Black)
	assert.Equal(t, Black, fb.At(121, 0))
	assert.Equal(t, White, fb.At(127, 0))
}

func TestFramebuffer(t *testing.T) {
	fb := NewFramebuffer(4, 3)
	assert.Equal(t, White, fb.At(1, 1))

	fb.SetPixel(1, 1, Black)
	fb.SetPixel(10, 10, Black)
	snap := fb.Snapshot()
	fb.SetPixel(1, 1, White)

	assert.Equal(t, Black, snap.RGBAAt(1, 1))
	assert.Equal(t, White, fb.At(1, 1))
	require.NoError(t, fb.Display())
}
