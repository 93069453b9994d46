package panel

import (
	"image"
	"image/color"
	"sync"

	"tinygo.org/x/drivers"
)

// Framebuffer is an in-memory Displayer.
type Framebuffer struct {
	mu  sync.Mutex
	img *image.RGBA

	// OnDisplay receives a snapshot on every Display call.
	OnDisplay func(img *image.RGBA)
}

var _ drivers.Displayer = (*Framebuffer)(nil)

// NewFramebuffer creates a white framebuffer of the given size.
func NewFramebuffer(width, height int16) *Framebuffer {
	img := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	return &Framebuffer{img: img}
}

// Size returns the framebuffer size.
func (f *Framebuffer) Size() (x, y int16) {
	b := f.img.Bounds()
	return int16(b.Dx()), int16(b.Dy())
}

// SetPixel sets one pixel. Out of range coordinates are ignored.
func (f *Framebuffer) SetPixel(x, y int16, c color.RGBA) {
	f.mu.Lock()
	f.img.SetRGBA(int(x), int(y), c)
	f.mu.Unlock()
}

// Display hands a snapshot to OnDisplay.
func (f *Framebuffer) Display() error {
	if f.OnDisplay != nil {
		f.OnDisplay(f.Snapshot())
	}
	return nil
}

// Snapshot returns a copy of the current contents.
func (f *Framebuffer) Snapshot() *image.RGBA {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := image.NewRGBA(f.img.Bounds())
	copy(out.Pix, f.img.Pix)
	return out
}

// At returns the color at (x, y).
func (f *Framebuffer) At(x, y int) color.RGBA {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.img.RGBAAt(x, y)
}

// Rotated presents a Displayer turned by a number of quarter turns
// clockwise, so landscape screens can be drawn on a portrait panel.
type Rotated struct {
	drivers.Displayer
	Turns int

	// Width and Height override the native size for drivers whose Size
	// reports a padded buffer. Zero uses Displayer.Size.
	Width, Height int16
}

var _ drivers.Displayer = Rotated{}

// Size returns the logical size.
func (r Rotated) Size() (x, y int16) {
	w, h := r.native()
	if r.Turns%2 != 0 {
		return h, w
	}
	return w, h
}

// SetPixel maps logical coordinates onto the underlying display.
func (r Rotated) SetPixel(x, y int16, c color.RGBA) {
	w, h := r.native()
	switch (r.Turns%4 + 4) % 4 {
	case 0:
		r.Displayer.SetPixel(x, y, c)
	case 1:
		r.Displayer.SetPixel(w-1-y, x, c)
	case 2:
		r.Displayer.SetPixel(w-1-x, h-1-y, c)
	case 3:
		r.Displayer.SetPixel(y, h-1-x, c)
	}
}

func (r Rotated) native() (w, h int16) {
	w, h = r.Displayer.Size()
	if r.Width > 0 && r.Height > 0 {
		return r.Width, r.Height
	}
	return w, h
}
