package link

import (
	"io"
	"log"
	"sync"
	"time"

	"github.com/itohio/gospectro/pkg/render"
)

// Writer is a render sink that reports every screen as one line.
type Writer struct {
	mu  sync.Mutex
	w   io.Writer
	buf []byte

	// Now stamps outgoing messages. Defaults to time.Now.
	Now func() time.Time
}

var _ render.Sink = (*Writer)(nil)

// NewWriter creates a report writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, Now: time.Now}
}

func (w *Writer) Text(message string) {
	w.write(Message{Kind: KindText, Text: message})
}

func (w *Writer) Bars(title string, values []uint8, modeLabel, ledLabel string) {
	w.write(Message{Kind: KindBars, Text: title, Values: values, Mode: modeLabel, LED: ledLabel})
}

func (w *Writer) Ripeness(score uint8, values []uint8, modeLabel, ledLabel string) {
	w.write(Message{Kind: KindRipeness, Score: score, Values: values, Mode: modeLabel, LED: ledLabel})
}

func (w *Writer) write(m Message) {
	w.mu.Lock()
	defer w.mu.Unlock()

	m.Time = w.Now()
	w.buf = append(w.buf[:0], Encode(m)...)
	w.buf = append(w.buf, '\n')
	if _, err := w.w.Write(w.buf); err != nil {
		log.Printf("Failed to write report: %v", err)
	}
}
