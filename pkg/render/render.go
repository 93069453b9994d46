// Package render defines the screen sink the acquisition core draws to.
package render

import (
	"log"
	"strings"
	"sync"
)

// Sink draws the instrument screens. Calls are synchronous and must not
// block indefinitely.
type Sink interface {
	// Text shows a centered status message.
	Text(message string)
	// Bars shows normalized channels under a title.
	Bars(title string, values []uint8, modeLabel, ledLabel string)
	// Ripeness shows a ripeness score on the scale plus the channels.
	Ripeness(score uint8, values []uint8, modeLabel, ledLabel string)
}

// Multi fans every call out to all sinks in order.
type Multi []Sink

// Ensure sinks implement Sink.
var (
	_ Sink = Multi(nil)
	_ Sink = (*Log)(nil)
	_ Sink = (*Recorder)(nil)
)

// Text implements Sink.
func (m Multi) Text(message string) {
	for _, s := range m {
		s.Text(message)
	}
}

// Bars implements Sink.
func (m Multi) Bars(title string, values []uint8, modeLabel, ledLabel string) {
	for _, s := range m {
		s.Bars(title, values, modeLabel, ledLabel)
	}
}

// Ripeness implements Sink.
func (m Multi) Ripeness(score uint8, values []uint8, modeLabel, ledLabel string) {
	for _, s := range m {
		s.Ripeness(score, values, modeLabel, ledLabel)
	}
}

// Log writes every screen to the standard logger.
type Log struct {
	Prefix string
}

// Text implements Sink.
func (l *Log) Text(message string) {
	log.Printf("%s%s", l.Prefix, message)
}

// Bars implements Sink.
func (l *Log) Bars(title string, values []uint8, modeLabel, ledLabel string) {
	log.Printf("%s%s [%s, %s] %s", l.Prefix, title, modeLabel, ledLabel, Histogram(values))
}

// Ripeness implements Sink.
func (l *Log) Ripeness(score uint8, values []uint8, modeLabel, ledLabel string) {
	log.Printf("%sripeness %d [%s, %s] %s", l.Prefix, score, modeLabel, ledLabel, Histogram(values))
}

var levels = []rune(" ▁▂▃▄▅▆▇█")

// Histogram renders normalized values as a row of block characters.
func Histogram(values []uint8) string {
	var sb strings.Builder
	top := len(levels) - 1
	for _, v := range values {
		i := int(v) * top / 69
		sb.WriteRune(levels[min(i, top)])
	}
	return sb.String()
}

// Screen is one recorded sink call.
type Screen struct {
	Kind      Kind
	Text      string
	Score     uint8
	Values    []uint8
	ModeLabel string
	LEDLabel  string
}

// Kind tells which sink call produced a Screen.
type Kind uint8

const (
	KindText Kind = iota
	KindBars
	KindRipeness
)

// Recorder keeps every screen it is asked to draw. It is safe for
// concurrent use.
type Recorder struct {
	mu      sync.Mutex
	screens []Screen
}

// Text implements Sink.
func (r *Recorder) Text(message string) {
	r.add(Screen{Kind: KindText, Text: message})
}

// Bars implements Sink.
func (r *Recorder) Bars(title string, values []uint8, modeLabel, ledLabel string) {
	r.add(Screen{Kind: KindBars, Text: title, Values: clone(values), ModeLabel: modeLabel, LEDLabel: ledLabel})
}

// Ripeness implements Sink.
func (r *Recorder) Ripeness(score uint8, values []uint8, modeLabel, ledLabel string) {
	r.add(Screen{Kind: KindRipeness, Score: score, Values: clone(values), ModeLabel: modeLabel, LEDLabel: ledLabel})
}

// Screens returns a copy of the recorded screens.
func (r *Recorder) Screens() []Screen {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Screen(nil), r.screens...)
}

// Texts returns the messages of recorded Text calls.
func (r *Recorder) Texts() []string {
	var out []string
	for _, s := range r.Screens() {
		if s.Kind == KindText {
			out = append(out, s.Text)
		}
	}
	return out
}

// Last returns the most recent screen.
func (r *Recorder) Last() (Screen, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.screens) == 0 {
		return Screen{}, false
	}
	return r.screens[len(r.screens)-1], true
}

func (r *Recorder) add(s Screen) {
	r.mu.Lock()
	r.screens = append(r.screens, s)
	r.mu.Unlock()
}

func clone(v []uint8) []uint8 {
	return append([]uint8(nil), v...)
}
