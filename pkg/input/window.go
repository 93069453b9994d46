package input

import (
	"math"
	"sync/atomic"
	"time"
)

// Window accepts at most one event per interval.
type Window struct {
	interval time.Duration
	last     atomic.Int64 // unix nanos of the last accepted event
}

// NewWindow creates a window that has accepted nothing yet.
func NewWindow(interval time.Duration) *Window {
	w := &Window{interval: interval}
	w.last.Store(math.MinInt64)
	return w
}

// Accept records now and returns true if it is at least one interval after
// the previously accepted event.
func (w *Window) Accept(now time.Time) bool {
	t := now.UnixNano()
	for {
		last := w.last.Load()
		if last != math.MinInt64 && t-last < int64(w.interval) {
			return false
		}
		if w.last.CompareAndSwap(last, t) {
			return true
		}
	}
}

// Remaining returns how long after now the window accepts again.
func (w *Window) Remaining(now time.Time) time.Duration {
	last := w.last.Load()
	if last == math.MinInt64 {
		return 0
	}
	return max(0, time.Duration(last+int64(w.interval)-now.UnixNano()))
}
