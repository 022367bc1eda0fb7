// Package downtime turns the stream of ping results into confirmed outage
// windows.
package downtime

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotReady is returned when a window is read before it has both ends
var ErrNotReady = errors.New("downtime window is not closed")

// rfc2822 is RFC 2822 with an unpadded day of month
const rfc2822 = "Mon, 2 Jan 2006 15:04:05 -0700"

// Window is one outage interval with second resolution. The zero value is an
// empty window. The end is only ever set after the start.
type Window struct {
	start   time.Time
	end     time.Time
	started bool
	ended   bool
}

// Start opens the window at now. It is a no-op once started.
func (w *Window) Start(now time.Time) {
	if w.started {
		return
	}
	w.start = now.Truncate(time.Second)
	w.started = true
}

// End closes the window at now. It is a no-op before Start and once ended.
func (w *Window) End(now time.Time) {
	if !w.started || w.ended {
		return
	}
	w.end = now.Truncate(time.Second)
	w.ended = true
}

// IsStarted reports whether Start has been called
func (w Window) IsStarted() bool {
	return w.started
}

// IsReady reports whether both ends are set
func (w Window) IsReady() bool {
	return w.started && w.ended
}

// StartTime returns the start and whether it is set
func (w Window) StartTime() (time.Time, bool) {
	return w.start, w.started
}

// EndTime returns the end and whether it is set
func (w Window) EndTime() (time.Time, bool) {
	return w.end, w.ended
}

// Duration is only defined for ready windows
func (w Window) Duration() (time.Duration, error) {
	if !w.IsReady() {
		return 0, ErrNotReady
	}
	return w.end.Sub(w.start), nil
}

// Epochs returns the window as unix seconds, the form it is stored in
func (w Window) Epochs() (start, end int64, err error) {
	if !w.IsReady() {
		return 0, 0, ErrNotReady
	}
	return w.start.Unix(), w.end.Unix(), nil
}

// StartEndText renders "start - end" in RFC 2822
func (w Window) StartEndText() (string, error) {
	if !w.IsReady() {
		return "", ErrNotReady
	}
	return fmt.Sprintf("%s - %s", w.start.Format(rfc2822), w.end.Format(rfc2822)), nil
}

// DurationText renders the window length as "H hours, M minutes, S seconds"
func (w Window) DurationText() (string, error) {
	d, err := w.Duration()
	if err != nil {
		return "", err
	}
	return FormatDuration(d), nil
}

// Text renders the clear-text log block for a closed window
func (w Window) Text() (string, error) {
	d, err := w.Duration()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Downtime:\n (%d) %s - (%d) %s\n lasted for: %s\n",
		w.start.Unix(), w.start.Format(rfc2822),
		w.end.Unix(), w.end.Format(rfc2822),
		FormatDuration(d)), nil
}

// FormatDuration renders d as "H hours, M minutes, S seconds", truncating
// sub-second parts.
func FormatDuration(d time.Duration) string {
	hours := d / time.Hour
	minutes := (d % time.Hour) / time.Minute
	seconds := (d % time.Minute) / time.Second
	return fmt.Sprintf("%d hours, %d minutes, %d seconds", hours, minutes, seconds)
}
