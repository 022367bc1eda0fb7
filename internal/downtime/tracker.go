package downtime

import (
	"time"

	"connectivity-monitor/internal/models"
)

// State of the tracker between events
type State int

const (
	// Up means no window is open
	Up State = iota
	// Down means a window is open but the outage is not confirmed yet
	Down
	// Ready means the window has both ends and waits to be flushed
	Ready
)

func (s State) String() string {
	switch s {
	case Up:
		return "up"
	case Down:
		return "down"
	case Ready:
		return "ready"
	}
	return "unknown"
}

// Tracker debounces timeouts into outage windows. A window is only recorded
// when limit consecutive timeouts are followed by a response; a response
// before the limit discards the window entirely.
//
// Tracker is not safe for concurrent use.
type Tracker struct {
	limit   int
	counter int
	window  Window
	now     func() time.Time
}

// NewTracker creates a Tracker that confirms an outage after limit timeouts
func NewTracker(limit int) *Tracker {
	if limit < 1 {
		limit = 1
	}
	return &Tracker{limit: limit, now: time.Now}
}

// Observe feeds one result into the state machine. When the result closes an
// outage, the closed window is returned and the tracker starts over with an
// empty one.
func (t *Tracker) Observe(r models.PingResult) (Window, bool) {
	at := r.Timestamp
	if at.IsZero() {
		at = t.now()
	}

	switch r.Kind {
	case models.KindTimeout:
		if !t.window.IsStarted() {
			t.window.Start(at)
		}
		if t.counter < t.limit {
			t.counter++
		}
	case models.KindResponse:
		if t.window.IsStarted() {
			if t.counter >= t.limit {
				t.window.End(at)
			} else {
				t.window = Window{}
			}
		}
		t.counter = 0
	default:
		return Window{}, false
	}

	if t.window.IsReady() {
		closed := t.window
		t.window = Window{}
		return closed, true
	}
	return Window{}, false
}

// State returns the current state
func (t *Tracker) State() State {
	switch {
	case t.window.IsReady():
		return Ready
	case t.window.IsStarted():
		return Down
	}
	return Up
}

// NoResponses returns the hysteresis counter
func (t *Tracker) NoResponses() int {
	return t.counter
}

// Limit returns the number of timeouts that confirm an outage
func (t *Tracker) Limit() int {
	return t.limit
}

// Window returns a copy of the open window
func (t *Tracker) Window() Window {
	return t.window
}
