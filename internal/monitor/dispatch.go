package monitor

import (
	"log"
	"sync"
	"sync/atomic"

	"connectivity-monitor/internal/downtime"
)

// Sink stores closed downtime windows
type Sink interface {
	SaveDowntime(w downtime.Window) error
}

// Dispatcher writes closed windows to every sink in the background, at most
// workers at a time, and tracks the writes so shutdown can wait for them.
type Dispatcher struct {
	sinks   []Sink
	slots   chan struct{}
	wg      sync.WaitGroup
	pending atomic.Int64
}

// NewDispatcher creates a Dispatcher running at most workers writes at once
func NewDispatcher(workers int, sinks ...Sink) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		sinks: sinks,
		slots: make(chan struct{}, workers),
	}
}

// AddSink registers a sink. Not safe to call concurrently with Dispatch.
func (d *Dispatcher) AddSink(s Sink) {
	d.sinks = append(d.sinks, s)
}

// Dispatch hands a closed window to the sinks without blocking the caller
func (d *Dispatcher) Dispatch(w downtime.Window) {
	d.wg.Add(1)
	d.pending.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.pending.Add(-1)

		d.slots <- struct{}{}
		defer func() { <-d.slots }()

		for _, s := range d.sinks {
			if err := s.SaveDowntime(w); err != nil {
				log.Printf("Failed to save downtime: %v", err)
			}
		}
	}()
}

// Pending returns the number of windows not yet fully written
func (d *Dispatcher) Pending() int64 {
	return d.pending.Load()
}

// Wait blocks until every dispatched window has been written
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
