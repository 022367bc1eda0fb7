package monitor

import (
	"log"

	"connectivity-monitor/internal/models"
)

// processResults consumes the result bus until the engine closes it
func (m *Monitor) processResults() {
	defer m.wg.Done()

	for result := range m.results.C() {
		m.handleResult(result)
	}
}

// handleResult fans a result out to observers and feeds the tracker,
// dispatching any window it closes
func (m *Monitor) handleResult(result models.PingResult) {
	switch result.Kind {
	case models.KindResponse:
		m.debugf("Receive from address %s in %v. seq = %d, identifier = %d",
			result.Addr, result.RTT, result.Sequence, result.Identifier)
	case models.KindTimeout:
		log.Printf("Idle address %s", result.Addr)
	case models.KindRequest:
		if !result.Sent {
			log.Printf("Request to %s was not sent: %s", result.Addr, result.Error)
		}
	}

	for _, o := range m.observers {
		o.Observe(result)
	}

	m.mu.Lock()
	m.lastEvent = result.Timestamp
	window, closed := m.tracker.Observe(result)
	counter := m.tracker.NoResponses()
	m.mu.Unlock()

	if result.Kind == models.KindTimeout {
		m.debugf("no_response_counter at %d", counter)
	}

	if closed {
		text, _ := window.StartEndText()
		log.Printf("Downtime recorded: %s", text)
		m.dispatcher.Dispatch(window)
	}
}

func (m *Monitor) debugf(format string, args ...any) {
	if m.config.Debug {
		log.Printf(format, args...)
	}
}
