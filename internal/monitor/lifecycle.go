package monitor

import (
	"log"
	"time"
)

// maintenanceWorker runs periodic maintenance tasks
func (m *Monitor) maintenanceWorker() {
	defer m.wg.Done()

	// Run maintenance every hour
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	// Run immediately on start
	m.performMaintenance()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.performMaintenance()
		}
	}
}

// performMaintenance prunes windows older than the retention period
func (m *Monitor) performMaintenance() {
	cutoff := time.Now().Add(-m.config.Retention())
	n, err := m.db.PruneDowntimes(cutoff)
	if err != nil {
		log.Printf("Failed to prune downtimes: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Pruned %d downtimes older than %s", n, cutoff.Format(time.RFC3339))
	}
}
