package models

import "time"

// Downtime is a closed outage window as stored and served
type Downtime struct {
	ID       int64     `json:"id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Duration string    `json:"duration"`
}

// Status is a point-in-time view of the downtime tracker
type Status struct {
	Down          bool       `json:"is_down"`
	WindowOpen    bool       `json:"window_open"`
	NoResponses   int        `json:"no_response_counter"`
	Limit         int        `json:"max_timeouts"`
	WindowStart   *time.Time `json:"window_start,omitempty"`
	Addresses     []string   `json:"addresses"`
	LastEventTime *time.Time `json:"last_event,omitempty"`
}

// Database interface defines operations for downtime persistence
type Database interface {
	InsertDowntime(start, end int64) error
	GetDowntimes(limit int) ([]Downtime, error)
	PruneDowntimes(olderThan time.Time) (int64, error)
	Close() error
}

// Observer receives every event published on the result bus
type Observer interface {
	Observe(result PingResult)
}
