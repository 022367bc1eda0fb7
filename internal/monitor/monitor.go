package monitor

import (
	"context"
	"log"
	"sync"
	"time"

	"connectivity-monitor/internal/config"
	"connectivity-monitor/internal/database"
	"connectivity-monitor/internal/downtime"
	"connectivity-monitor/internal/models"
	"connectivity-monitor/internal/ping"
)

// flushWorkers bounds how many closed windows are written at once
const flushWorkers = 4

// Monitor coordinates the probing engine, the downtime tracker and the
// collaborators that store closed windows
type Monitor struct {
	config     config.Config
	db         *database.DB
	engine     *ping.Engine
	results    *ping.Results
	dispatcher *Dispatcher
	observers  []models.Observer

	mu        sync.Mutex
	tracker   *downtime.Tracker
	lastEvent time.Time

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new Monitor. The database, when non-nil, receives every
// closed window and is pruned by the maintenance worker.
func New(cfg config.Config, db *database.DB, engine *ping.Engine, results *ping.Results) *Monitor {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Monitor{
		config:     cfg,
		db:         db,
		engine:     engine,
		results:    results,
		dispatcher: NewDispatcher(flushWorkers),
		tracker:    downtime.NewTracker(int(cfg.MaxTimeouts)),
		ctx:        ctx,
		cancel:     cancel,
	}
	if db != nil {
		m.dispatcher.AddSink(db)
	}
	return m
}

// AddSink registers another receiver of closed windows. Call before Start.
func (m *Monitor) AddSink(s Sink) {
	m.dispatcher.AddSink(s)
}

// AddObserver registers a receiver of every result. Call before Start.
func (m *Monitor) AddObserver(o models.Observer) {
	m.observers = append(m.observers, o)
}

// Start begins the monitoring process
func (m *Monitor) Start() error {
	log.Printf("Starting monitor with %d addresses", len(m.config.Addresses))

	for _, addr := range m.config.Addresses {
		m.engine.AddAddress(addr)
	}

	// Start result processor
	m.wg.Add(1)
	go m.processResults()

	m.engine.Start(m.ctx)

	// Start maintenance routines
	if m.db != nil && m.config.RetentionDays > 0 {
		m.wg.Add(1)
		go m.maintenanceWorker()
	}

	if m.config.Path != "" {
		m.wg.Add(1)
		go m.watchConfig()
	}

	log.Printf("Monitor started. Pinging %v, timeout %v, downtime after %d timeouts",
		m.config.Addresses, m.engine.Timeout(), m.config.MaxTimeouts)
	return nil
}

// Stop asks the monitor to stop. The probing round in progress completes.
func (m *Monitor) Stop() {
	log.Println("Stopping monitor...")
	m.cancel()
}

// Wait blocks until the engine has stopped, every result has been processed
// and every closed window has been flushed
func (m *Monitor) Wait() error {
	err := m.engine.Wait()
	// The engine may also stop on its own; take the helpers down with it
	m.cancel()
	m.wg.Wait()
	m.dispatcher.Wait()
	log.Println("Monitor stopped")
	return err
}

// Status returns the current downtime state
func (m *Monitor) Status() models.Status {
	m.mu.Lock()
	// Down only once enough timeouts confirm the outage; a window opens on
	// the first timeout and may still be discarded
	s := models.Status{
		Down:        m.tracker.NoResponses() >= m.tracker.Limit(),
		WindowOpen:  m.tracker.State() != downtime.Up,
		NoResponses: m.tracker.NoResponses(),
		Limit:       m.tracker.Limit(),
	}
	if start, ok := m.tracker.Window().StartTime(); ok {
		s.WindowStart = &start
	}
	if !m.lastEvent.IsZero() {
		last := m.lastEvent
		s.LastEventTime = &last
	}
	m.mu.Unlock()

	s.Addresses = []string{}
	if m.engine != nil {
		for _, addr := range m.engine.Addresses() {
			s.Addresses = append(s.Addresses, addr.String())
		}
	}
	return s
}
