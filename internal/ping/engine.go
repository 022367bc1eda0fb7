package ping

import (
	"context"
	"errors"
	"log"
	"net/netip"
	"sync"
	"time"

	"connectivity-monitor/internal/models"
)

const (
	// DefaultTimeout is how long a round waits for replies
	DefaultTimeout = 1000 * time.Millisecond

	pollInterval = 50 * time.Millisecond
)

// ErrConsumerGone stops the scheduler when nobody reads the result bus
var ErrConsumerGone = errors.New("result bus has no consumer")

// Options configures an Engine
type Options struct {
	// Timeout is the per-round reply timeout. Zero means DefaultTimeout.
	Timeout time.Duration

	// IPv6 opens an ICMPv6 socket and probes IPv6 addresses. Off by default;
	// IPv6 addresses stay registered but are skipped while it is off.
	IPv6 bool

	// Listen opens the per-family sockets. Nil means raw ICMP sockets.
	Listen ListenFunc

	// Debug logs every probe and matched reply
	Debug bool
}

// probeKey identifies one request sent in the current round
type probeKey struct {
	addr netip.Addr
	seq  uint16
	id   uint16
}

// Engine probes every registered address once per round and publishes
// Request, Response and Timeout events on its result bus.
type Engine struct {
	timeout time.Duration
	debug   bool

	registry  *Registry
	transport *transport
	clock     roundClock

	replies *queue[models.PingResult]
	results *Results

	receivers sync.WaitGroup

	mu      sync.Mutex
	started bool
	closed  bool
	done    chan struct{}
	err     error
}

// New opens the raw sockets, starts one receiver per family and returns the
// engine together with its result bus. Probing begins with Start.
func New(opts Options) (*Engine, *Results, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	listen := opts.Listen
	if listen == nil {
		listen = listenICMP
	}

	families := []Family{IPv4}
	if opts.IPv6 {
		families = append(families, IPv6)
	}

	t, err := openTransport(listen, families)
	if err != nil {
		return nil, nil, err
	}

	e := &Engine{
		timeout:   timeout,
		debug:     opts.Debug,
		registry:  NewRegistry(),
		transport: t,
		replies:   newQueue[models.PingResult](),
		results:   &Results{q: newQueue[models.PingResult]()},
		done:      make(chan struct{}),
	}
	e.clock.reset()

	for _, fam := range families {
		e.receivers.Add(1)
		go e.receive(t.channels[fam])
	}

	return e, e.results, nil
}

// Timeout returns the per-round reply timeout
func (e *Engine) Timeout() time.Duration {
	return e.timeout
}

// AddAddress starts monitoring an IPv4 or IPv6 literal. Malformed input is
// logged and ignored.
func (e *Engine) AddAddress(s string) {
	addr, err := e.registry.Add(s)
	if err != nil {
		log.Printf("Error adding ip address %s: %v", s, err)
		return
	}
	if !e.transport.has(FamilyOf(addr)) {
		log.Printf("Address %s added but %s probing is disabled", addr, FamilyOf(addr))
		return
	}
	e.debugf("Address added %s", addr)
}

// RemoveAddress stops monitoring an address. Malformed input is logged and
// ignored; unknown addresses are a no-op.
func (e *Engine) RemoveAddress(s string) {
	addr, ok, err := e.registry.Remove(s)
	if err != nil {
		log.Printf("Error removing ip address %s: %v", s, err)
		return
	}
	if ok {
		e.debugf("Address removed %s", addr)
	}
}

// Addresses returns the monitored addresses in address order
func (e *Engine) Addresses() []netip.Addr {
	return e.registry.Addresses()
}

// Start runs the scheduler until ctx is cancelled. Cancellation is only
// observed between rounds, so the round in progress always completes.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.closed {
		return
	}
	e.started = true
	go e.run(ctx)
}

// Wait blocks until the scheduler has stopped and returns the reason it
// stopped early, if any.
func (e *Engine) Wait() error {
	e.mu.Lock()
	started := e.started
	e.mu.Unlock()
	if !started {
		return nil
	}
	<-e.done
	return e.err
}

// Close releases the sockets and stops the receivers. Call it after Wait.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	started := e.started
	e.mu.Unlock()

	err := e.transport.close()
	e.receivers.Wait()
	e.replies.close()
	if !started {
		e.results.q.finish()
	}
	return err
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)
	defer e.results.q.finish()

	for {
		if err := e.round(); err != nil {
			log.Printf("Scheduler stopped: %v", err)
			e.err = err
			return
		}

		select {
		case <-ctx.Done():
			e.debugf("Stop requested, scheduler exiting")
			return
		default:
		}
	}
}

// round sends one request per address, forwards the replies that match
// them and emits a Timeout for every address that stayed silent.
func (e *Engine) round() error {
	e.clock.reset()

	// Only requests from this round are accepted; the set is dropped with
	// the round.
	sent := make(map[probeKey]struct{}, e.registry.Len())

	for _, addr := range e.registry.Addresses() {
		fam := FamilyOf(addr)
		if !e.transport.has(fam) {
			continue
		}

		pkt, seq, id, err := BuildEchoRequest(fam)
		if err == nil {
			err = e.transport.send(addr, pkt)
		}
		if err != nil {
			log.Printf("Failed to send echo request to %s: %v", addr, err)
		} else {
			sent[probeKey{addr: addr, seq: seq, id: id}] = struct{}{}
			e.debugf("Sent echo request to %s seq=%d id=%d", addr, seq, id)
		}
		e.registry.reset(addr)

		if !e.results.q.push(models.NewRequest(addr, seq, id, err)) {
			return ErrConsumerGone
		}
	}

	if err := e.collect(sent); err != nil {
		return err
	}

	for _, addr := range e.registry.unseen() {
		if !e.results.q.push(models.NewTimeout(addr)) {
			return ErrConsumerGone
		}
	}
	return nil
}

// collect drains replies until the round timeout has elapsed
func (e *Engine) collect(sent map[probeKey]struct{}) error {
	poll := time.NewTicker(pollInterval)
	defer poll.Stop()

	replies := e.replies.out
	for e.clock.since() < e.timeout {
		select {
		case r, ok := <-replies:
			if !ok {
				replies = nil
				continue
			}
			key := probeKey{addr: r.Addr, seq: r.Sequence, id: r.Identifier}
			if _, ok := sent[key]; !ok {
				continue
			}
			delete(sent, key)
			e.registry.markSeen(r.Addr)
			e.debugf("Receive from %s in %v seq=%d id=%d", r.Addr, r.RTT, r.Sequence, r.Identifier)

			if !e.results.q.push(r) {
				return ErrConsumerGone
			}
		case <-poll.C:
		}
	}
	return nil
}

func (e *Engine) debugf(format string, args ...any) {
	if e.debug {
		log.Printf(format, args...)
	}
}
