package ping

import (
	"errors"
	"log"
	"net"
	"sync"
	"time"

	"connectivity-monitor/internal/models"
)

const maxPacketSize = 1500

// roundClock is the round-start instant. The scheduler resets it once per
// round and receivers read it to compute round-trip times.
type roundClock struct {
	mu    sync.RWMutex
	start time.Time
}

func (c *roundClock) reset() {
	c.mu.Lock()
	c.start = time.Now()
	c.mu.Unlock()
}

func (c *roundClock) since() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Since(c.start)
}

// receive reads one family's socket until it is closed, forwarding every
// echo reply to the scheduler. Replies are not filtered here: the raw socket
// sees all ICMP traffic on the host and correlation happens per round.
func (e *Engine) receive(ch *channel) {
	defer e.receivers.Done()

	buf := make([]byte, maxPacketSize)
	for {
		n, peer, err := ch.conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				e.debugf("Receiver for %s stopped", ch.fam)
				return
			}
			if !isSpuriousReadError(err) {
				log.Printf("An error occurred while reading %s: %v", ch.fam, err)
			}
			continue
		}

		reply, ok := ParseReply(ch.fam, buf[:n])
		if !ok {
			continue
		}
		addr, ok := addrFromNet(peer)
		if !ok {
			continue
		}

		rtt := e.clock.since()
		e.replies.push(models.NewResponse(addr, rtt, reply.Sequence, reply.Identifier))
	}
}
