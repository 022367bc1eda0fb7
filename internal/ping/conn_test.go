package ping

import (
	"errors"
	"net"
	"net/netip"
	"sync"

	"golang.org/x/net/icmp"
)

// inbound is one ReadFrom result: a packet, or err when set
type inbound struct {
	b    []byte
	from netip.Addr
	err  error
}

// fakeConn stands in for a raw ICMP socket. Requests written to it can be
// answered with a matching echo reply, answered with a non-matching one, or
// rejected.
type fakeConn struct {
	fam Family

	mu       sync.Mutex
	echo     map[netip.Addr]bool
	failSend map[netip.Addr]bool
	// noise is called for every written request; whatever it returns is
	// delivered as inbound traffic.
	noise func(dst netip.Addr, seq, id uint16) []inbound
	sent  []netip.Addr
	// readErrs counts injected read errors handed to the receiver
	readErrs int

	inbox     chan inbound
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeConn(fam Family) *fakeConn {
	return &fakeConn{
		fam:      fam,
		echo:     make(map[netip.Addr]bool),
		failSend: make(map[netip.Addr]bool),
		inbox:    make(chan inbound, 256),
		closed:   make(chan struct{}),
	}
}

func (c *fakeConn) WriteTo(b []byte, dst net.Addr) (int, error) {
	addr, ok := addrFromNet(dst)
	if !ok {
		return 0, errors.New("bad destination")
	}

	c.mu.Lock()
	c.sent = append(c.sent, addr)
	fail := c.failSend[addr]
	echo := c.echo[addr]
	noise := c.noise
	c.mu.Unlock()

	if fail {
		return 0, errors.New("network is unreachable")
	}

	msg, err := icmp.ParseMessage(c.fam.protocol(), b)
	if err != nil {
		return 0, err
	}
	req := msg.Body.(*icmp.Echo)

	if echo {
		c.deliver(inbound{b: echoReply(c.fam, uint16(req.Seq), uint16(req.ID)), from: addr})
	}
	if noise != nil {
		for _, p := range noise(addr, uint16(req.Seq), uint16(req.ID)) {
			c.deliver(p)
		}
	}
	return len(b), nil
}

func (c *fakeConn) ReadFrom(b []byte) (int, net.Addr, error) {
	select {
	case p := <-c.inbox:
		if p.err != nil {
			c.mu.Lock()
			c.readErrs++
			c.mu.Unlock()
			return 0, nil, p.err
		}
		n := copy(b, p.b)
		return n, &net.IPAddr{IP: p.from.AsSlice()}, nil
	case <-c.closed:
		return 0, nil, &net.OpError{Op: "read", Net: c.fam.network(), Err: net.ErrClosed}
	}
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) deliver(p inbound) {
	select {
	case c.inbox <- p:
	case <-c.closed:
	}
}

func (c *fakeConn) sentTo(addr netip.Addr) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, a := range c.sent {
		if a == addr {
			n++
		}
	}
	return n
}

func (c *fakeConn) readErrors() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readErrs
}

func echoReply(fam Family, seq, id uint16) []byte {
	msg := icmp.Message{
		Type: fam.echoReply(),
		Body: &icmp.Echo{ID: int(id), Seq: int(seq), Data: make([]byte, payloadSize)},
	}
	b, err := msg.Marshal(nil)
	if err != nil {
		panic(err)
	}
	return b
}

// fakeListener hands out one fakeConn per family
type fakeListener struct {
	conns map[string]*fakeConn
	err   map[string]error
}

func newFakeListener() *fakeListener {
	return &fakeListener{
		conns: map[string]*fakeConn{
			IPv4.network(): newFakeConn(IPv4),
			IPv6.network(): newFakeConn(IPv6),
		},
		err: make(map[string]error),
	}
}

func (l *fakeListener) listen(network, address string) (PacketConn, error) {
	if err := l.err[network]; err != nil {
		return nil, err
	}
	return l.conns[network], nil
}

func (l *fakeListener) v4() *fakeConn { return l.conns[IPv4.network()] }
func (l *fakeListener) v6() *fakeConn { return l.conns[IPv6.network()] }
