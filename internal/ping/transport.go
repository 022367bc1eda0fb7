package ping

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"sync"

	"golang.org/x/net/icmp"
)

// PacketConn is the subset of *icmp.PacketConn the engine uses
type PacketConn interface {
	ReadFrom(b []byte) (int, net.Addr, error)
	WriteTo(b []byte, dst net.Addr) (int, error)
	Close() error
}

// ListenFunc opens a packet connection, with icmp.ListenPacket semantics
type ListenFunc func(network, address string) (PacketConn, error)

func listenICMP(network, address string) (PacketConn, error) {
	c, err := icmp.ListenPacket(network, address)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// SocketError is returned by New when a raw socket cannot be opened,
// typically because the process lacks CAP_NET_RAW or root.
type SocketError struct {
	Network string
	Err     error
}

func (e *SocketError) Error() string {
	return fmt.Sprintf("open %s socket: %v", e.Network, e.Err)
}

func (e *SocketError) Unwrap() error {
	return e.Err
}

// channel is the send/receive pair of one family. The receive side is read
// by exactly one receiver goroutine; sends are serialised by sendMu.
type channel struct {
	fam    Family
	conn   PacketConn
	sendMu sync.Mutex
}

type transport struct {
	channels map[Family]*channel
}

func openTransport(listen ListenFunc, families []Family) (*transport, error) {
	t := &transport{channels: make(map[Family]*channel, len(families))}
	for _, fam := range families {
		conn, err := listen(fam.network(), fam.listenAddress())
		if err != nil {
			t.close()
			return nil, &SocketError{Network: fam.network(), Err: err}
		}
		t.channels[fam] = &channel{fam: fam, conn: conn}
	}
	return t, nil
}

func (t *transport) has(fam Family) bool {
	_, ok := t.channels[fam]
	return ok
}

func (t *transport) send(addr netip.Addr, pkt []byte) error {
	ch, ok := t.channels[FamilyOf(addr)]
	if !ok {
		return fmt.Errorf("no %s socket", FamilyOf(addr))
	}

	ch.sendMu.Lock()
	defer ch.sendMu.Unlock()

	dst := &net.IPAddr{IP: addr.Unmap().AsSlice(), Zone: addr.Zone()}
	if _, err := ch.conn.WriteTo(pkt, dst); err != nil {
		return fmt.Errorf("send to %s: %w", addr, err)
	}
	return nil
}

func (t *transport) close() error {
	var errs []error
	for _, ch := range t.channels {
		if err := ch.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// addrFromNet converts the peer address reported by ReadFrom
func addrFromNet(a net.Addr) (netip.Addr, bool) {
	var ip net.IP
	var zone string
	switch v := a.(type) {
	case *net.IPAddr:
		ip, zone = v.IP, v.Zone
	case *net.UDPAddr:
		ip, zone = v.IP, v.Zone
	default:
		return netip.Addr{}, false
	}
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return netip.Addr{}, false
	}
	addr = addr.Unmap()
	if zone != "" && addr.Is6() {
		addr = addr.WithZone(zone)
	}
	return addr, true
}
