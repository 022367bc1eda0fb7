package ping

import (
	"fmt"
	"math/rand"
	"net/netip"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// IANA protocol numbers, as icmp.ParseMessage expects them
const (
	protocolICMP   = 1
	protocolICMPv6 = 58
)

// payloadSize keeps requests at 16 bytes on the wire (8 header + 8 payload)
const payloadSize = 8

// Family is an IP address family with its own raw socket
type Family int

const (
	IPv4 Family = 4
	IPv6 Family = 6
)

// FamilyOf reports the family an address is probed with
func FamilyOf(addr netip.Addr) Family {
	if addr.Unmap().Is4() {
		return IPv4
	}
	return IPv6
}

func (f Family) String() string {
	switch f {
	case IPv4:
		return "ipv4"
	case IPv6:
		return "ipv6"
	}
	return fmt.Sprintf("family(%d)", int(f))
}

func (f Family) network() string {
	if f == IPv6 {
		return "ip6:ipv6-icmp"
	}
	return "ip4:icmp"
}

func (f Family) listenAddress() string {
	if f == IPv6 {
		return "::"
	}
	return "0.0.0.0"
}

func (f Family) protocol() int {
	if f == IPv6 {
		return protocolICMPv6
	}
	return protocolICMP
}

func (f Family) echoRequest() icmp.Type {
	if f == IPv6 {
		return ipv6.ICMPTypeEchoRequest
	}
	return ipv4.ICMPTypeEcho
}

func (f Family) echoReply() icmp.Type {
	if f == IPv6 {
		return ipv6.ICMPTypeEchoReply
	}
	return ipv4.ICMPTypeEchoReply
}

// Reply is the part of an inbound echo reply used for correlation
type Reply struct {
	Type       icmp.Type
	Sequence   uint16
	Identifier uint16
}

// BuildEchoRequest returns a ready-to-send echo request with a random
// sequence number and identifier.
//
// The IPv4 checksum is computed here. For IPv6 the checksum covers a
// pseudo-header the sender cannot know in advance, so it is left to the
// kernel, which fills it in for raw ICMPv6 sockets.
func BuildEchoRequest(fam Family) (pkt []byte, seq, id uint16, err error) {
	seq = uint16(rand.Uint32())
	id = uint16(rand.Uint32())

	msg := icmp.Message{
		Type: fam.echoRequest(),
		Code: 0,
		Body: &icmp.Echo{
			ID:   int(id),
			Seq:  int(seq),
			Data: make([]byte, payloadSize),
		},
	}

	pkt, err = msg.Marshal(nil)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("marshal %s echo request: %w", fam, err)
	}
	return pkt, seq, id, nil
}

// ParseReply decodes b as an ICMP message of the given family. Only echo
// replies are reported; every other message type yields false.
func ParseReply(fam Family, b []byte) (Reply, bool) {
	msg, err := icmp.ParseMessage(fam.protocol(), b)
	if err != nil {
		return Reply{}, false
	}
	if msg.Type != fam.echoReply() {
		return Reply{}, false
	}
	echo, ok := msg.Body.(*icmp.Echo)
	if !ok {
		return Reply{}, false
	}
	return Reply{
		Type:       msg.Type,
		Sequence:   uint16(echo.Seq),
		Identifier: uint16(echo.ID),
	}, true
}
