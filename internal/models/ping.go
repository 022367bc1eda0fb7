package models

import (
	"fmt"
	"net/netip"
	"time"
)

// ResultKind tags the variant carried by a PingResult
type ResultKind int

const (
	KindRequest ResultKind = iota
	KindResponse
	KindTimeout
)

func (k ResultKind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindResponse:
		return "response"
	case KindTimeout:
		return "timeout"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText lets the kind travel as a string in JSON
func (k ResultKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// PingResult is one event on the result bus. Which fields are meaningful
// depends on Kind:
//
//	Request:  Addr, Sequence, Identifier, Sent (and Error when Sent is false)
//	Response: Addr, RTT, Sequence, Identifier
//	Timeout:  Addr
type PingResult struct {
	Kind       ResultKind    `json:"kind"`
	Timestamp  time.Time     `json:"timestamp"`
	Addr       netip.Addr    `json:"address"`
	Sequence   uint16        `json:"sequence,omitempty"`
	Identifier uint16        `json:"identifier,omitempty"`
	Sent       bool          `json:"sent,omitempty"`
	RTT        time.Duration `json:"rtt_ns,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// NewRequest records a transmit attempt. A nil err means the packet left.
func NewRequest(addr netip.Addr, seq, id uint16, err error) PingResult {
	r := PingResult{
		Kind:       KindRequest,
		Timestamp:  time.Now(),
		Addr:       addr,
		Sequence:   seq,
		Identifier: id,
		Sent:       err == nil,
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// NewResponse records a correlated echo reply
func NewResponse(addr netip.Addr, rtt time.Duration, seq, id uint16) PingResult {
	return PingResult{
		Kind:       KindResponse,
		Timestamp:  time.Now(),
		Addr:       addr,
		Sequence:   seq,
		Identifier: id,
		RTT:        rtt,
	}
}

// NewTimeout records an address that stayed silent for a whole round
func NewTimeout(addr netip.Addr) PingResult {
	return PingResult{
		Kind:      KindTimeout,
		Timestamp: time.Now(),
		Addr:      addr,
	}
}

func (r PingResult) String() string {
	switch r.Kind {
	case KindRequest:
		if !r.Sent {
			return fmt.Sprintf("request %s seq=%d id=%d failed: %s", r.Addr, r.Sequence, r.Identifier, r.Error)
		}
		return fmt.Sprintf("request %s seq=%d id=%d", r.Addr, r.Sequence, r.Identifier)
	case KindResponse:
		return fmt.Sprintf("response %s in %v seq=%d id=%d", r.Addr, r.RTT, r.Sequence, r.Identifier)
	case KindTimeout:
		return fmt.Sprintf("timeout %s", r.Addr)
	}
	return r.Kind.String()
}
