package ping

import (
	"errors"
	"fmt"
	"net/netip"
	"slices"
	"sync"
)

// ErrInvalidAddress is returned for strings that are not IP literals
var ErrInvalidAddress = errors.New("invalid ip address")

// Registry holds the monitored addresses and whether each one has answered
// in the current round.
type Registry struct {
	mu   sync.Mutex
	seen map[netip.Addr]bool
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{seen: make(map[netip.Addr]bool)}
}

func parseAddr(s string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w %q: %v", ErrInvalidAddress, s, err)
	}
	return addr.Unmap(), nil
}

// Add parses s and starts monitoring it. A new address counts as seen so it
// cannot time out in a round it was not probed in.
func (r *Registry) Add(s string) (netip.Addr, error) {
	addr, err := parseAddr(s)
	if err != nil {
		return netip.Addr{}, err
	}

	r.mu.Lock()
	r.seen[addr] = true
	r.mu.Unlock()
	return addr, nil
}

// Remove parses s and stops monitoring it. The bool reports whether the
// address was present.
func (r *Registry) Remove(s string) (netip.Addr, bool, error) {
	addr, err := parseAddr(s)
	if err != nil {
		return netip.Addr{}, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.seen[addr]
	delete(r.seen, addr)
	return addr, ok, nil
}

// Contains reports whether addr is monitored
func (r *Registry) Contains(addr netip.Addr) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.seen[addr]
	return ok
}

// Len returns the number of monitored addresses
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

// Addresses returns the monitored addresses in address order
func (r *Registry) Addresses() []netip.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortedKeys(r.seen, func(bool) bool { return true })
}

func (r *Registry) reset(addr netip.Addr) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[addr]; ok {
		r.seen[addr] = false
	}
}

func (r *Registry) markSeen(addr netip.Addr) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[addr]; ok {
		r.seen[addr] = true
	}
}

// unseen returns, in address order, the addresses that have not answered
// since they were last reset.
func (r *Registry) unseen() []netip.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortedKeys(r.seen, func(seen bool) bool { return !seen })
}

func sortedKeys(m map[netip.Addr]bool, keep func(bool) bool) []netip.Addr {
	addrs := make([]netip.Addr, 0, len(m))
	for addr, v := range m {
		if keep(v) {
			addrs = append(addrs, addr)
		}
	}
	slices.SortFunc(addrs, func(a, b netip.Addr) int { return a.Compare(b) })
	return addrs
}
