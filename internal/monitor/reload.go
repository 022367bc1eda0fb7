package monitor

import (
	"log"
	"net/netip"

	"connectivity-monitor/internal/config"
)

// watchConfig follows the config file and keeps the monitored addresses in
// sync with it. Other settings only take effect on restart.
func (m *Monitor) watchConfig() {
	defer m.wg.Done()

	if err := config.Watch(m.ctx, m.config.Path, m.applyAddresses); err != nil {
		log.Printf("Config watcher stopped: %v", err)
	}
}

func (m *Monitor) applyAddresses(cfg config.Config) {
	add, remove := diffAddresses(m.engine.Addresses(), cfg.Addresses)
	for _, a := range remove {
		log.Printf("Address %s removed from config", a)
		m.engine.RemoveAddress(a)
	}
	for _, a := range add {
		log.Printf("Address %s added to config", a)
		m.engine.AddAddress(a)
	}
}

// diffAddresses compares the monitored addresses with the configured ones.
// Configured strings that do not parse are returned in add so that adding
// them logs the problem.
func diffAddresses(current []netip.Addr, configured []string) (add, remove []string) {
	have := make(map[netip.Addr]bool, len(current))
	for _, a := range current {
		have[a] = true
	}

	want := make(map[netip.Addr]bool, len(configured))
	for _, s := range configured {
		addr, err := netip.ParseAddr(s)
		if err != nil {
			add = append(add, s)
			continue
		}
		addr = addr.Unmap()
		if want[addr] {
			continue
		}
		want[addr] = true
		if !have[addr] {
			add = append(add, s)
		}
	}

	for _, a := range current {
		if !want[a] {
			remove = append(remove, a.String())
		}
	}
	return add, remove
}
