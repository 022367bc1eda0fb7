package config

import (
	"fmt"
	"time"
)

// Defaults used when the config file leaves a key out
const (
	DefaultBindAddress    = "0.0.0.0:4017"
	DefaultMaxTimeouts    = 3
	DefaultMaxPingTimeout = 1000
)

// DefaultAddresses are monitored when the config file names none
var DefaultAddresses = []string{"8.8.8.8", "1.1.1.1"}

// Config holds all configuration for the connectivity monitor
type Config struct {
	// Address + port for the web API, e.g. "0.0.0.0:4017"
	BindAddress string `toml:"bind_address"`
	// Addresses to probe, e.g. ["8.8.8.8", "1.1.1.1"]
	Addresses []string `toml:"addresses_to_monitor"`
	// Consecutive timeouts before a downtime is recorded
	MaxTimeouts uint32 `toml:"max_timeouts"`
	// Milliseconds to wait for replies each round
	MaxPingTimeout uint64 `toml:"max_ping_timeout"`
	// sqlite database file
	DatabasePath string `toml:"db"`
	// If set, downtimes are also appended to this file in clear text
	ClearTextLog string `toml:"clear_text_log,omitempty"`
	// Probe IPv6 addresses too
	IPv6 bool `toml:"ipv6"`
	// Closed windows older than this many days are pruned; 0 keeps them
	RetentionDays int `toml:"retention_days"`

	Path  string `toml:"-"`
	Debug bool   `toml:"-"`
}

// PingTimeout returns MaxPingTimeout as a duration
func (c *Config) PingTimeout() time.Duration {
	return time.Duration(c.MaxPingTimeout) * time.Millisecond
}

// Retention returns how long closed windows are kept, zero meaning forever
func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// Validate checks if the configuration is valid. Individual addresses are
// not parsed here: a malformed one is logged and skipped when it is added.
func (c *Config) Validate() error {
	if len(c.Addresses) == 0 {
		return fmt.Errorf("at least one address must be monitored")
	}
	if c.MaxTimeouts == 0 {
		return fmt.Errorf("max_timeouts must be positive")
	}
	if c.MaxPingTimeout == 0 {
		return fmt.Errorf("max_ping_timeout must be positive")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if c.BindAddress == "" {
		return fmt.Errorf("bind address cannot be empty")
	}
	if c.RetentionDays < 0 {
		return fmt.Errorf("retention_days cannot be negative")
	}
	return nil
}
