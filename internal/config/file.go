package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
)

// Load reads the TOML config at path, creating it if it does not exist.
// Missing keys get their defaults; if the bind address, the address list or
// the database name had to be filled in, the completed config is written
// back so later runs keep the same values.
func Load(path string) (Config, error) {
	cfg, save, err := read(path)
	if err != nil {
		return Config{}, err
	}

	if save {
		if err := Save(path, cfg); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// Read is Load without creating or rewriting the file
func Read(path string) (Config, error) {
	cfg, _, err := read(path)
	return cfg, err
}

func read(path string) (Config, bool, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, false, fmt.Errorf("parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, false, fmt.Errorf("unknown keys in config %s: %v", path, undecoded)
	}

	cfg.Path = path
	return cfg, applyDefaults(&cfg, md), nil
}

// applyDefaults fills missing keys and reports whether any of them should be
// persisted
func applyDefaults(cfg *Config, md toml.MetaData) bool {
	save := false

	if !md.IsDefined("bind_address") {
		cfg.BindAddress = DefaultBindAddress
		save = true
	}
	if !md.IsDefined("addresses_to_monitor") {
		cfg.Addresses = append([]string(nil), DefaultAddresses...)
		save = true
	}
	if !md.IsDefined("max_timeouts") {
		cfg.MaxTimeouts = DefaultMaxTimeouts
	}
	if !md.IsDefined("max_ping_timeout") {
		cfg.MaxPingTimeout = DefaultMaxPingTimeout
	}
	if !md.IsDefined("db") {
		cfg.DatabasePath = "icc-" + uuid.NewString() + ".db"
		save = true
	}

	return save
}

// Save writes cfg to path as TOML
func Save(path string, cfg Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config %s: %w", path, err)
	}
	return f.Close()
}
