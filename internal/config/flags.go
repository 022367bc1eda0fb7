package config

import (
	"flag"
	"os"

	"github.com/joho/godotenv"
)

// ParseFlags loads .env, parses command-line flags and returns the Config
// read from the selected file with environment and flag overrides applied.
func ParseFlags() (Config, error) {
	// A missing .env is fine
	_ = godotenv.Load()

	var (
		path   = flag.String("config", getenv("ICC_CONFIG", "config.toml"), "Path to the TOML config file")
		dbPath = flag.String("db", "", "Database path (overrides config and ICC_DB)")
		bind   = flag.String("bind", "", "Web server bind address (overrides config and ICC_BIND)")
		debug  = flag.Bool("debug", false, "Log every probe and reply")
	)
	flag.Parse()

	cfg, err := Load(*path)
	if err != nil {
		return Config{}, err
	}

	applyEnv(&cfg)
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}
	if *bind != "" {
		cfg.BindAddress = *bind
	}
	cfg.Debug = *debug

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ICC_DB"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("ICC_BIND"); v != "" {
		cfg.BindAddress = v
	}
	if v := os.Getenv("ICC_CLEAR_TEXT_LOG"); v != "" {
		cfg.ClearTextLog = v
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
