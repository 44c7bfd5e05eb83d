package relay

import (
	"strings"
	"time"
)

// Config holds the relay configuration.
type Config struct {
	Address        string        // address the relay listens on
	Targets        []string      // URLs to scrape
	ScrapeInterval time.Duration // how often each target is scraped
	DatabaseDSN    string        // sqlite DSN; empty disables persistence
}

// ConfigOpt applies one option to a Config.
type ConfigOpt func(*Config) error

// NewConfig creates a Config by applying the given options over defaults.
func NewConfig(opts ...ConfigOpt) (*Config, error) {
	cfg := &Config{
		Address:        ":9091",
		ScrapeInterval: 15 * time.Second,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// WithAddress sets the listen address to the first non-empty value.
func WithAddress(addrs ...string) ConfigOpt {
	return func(cfg *Config) error {
		for _, addr := range addrs {
			if strings.TrimSpace(addr) != "" {
				cfg.Address = addr
				break
			}
		}
		return nil
	}
}

// WithTargets sets the scrape targets, dropping empty entries.
func WithTargets(targets ...string) ConfigOpt {
	return func(cfg *Config) error {
		for _, target := range targets {
			if strings.TrimSpace(target) != "" {
				cfg.Targets = append(cfg.Targets, strings.TrimSpace(target))
			}
		}
		return nil
	}
}

// WithScrapeInterval sets the scrape interval to the first positive value.
func WithScrapeInterval(intervals ...time.Duration) ConfigOpt {
	return func(cfg *Config) error {
		for _, interval := range intervals {
			if interval > 0 {
				cfg.ScrapeInterval = interval
				break
			}
		}
		return nil
	}
}

// WithDatabaseDSN sets the sqlite DSN to the first non-empty value.
func WithDatabaseDSN(dsns ...string) ConfigOpt {
	return func(cfg *Config) error {
		for _, dsn := range dsns {
			if strings.TrimSpace(dsn) != "" {
				cfg.DatabaseDSN = dsn
				break
			}
		}
		return nil
	}
}
