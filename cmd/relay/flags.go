package main

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/sinkingpoint/openmetrics-parser/internal/apps/relay"
)

var (
	addr           string
	targets        string
	scrapeInterval int
	databaseDSN    string
)

func init() {
	pflag.StringVarP(&addr, "address", "a", ":9091", "address to serve the merged exposition on")
	pflag.StringVarP(&targets, "targets", "t", "", "comma-separated list of target URLs to scrape")
	pflag.IntVarP(&scrapeInterval, "interval", "i", 15, "scrape interval in seconds")
	pflag.StringVarP(&databaseDSN, "database-dsn", "d", "", "sqlite DSN to persist scrapes (empty = in-memory only)")
}

// parseFlags reads flags and environment variables (env wins) and builds
// the relay config.
func parseFlags() (*relay.Config, error) {
	pflag.Parse()

	if len(pflag.Args()) > 0 {
		return nil, errors.New("unknown flags or arguments are provided")
	}

	if env := os.Getenv("ADDRESS"); env != "" {
		addr = env
	}
	if env := os.Getenv("TARGETS"); env != "" {
		targets = env
	}
	if env := os.Getenv("SCRAPE_INTERVAL"); env != "" {
		i, err := strconv.Atoi(env)
		if err != nil {
			return nil, errors.New("invalid SCRAPE_INTERVAL env variable")
		}
		scrapeInterval = i
	}
	if env := os.Getenv("DATABASE_DSN"); env != "" {
		databaseDSN = env
	}

	if targets == "" {
		return nil, errors.New("at least one scrape target is required")
	}

	return relay.NewConfig(
		relay.WithAddress(addr),
		relay.WithTargets(strings.Split(targets, ",")...),
		relay.WithScrapeInterval(time.Duration(scrapeInterval)*time.Second),
		relay.WithDatabaseDSN(databaseDSN),
	)
}
