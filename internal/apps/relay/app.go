// Package relay implements the scrape relay: it polls exposition targets,
// validates and canonicalizes what they serve, and re-exposes the merged
// result on a single /metrics endpoint.
package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-resty/resty/v2"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	httpMiddlewares "github.com/sinkingpoint/openmetrics-parser/internal/middlewares/http"
	"github.com/sinkingpoint/openmetrics-parser/internal/runner"
	"github.com/sinkingpoint/openmetrics-parser/scrape"
	"github.com/sinkingpoint/openmetrics-parser/store"
)

// App is a configured relay ready to run.
type App struct {
	config *Config
}

// NewApp creates an App from its config.
func NewApp(config *Config) *App {
	return &App{config: config}
}

// Run starts the scrape loop and the HTTP server and blocks until the
// context is cancelled or either fails. SIGINT/SIGTERM trigger a graceful
// shutdown.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cache := NewCache()

	var db *sqlx.DB
	var writer *store.ScrapeWriteRepository
	if a.config.DatabaseDSN != "" {
		db, err = store.Open(a.config.DatabaseDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		writer = store.NewScrapeWriteRepository(db)
	}

	scraper := scrape.NewScraper(resty.New(), scrape.WithLogger(logger))
	worker := NewScrapeWorker(scraper, cache, writer, a.config.Targets, a.config.ScrapeInterval, logger)

	r := chi.NewRouter()
	r.Use(httpMiddlewares.LoggingMiddleware)
	r.Use(httpMiddlewares.GzipMiddleware)

	r.Get("/metrics", newMetricsHandler(cache))
	r.Get("/targets", newTargetsHandler(cache))
	if db != nil {
		r.Get("/ping", newPingHandler(db))
	}

	run := runner.NewRunner()
	run.AddWorker(worker)
	run.AddHTTPServer(&http.Server{Addr: a.config.Address, Handler: r})
	return run.Run(ctx)
}

// newMetricsHandler serves the merged canonical exposition of every cached
// target.
func newMetricsHandler(cache *Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, contentType := cache.Merged()
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(body))
	}
}

// newTargetsHandler lists the targets with a cached scrape as JSON.
func newTargetsHandler(cache *Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(cache.Targets())
	}
}

// newPingHandler checks the store connection.
func newPingHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
