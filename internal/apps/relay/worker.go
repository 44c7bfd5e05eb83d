package relay

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sinkingpoint/openmetrics-parser/scrape"
	"github.com/sinkingpoint/openmetrics-parser/store"
)

// ScrapeWorker periodically scrapes every configured target, refreshes the
// in-memory cache and, when persistence is configured, appends the
// canonical body to the store. A failing target is logged and skipped; it
// never stops the loop.
type ScrapeWorker struct {
	scraper  *scrape.Scraper
	cache    *Cache
	writer   *store.ScrapeWriteRepository // nil when persistence is off
	targets  []string
	interval time.Duration
	log      *zap.Logger
}

// NewScrapeWorker creates a ScrapeWorker.
func NewScrapeWorker(
	scraper *scrape.Scraper,
	cache *Cache,
	writer *store.ScrapeWriteRepository,
	targets []string,
	interval time.Duration,
	log *zap.Logger,
) *ScrapeWorker {
	return &ScrapeWorker{
		scraper:  scraper,
		cache:    cache,
		writer:   writer,
		targets:  targets,
		interval: interval,
		log:      log,
	}
}

// Start scrapes all targets once immediately, then on every interval tick
// until the context is cancelled.
func (w *ScrapeWorker) Start(ctx context.Context) error {
	w.scrapeAll(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.scrapeAll(ctx)
		}
	}
}

func (w *ScrapeWorker) scrapeAll(ctx context.Context) {
	for _, target := range w.targets {
		if err := w.scrapeOne(ctx, target); err != nil {
			w.log.Warn("scrape failed",
				zap.String("target", target),
				zap.Error(err),
			)
		}
	}
}

func (w *ScrapeWorker) scrapeOne(ctx context.Context, target string) error {
	result, err := w.scraper.Scrape(ctx, target)
	if err != nil {
		return err
	}

	canonical, err := result.Canonical()
	if err != nil {
		return err
	}
	w.cache.Set(target, result.Format, canonical)

	if w.writer == nil {
		return nil
	}
	return w.writer.Save(ctx, &store.Scrape{
		Target:    target,
		Format:    result.Format.String(),
		Body:      canonical,
		ScrapedAt: time.Now().UTC(),
	})
}
