// Package scrape fetches metric expositions over HTTP and parses them with
// the format the target negotiated.
package scrape

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/sinkingpoint/openmetrics-parser/openmetrics"
	"github.com/sinkingpoint/openmetrics-parser/prometheus"
)

// Format identifies which exposition format a target responded with.
type Format int

const (
	FormatPrometheus Format = iota
	FormatOpenMetrics
)

func (f Format) String() string {
	if f == FormatOpenMetrics {
		return "openmetrics"
	}
	return "prometheus"
}

const acceptHeader = "application/openmetrics-text;version=1.0.0;q=0.9,text/plain;q=0.5"

// Result is one parsed scrape. Exactly one of OpenMetrics and Prometheus is
// set, matching Format.
type Result struct {
	Format      Format
	Body        string
	OpenMetrics *openmetrics.Exposition
	Prometheus  *prometheus.Exposition
}

// Canonical renders the scrape back out in its own format, families sorted
// by name.
func (r *Result) Canonical() (string, error) {
	if r.Format == FormatOpenMetrics {
		return openmetrics.Render(r.OpenMetrics)
	}
	return prometheus.Render(r.Prometheus)
}

// Scraper fetches metric expositions from HTTP targets.
type Scraper struct {
	client *resty.Client
	log    *zap.Logger
}

// Opt configures a Scraper.
type Opt func(*Scraper)

// WithLogger sets the logger the scraper reports fetches with.
func WithLogger(log *zap.Logger) Opt {
	return func(s *Scraper) { s.log = log }
}

// NewScraper creates a Scraper on top of the given REST client.
func NewScraper(client *resty.Client, opts ...Opt) *Scraper {
	s := &Scraper{client: client, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scrape fetches one exposition from url and parses it. The format is
// chosen from the response Content-Type: targets that answer with
// application/openmetrics-text are parsed strictly, everything else is read
// as the legacy Prometheus text format.
func (s *Scraper) Scrape(ctx context.Context, url string) (*Result, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Accept", acceptHeader).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetching %s: got status %d", url, resp.StatusCode())
	}

	result := &Result{Body: string(resp.Body())}
	if strings.Contains(resp.Header().Get("Content-Type"), "application/openmetrics-text") {
		result.Format = FormatOpenMetrics
		result.OpenMetrics, err = openmetrics.Parse(result.Body)
	} else {
		result.Format = FormatPrometheus
		result.Prometheus, err = prometheus.Parse(result.Body)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing scrape of %s: %w", url, err)
	}

	s.log.Info("scraped target",
		zap.String("url", url),
		zap.String("format", result.Format.String()),
		zap.Int("families", s.familyCount(result)),
	)
	return result, nil
}

func (s *Scraper) familyCount(r *Result) int {
	if r.Format == FormatOpenMetrics {
		return len(r.OpenMetrics.Families)
	}
	return len(r.Prometheus.Families)
}
