package relay

import (
	"sort"
	"strings"
	"sync"

	"github.com/sinkingpoint/openmetrics-parser/scrape"
)

const (
	openMetricsContentType = "application/openmetrics-text; version=1.0.0; charset=utf-8"
	plainTextContentType   = "text/plain; version=0.0.4; charset=utf-8"
)

type snapshot struct {
	format scrape.Format
	body   string
}

// Cache keeps the latest canonical scrape of each target in memory.
type Cache struct {
	mu        sync.RWMutex
	snapshots map[string]snapshot
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{snapshots: make(map[string]snapshot)}
}

// Set replaces the snapshot of a target.
func (c *Cache) Set(target string, format scrape.Format, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots[target] = snapshot{format: format, body: body}
}

// Targets returns the targets with a snapshot, sorted.
func (c *Cache) Targets() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	targets := make([]string, 0, len(c.snapshots))
	for target := range c.snapshots {
		targets = append(targets, target)
	}
	sort.Strings(targets)
	return targets
}

// Merged concatenates the snapshots of all targets, sorted by target, into
// one exposition. When every snapshot is OpenMetrics the per-target EOF
// markers collapse into a single trailing one and the OpenMetrics content
// type is returned; any legacy snapshot demotes the merge to plain text.
func (c *Cache) Merged() (string, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.snapshots) == 0 {
		return "", plainTextContentType
	}

	targets := make([]string, 0, len(c.snapshots))
	allOpenMetrics := true
	for target, snap := range c.snapshots {
		targets = append(targets, target)
		if snap.format != scrape.FormatOpenMetrics {
			allOpenMetrics = false
		}
	}
	sort.Strings(targets)

	var b strings.Builder
	for _, target := range targets {
		b.WriteString(strings.TrimSuffix(c.snapshots[target].body, "# EOF\n"))
	}

	if allOpenMetrics {
		b.WriteString("# EOF\n")
		return b.String(), openMetricsContentType
	}
	return b.String(), plainTextContentType
}
