package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrape(t *testing.T) {
	ctx := context.Background()

	t.Run("openmetrics targets are parsed strictly", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.Header.Get("Accept"), "application/openmetrics-text")
			w.Header().Set("Content-Type", "application/openmetrics-text; version=1.0.0; charset=utf-8")
			_, _ = w.Write([]byte("# TYPE a counter\na_total 10\n# EOF\n"))
		}))
		defer srv.Close()

		result, err := NewScraper(resty.New()).Scrape(ctx, srv.URL)
		require.NoError(t, err)
		assert.Equal(t, FormatOpenMetrics, result.Format)
		require.NotNil(t, result.OpenMetrics)
		assert.Nil(t, result.Prometheus)
		assert.Len(t, result.OpenMetrics.Families, 1)
	})

	t.Run("plain text targets use the legacy format", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain; version=0.0.4")
			_, _ = w.Write([]byte("# TYPE a counter\na 10\n"))
		}))
		defer srv.Close()

		result, err := NewScraper(resty.New()).Scrape(ctx, srv.URL)
		require.NoError(t, err)
		assert.Equal(t, FormatPrometheus, result.Format)
		require.NotNil(t, result.Prometheus)
	})

	t.Run("http errors fail the scrape", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := NewScraper(resty.New()).Scrape(ctx, srv.URL)
		assert.ErrorContains(t, err, "status 500")
	})

	t.Run("unparseable bodies fail the scrape", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/openmetrics-text")
			_, _ = w.Write([]byte("a 1\n"))
		}))
		defer srv.Close()

		_, err := NewScraper(resty.New()).Scrape(ctx, srv.URL)
		assert.Error(t, err)
	})
}

func TestResultCanonical(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/openmetrics-text")
		_, _ = w.Write([]byte("# TYPE b gauge\nb 2\n# TYPE a gauge\na 1\n# EOF\n"))
	}))
	defer srv.Close()

	result, err := NewScraper(resty.New()).Scrape(context.Background(), srv.URL)
	require.NoError(t, err)

	canonical, err := result.Canonical()
	require.NoError(t, err)
	assert.Equal(t, "# TYPE a gauge\na 1\n# TYPE b gauge\nb 2\n# EOF\n", canonical)
}
