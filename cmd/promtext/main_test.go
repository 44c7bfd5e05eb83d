package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalise(t *testing.T) {
	t.Run("openmetrics round trip", func(t *testing.T) {
		input := "# TYPE requests counter\nrequests_total 5\n# EOF\n"

		got, err := canonicalise(formatOpenMetrics, input)
		require.NoError(t, err)
		assert.Equal(t, input, got)
	})

	t.Run("openmetrics sorts labels", func(t *testing.T) {
		input := "# TYPE requests counter\nrequests_total{b=\"2\",a=\"1\"} 5\n# EOF\n"

		got, err := canonicalise(formatOpenMetrics, input)
		require.NoError(t, err)
		assert.Equal(t, "# TYPE requests counter\nrequests_total{a=\"1\",b=\"2\"} 5\n# EOF\n", got)
	})

	t.Run("prometheus round trip", func(t *testing.T) {
		input := "# TYPE requests counter\nrequests 5\n"

		got, err := canonicalise(formatPrometheus, input)
		require.NoError(t, err)
		assert.Equal(t, input, got)
	})

	t.Run("openmetrics rejects missing eof", func(t *testing.T) {
		_, err := canonicalise(formatOpenMetrics, "# TYPE requests counter\nrequests_total 5\n")
		assert.Error(t, err)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := canonicalise("graphite", "")
		assert.Error(t, err)
	})
}

func TestRun(t *testing.T) {
	t.Run("writes canonical output to file", func(t *testing.T) {
		dir := t.TempDir()
		in := filepath.Join(dir, "in.txt")
		out := filepath.Join(dir, "out.txt")
		require.NoError(t, os.WriteFile(in, []byte("# TYPE up gauge\nup{b=\"2\",a=\"1\"} 1\n# EOF\n"), 0o644))

		err := run(&config{Format: formatOpenMetrics, Input: in, Output: out})
		require.NoError(t, err)

		got, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "# TYPE up gauge\nup{a=\"1\",b=\"2\"} 1\n# EOF\n", string(got))
	})

	t.Run("check mode writes nothing", func(t *testing.T) {
		dir := t.TempDir()
		in := filepath.Join(dir, "in.txt")
		out := filepath.Join(dir, "out.txt")
		require.NoError(t, os.WriteFile(in, []byte("up 1\n# EOF\n"), 0o644))

		err := run(&config{Format: formatOpenMetrics, Input: in, Output: out, Check: true})
		require.NoError(t, err)

		_, err = os.Stat(out)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("check mode reports invalid input", func(t *testing.T) {
		dir := t.TempDir()
		in := filepath.Join(dir, "in.txt")
		require.NoError(t, os.WriteFile(in, []byte("# TYPE c counter\nc_total -1\n# EOF\n"), 0o644))

		err := run(&config{Format: formatOpenMetrics, Input: in, Check: true})
		assert.Error(t, err)
	})

	t.Run("missing input file", func(t *testing.T) {
		err := run(&config{Format: formatOpenMetrics, Input: "/nonexistent/in.txt"})
		assert.Error(t, err)
	})
}
