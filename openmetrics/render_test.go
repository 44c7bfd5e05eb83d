package openmetrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinkingpoint/openmetrics-parser/model"
)

func TestRender(t *testing.T) {
	t.Run("families render sorted by name with a trailing EOF", func(t *testing.T) {
		exp := mustParse(t, "# TYPE b gauge\nb 2\n# TYPE a gauge\na 1\n# EOF\n")

		out, err := Render(exp)
		require.NoError(t, err)
		assert.Equal(t, "# TYPE a gauge\na 1\n# TYPE b gauge\nb 2\n# EOF\n", out)
	})

	t.Run("counters render _total and _created lines", func(t *testing.T) {
		out, err := Render(mustParse(t, "# TYPE a counter\na_total 10\na_created 123.5\n# EOF\n"))
		require.NoError(t, err)
		assert.Equal(t, "# TYPE a counter\na_total 10\na_created 123.5\n# EOF\n", out)
	})

	t.Run("descriptors render help, type and unit", func(t *testing.T) {
		const input = "# HELP seconds Time spent.\n# TYPE seconds counter\n# UNIT seconds seconds\nseconds_total 10\n# EOF\n"
		out, err := Render(mustParse(t, input))
		require.NoError(t, err)
		assert.Equal(t, input, out)
	})

	t.Run("label values are escaped", func(t *testing.T) {
		exp := NewExposition()
		f, err := NewMetricFamily("a", []string{"l"}, Gauge, "", "")
		require.NoError(t, err)
		require.NoError(t, f.AddSamples(model.NewSample([]string{"quote \" slash \\ newline \n"}, nil, model.GaugeValue{Value: model.Int(1)})))
		exp.Families["a"] = f

		out, err := Render(exp)
		require.NoError(t, err)
		assert.Equal(t, "# TYPE a gauge\na{l=\"quote \\\" slash \\\\ newline \\n\"} 1\n# EOF\n", out)
	})

	t.Run("unknown families omit the TYPE line", func(t *testing.T) {
		out, err := Render(mustParse(t, "a 1\n# EOF\n"))
		require.NoError(t, err)
		assert.Equal(t, "a 1\n# EOF\n", out)
	})

	t.Run("exemplars render after the value", func(t *testing.T) {
		const input = "# TYPE a counter\na_total 10 # {trace_id=\"abc\"} 0.5 100\n# EOF\n"
		out, err := Render(mustParse(t, input))
		require.NoError(t, err)
		assert.Equal(t, input, out)
	})
}

func TestRoundTrip(t *testing.T) {
	inputs := map[string]string{
		"counter": "# HELP requests Total requests.\n# TYPE requests counter\nrequests_total{path=\"/\"} 10\nrequests_total{path=\"/about\"} 5\n# EOF\n",
		"histogram": "# TYPE lat histogram\n" +
			"lat_bucket{le=\"0.1\"} 1\n" +
			"lat_bucket{le=\"+Inf\"} 3\n" +
			"lat_sum 2.5\n" +
			"lat_count 3\n" +
			"lat_created 100\n" +
			"# EOF\n",
		"gaugehistogram": "# TYPE mem gaugehistogram\n" +
			"mem_bucket{le=\"1024\"} 2\n" +
			"mem_bucket{le=\"+Inf\"} 3\n" +
			"mem_gsum 2048\n" +
			"mem_gcount 3\n" +
			"# EOF\n",
		"summary": "# TYPE lat summary\n" +
			"lat{quantile=\"0.5\"} 0.1\n" +
			"lat{quantile=\"0.99\"} 0.5\n" +
			"lat_sum 10\n" +
			"lat_count 100\n" +
			"# EOF\n",
		"stateset": "# TYPE feature stateset\nfeature{feature=\"a\"} 1\nfeature{feature=\"b\"} 0\n# EOF\n",
		"info":     "# TYPE build info\nbuild_info{version=\"1.2.3\"} 1\n# EOF\n",
		"timestamps": "# TYPE a gauge\na 1 100\n# EOF\n",
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			out, err := Render(mustParse(t, input))
			require.NoError(t, err)
			assert.Equal(t, input, out)

			again, err := Render(mustParse(t, out))
			require.NoError(t, err)
			assert.Equal(t, out, again)
		})
	}
}
