package assemble

import (
	"math"
	"strconv"

	"github.com/sinkingpoint/openmetrics-parser/model"
)

// HandlerFunc applies one exposition line to an in-progress sample value.
// labelNames and labelValues are the full labelset of the line, including
// any mandatory labels that were stripped from the sample identity. created
// is true when this line allocated the sample.
type HandlerFunc func(s *Sample, value model.MetricNumber, labelNames, labelValues []string, exemplar *model.Exemplar, created bool) error

// SuffixHandler routes a metric name suffix to the write it performs.
// Handlers are tried in declaration order, so longer suffixes must precede
// the bare "" suffix in a handler table.
type SuffixHandler struct {
	Suffix          string
	MandatoryLabels []string
	Apply           HandlerFunc
}

// statesetEpsilon allows for float noise when checking a stateset value
// against 0 and 1.
const statesetEpsilon = 1.0 / (1 << 52)

func labelValue(name string, labelNames, labelValues []string) (string, bool) {
	for i, n := range labelNames {
		if n == name {
			return labelValues[i], true
		}
	}
	return "", false
}

func asHistogram(s *Sample) (*histogramMarshal, error) {
	h, ok := s.Value.(*histogramMarshal)
	if !ok {
		return nil, model.InvalidMetricf("expected a histogram value")
	}
	return h, nil
}

func asSummary(s *Sample) (*summaryMarshal, error) {
	m, ok := s.Value.(*summaryMarshal)
	if !ok {
		return nil, model.InvalidMetricf("expected a summary value")
	}
	return m, nil
}

// BucketHandler handles histogram and gauge-histogram bucket lines. The
// bucket bound is read from the mandatory `le` label.
func BucketHandler(suffix string) SuffixHandler {
	return SuffixHandler{
		Suffix:          suffix,
		MandatoryLabels: []string{"le"},
		Apply: func(s *Sample, value model.MetricNumber, labelNames, labelValues []string, exemplar *model.Exemplar, created bool) error {
			h, err := asHistogram(s)
			if err != nil {
				return err
			}
			raw, _ := labelValue("le", labelNames, labelValues)
			bound, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return model.InvalidMetricf("invalid histogram bound: %s", raw)
			}
			h.buckets = append(h.buckets, model.HistogramBucket{Count: value, UpperBound: bound, Exemplar: exemplar})
			return nil
		},
	}
}

// HistogramCountHandler handles _count (or _gcount) lines.
func HistogramCountHandler(suffix string) SuffixHandler {
	return SuffixHandler{
		Suffix: suffix,
		Apply: func(s *Sample, value model.MetricNumber, _, _ []string, _ *model.Exemplar, _ bool) error {
			h, err := asHistogram(s)
			if err != nil {
				return err
			}
			count, err := value.Uint64()
			if err != nil {
				return model.InvalidMetricf("histogram counts must be positive integers (got: %s)", value)
			}
			if h.count != nil {
				return model.ErrDuplicateMetric
			}
			h.count = &count
			return nil
		},
	}
}

// HistogramSumHandler handles _sum (or _gsum) lines.
func HistogramSumHandler(suffix string) SuffixHandler {
	return SuffixHandler{
		Suffix: suffix,
		Apply: func(s *Sample, value model.MetricNumber, _, _ []string, _ *model.Exemplar, _ bool) error {
			h, err := asHistogram(s)
			if err != nil {
				return err
			}
			if h.sum != nil {
				return model.ErrDuplicateMetric
			}
			h.sum = &value
			return nil
		},
	}
}

// HistogramCreatedHandler handles _created lines on histogram families.
func HistogramCreatedHandler() SuffixHandler {
	return SuffixHandler{
		Suffix: "_created",
		Apply: func(s *Sample, value model.MetricNumber, _, _ []string, _ *model.Exemplar, _ bool) error {
			h, err := asHistogram(s)
			if err != nil {
				return err
			}
			if h.created != nil {
				return model.ErrDuplicateMetric
			}
			created := model.Timestamp(value.Float64())
			h.created = &created
			return nil
		},
	}
}

// CounterTotalHandler handles the counter total line. suffix is "_total"
// in the OpenMetrics format and "" in the Prometheus format.
func CounterTotalHandler(suffix string) SuffixHandler {
	return SuffixHandler{
		Suffix: suffix,
		Apply: func(s *Sample, value model.MetricNumber, _, _ []string, exemplar *model.Exemplar, _ bool) error {
			c, ok := s.Value.(*counterMarshal)
			if !ok {
				return model.InvalidMetricf("expected a counter value")
			}
			f := value.Float64()
			if f < 0 || math.IsNaN(f) {
				return model.InvalidMetricf("counter totals must be non negative (got: %s)", value)
			}
			if c.value != nil {
				return model.ErrDuplicateMetric
			}
			c.value = &value
			c.exemplar = exemplar
			return nil
		},
	}
}

// CounterCreatedHandler handles _created lines on counter families.
func CounterCreatedHandler() SuffixHandler {
	return SuffixHandler{
		Suffix: "_created",
		Apply: func(s *Sample, value model.MetricNumber, _, _ []string, _ *model.Exemplar, _ bool) error {
			c, ok := s.Value.(*counterMarshal)
			if !ok {
				return model.InvalidMetricf("expected a counter value")
			}
			if c.created != nil {
				return model.ErrDuplicateMetric
			}
			created := model.Timestamp(value.Float64())
			c.created = &created
			return nil
		},
	}
}

func scalarHandler(kind scalarKind) HandlerFunc {
	return func(s *Sample, value model.MetricNumber, _, labelValues []string, _ *model.Exemplar, _ bool) error {
		m, ok := s.Value.(*scalarMarshal)
		if !ok || m.kind != kind {
			return model.InvalidMetricf("unexpected value type for metric")
		}
		if m.value != nil {
			return model.ErrDuplicateMetric
		}
		if kind == kindStateSet {
			if len(labelValues) == 0 {
				return model.InvalidMetricf("stateset must have labels")
			}
			f := value.Float64()
			if f != 0 && math.Abs(f-1) > statesetEpsilon {
				return model.InvalidMetricf("stateset value must be 0 or 1 (got: %s)", value)
			}
		}
		m.value = &value
		return nil
	}
}

// GaugeHandler handles bare gauge lines.
func GaugeHandler() SuffixHandler {
	return SuffixHandler{Suffix: "", Apply: scalarHandler(kindGauge)}
}

// UnknownHandler handles bare untyped lines.
func UnknownHandler() SuffixHandler {
	return SuffixHandler{Suffix: "", Apply: scalarHandler(kindUnknown)}
}

// StateSetHandler handles bare stateset lines.
func StateSetHandler() SuffixHandler {
	return SuffixHandler{Suffix: "", Apply: scalarHandler(kindStateSet)}
}

// InfoHandler handles _info lines, which must carry an integer value of 1.
func InfoHandler() SuffixHandler {
	return SuffixHandler{
		Suffix: "_info",
		Apply: func(s *Sample, value model.MetricNumber, _, _ []string, _ *model.Exemplar, created bool) error {
			if _, ok := s.Value.(infoMarshal); !ok {
				return model.InvalidMetricf("expected an info value")
			}
			n, ok := value.Int64()
			if !ok {
				return model.InvalidMetricf("info values must be integers (got: %s)", value)
			}
			if n != 1 {
				return model.InvalidMetricf("info values must be 1 (got: %d)", n)
			}
			if !created {
				return model.ErrDuplicateMetric
			}
			return nil
		},
	}
}

// SummaryCountHandler handles summary _count lines.
func SummaryCountHandler() SuffixHandler {
	return SuffixHandler{
		Suffix: "_count",
		Apply: func(s *Sample, value model.MetricNumber, _, _ []string, _ *model.Exemplar, _ bool) error {
			m, err := asSummary(s)
			if err != nil {
				return err
			}
			count, err := value.Uint64()
			if err != nil {
				return model.InvalidMetricf("summary counts must be positive integers (got: %s)", value)
			}
			if m.count != nil {
				return model.ErrDuplicateMetric
			}
			m.count = &count
			return nil
		},
	}
}

// SummarySumHandler handles summary _sum lines.
func SummarySumHandler() SuffixHandler {
	return SuffixHandler{
		Suffix: "_sum",
		Apply: func(s *Sample, value model.MetricNumber, _, _ []string, _ *model.Exemplar, _ bool) error {
			m, err := asSummary(s)
			if err != nil {
				return err
			}
			f := value.Float64()
			if f < 0 || math.IsNaN(f) {
				return model.InvalidMetricf("summary sums must be non negative (got: %s)", value)
			}
			if m.sum != nil {
				return model.ErrDuplicateMetric
			}
			m.sum = &value
			return nil
		},
	}
}

// QuantileHandler handles bare summary lines. The quantile bound is read
// from the mandatory `quantile` label and must lie in [0, 1].
func QuantileHandler() SuffixHandler {
	return SuffixHandler{
		Suffix:          "",
		MandatoryLabels: []string{"quantile"},
		Apply: func(s *Sample, value model.MetricNumber, labelNames, labelValues []string, _ *model.Exemplar, _ bool) error {
			m, err := asSummary(s)
			if err != nil {
				return err
			}
			f := value.Float64()
			if f < 0 && !math.IsNaN(f) {
				return model.InvalidMetricf("summary quantiles can't be negative (got: %s)", value)
			}
			raw, _ := labelValue("quantile", labelNames, labelValues)
			bound, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return model.InvalidMetricf("summary bounds must be numbers (got: %s)", raw)
			}
			if bound < 0 || bound > 1 || math.IsNaN(bound) {
				return model.InvalidMetricf("summary bounds must be between 0 and 1 (got: %v)", bound)
			}
			m.quantiles = append(m.quantiles, model.Quantile{Quantile: bound, Value: value})
			return nil
		},
	}
}
