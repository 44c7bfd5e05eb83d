package assemble

import (
	"math"

	"github.com/sinkingpoint/openmetrics-parser/model"
)

// ValueMarshal is an in-progress sample value. It accumulates writes from
// suffix handlers while the family is being assembled and is converted to
// the immutable public value variant by finish, which fails instead of
// panicking when a mandatory sub-field was never written.
type ValueMarshal interface {
	finish() (model.Value, error)
}

type scalarKind int

const (
	kindUnknown scalarKind = iota
	kindGauge
	kindStateSet
)

// scalarMarshal backs the single-number variants (unknown, gauge, stateset).
type scalarMarshal struct {
	kind  scalarKind
	value *model.MetricNumber
}

// NewUnknownMarshal returns an empty untyped value.
func NewUnknownMarshal() ValueMarshal { return &scalarMarshal{kind: kindUnknown} }

// NewGaugeMarshal returns an empty gauge value.
func NewGaugeMarshal() ValueMarshal { return &scalarMarshal{kind: kindGauge} }

// NewStateSetMarshal returns an empty stateset value.
func NewStateSetMarshal() ValueMarshal { return &scalarMarshal{kind: kindStateSet} }

func (m *scalarMarshal) finish() (model.Value, error) {
	if m.value == nil {
		return nil, model.InvalidMetricf("metric has no value")
	}
	switch m.kind {
	case kindGauge:
		return model.GaugeValue{Value: *m.value}, nil
	case kindStateSet:
		return model.StateSetValue{Value: *m.value}, nil
	default:
		return model.UnknownValue{Value: *m.value}, nil
	}
}

type counterMarshal struct {
	value    *model.MetricNumber
	created  *model.Timestamp
	exemplar *model.Exemplar
}

// NewCounterMarshal returns an empty counter value.
func NewCounterMarshal() ValueMarshal { return &counterMarshal{} }

func (m *counterMarshal) finish() (model.Value, error) {
	if m.value == nil {
		return nil, model.InvalidMetricf("counter has no total")
	}
	return model.CounterValue{Value: *m.value, Created: m.created, Exemplar: m.exemplar}, nil
}

type histogramMarshal struct {
	gauge   bool
	sum     *model.MetricNumber
	count   *uint64
	created *model.Timestamp
	buckets []model.HistogramBucket
}

// NewHistogramMarshal returns an empty histogram value; gauge selects the
// gauge-histogram variant.
func NewHistogramMarshal(gauge bool) ValueMarshal { return &histogramMarshal{gauge: gauge} }

func (m *histogramMarshal) finish() (model.Value, error) {
	v := model.HistogramValue{Sum: m.sum, Count: m.count, Created: m.created, Buckets: m.buckets}
	if m.gauge {
		return model.GaugeHistogramValue(v), nil
	}
	return v, nil
}

// validate re-checks the cross-field histogram invariants that only hold
// once the whole family has been read.
func (m *histogramMarshal) validate() error {
	if len(m.buckets) == 0 {
		return model.InvalidMetricf("histograms must have at least one bucket")
	}

	hasInf := false
	hasNegative := false
	for _, b := range m.buckets {
		if math.IsInf(b.UpperBound, 1) {
			hasInf = true
		}
		if b.UpperBound < 0 {
			hasNegative = true
		}
	}
	if !hasInf {
		return model.InvalidMetricf("histograms must have a +Inf bucket")
	}

	if hasNegative {
		if m.sum != nil && !m.gauge {
			return model.InvalidMetricf("histograms cannot have a sum with a negative bucket")
		}
	} else if m.sum != nil && m.sum.Float64() < 0 {
		return model.InvalidMetricf("histograms cannot have a negative sum without a negative bucket")
	}

	if m.sum != nil && m.count == nil {
		return model.InvalidMetricf("count must be present if sum is present")
	}
	if m.sum == nil && m.count != nil {
		return model.InvalidMetricf("sum must be present if count is present")
	}

	last := math.Inf(-1)
	for _, b := range m.buckets {
		if b.Count.Float64() < last {
			return model.InvalidMetricf("histograms must be cumulative")
		}
		last = b.Count.Float64()
	}
	return nil
}

type summaryMarshal struct {
	sum       *model.MetricNumber
	count     *uint64
	quantiles []model.Quantile
}

// NewSummaryMarshal returns an empty summary value.
func NewSummaryMarshal() ValueMarshal { return &summaryMarshal{} }

func (m *summaryMarshal) finish() (model.Value, error) {
	return model.SummaryValue{Sum: m.sum, Count: m.count, Quantiles: m.quantiles}, nil
}

type infoMarshal struct{}

// NewInfoMarshal returns the payload-free info value.
func NewInfoMarshal() ValueMarshal { return infoMarshal{} }

func (infoMarshal) finish() (model.Value, error) { return model.InfoValue{}, nil }
