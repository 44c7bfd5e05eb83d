// Package model holds the typed data model shared by the OpenMetrics and
// Prometheus text exposition parsers: numeric values, samples, metric
// families and whole expositions, together with the error taxonomy.
package model

import "fmt"

// Timestamp is a metric timestamp, in seconds since the epoch. The formats
// allow fractional seconds, so it is carried as a float.
type Timestamp = float64

// FamilyType constrains the per-format metric type enums
// (openmetrics.Type, prometheus.Type).
type FamilyType interface {
	comparable
	fmt.Stringer
}

// Exemplar is an out-of-band reference (for example a trace ID) attached to
// a counter total or a histogram bucket. It is owned by exactly one sample
// value and never shared.
type Exemplar struct {
	Labels    map[string]string
	ID        float64
	Timestamp *Timestamp
}

// NewExemplar creates an Exemplar.
func NewExemplar(labels map[string]string, id float64, timestamp *Timestamp) *Exemplar {
	return &Exemplar{Labels: labels, ID: id, Timestamp: timestamp}
}

// Value is the closed set of sample value variants. Exactly one variant
// corresponds to each family type; both exposition formats share the set,
// with the Prometheus format simply never producing the OpenMetrics-only
// variants.
type Value interface {
	metricValue()
}

// UnknownValue is the value of an untyped sample.
type UnknownValue struct {
	Value MetricNumber
}

// GaugeValue is a point-in-time measurement.
type GaugeValue struct {
	Value MetricNumber
}

// CounterValue is a monotonically increasing total, with an optional
// creation timestamp and an optional exemplar.
type CounterValue struct {
	Value    MetricNumber
	Created  *Timestamp
	Exemplar *Exemplar
}

// HistogramBucket is one cumulative bucket of a histogram.
type HistogramBucket struct {
	Count      MetricNumber
	UpperBound float64
	Exemplar   *Exemplar
}

// HistogramValue is a cumulative histogram: ordered buckets plus optional
// sum, count and creation timestamp.
type HistogramValue struct {
	Sum     *MetricNumber
	Count   *uint64
	Created *Timestamp
	Buckets []HistogramBucket
}

// GaugeHistogramValue is a histogram whose buckets can go up and down.
// It shares the shape of HistogramValue but different validation rules.
type GaugeHistogramValue HistogramValue

// StateSetValue is one state of a state set: 1 if the state is enabled.
type StateSetValue struct {
	Value MetricNumber
}

// Quantile is one quantile of a summary.
type Quantile struct {
	Quantile float64
	Value    MetricNumber
}

// SummaryValue is a client-side summary: quantiles plus optional sum,
// count and creation timestamp.
type SummaryValue struct {
	Sum       *MetricNumber
	Count     *uint64
	Created   *Timestamp
	Quantiles []Quantile
}

// InfoValue carries no payload; the information lives in the label set.
type InfoValue struct{}

func (UnknownValue) metricValue()        {}
func (GaugeValue) metricValue()          {}
func (CounterValue) metricValue()        {}
func (HistogramValue) metricValue()      {}
func (GaugeHistogramValue) metricValue() {}
func (StateSetValue) metricValue()       {}
func (SummaryValue) metricValue()        {}
func (InfoValue) metricValue()           {}

// Sample is one (label values, timestamp, value) triple within a family.
// Its identity within the family is its label values; the label names are
// owned by the family and the two slices always have the same length.
type Sample struct {
	LabelValues []string
	Timestamp   *Timestamp
	Value       Value
}

// NewSample creates a Sample.
func NewSample(labelValues []string, timestamp *Timestamp, value Value) Sample {
	return Sample{LabelValues: labelValues, Timestamp: timestamp, Value: value}
}

// MetricFamily is a finalized, validated collection of samples sharing one
// metric name, one type and one label-name set.
type MetricFamily[T FamilyType] struct {
	Name       string
	LabelNames []string
	Type       T
	Help       string
	Unit       string
	Samples    []Sample
}

// NewMetricFamily creates an empty MetricFamily. The name is mandatory.
func NewMetricFamily[T FamilyType](name string, labelNames []string, familyType T, help, unit string) (*MetricFamily[T], error) {
	if name == "" {
		return nil, InvalidMetricf("metric family must have a name")
	}
	return &MetricFamily[T]{
		Name:       name,
		LabelNames: labelNames,
		Type:       familyType,
		Help:       help,
		Unit:       unit,
	}, nil
}

// AddSamples appends samples to the family, enforcing that each sample has
// exactly one label value per family label name and that no two samples
// share a label set.
func (f *MetricFamily[T]) AddSamples(samples ...Sample) error {
	for _, s := range samples {
		if len(s.LabelValues) != len(f.LabelNames) {
			return InvalidMetricf("sample has %d label values but family %s has %d label names", len(s.LabelValues), f.Name, len(f.LabelNames))
		}
		if f.SampleByLabelValues(s.LabelValues) != nil {
			return ErrDuplicateMetric
		}
		f.Samples = append(f.Samples, s)
	}
	return nil
}

// SampleByLabelValues returns the sample with exactly the given label
// values, or nil if the family has none.
func (f *MetricFamily[T]) SampleByLabelValues(labelValues []string) *Sample {
	for i := range f.Samples {
		if equalStrings(f.Samples[i].LabelValues, labelValues) {
			return &f.Samples[i]
		}
	}
	return nil
}

// LabelSet pairs a sample's label values with the family's label names.
type LabelSet struct {
	names  []string
	values []string
}

// Get returns the value of the named label, if present.
func (ls *LabelSet) Get(name string) (string, bool) {
	for i, n := range ls.names {
		if n == name {
			return ls.values[i], true
		}
	}
	return "", false
}

// LabelSet builds the label set of a sample in this family. It fails if the
// sample does not have one value per family label name.
func (f *MetricFamily[T]) LabelSet(s *Sample) (*LabelSet, error) {
	if len(s.LabelValues) != len(f.LabelNames) {
		return nil, InvalidMetricf("sample has %d label values but family %s has %d label names", len(s.LabelValues), f.Name, len(f.LabelNames))
	}
	return &LabelSet{names: f.LabelNames, values: s.LabelValues}, nil
}

// WithoutLabel returns a copy of the family with the named label dropped
// from the family and every sample. It fails if dropping the label would
// make two samples share a label set.
func (f *MetricFamily[T]) WithoutLabel(name string) (*MetricFamily[T], error) {
	idx := -1
	for i, n := range f.LabelNames {
		if n == name {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, InvalidMetricf("family %s has no label named %s", f.Name, name)
	}

	out := &MetricFamily[T]{
		Name:       f.Name,
		LabelNames: removeIndex(f.LabelNames, idx),
		Type:       f.Type,
		Help:       f.Help,
		Unit:       f.Unit,
	}
	for _, s := range f.Samples {
		trimmed := NewSample(removeIndex(s.LabelValues, idx), s.Timestamp, s.Value)
		if err := out.AddSamples(trimmed); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Exposition is the result of one scrape: every metric family in the
// document, keyed by family name. A family name appears at most once; the
// parsers reject documents that revisit a finalized family.
type Exposition[T FamilyType] struct {
	Families map[string]*MetricFamily[T]
}

// NewExposition creates an empty Exposition.
func NewExposition[T FamilyType]() *Exposition[T] {
	return &Exposition[T]{Families: make(map[string]*MetricFamily[T])}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func removeIndex(s []string, i int) []string {
	out := make([]string, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}
