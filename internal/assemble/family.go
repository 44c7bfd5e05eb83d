// Package assemble builds metric families out of individually lexed
// exposition lines. It is format-agnostic: the per-format packages supply a
// Policy that describes which metric types exist, which suffix handlers
// apply to each, and which labels carry structural meaning.
package assemble

import (
	"sort"
	"strings"

	"github.com/sinkingpoint/openmetrics-parser/model"
)

// Policy captures the rules of one exposition format. T is the closed set
// of metric types the format supports.
type Policy[T model.FamilyType] interface {
	// DefaultType is the type assumed for a family with no TYPE line.
	DefaultType() T

	// ParseType resolves the text of a TYPE line, returning a
	// *model.InvalidTypeError for names the format doesn't know.
	ParseType(s string) (T, error)

	// IgnoredLabels returns labels that are part of the line but not of
	// the sample identity, e.g. `le` on histogram buckets.
	IgnoredLabels(t T, sampleName string) []string

	// CanHaveExemplar reports whether a line of the given metric name may
	// carry an exemplar.
	CanHaveExemplar(t T, sampleName string) bool

	// CanHaveUnits reports whether families of this type accept UNIT lines.
	CanHaveUnits(t T) bool

	// CanHaveMultipleLines reports whether one sample is built up from
	// several exposition lines, as with histogram buckets.
	CanHaveMultipleLines(t T) bool

	// NewValue allocates an empty in-progress value for the type.
	NewValue(t T) ValueMarshal

	// Handlers returns the suffix handlers for the type, most specific
	// suffix first.
	Handlers(t T) []SuffixHandler
}

// Sample is one in-progress sample of a family being assembled.
type Sample struct {
	LabelValues []string
	Timestamp   *model.Timestamp
	Value       ValueMarshal
}

// Family assembles one metric family from descriptor and sample lines.
type Family[T model.FamilyType] struct {
	policy Policy[T]

	name          string
	hasName       bool
	labelNames    []string
	hasLabelNames bool
	familyType    *T
	help          *string
	unit          *string
	samples       []*Sample
}

// NewFamily returns an empty family governed by the given policy.
func NewFamily[T model.FamilyType](policy Policy[T]) *Family[T] {
	return &Family[T]{policy: policy}
}

// Name returns the family name, if one has been established yet.
func (f *Family[T]) Name() (string, bool) {
	return f.name, f.hasName
}

// HasSamples reports whether any sample line has been processed.
func (f *Family[T]) HasSamples() bool {
	return len(f.samples) > 0
}

// SetOrCheckName records the family name from a descriptor line, or fails
// if a different name was already established.
func (f *Family[T]) SetOrCheckName(name string) error {
	if f.hasName {
		if f.name != name {
			return model.InvalidMetricf("invalid metric name in family. family name is %s, but got a metric called %s", f.name, name)
		}
		return nil
	}
	f.name = name
	f.hasName = true
	return nil
}

// AddHelp records the HELP text, failing on a second HELP line.
func (f *Family[T]) AddHelp(help string) error {
	if f.help != nil {
		return model.InvalidMetricf("got two help lines in the same metric family")
	}
	f.help = &help
	return nil
}

// AddType records the TYPE of the family, failing on a second TYPE line or
// an unknown type name.
func (f *Family[T]) AddType(raw string) error {
	if f.familyType != nil {
		return model.InvalidMetricf("got two type lines in the same metric family")
	}
	t, err := f.policy.ParseType(raw)
	if err != nil {
		return err
	}
	f.familyType = &t
	return nil
}

// AddUnit records the UNIT of the family. An empty unit is a no-op. Units
// are rejected on types the policy excludes.
func (f *Family[T]) AddUnit(unit string) error {
	if unit == "" {
		return nil
	}
	if f.unit != nil {
		return model.InvalidMetricf("got two unit lines in the same metric family")
	}
	if !f.policy.CanHaveUnits(f.familyTypeOrDefault()) {
		return model.InvalidMetricf("%s metrics can't have units", f.familyTypeOrDefault())
	}
	f.unit = &unit
	return nil
}

func (f *Family[T]) familyTypeOrDefault() T {
	if f.familyType != nil {
		return *f.familyType
	}
	return f.policy.DefaultType()
}

// trySetLabelNames fixes the family labelset from the first sample line, or
// checks later lines against it. Ignored labels never participate.
func (f *Family[T]) trySetLabelNames(sampleName string, names []string) error {
	ignored := f.policy.IgnoredLabels(f.familyTypeOrDefault(), sampleName)

	filtered := make([]string, 0, len(names))
	for _, n := range names {
		if !containsString(ignored, n) {
			filtered = append(filtered, n)
		}
	}

	if !f.hasLabelNames {
		f.labelNames = filtered
		f.hasLabelNames = true
		return nil
	}

	for _, n := range f.labelNames {
		if containsString(ignored, n) {
			continue
		}
		if !containsString(filtered, n) {
			return model.InvalidMetricf("labels in metrics have different label sets")
		}
	}
	return nil
}

// ProcessSample routes one sample line into the family, creating or
// extending the sample its labelset identifies.
func (f *Family[T]) ProcessSample(name string, labelNames, labelValues []string, value model.MetricNumber, timestamp *model.Timestamp, exemplar *model.Exemplar) error {
	familyType := f.familyTypeOrDefault()

	if exemplar != nil && !f.policy.CanHaveExemplar(familyType, name) {
		return model.InvalidMetricf("metric type %s is not allowed exemplars", familyType)
	}

	for _, handler := range f.policy.Handlers(familyType) {
		if !strings.HasSuffix(name, handler.Suffix) {
			continue
		}

		actualNames := append([]string(nil), labelNames...)
		actualValues := append([]string(nil), labelValues...)
		for _, mandatory := range handler.MandatoryLabels {
			idx := indexString(actualNames, mandatory)
			if idx < 0 {
				return model.InvalidMetricf("missing mandatory label for metric: %s", mandatory)
			}
			actualNames = removeAt(actualNames, idx)
			actualValues = removeAt(actualValues, idx)
		}

		if err := f.trySetLabelNames(name, actualNames); err != nil {
			return err
		}

		base := name
		if handler.Suffix != "" {
			for strings.HasSuffix(base, handler.Suffix) {
				base = base[:len(base)-len(handler.Suffix)]
			}
		}
		if f.hasName {
			if f.name != base {
				return model.InvalidMetricf("invalid name in metric family: %s != %s", base, f.name)
			}
		} else {
			f.name = base
			f.hasName = true
		}

		sample, created, err := f.findOrCreateSample(familyType, actualValues, timestamp)
		if err != nil {
			return err
		}
		if sample == nil {
			return nil
		}

		return handler.Apply(sample, value, labelNames, labelValues, exemplar, created)
	}

	return model.InvalidMetricf("found weird metric name for type (%s): %s", familyType, name)
}

// findOrCreateSample locates the sample for a labelset, allocating one if
// none exists. A nil sample with a nil error means the line is a benign
// repeat that should be dropped.
func (f *Family[T]) findOrCreateSample(familyType T, labelValues []string, timestamp *model.Timestamp) (*Sample, bool, error) {
	for _, s := range f.samples {
		if !equalStrings(s.LabelValues, labelValues) {
			continue
		}

		switch {
		case s.Timestamp != nil && timestamp != nil:
			if *timestamp < *s.Timestamp {
				return nil, false, model.InvalidMetricf("timestamps went backwards in family")
			}
			if !f.policy.CanHaveMultipleLines(familyType) {
				return nil, false, nil
			}
		case s.Timestamp != nil || timestamp != nil:
			return nil, false, model.InvalidMetricf("missing timestamp in family (one metric had a timestamp, another didn't)")
		}

		return s, false, nil
	}

	sample := &Sample{
		LabelValues: labelValues,
		Timestamp:   timestamp,
		Value:       f.policy.NewValue(familyType),
	}
	f.samples = append(f.samples, sample)
	return sample, true, nil
}

// Finish validates the assembled family and converts it into its public
// form.
func (f *Family[T]) Finish() (*model.MetricFamily[T], error) {
	if !f.hasName {
		return nil, model.InvalidMetricf("metric family has no name")
	}
	if f.unit != nil && len(f.samples) == 0 {
		return nil, model.InvalidMetricf("can't have metric with unit and no samples")
	}

	help := ""
	if f.help != nil {
		help = *f.help
	}
	unit := ""
	if f.unit != nil {
		unit = *f.unit
	}

	family, err := model.NewMetricFamily(f.name, f.labelNames, f.familyTypeOrDefault(), help, unit)
	if err != nil {
		return nil, err
	}

	samples := make([]model.Sample, 0, len(f.samples))
	for _, s := range f.samples {
		if len(s.LabelValues) != len(f.labelNames) {
			return nil, model.InvalidMetricf("metrics in family have different label sets")
		}
		if h, ok := s.Value.(*histogramMarshal); ok {
			if err := h.validate(); err != nil {
				return nil, err
			}
		}
		value, err := s.Value.finish()
		if err != nil {
			return nil, err
		}
		samples = append(samples, model.Sample{LabelValues: s.LabelValues, Timestamp: s.Timestamp, Value: value})
	}

	if err := family.AddSamples(samples...); err != nil {
		return nil, err
	}
	return family, nil
}

// SortLabels orders a labelset by name, rejecting duplicate label names.
// The inputs are not modified.
func SortLabels(names, values []string) ([]string, []string, error) {
	type pair struct{ name, value string }
	pairs := make([]pair, len(names))
	seen := make(map[string]struct{}, len(names))
	for i, n := range names {
		if _, ok := seen[n]; ok {
			return nil, nil, model.InvalidMetricf("found label `%s` twice in the same labelset", n)
		}
		seen[n] = struct{}{}
		pairs[i] = pair{name: n, value: values[i]}
	}

	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].name < pairs[j].name })

	outNames := make([]string, len(pairs))
	outValues := make([]string, len(pairs))
	for i, p := range pairs {
		outNames[i] = p.name
		outValues[i] = p.value
	}
	return outNames, outValues, nil
}

func containsString(haystack []string, needle string) bool {
	return indexString(haystack, needle) >= 0
}

func indexString(haystack []string, needle string) int {
	for i, s := range haystack {
		if s == needle {
			return i
		}
	}
	return -1
}

func removeAt(s []string, i int) []string {
	return append(s[:i], s[i+1:]...)
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
