// Package prometheus parses, validates and renders the classic Prometheus
// text exposition format.
package prometheus

import (
	"io"
	"strings"

	"github.com/sinkingpoint/openmetrics-parser/internal/assemble"
	"github.com/sinkingpoint/openmetrics-parser/internal/lexer"
	"github.com/sinkingpoint/openmetrics-parser/internal/textfmt"
	"github.com/sinkingpoint/openmetrics-parser/model"
)

// Type is the set of metric types the Prometheus text format defines.
type Type int

const (
	Unknown Type = iota
	Counter
	Gauge
	Histogram
	Summary
)

var typeNames = map[Type]string{
	Unknown:   "unknown",
	Counter:   "counter",
	Gauge:     "gauge",
	Histogram: "histogram",
	Summary:   "summary",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseType resolves the text of a TYPE line into a Type.
func ParseType(s string) (Type, error) {
	for t, name := range typeNames {
		if name == s {
			return t, nil
		}
	}
	return Unknown, &model.InvalidTypeError{Type: s}
}

// MetricFamily is a metric family carrying Prometheus types.
type MetricFamily = model.MetricFamily[Type]

// Exposition is a full Prometheus scrape.
type Exposition = model.Exposition[Type]

// NewExposition returns an empty exposition.
func NewExposition() *Exposition {
	return model.NewExposition[Type]()
}

// NewMetricFamily returns an empty metric family with the given descriptor
// fields.
func NewMetricFamily(name string, labelNames []string, familyType Type, help string) (*MetricFamily, error) {
	return model.NewMetricFamily(name, labelNames, familyType, help, "")
}

// Parse reads a full Prometheus exposition. Unlike OpenMetrics there is no
// EOF marker and unknown comment lines are skipped.
func Parse(input string) (*Exposition, error) {
	events, err := lexer.Lex(input, lexer.Prometheus)
	if err != nil {
		return nil, err
	}
	return assemble.Drive[Type](events, policy{}, assemble.DriveOptions{})
}

var renderOptions = textfmt.RenderOptions{}

// Write renders the exposition in the Prometheus text format, families
// sorted by name. Families holding OpenMetrics-only value kinds are
// rejected.
func Write(w io.Writer, exp *Exposition) error {
	return textfmt.WriteExposition(w, exp, renderOptions)
}

// Render renders the exposition to a string.
func Render(exp *Exposition) (string, error) {
	var b strings.Builder
	if err := Write(&b, exp); err != nil {
		return "", err
	}
	return b.String(), nil
}

// policy encodes the Prometheus assembly rules.
type policy struct{}

func (policy) DefaultType() Type { return Unknown }

func (policy) ParseType(s string) (Type, error) { return ParseType(s) }

func (policy) IgnoredLabels(t Type, sampleName string) []string {
	if t == Histogram && strings.HasSuffix(sampleName, "_bucket") {
		return []string{"le"}
	}
	return nil
}

func (policy) CanHaveExemplar(t Type, sampleName string) bool {
	switch t {
	case Counter:
		return strings.HasSuffix(sampleName, "_total")
	case Histogram:
		return strings.HasSuffix(sampleName, "_bucket")
	}
	return false
}

func (policy) CanHaveUnits(Type) bool { return false }

func (policy) CanHaveMultipleLines(t Type) bool {
	switch t {
	case Counter, Histogram, Summary:
		return true
	}
	return false
}

func (policy) NewValue(t Type) assemble.ValueMarshal {
	switch t {
	case Counter:
		return assemble.NewCounterMarshal()
	case Gauge:
		return assemble.NewGaugeMarshal()
	case Histogram:
		return assemble.NewHistogramMarshal(false)
	case Summary:
		return assemble.NewSummaryMarshal()
	}
	return assemble.NewUnknownMarshal()
}

// handlers routes metric name suffixes per type. Counters have no _total
// suffix in this format, so a bare handler takes every line.
var handlers = map[Type][]assemble.SuffixHandler{
	Counter: {
		assemble.CounterTotalHandler(""),
	},
	Gauge: {
		assemble.GaugeHandler(),
	},
	Histogram: {
		assemble.BucketHandler("_bucket"),
		assemble.HistogramCountHandler("_count"),
		assemble.HistogramCreatedHandler(),
		assemble.HistogramSumHandler("_sum"),
	},
	Summary: {
		assemble.SummaryCountHandler(),
		assemble.SummarySumHandler(),
		assemble.QuantileHandler(),
	},
	Unknown: {
		assemble.UnknownHandler(),
	},
}

func (policy) Handlers(t Type) []assemble.SuffixHandler {
	return handlers[t]
}
