// Package openmetrics parses, validates and renders the OpenMetrics text
// exposition format.
package openmetrics

import (
	"io"
	"strings"

	"github.com/sinkingpoint/openmetrics-parser/internal/assemble"
	"github.com/sinkingpoint/openmetrics-parser/internal/lexer"
	"github.com/sinkingpoint/openmetrics-parser/internal/textfmt"
	"github.com/sinkingpoint/openmetrics-parser/model"
)

// Type is the set of metric types OpenMetrics defines.
type Type int

const (
	Unknown Type = iota
	Counter
	Gauge
	Histogram
	GaugeHistogram
	StateSet
	Summary
	Info
)

var typeNames = map[Type]string{
	Unknown:        "unknown",
	Counter:        "counter",
	Gauge:          "gauge",
	Histogram:      "histogram",
	GaugeHistogram: "gaugehistogram",
	StateSet:       "stateset",
	Summary:        "summary",
	Info:           "info",
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

// MetricFamily is a metric family carrying OpenMetrics types.
type MetricFamily = model.MetricFamily[Type]

// Exposition is a full OpenMetrics scrape.
type Exposition = model.Exposition[Type]

// NewExposition returns an empty exposition.
func NewExposition() *Exposition {
	return model.NewExposition[Type]()
}

// NewMetricFamily returns an empty metric family with the given descriptor
// fields.
func NewMetricFamily(name string, labelNames []string, familyType Type, help, unit string) (*MetricFamily, error) {
	return model.NewMetricFamily(name, labelNames, familyType, help, unit)
}

// Parse reads a full OpenMetrics exposition, enforcing the trailing `# EOF`
// marker.
func Parse(input string) (*Exposition, error) {
	events, err := lexer.Lex(input, lexer.OpenMetrics)
	if err != nil {
		return nil, err
	}
	return assemble.Drive[Type](events, policy{}, assemble.DriveOptions{RequireEOF: true})
}

var renderOptions = textfmt.RenderOptions{
	CounterSuffix: "_total",
	WriteUnit:     true,
	WriteEOF:      true,
	Extended:      true,
}

// Write renders the exposition in the OpenMetrics text format, families
// sorted by name, terminated by `# EOF`.
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
