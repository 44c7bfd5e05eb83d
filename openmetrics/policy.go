package openmetrics

import (
	"strings"

	"github.com/sinkingpoint/openmetrics-parser/internal/assemble"
)

// policy encodes the OpenMetrics assembly rules.
type policy struct{}

func (policy) DefaultType() Type { return Unknown }

func (policy) ParseType(s string) (Type, error) { return ParseType(s) }

func (policy) IgnoredLabels(t Type, sampleName string) []string {
	if (t == Histogram || t == GaugeHistogram) && strings.HasSuffix(sampleName, "bucket") {
		return []string{"le"}
	}
	return nil
}

func (policy) CanHaveExemplar(t Type, sampleName string) bool {
	switch t {
	case Counter:
		return strings.HasSuffix(sampleName, "_total")
	case Histogram, GaugeHistogram:
		return strings.HasSuffix(sampleName, "_bucket")
	}
	return false
}

func (policy) CanHaveUnits(t Type) bool {
	switch t {
	case Counter, Gauge, Unknown:
		return true
	}
	return false
}

func (policy) CanHaveMultipleLines(t Type) bool {
	switch t {
	case Counter, Histogram, GaugeHistogram, Summary:
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
	case GaugeHistogram:
		return assemble.NewHistogramMarshal(true)
	case StateSet:
		return assemble.NewStateSetMarshal()
	case Summary:
		return assemble.NewSummaryMarshal()
	case Info:
		return assemble.NewInfoMarshal()
	}
	return assemble.NewUnknownMarshal()
}

// handlers routes metric name suffixes per type. Longer suffixes precede
// the bare suffix so routing stays unambiguous.
var handlers = map[Type][]assemble.SuffixHandler{
	Counter: {
		assemble.CounterTotalHandler("_total"),
		assemble.CounterCreatedHandler(),
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
	GaugeHistogram: {
		assemble.BucketHandler("_bucket"),
		assemble.HistogramCountHandler("_gcount"),
		assemble.HistogramSumHandler("_gsum"),
	},
	StateSet: {
		assemble.StateSetHandler(),
	},
	Summary: {
		assemble.SummaryCountHandler(),
		assemble.SummarySumHandler(),
		assemble.QuantileHandler(),
	},
	Info: {
		assemble.InfoHandler(),
	},
	Unknown: {
		assemble.UnknownHandler(),
	},
}

func (policy) Handlers(t Type) []assemble.SuffixHandler {
	return handlers[t]
}
