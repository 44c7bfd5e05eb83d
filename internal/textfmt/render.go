package textfmt

import (
	"io"
	"sort"
	"strings"

	"github.com/sinkingpoint/openmetrics-parser/model"
)

// RenderOptions selects the dialect-specific parts of the text rendering.
type RenderOptions struct {
	// CounterSuffix is appended to the family name on counter total lines.
	CounterSuffix string
	// WriteUnit emits `# UNIT` lines for families that carry a unit.
	WriteUnit bool
	// WriteEOF terminates the output with the `# EOF` marker.
	WriteEOF bool
	// Extended permits gauge histogram, stateset and info families.
	Extended bool
}

var helpEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`)

// WriteExposition renders all families of an exposition, sorted by name, to
// the given writer.
func WriteExposition[T model.FamilyType](w io.Writer, exp *model.Exposition[T], opts RenderOptions) error {
	names := make([]string, 0, len(exp.Families))
	for name := range exp.Families {
		names = append(names, name)
	}
	sort.Strings(names)

	r := renderer[T]{opts: opts}
	for _, name := range names {
		if err := r.family(exp.Families[name]); err != nil {
			return err
		}
	}
	if opts.WriteEOF {
		r.b.WriteString("# EOF\n")
	}

	_, err := io.WriteString(w, r.b.String())
	return err
}

type renderer[T model.FamilyType] struct {
	b    strings.Builder
	opts RenderOptions
}

func (r *renderer[T]) family(f *model.MetricFamily[T]) error {
	if f.Help != "" {
		r.b.WriteString("# HELP ")
		r.b.WriteString(f.Name)
		r.b.WriteByte(' ')
		r.b.WriteString(helpEscaper.Replace(f.Help))
		r.b.WriteByte('\n')
	}
	if f.Type.String() != "unknown" {
		r.b.WriteString("# TYPE ")
		r.b.WriteString(f.Name)
		r.b.WriteByte(' ')
		r.b.WriteString(f.Type.String())
		r.b.WriteByte('\n')
	}
	if r.opts.WriteUnit && f.Unit != "" {
		r.b.WriteString("# UNIT ")
		r.b.WriteString(f.Name)
		r.b.WriteByte(' ')
		r.b.WriteString(f.Unit)
		r.b.WriteByte('\n')
	}

	for i := range f.Samples {
		if err := r.sample(f, &f.Samples[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer[T]) sample(f *model.MetricFamily[T], s *model.Sample) error {
	switch v := s.Value.(type) {
	case model.UnknownValue:
		r.line(f.Name, f.LabelNames, s.LabelValues, "", "", FormatNumber(v.Value), s.Timestamp, nil)
	case model.GaugeValue:
		r.line(f.Name, f.LabelNames, s.LabelValues, "", "", FormatNumber(v.Value), s.Timestamp, nil)
	case model.CounterValue:
		r.line(f.Name+r.opts.CounterSuffix, f.LabelNames, s.LabelValues, "", "", FormatNumber(v.Value), s.Timestamp, v.Exemplar)
		if v.Created != nil {
			r.line(f.Name+"_created", f.LabelNames, s.LabelValues, "", "", FormatTimestamp(*v.Created), s.Timestamp, nil)
		}
	case model.HistogramValue:
		r.histogram(f, s, v, "_sum", "_count")
	case model.GaugeHistogramValue:
		if !r.opts.Extended {
			return model.InvalidMetricf("this format can't represent gaugehistogram metrics")
		}
		r.histogram(f, s, model.HistogramValue(v), "_gsum", "_gcount")
	case model.StateSetValue:
		if !r.opts.Extended {
			return model.InvalidMetricf("this format can't represent stateset metrics")
		}
		r.line(f.Name, f.LabelNames, s.LabelValues, "", "", FormatNumber(v.Value), s.Timestamp, nil)
	case model.SummaryValue:
		for _, q := range v.Quantiles {
			r.line(f.Name, f.LabelNames, s.LabelValues, "quantile", FormatFloat(q.Quantile), FormatNumber(q.Value), s.Timestamp, nil)
		}
		if v.Sum != nil {
			r.line(f.Name+"_sum", f.LabelNames, s.LabelValues, "", "", FormatNumber(*v.Sum), s.Timestamp, nil)
		}
		if v.Count != nil {
			r.line(f.Name+"_count", f.LabelNames, s.LabelValues, "", "", FormatUint(*v.Count), s.Timestamp, nil)
		}
		if v.Created != nil {
			r.line(f.Name+"_created", f.LabelNames, s.LabelValues, "", "", FormatTimestamp(*v.Created), s.Timestamp, nil)
		}
	case model.InfoValue:
		if !r.opts.Extended {
			return model.InvalidMetricf("this format can't represent info metrics")
		}
		r.line(f.Name+"_info", f.LabelNames, s.LabelValues, "", "", "1", s.Timestamp, nil)
	default:
		return model.InvalidMetricf("metric family %s contains an unrenderable value", f.Name)
	}
	return nil
}

func (r *renderer[T]) histogram(f *model.MetricFamily[T], s *model.Sample, v model.HistogramValue, sumSuffix, countSuffix string) {
	for _, b := range v.Buckets {
		r.line(f.Name+"_bucket", f.LabelNames, s.LabelValues, "le", FormatFloat(b.UpperBound), FormatNumber(b.Count), s.Timestamp, b.Exemplar)
	}
	if v.Sum != nil {
		r.line(f.Name+sumSuffix, f.LabelNames, s.LabelValues, "", "", FormatNumber(*v.Sum), s.Timestamp, nil)
	}
	if v.Count != nil {
		r.line(f.Name+countSuffix, f.LabelNames, s.LabelValues, "", "", FormatUint(*v.Count), s.Timestamp, nil)
	}
	if v.Created != nil {
		r.line(f.Name+"_created", f.LabelNames, s.LabelValues, "", "", FormatTimestamp(*v.Created), s.Timestamp, nil)
	}
}

// line writes one exposition line. extraName/extraValue append a structural
// label such as `le` or `quantile` after the family labels.
func (r *renderer[T]) line(name string, labelNames, labelValues []string, extraName, extraValue, value string, ts *model.Timestamp, exemplar *model.Exemplar) {
	r.b.WriteString(name)
	if extraName != "" {
		r.b.WriteString(RenderLabels(labelNames, labelValues, []string{extraName}, []string{extraValue}))
	} else {
		r.b.WriteString(RenderLabels(labelNames, labelValues, nil, nil))
	}
	r.b.WriteByte(' ')
	r.b.WriteString(value)
	if ts != nil {
		r.b.WriteByte(' ')
		r.b.WriteString(FormatTimestamp(*ts))
	}
	if exemplar != nil {
		r.exemplar(exemplar)
	}
	r.b.WriteByte('\n')
}

func (r *renderer[T]) exemplar(e *model.Exemplar) {
	names := make([]string, 0, len(e.Labels))
	for name := range e.Labels {
		names = append(names, name)
	}
	sort.Strings(names)
	values := make([]string, len(names))
	for i, name := range names {
		values[i] = e.Labels[name]
	}

	r.b.WriteString(" # ")
	labels := RenderLabels(names, values, nil, nil)
	if labels == "" {
		labels = "{}"
	}
	r.b.WriteString(labels)
	r.b.WriteByte(' ')
	r.b.WriteString(FormatFloat(e.ID))
	if e.Timestamp != nil {
		r.b.WriteByte(' ')
		r.b.WriteString(FormatTimestamp(*e.Timestamp))
	}
}
