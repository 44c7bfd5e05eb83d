// Package textfmt holds the low-level escaping and number formatting shared
// by the text renderers.
package textfmt

import (
	"math"
	"strconv"
	"strings"

	"github.com/sinkingpoint/openmetrics-parser/model"
)

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// EscapeLabelValue escapes backslashes, double quotes and newlines the way
// the exposition formats require.
func EscapeLabelValue(s string) string {
	return labelEscaper.Replace(s)
}

// RenderLabels renders a labelset as `{name="value",...}`, or the empty
// string for an empty labelset. extraNames/extraValues are appended after
// the regular labels, for structural labels like `le`.
func RenderLabels(names, values, extraNames, extraValues []string) string {
	if len(names)+len(extraNames) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteByte('{')
	first := true
	write := func(name, value string) {
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteString(name)
		b.WriteString(`="`)
		b.WriteString(EscapeLabelValue(value))
		b.WriteByte('"')
	}
	for i, name := range names {
		write(name, values[i])
	}
	for i, name := range extraNames {
		write(name, extraValues[i])
	}
	b.WriteByte('}')
	return b.String()
}

// FormatFloat renders a float the way sample values are written, with +Inf,
// -Inf and NaN spelled as the formats expect.
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// FormatNumber renders a metric number, keeping integers free of a
// fractional part.
func FormatNumber(n model.MetricNumber) string {
	if i, ok := n.Int64(); ok && n.IsInt() {
		return strconv.FormatInt(i, 10)
	}
	return FormatFloat(n.Float64())
}

// FormatTimestamp renders a sample or exemplar timestamp.
func FormatTimestamp(t model.Timestamp) string {
	return FormatFloat(float64(t))
}

// FormatUint renders an unsigned count.
func FormatUint(u uint64) string {
	return strconv.FormatUint(u, 10)
}
