package model

import (
	"math"
	"strconv"
)

// MetricNumber is a metric value that is either an exact 64 bit integer or an
// IEEE-754 double. The exposition formats distinguish `10` from `10.0`, and
// that distinction must survive a parse/render round trip, so the two
// representations are kept separate rather than widening everything to a
// float.
type MetricNumber struct {
	isInt bool
	i     int64
	f     float64
}

// Int returns a MetricNumber holding an exact integer.
func Int(v int64) MetricNumber {
	return MetricNumber{isInt: true, i: v}
}

// Float returns a MetricNumber holding a double.
func Float(v float64) MetricNumber {
	return MetricNumber{f: v}
}

// IsInt reports whether the number is stored as an exact integer.
func (n MetricNumber) IsInt() bool {
	return n.isInt
}

// Float64 returns the value widened to a float64.
func (n MetricNumber) Float64() float64 {
	if n.isInt {
		return float64(n.i)
	}
	return n.f
}

// Int64 returns the value as an int64. A float converts only if it has no
// fractional part.
func (n MetricNumber) Int64() (int64, bool) {
	if n.isInt {
		return n.i, true
	}
	if math.Round(n.f) == n.f && !math.IsInf(n.f, 0) {
		return int64(n.f), true
	}
	return 0, false
}

// Uint64 returns the value as a uint64, failing on fractional floats and
// negative values.
func (n MetricNumber) Uint64() (uint64, error) {
	v, ok := n.Int64()
	if !ok {
		return 0, InvalidMetricf("expected an integer value (got: %v)", n.Float64())
	}
	if v < 0 {
		return 0, InvalidMetricf("expected a non-negative value (got: %d)", v)
	}
	return uint64(v), nil
}

// IsNegative reports whether the value is below zero. NaN is not negative.
func (n MetricNumber) IsNegative() bool {
	if n.isInt {
		return n.i < 0
	}
	return n.f < 0
}

// Add sums two numbers. The result stays an integer only when both operands
// are integers; a float operand promotes the result to a float.
func (n MetricNumber) Add(other MetricNumber) MetricNumber {
	if n.isInt && other.isInt {
		return Int(n.i + other.i)
	}
	return Float(n.Float64() + other.Float64())
}

// String renders the number the way the exposition formats write it:
// integers without a decimal point, floats in their shortest form.
func (n MetricNumber) String() string {
	if n.isInt {
		return strconv.FormatInt(n.i, 10)
	}
	return strconv.FormatFloat(n.f, 'g', -1, 64)
}

// ParseNumber parses a sample value token, preferring the integer
// representation when the token is a valid base-10 integer.
func ParseNumber(s string) (MetricNumber, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return MetricNumber{}, InvalidMetricf("metric value must be a number (got: %s)", s)
	}
	return Float(f), nil
}
