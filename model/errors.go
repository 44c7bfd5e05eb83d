package model

import (
	"errors"
	"fmt"
)

// Errors returned by the parsers. A parse fails as a whole on the first
// violation: no partial exposition is ever returned alongside an error.
var (
	// ErrDuplicateMetric reports two writes to the same sub-field of the
	// same label set within one family.
	ErrDuplicateMetric = errors.New("found two metrics with the same labelset")

	// ErrMissingEOF reports an OpenMetrics document without an EOF token.
	ErrMissingEOF = errors.New("didn't find an EOF token")

	// ErrTextAfterEOF reports content after the OpenMetrics EOF token.
	ErrTextAfterEOF = errors.New("found text after the EOF token")
)

// SyntaxError reports input that does not match the exposition grammar.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error on line %d: %s", e.Line, e.Msg)
}

// InvalidMetricError reports a well-formed line that violates a semantic or
// value-domain rule of the format.
type InvalidMetricError struct {
	Reason string
}

func (e *InvalidMetricError) Error() string {
	return e.Reason
}

// InvalidMetricf builds an InvalidMetricError from a format string.
func InvalidMetricf(format string, args ...any) error {
	return &InvalidMetricError{Reason: fmt.Sprintf(format, args...)}
}

// InvalidTypeError reports an unrecognized metric type in a TYPE line.
type InvalidTypeError struct {
	Type string
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("invalid metric type: %s", e.Type)
}
