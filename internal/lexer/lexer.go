// Package lexer turns raw exposition text into a stream of typed line
// events (metric descriptors, samples, the OpenMetrics EOF token) for the
// family assembler to consume. It is purely lexical: values, timestamps and
// exemplar IDs are emitted as uninterpreted tokens.
package lexer

import (
	"strings"

	"github.com/sinkingpoint/openmetrics-parser/model"
)

// Dialect selects which exposition grammar to lex.
type Dialect int

const (
	// OpenMetrics is the strict OpenMetrics text format: HELP/TYPE/UNIT
	// descriptors, exactly one kind of comment (`# EOF`), and a mandatory
	// EOF token with nothing after it.
	OpenMetrics Dialect = iota
	// Prometheus is the legacy text format: HELP/TYPE descriptors, free
	// comments and blank lines skipped, no EOF token.
	Prometheus
)

// Keyword is the kind of a metric descriptor line.
type Keyword int

const (
	KeywordHelp Keyword = iota
	KeywordType
	KeywordUnit
)

// Descriptor is a `# HELP`, `# TYPE` or `# UNIT` line.
type Descriptor struct {
	Keyword    Keyword
	MetricName string
	Text       string
}

// Exemplar is the trailing `# {labels} id [timestamp]` portion of a sample.
type Exemplar struct {
	LabelNames  []string
	LabelValues []string
	ID          string
	Timestamp   string
}

// Sample is one `name [labels] value [timestamp] [exemplar]` line. Labels
// are in document order; Timestamp is empty when absent.
type Sample struct {
	Name        string
	LabelNames  []string
	LabelValues []string
	Value       string
	Timestamp   string
	Exemplar    *Exemplar
}

// Event is one syntactic line event. Exactly one of Descriptor and Sample
// is set unless EOF is true.
type Event struct {
	Line       int
	Descriptor *Descriptor
	Sample     *Sample
	EOF        bool
}

// Lex tokenizes a fully buffered exposition document into line events.
// It returns a *model.SyntaxError on input that does not match the grammar,
// and model.ErrTextAfterEOF when content follows the OpenMetrics EOF token.
func Lex(input string, dialect Dialect) ([]Event, error) {
	lines := strings.Split(input, "\n")
	events := make([]Event, 0, len(lines))

	for i, line := range lines {
		lineNo := i + 1
		last := i == len(lines)-1

		if line == "" {
			// A trailing newline produces one empty final element.
			if last || dialect == Prometheus {
				continue
			}
			return nil, &model.SyntaxError{Line: lineNo, Msg: "blank lines are not allowed"}
		}

		if strings.HasPrefix(line, "#") {
			ev, err := lexComment(line, lineNo, dialect)
			if err != nil {
				return nil, err
			}
			if ev == nil {
				continue
			}
			events = append(events, *ev)

			if ev.EOF {
				// Nothing may follow the EOF token but a single
				// trailing newline.
				if !(last || (i == len(lines)-2 && lines[len(lines)-1] == "")) {
					return nil, model.ErrTextAfterEOF
				}
			}
			continue
		}

		sample, err := lexSample(line, lineNo, dialect)
		if err != nil {
			return nil, err
		}
		events = append(events, Event{Line: lineNo, Sample: sample})
	}

	return events, nil
}

var helpUnescaper = strings.NewReplacer(`\\`, `\`, `\n`, "\n")

func lexComment(line string, lineNo int, dialect Dialect) (*Event, error) {
	if line == "# EOF" {
		if dialect == Prometheus {
			// The legacy format has no EOF token; it reads as a comment.
			return nil, nil
		}
		return &Event{Line: lineNo, EOF: true}, nil
	}

	var keyword Keyword
	var rest string
	switch {
	case strings.HasPrefix(line, "# HELP "):
		keyword, rest = KeywordHelp, line[len("# HELP "):]
	case strings.HasPrefix(line, "# TYPE "):
		keyword, rest = KeywordType, line[len("# TYPE "):]
	case strings.HasPrefix(line, "# UNIT ") && dialect == OpenMetrics:
		keyword, rest = KeywordUnit, line[len("# UNIT "):]
	default:
		if dialect == Prometheus {
			return nil, nil
		}
		return nil, &model.SyntaxError{Line: lineNo, Msg: "expected HELP, TYPE, UNIT or EOF comment"}
	}

	s := &scanner{line: rest, lineNo: lineNo}
	name, err := s.metricName()
	if err != nil {
		return nil, err
	}

	text := ""
	if !s.eol() {
		if err := s.expectSpace(); err != nil {
			return nil, err
		}
		text = helpUnescaper.Replace(s.rest())
	}

	return &Event{
		Line:       lineNo,
		Descriptor: &Descriptor{Keyword: keyword, MetricName: name, Text: text},
	}, nil
}

func lexSample(line string, lineNo int, dialect Dialect) (*Sample, error) {
	s := &scanner{line: line, lineNo: lineNo}

	name, err := s.metricName()
	if err != nil {
		return nil, err
	}

	sample := &Sample{Name: name}
	if s.peek() == '{' {
		sample.LabelNames, sample.LabelValues, err = s.labels()
		if err != nil {
			return nil, err
		}
	}

	if err := s.expectSpace(); err != nil {
		return nil, err
	}
	sample.Value, err = s.token()
	if err != nil {
		return nil, err
	}

	s.skipSpace()
	if !s.eol() && s.peek() != '#' {
		sample.Timestamp, err = s.token()
		if err != nil {
			return nil, err
		}
		s.skipSpace()
	}

	if !s.eol() && s.peek() == '#' {
		sample.Exemplar, err = s.exemplar()
		if err != nil {
			return nil, err
		}
		s.skipSpace()
	}

	if !s.eol() {
		return nil, &model.SyntaxError{Line: lineNo, Msg: "unexpected trailing content on sample line"}
	}
	return sample, nil
}

// scanner walks a single line.
type scanner struct {
	line   string
	lineNo int
	pos    int
}

func (s *scanner) errf(msg string) error {
	return &model.SyntaxError{Line: s.lineNo, Msg: msg}
}

func (s *scanner) eol() bool {
	return s.pos >= len(s.line)
}

func (s *scanner) peek() byte {
	if s.eol() {
		return 0
	}
	return s.line[s.pos]
}

func (s *scanner) skipSpace() {
	for !s.eol() && (s.line[s.pos] == ' ' || s.line[s.pos] == '\t') {
		s.pos++
	}
}

func (s *scanner) expectSpace() error {
	if s.eol() || (s.line[s.pos] != ' ' && s.line[s.pos] != '\t') {
		return s.errf("expected whitespace")
	}
	s.skipSpace()
	return nil
}

// metricName reads a metric name. Names must not start with a digit.
func (s *scanner) metricName() (string, error) {
	start := s.pos
	if s.eol() || !isNameInitial(s.line[s.pos]) {
		return "", s.errf("expected a metric name")
	}
	for !s.eol() && isNameChar(s.line[s.pos]) {
		s.pos++
	}
	return s.line[start:s.pos], nil
}

func (s *scanner) labelName() (string, error) {
	start := s.pos
	if s.eol() || !isLabelInitial(s.line[s.pos]) {
		return "", s.errf("expected a label name")
	}
	for !s.eol() && isLabelChar(s.line[s.pos]) {
		s.pos++
	}
	return s.line[start:s.pos], nil
}

// token reads a run of non-whitespace characters (a value or timestamp).
func (s *scanner) token() (string, error) {
	start := s.pos
	for !s.eol() && s.line[s.pos] != ' ' && s.line[s.pos] != '\t' {
		s.pos++
	}
	if s.pos == start {
		return "", s.errf("expected a value")
	}
	return s.line[start:s.pos], nil
}

// quotedString reads a double-quoted string, resolving the \\, \" and \n
// escapes.
func (s *scanner) quotedString() (string, error) {
	if s.peek() != '"' {
		return "", s.errf("expected a quoted string")
	}
	s.pos++

	var sb strings.Builder
	for !s.eol() {
		c := s.line[s.pos]
		switch c {
		case '"':
			s.pos++
			return sb.String(), nil
		case '\\':
			s.pos++
			if s.eol() {
				return "", s.errf("unterminated escape sequence")
			}
			switch s.line[s.pos] {
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			case 'n':
				sb.WriteByte('\n')
			default:
				return "", s.errf("invalid escape sequence in label value")
			}
			s.pos++
		default:
			sb.WriteByte(c)
			s.pos++
		}
	}
	return "", s.errf("unterminated quoted string")
}

func (s *scanner) labels() ([]string, []string, error) {
	if s.peek() != '{' {
		return nil, nil, s.errf("expected '{'")
	}
	s.pos++

	var names, values []string
	if s.peek() == '}' {
		s.pos++
		return names, values, nil
	}

	for {
		name, err := s.labelName()
		if err != nil {
			return nil, nil, err
		}
		if s.peek() != '=' {
			return nil, nil, s.errf("expected '=' after label name")
		}
		s.pos++
		value, err := s.quotedString()
		if err != nil {
			return nil, nil, err
		}
		names = append(names, name)
		values = append(values, value)

		switch s.peek() {
		case ',':
			s.pos++
		case '}':
			s.pos++
			return names, values, nil
		default:
			return nil, nil, s.errf("expected ',' or '}' in label set")
		}
	}
}

func (s *scanner) exemplar() (*Exemplar, error) {
	// Caller has seen '#'.
	s.pos++
	if err := s.expectSpace(); err != nil {
		return nil, err
	}

	names, values, err := s.labels()
	if err != nil {
		return nil, err
	}
	if err := s.expectSpace(); err != nil {
		return nil, err
	}
	id, err := s.token()
	if err != nil {
		return nil, err
	}

	ex := &Exemplar{LabelNames: names, LabelValues: values, ID: id}
	s.skipSpace()
	if !s.eol() {
		ex.Timestamp, err = s.token()
		if err != nil {
			return nil, err
		}
	}
	return ex, nil
}

func (s *scanner) rest() string {
	out := s.line[s.pos:]
	s.pos = len(s.line)
	return out
}

func isNameInitial(c byte) bool {
	return c == '_' || c == ':' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameInitial(c) || (c >= '0' && c <= '9')
}

func isLabelInitial(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isLabelChar(c byte) bool {
	return isLabelInitial(c) || (c >= '0' && c <= '9')
}
