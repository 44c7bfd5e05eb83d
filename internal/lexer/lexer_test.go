package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinkingpoint/openmetrics-parser/model"
)

func TestLexDescriptors(t *testing.T) {
	t.Run("help lines", func(t *testing.T) {
		events, err := Lex("# HELP requests The total requests\n# EOF\n", OpenMetrics)
		require.NoError(t, err)
		require.Len(t, events, 2)

		d := events[0].Descriptor
		require.NotNil(t, d)
		assert.Equal(t, KeywordHelp, d.Keyword)
		assert.Equal(t, "requests", d.MetricName)
		assert.Equal(t, "The total requests", d.Text)
		assert.True(t, events[1].EOF)
	})

	t.Run("help text unescapes", func(t *testing.T) {
		events, err := Lex(`# HELP a first\nsecond`+"\n# EOF\n", OpenMetrics)
		require.NoError(t, err)
		assert.Equal(t, "first\nsecond", events[0].Descriptor.Text)
	})

	t.Run("type and unit lines", func(t *testing.T) {
		events, err := Lex("# TYPE seconds counter\n# UNIT seconds seconds\n# EOF\n", OpenMetrics)
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, KeywordType, events[0].Descriptor.Keyword)
		assert.Equal(t, "counter", events[0].Descriptor.Text)
		assert.Equal(t, KeywordUnit, events[1].Descriptor.Keyword)
	})

	t.Run("free comments are an error", func(t *testing.T) {
		_, err := Lex("# some comment\n# EOF\n", OpenMetrics)
		var syntaxErr *model.SyntaxError
		require.ErrorAs(t, err, &syntaxErr)
		assert.Equal(t, 1, syntaxErr.Line)
	})

	t.Run("free comments are skipped in the legacy format", func(t *testing.T) {
		events, err := Lex("# some comment\na 1\n", Prometheus)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.NotNil(t, events[0].Sample)
	})
}

func TestLexSamples(t *testing.T) {
	t.Run("bare sample", func(t *testing.T) {
		events, err := Lex("requests_total 10\n# EOF\n", OpenMetrics)
		require.NoError(t, err)

		s := events[0].Sample
		require.NotNil(t, s)
		assert.Equal(t, "requests_total", s.Name)
		assert.Empty(t, s.LabelNames)
		assert.Equal(t, "10", s.Value)
		assert.Empty(t, s.Timestamp)
	})

	t.Run("labels and timestamp", func(t *testing.T) {
		events, err := Lex(`requests_total{path="/",method="GET"} 10 123.5`+"\n# EOF\n", OpenMetrics)
		require.NoError(t, err)

		s := events[0].Sample
		assert.Equal(t, []string{"path", "method"}, s.LabelNames)
		assert.Equal(t, []string{"/", "GET"}, s.LabelValues)
		assert.Equal(t, "10", s.Value)
		assert.Equal(t, "123.5", s.Timestamp)
	})

	t.Run("escaped label values", func(t *testing.T) {
		events, err := Lex(`a{l="backslash \\ quote \" newline \n"} 1`+"\n# EOF\n", OpenMetrics)
		require.NoError(t, err)
		assert.Equal(t, []string{"backslash \\ quote \" newline \n"}, events[0].Sample.LabelValues)
	})

	t.Run("invalid escape is rejected", func(t *testing.T) {
		_, err := Lex(`a{l="\t"} 1`+"\n# EOF\n", OpenMetrics)
		var syntaxErr *model.SyntaxError
		assert.ErrorAs(t, err, &syntaxErr)
	})

	t.Run("empty labelset", func(t *testing.T) {
		events, err := Lex("a{} 1\n# EOF\n", OpenMetrics)
		require.NoError(t, err)
		assert.Empty(t, events[0].Sample.LabelNames)
	})

	t.Run("missing value is rejected", func(t *testing.T) {
		_, err := Lex("a\n# EOF\n", OpenMetrics)
		assert.Error(t, err)
	})

	t.Run("exemplar with timestamp", func(t *testing.T) {
		events, err := Lex(`requests_total 10 # {trace_id="abc"} 0.67 1234`+"\n# EOF\n", OpenMetrics)
		require.NoError(t, err)

		ex := events[0].Sample.Exemplar
		require.NotNil(t, ex)
		assert.Equal(t, []string{"trace_id"}, ex.LabelNames)
		assert.Equal(t, []string{"abc"}, ex.LabelValues)
		assert.Equal(t, "0.67", ex.ID)
		assert.Equal(t, "1234", ex.Timestamp)
	})

	t.Run("exemplar after timestamp", func(t *testing.T) {
		events, err := Lex(`requests_total 10 5 # {} 0.5`+"\n# EOF\n", OpenMetrics)
		require.NoError(t, err)

		s := events[0].Sample
		assert.Equal(t, "5", s.Timestamp)
		require.NotNil(t, s.Exemplar)
		assert.Equal(t, "0.5", s.Exemplar.ID)
		assert.Empty(t, s.Exemplar.Timestamp)
	})
}

func TestLexEOF(t *testing.T) {
	t.Run("text after EOF is rejected", func(t *testing.T) {
		_, err := Lex("# EOF\na 1\n", OpenMetrics)
		assert.ErrorIs(t, err, model.ErrTextAfterEOF)
	})

	t.Run("a single trailing newline after EOF is fine", func(t *testing.T) {
		_, err := Lex("a 1\n# EOF\n", OpenMetrics)
		assert.NoError(t, err)
	})

	t.Run("EOF without trailing newline is fine", func(t *testing.T) {
		_, err := Lex("a 1\n# EOF", OpenMetrics)
		assert.NoError(t, err)
	})

	t.Run("extra blank lines after EOF are rejected", func(t *testing.T) {
		_, err := Lex("# EOF\n\n\n", OpenMetrics)
		assert.ErrorIs(t, err, model.ErrTextAfterEOF)
	})

	t.Run("EOF reads as a comment in the legacy format", func(t *testing.T) {
		events, err := Lex("a 1\n# EOF\n", Prometheus)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.NotNil(t, events[0].Sample)
	})
}

func TestLexBlankLines(t *testing.T) {
	t.Run("rejected mid-document", func(t *testing.T) {
		_, err := Lex("a 1\n\nb 2\n# EOF\n", OpenMetrics)
		var syntaxErr *model.SyntaxError
		require.ErrorAs(t, err, &syntaxErr)
		assert.Equal(t, 2, syntaxErr.Line)
	})

	t.Run("skipped in the legacy format", func(t *testing.T) {
		events, err := Lex("a 1\n\nb 2\n", Prometheus)
		require.NoError(t, err)
		assert.Len(t, events, 2)
	})
}
