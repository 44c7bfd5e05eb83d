package assemble

import (
	"fmt"
	"strconv"

	"github.com/sinkingpoint/openmetrics-parser/internal/lexer"
	"github.com/sinkingpoint/openmetrics-parser/model"
)

// DriveOptions tunes the parse driver per format.
type DriveOptions struct {
	// RequireEOF fails the parse when no EOF marker terminated the input.
	RequireEOF bool
}

// Drive folds a stream of lexed events into an exposition. Descriptor lines
// open a new family once the current one has samples; sample lines always
// extend the current family.
func Drive[T model.FamilyType](events []lexer.Event, policy Policy[T], opts DriveOptions) (*model.Exposition[T], error) {
	exposition := model.NewExposition[T]()
	current := NewFamily(policy)
	sawEOF := false

	finalize := func() error {
		name, ok := current.Name()
		if !ok {
			return nil
		}
		if _, exists := exposition.Families[name]; exists {
			return model.InvalidMetricf("found a metric family called %s, after that family was finalised", name)
		}
		family, err := current.Finish()
		if err != nil {
			return err
		}
		exposition.Families[name] = family
		current = NewFamily(policy)
		return nil
	}

	for _, ev := range events {
		if ev.EOF {
			sawEOF = true
			continue
		}

		var err error
		switch {
		case ev.Descriptor != nil:
			err = driveDescriptor(current, ev.Descriptor, finalize)
		case ev.Sample != nil:
			err = driveSample(current, ev.Sample)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", ev.Line, err)
		}
	}

	if err := finalize(); err != nil {
		return nil, err
	}
	if opts.RequireEOF && !sawEOF {
		return nil, model.ErrMissingEOF
	}
	return exposition, nil
}

func driveDescriptor[T model.FamilyType](current *Family[T], d *lexer.Descriptor, finalize func() error) error {
	if current.HasSamples() {
		if err := finalize(); err != nil {
			return err
		}
	}

	switch d.Keyword {
	case lexer.KeywordHelp:
		if err := current.SetOrCheckName(d.MetricName); err != nil {
			return err
		}
		return current.AddHelp(d.Text)
	case lexer.KeywordType:
		if err := current.SetOrCheckName(d.MetricName); err != nil {
			return err
		}
		return current.AddType(d.Text)
	case lexer.KeywordUnit:
		if name, ok := current.Name(); !ok || name != d.MetricName {
			return model.InvalidMetricf("UNIT metric name doesn't match family")
		}
		return current.AddUnit(d.Text)
	}
	return nil
}

func driveSample[T model.FamilyType](current *Family[T], s *lexer.Sample) error {
	labelNames, labelValues, err := SortLabels(s.LabelNames, s.LabelValues)
	if err != nil {
		return err
	}

	value, err := model.ParseNumber(s.Value)
	if err != nil {
		return err
	}

	var timestamp *model.Timestamp
	if s.Timestamp != "" {
		f, err := strconv.ParseFloat(s.Timestamp, 64)
		if err != nil {
			return model.InvalidMetricf("sample timestamp must be a number (got: %s)", s.Timestamp)
		}
		ts := model.Timestamp(f)
		timestamp = &ts
	}

	var exemplar *model.Exemplar
	if s.Exemplar != nil {
		exemplar, err = buildExemplar(s.Exemplar)
		if err != nil {
			return err
		}
	}

	return current.ProcessSample(s.Name, labelNames, labelValues, value, timestamp, exemplar)
}

func buildExemplar(e *lexer.Exemplar) (*model.Exemplar, error) {
	labels := make(map[string]string, len(e.LabelNames))
	for i, name := range e.LabelNames {
		if _, ok := labels[name]; ok {
			return nil, model.InvalidMetricf("found label `%s` twice in the same labelset", name)
		}
		labels[name] = e.LabelValues[i]
	}

	id, err := strconv.ParseFloat(e.ID, 64)
	if err != nil {
		return nil, model.InvalidMetricf("exemplar value must be a number (got: %s)", e.ID)
	}

	var timestamp *model.Timestamp
	if e.Timestamp != "" {
		f, err := strconv.ParseFloat(e.Timestamp, 64)
		if err != nil {
			return nil, model.InvalidMetricf("exemplar timestamp must be a number (got: %s)", e.Timestamp)
		}
		ts := model.Timestamp(f)
		timestamp = &ts
	}

	return &model.Exemplar{Labels: labels, ID: id, Timestamp: timestamp}, nil
}
