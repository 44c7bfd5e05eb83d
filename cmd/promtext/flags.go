package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

const (
	formatOpenMetrics = "openmetrics"
	formatPrometheus  = "prometheus"
)

var (
	format string
	input  string
	output string
	check  bool
)

func init() {
	pflag.StringVarP(&format, "format", "f", formatOpenMetrics, "exposition format: openmetrics or prometheus")
	pflag.StringVarP(&input, "input", "i", "", "input file (default: stdin)")
	pflag.StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	pflag.BoolVarP(&check, "check", "c", false, "validate the input without rendering it")
}

type config struct {
	Format string
	Input  string
	Output string
	Check  bool
}

func parseFlags() (*config, error) {
	pflag.Parse()

	if len(pflag.Args()) > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", pflag.Args()[0])
	}

	if env := os.Getenv("PROMTEXT_FORMAT"); env != "" {
		format = env
	}

	if format != formatOpenMetrics && format != formatPrometheus {
		return nil, fmt.Errorf("unknown format: %s", format)
	}

	return &config{
		Format: format,
		Input:  input,
		Output: output,
		Check:  check,
	}, nil
}
