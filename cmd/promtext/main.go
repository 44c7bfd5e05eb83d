// Command promtext parses a metrics exposition and re-renders it in
// canonical form. It reads from a file or stdin, validates the input
// against the chosen format, and writes the normalised exposition to
// a file or stdout.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/sinkingpoint/openmetrics-parser/openmetrics"
	"github.com/sinkingpoint/openmetrics-parser/prometheus"
)

var (
	buildVersion = "N/A"
	buildDate    = "N/A"
	buildCommit  = "N/A"
)

func printBuildInfo() {
	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}

func main() {
	cfg, err := parseFlags()
	if err != nil {
		log.Fatal(err)
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg *config) error {
	body, err := readInput(cfg.Input)
	if err != nil {
		return err
	}

	rendered, err := canonicalise(cfg.Format, body)
	if err != nil {
		return err
	}

	if cfg.Check {
		return nil
	}

	return writeOutput(cfg.Output, rendered)
}

func canonicalise(format, body string) (string, error) {
	switch format {
	case formatOpenMetrics:
		exp, err := openmetrics.Parse(body)
		if err != nil {
			return "", err
		}
		return openmetrics.Render(exp)
	case formatPrometheus:
		exp, err := prometheus.Parse(body)
		if err != nil {
			return "", err
		}
		return prometheus.Render(exp)
	default:
		return "", fmt.Errorf("unknown format: %s", format)
	}
}

func readInput(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func writeOutput(path, body string) error {
	if path == "" {
		_, err := io.WriteString(os.Stdout, body)
		return err
	}
	return os.WriteFile(path, []byte(body), 0o644)
}
