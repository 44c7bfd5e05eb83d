// Command staticlint is a multichecker for this repository. It bundles a
// set of standard analyzers from golang.org/x/tools with a custom analyzer
// that forbids direct os.Exit calls in main.main, so that every command
// funnels its errors through a single exit path.
//
// Usage:
//
//	go run ./cmd/staticlint ./...
package main

import (
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/nilfunc"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unreachable"

	"github.com/sinkingpoint/openmetrics-parser/cmd/staticlint/analyzers"
)

func main() {
	multichecker.Main(
		copylock.Analyzer,
		lostcancel.Analyzer,
		nilfunc.Analyzer,
		printf.Analyzer,
		structtag.Analyzer,
		unreachable.Analyzer,
		analyzers.NoOsExitMainAnalyzer,
	)
}
