package main

import (
	"context"
	"fmt"
	"log"

	"github.com/sinkingpoint/openmetrics-parser/internal/apps/relay"
)

// Build information variables.
// These are set during build time via ldflags.
var (
	buildVersion string = "N/A"
	buildDate    string = "N/A"
	buildCommit  string = "N/A"
)

// printBuildInfo prints the build version, date, and commit hash to stdout.
func printBuildInfo() {
	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}

// Application entry point.
func main() {
	printBuildInfo()

	config, err := parseFlags()
	if err != nil {
		log.Fatal(err)
	}

	app := relay.NewApp(config)
	if err := app.Run(context.Background()); err != nil {
		log.Fatal(err)
	}
}
