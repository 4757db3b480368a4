// minkspec is the command-line companion of the minkspec scenario engine.
//
// Usage:
//
//	minkspec <command> [flags]
//
// Commands:
//
//	init        Write a minkspec.yaml for a test suite
//	config      Show or validate the active configuration
//	diagnose    Run a smoke scenario with the configured runtime
//	version     Show version information
//
// Examples:
//
//	# Start scenarios on a frozen clock
//	minkspec init --frozen --seed 2024-01-01T09:00:00Z
//
//	# Check that logging, metrics and tracing can be built
//	minkspec diagnose --verbose
package main

import (
	"os"

	"github.com/AshkanYarmoradi/minkspec/cli/commands"
)

// Build information (set via ldflags)
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.BuildDate = buildDate

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
