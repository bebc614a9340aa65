// Package cmd implements the CLI application to explore financial plans.
package cmd

import (
	"flag"
	"log/slog"
	"os"

	"github.com/etnz/foresight"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package calls Register() to install them, and Execute() dispatches to
// the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&demoCmd{}, "simulation")
	c.Register(&ledgerCmd{}, "simulation")
	c.Register(&queryCmd{}, "simulation")

	c.Register(&historyCmd{}, "reference")
	c.Register(&topicCmd{}, "reference")
}

// As a CLI application it has a very short lived lifecycle, so global flags
// live in package variables.

var (
	currency = flag.String("currency", "USD", "Reporting currency for rendered amounts")
	seed     = flag.Uint64("seed", 1, "Market seed; the same seed replays the same market")
	verbose  = flag.Bool("v", false, "Log engine activity to stderr")
)

// runSimulation runs a plan with the app-level seed and logger.
func runSimulation(cfg foresight.SimulationConfig) (*foresight.SimulationResult, error) {
	var opts []foresight.Option
	if *verbose {
		h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		opts = append(opts, foresight.WithLogger(slog.New(h)))
	}
	return foresight.Simulate(cfg, *seed, opts...)
}
