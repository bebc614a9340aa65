package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/foresight"
	"github.com/etnz/foresight/renderer"
	"github.com/google/subcommands"
)

// demoCmd holds the flags for the 'demo' subcommand.
type demoCmd struct {
	years    int
	cashflow bool
	jsonOut  bool
	query    string
}

func (*demoCmd) Name() string     { return "demo" }
func (*demoCmd) Synopsis() string { return "simulate the built-in household plan and show a summary" }
func (*demoCmd) Usage() string {
	return `foresight demo [-years <n>] [-cashflow] [-json] [-query <path>]

  Builds the built-in household plan, simulates it, and renders a summary.
  With -cashflow the yearly cash-flow table is appended. With -json the
  raw result is dumped as JSON instead. With -query the summary is
  replaced by the value at a JSONPath into the raw result.

Usage Examples:
# Simulate 40 years and show the summary.
$ foresight demo

# Extract the first year's federal tax.
$ foresight demo -query '$.yearlyTaxes[0].federalTax'

`
}

func (c *demoCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.years, "years", 40, "Number of years to simulate.")
	f.BoolVar(&c.cashflow, "cashflow", false, "Also render the yearly cash-flow table.")
	f.BoolVar(&c.jsonOut, "json", false, "Dump the raw result as JSON instead of the summary.")
	f.StringVar(&c.query, "query", "", "JSONPath into the raw result instead of the summary.")
}

func (c *demoCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := demoPlan(c.years)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building the demo plan: %v\n", err)
		return subcommands.ExitFailure
	}

	result, err := runSimulation(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error simulating: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.query != "" {
		value, err := queryResult(result, c.query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error evaluating query %q: %v\n", c.query, err)
			return subcommands.ExitFailure
		}
		out, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding query result: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println(string(out))
		return subcommands.ExitSuccess
	}

	if c.jsonOut {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding the result: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println(string(out))
		return subcommands.ExitSuccess
	}

	summary, err := foresight.NewSummaryReport(result, *currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building the summary: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderSummary(summary, renderer.SummaryRenderOptions{}))

	if c.cashflow {
		flows, err := foresight.NewCashFlowReport(result, *currency)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error building the cash-flow report: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.RenderCashFlow(flows))
	}

	return subcommands.ExitSuccess
}
