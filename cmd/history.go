package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/foresight"
	"github.com/google/subcommands"
)

// historyCmd holds the flags for the 'history' subcommand.
type historyCmd struct {
	series string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "show statistics of the built-in historical series" }
func (*historyCmd) Usage() string {
	return `foresight history [-series sp500|uscpi]

  Shows summary statistics of the historical return series that back
  bootstrapped market profiles. Without -series all series are listed.

Usage Examples:
# Compare the S&P 500 with US inflation.
$ foresight history

`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.series, "series", "", "Only show this series (sp500 or uscpi).")
}

func (c *historyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	series, err := selectSeries(c.series)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	printMarkdown(historyTable(series))
	return subcommands.ExitSuccess
}

// selectSeries resolves a -series flag value to the built-in series.
func selectSeries(name string) ([]foresight.HistoricalSeries, error) {
	switch name {
	case "":
		return []foresight.HistoricalSeries{foresight.SP500(), foresight.USCPI()}, nil
	case "sp500":
		return []foresight.HistoricalSeries{foresight.SP500()}, nil
	case "uscpi":
		return []foresight.HistoricalSeries{foresight.USCPI()}, nil
	default:
		return nil, fmt.Errorf("unknown series %q, expected sp500 or uscpi", name)
	}
}

// historyTable renders the statistics of the given series as markdown.
func historyTable(series []foresight.HistoricalSeries) string {
	var sb strings.Builder
	sb.WriteString("# Historical Series\n\n")
	sb.WriteString("| Series | From | Years | Mean | Geometric | Std Dev | Min | Max |\n")
	sb.WriteString("|:---|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, h := range series {
		stats, ok := h.Statistics()
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "| %s | %d | %d | %s | %s | %s | %s | %s |\n",
			h.Name, h.StartYear, stats.Years,
			foresight.Percent(stats.ArithmeticMean),
			foresight.Percent(stats.GeometricMean),
			foresight.Percent(stats.StdDev),
			foresight.Percent(stats.Min),
			foresight.Percent(stats.Max),
		)
	}
	return sb.String()
}
