package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/foresight/cmd"
	"github.com/etnz/foresight/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completion describes the command line for shell completion.
func completion() *complete.Command {
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"currency": predict.Set{"USD", "EUR", "GBP", "JPY"},
			"seed":     predict.Something,
			"v":        predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"demo": {Flags: map[string]complete.Predictor{
				"years":    predict.Something,
				"cashflow": predict.Nothing,
				"json":     predict.Nothing,
				"query":    predict.Something,
			}},
			"ledger": {Flags: map[string]complete.Predictor{
				"years": predict.Something,
				"year":  predict.Something,
				"kind": predict.Set{"income", "expense", "contribution", "investmentPurchase",
					"transfer", "liquidationProceeds", "rmdWithdrawal"},
				"o":  predict.Files("*"),
				"md": predict.Nothing,
			}},
			"query": {Flags: map[string]complete.Predictor{
				"years": predict.Something,
				"f":     predict.Files("*.json"),
			}},
			"history": {Flags: map[string]complete.Predictor{
				"series": predict.Set{"sp500", "uscpi"},
			}},
			"topic": {Args: predict.Set(docs.Topics())},
		},
	}
}

func main() {
	// Answers shell completion requests (and exits) when invoked by the
	// shell's completion hook, returns immediately otherwise.
	completion().Complete("foresight")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
