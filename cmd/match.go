package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/ibcgt"
	"github.com/etnz/ibcgt/renderer"
	"github.com/google/subcommands"
)

// matchCmd holds the flags for the 'match' subcommand.
type matchCmd struct {
	ledgerFile string
	types      string
	unmatched  string
}

func (*matchCmd) Name() string     { return "match" }
func (*matchCmd) Synopsis() string { return "match disposals against acquisitions under the HMRC rules" }
func (*matchCmd) Usage() string {
	return `ibcgt match [-l <trades.csv>] [-types <t1,t2,...>] [-u <file>]

  Applies the HMRC share-matching rules (same day, bed and breakfast,
  section 104 pool) to the trade ledger and displays every disposal with
  the acquisitions it was matched against. Trades left unmatched are
  written to a residual CSV for audit and carry-forward.
`
}

func (c *matchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerFile, "l", "trades.csv", "CSV ledger produced by the parse command.")
	f.StringVar(&c.types, "types", "Stocks", "Comma-separated instrument types to process.")
	f.StringVar(&c.unmatched, "u", "unmatched.csv", "File to write the unmatched trades to.")
}

func (c *matchCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	disposals, ledger, status := matchLedger(c.ledgerFile, c.types)
	if status != subcommands.ExitSuccess {
		return status
	}

	for _, d := range disposals {
		printMarkdown(renderer.DisposalMarkdown(d))
	}
	fmt.Printf("%d disposals.\n", len(disposals))

	if err := writeUnmatched(ledger, c.unmatched); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing unmatched trades: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// matchLedger loads the ledger restricted to the selected instrument
// types and runs the matching engine.
func matchLedger(file, types string) ([]ibcgt.Disposal, *ibcgt.Ledger, subcommands.ExitStatus) {
	selected, err := ibcgt.ParseInstrumentTypes(strings.Split(types, ","))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in -types: %v\n", err)
		return nil, nil, subcommands.ExitUsageError
	}

	in, err := os.Open(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger %q: %v\n", file, err)
		return nil, nil, subcommands.ExitFailure
	}
	defer in.Close()

	ledger, err := ibcgt.ReadLedger(in, selected)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading ledger %q: %v\n", file, err)
		return nil, nil, subcommands.ExitFailure
	}

	disposals, err := ledger.Match()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error matching trades: %v\n", err)
		return nil, nil, subcommands.ExitFailure
	}
	return disposals, ledger, subcommands.ExitSuccess
}

func writeUnmatched(ledger *ibcgt.Ledger, file string) error {
	out, err := os.Create(file)
	if err != nil {
		return err
	}
	defer out.Close()
	return ledger.WriteUnmatched(out)
}
