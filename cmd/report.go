package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/ibcgt"
	"github.com/etnz/ibcgt/date"
	"github.com/etnz/ibcgt/renderer"
	"github.com/google/subcommands"
)

// reportCmd holds the flags for the 'report' subcommand.
type reportCmd struct {
	ledgerFile string
	types      string
	year       int
	unmatched  string
	output     string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "gain/loss report for one UK tax year" }
func (*reportCmd) Usage() string {
	return `ibcgt report [-l <trades.csv>] [-types <t1,t2,...>] [-year <yyyy>] [-o <file>]

  Matches the trade ledger and reports the disposals of the UK tax year
  starting 6 April of the given year: totals first, then every disposal
  with its matching trades. With -o the markdown report is written to a
  file instead of the terminal.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerFile, "l", "trades.csv", "CSV ledger produced by the parse command.")
	f.StringVar(&c.types, "types", "Stocks", "Comma-separated instrument types to process.")
	f.IntVar(&c.year, "year", currentTaxYear(), "Start year of the tax year to report.")
	f.StringVar(&c.unmatched, "u", "unmatched.csv", "File to write the unmatched trades to.")
	f.StringVar(&c.output, "o", "", "File to write the markdown report to. Prints to the terminal by default.")
}

// currentTaxYear returns the start year of the tax year today falls in.
func currentTaxYear() int {
	today := date.Today()
	year := today.Year()
	if today.Before(date.New(year, time.April, 6)) {
		return year - 1
	}
	return year
}

func (c *reportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	disposals, ledger, status := matchLedger(c.ledgerFile, c.types)
	if status != subcommands.ExitSuccess {
		return status
	}

	report := ibcgt.NewTaxYearReport(c.year, disposals)
	md := renderer.TaxYearMarkdown(report)

	if c.output == "" {
		printMarkdown(md)
	} else if err := os.WriteFile(c.output, []byte(md), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report %q: %v\n", c.output, err)
		return subcommands.ExitFailure
	}

	if err := writeUnmatched(ledger, c.unmatched); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing unmatched trades: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
