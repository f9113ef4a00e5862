package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/etnz/ibcgt"
	"github.com/etnz/ibcgt/fx"
	"github.com/etnz/ibcgt/statement"
	"github.com/google/subcommands"
)

// parseCmd holds the flags for the 'parse' subcommand.
type parseCmd struct {
	tables string
	output string
}

func (*parseCmd) Name() string     { return "parse" }
func (*parseCmd) Synopsis() string { return "extract trades from HTML activity statements into a CSV ledger" }
func (*parseCmd) Usage() string {
	return `ibcgt parse [-tables <i,j,...>] [-o <file>] <statement.html> [<statement.html> ...]

  Extracts the trade tables from broker activity statements, resolves the
  FX rate of each trade date, and writes the trades as a CSV ledger for
  the match and report commands.
`
}

func (c *parseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.tables, "tables", "", "Comma-separated index of the trades table in each statement file.")
	f.StringVar(&c.output, "o", "trades.csv", "File to write the parsed trades to.")
}

func (c *parseCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	files := f.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "parse requires at least one statement file")
		return subcommands.ExitUsageError
	}
	indexes, err := parseIndexes(c.tables, len(files))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -tables: %v\n", err)
		return subcommands.ExitUsageError
	}

	rates, err := fx.Load(*fxPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading FX rates from %q: %v\n", *fxPath, err)
		return subcommands.ExitFailure
	}

	var records []statement.Record
	for i, file := range files {
		in, err := os.Open(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening statement %q: %v\n", file, err)
			return subcommands.ExitFailure
		}
		rs, err := statement.Parse(in, indexes[i])
		in.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing statement %q: %v\n", file, err)
			return subcommands.ExitFailure
		}
		records = append(records, rs...)
	}

	trades, err := statement.Enrich(records, rates)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error enriching trades: %v\n", err)
		return subcommands.ExitFailure
	}

	out, err := os.Create(c.output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %q: %v\n", c.output, err)
		return subcommands.ExitFailure
	}
	defer out.Close()
	if err := ibcgt.WriteLedger(out, trades); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", c.output, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Wrote %d trades to %s\n", len(trades), c.output)
	return subcommands.ExitSuccess
}

// parseIndexes reads the per-file table indexes; a single index applies
// to every file.
func parseIndexes(s string, files int) ([]int, error) {
	if s == "" {
		return nil, fmt.Errorf("missing table indexes")
	}
	parts := strings.Split(s, ",")
	if len(parts) == 1 && files > 1 {
		single := parts[0]
		parts = make([]string, files)
		for i := range parts {
			parts[i] = single
		}
	}
	if len(parts) != files {
		return nil, fmt.Errorf("%d indexes for %d files", len(parts), files)
	}
	indexes := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		indexes[i] = n
	}
	return indexes, nil
}
