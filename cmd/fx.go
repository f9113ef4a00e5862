package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/ibcgt/fx"
	"github.com/google/subcommands"
)

// fxCmd holds the flags for the 'fx' subcommand.
type fxCmd struct{}

func (*fxCmd) Name() string     { return "fx" }
func (*fxCmd) Synopsis() string { return "fetch the latest USD rate of a currency" }
func (*fxCmd) Usage() string {
	return `ibcgt fx <currency> [<currency> ...]

  Fetches the latest USD price of each currency, to extend a local FX
  series whose CSV files lag behind the statements.
`
}

func (c *fxCmd) SetFlags(f *flag.FlagSet) {}

func (c *fxCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	currencies := f.Args()
	if len(currencies) == 0 {
		fmt.Fprintln(os.Stderr, "fx requires at least one currency code")
		return subcommands.ExitUsageError
	}

	client := fx.Client()
	for _, currency := range currencies {
		rate, err := fx.Latest(client, currency)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching %s: %v\n", currency, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("%s: %s USD\n", currency, rate)
	}
	return subcommands.ExitSuccess
}
