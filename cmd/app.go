// Package cmd implements the CLI application to compute UK capital
// gains from broker activity statements.
package cmd

import (
	"flag"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
)

// Commands lists the subcommands of the application.
// A main package registers each of them and executes the user-selected one.
var Commands = []subcommands.Command{
	&parseCmd{},
	&matchCmd{},
	&reportCmd{},
	&fxCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var fxPath = flag.String("fx-path", "fx", "Path to the folder of per-currency FX rate CSV files")

// printMarkdown renders markdown to the terminal.
func printMarkdown(content string) {
	out, err := glamour.Render(content, "auto")
	if err != nil {
		// fall back to the raw markdown
		fmt.Print(content)
		return
	}
	fmt.Print(out)
}
