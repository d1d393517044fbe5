// Command dominium is the operator-facing entrypoint (spec.md §6): a
// verb-stream REPL (run), a replay-file player (replay), and template
// discovery (template list).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes spec.md §6 defines for handler outcomes.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 2
	ExitUnavailable = 3
)

var rootCmd = &cobra.Command{
	Use:   "dominium",
	Short: "Dominium deterministic world simulation runtime",
	Long: `dominium drives a deterministic, tick-synchronous world simulation
through a line-oriented verb interface: construct a world from a
template, advance it, inspect and save its state, and replay a
previously recorded event stream.`,
}

func main() {
	rootCmd.AddCommand(
		runCmd(),
		replayCmd(),
		templateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dominium: %v\n", err)
		os.Exit(ExitFailure)
	}
}
