package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dominium/dominium/saveformat"
)

func replayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <file>",
		Short: "Replay a recorded event stream",
		Long: `replay reads a DOMINIUM_REPLAY_V1 file and prints every event line
verbatim, in the order they were originally recorded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.OutOrStdout(), args[0])
		},
	}
}

func runReplay(out io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	doc, err := saveformat.Parse(data)
	if err != nil {
		os.Exit(ExitFailure)
		return nil
	}
	if doc.Header != saveformat.ReplayHeader {
		fmt.Fprintf(out, "unrecognized replay header %q\n", doc.Header)
		os.Exit(ExitUsage)
		return nil
	}
	for _, rec := range doc.Section("events").Records {
		fmt.Fprintln(out, rec.String())
	}
	return nil
}
