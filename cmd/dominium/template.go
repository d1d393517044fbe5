package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dominium/dominium/template"
)

func templateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Inspect world templates",
	}
	cmd.AddCommand(templateListCmd())
	return cmd
}

func templateListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the built-in world templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range template.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
