package main

import "github.com/spf13/cobra"

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Inspect imported entities from the CLI",
	}
	cmd.AddCommand(queryListCmd())
	cmd.AddCommand(queryEntityCmd())
	return cmd
}
