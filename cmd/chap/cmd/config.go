package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if current.Dir != "" {
			fmt.Fprintf(out, "# from %s\n", current.Dir)
		} else {
			fmt.Fprintln(out, "# built-in defaults")
		}
		return current.Encode(out)
	},
}
