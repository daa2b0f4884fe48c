package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/chaperone/manifest"
)

var (
	configDir string
	verbose   int

	// current is the configuration loaded before any subcommand runs.
	current *manifest.Manifest
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:               "chap",
	Short:             "Inspect and check the chaperone runtime",
	Long:              `chap runs the impersonator and chaperone conformance scenarios, inspects wrapper chains, and shows the runtime configuration read from chaperone.toml.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "directory to search upward for chaperone.toml (default is the working directory)")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase log verbosity (repeatable)")

	rootCmd.AddCommand(checkCmd, inspectCmd, configCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	dir := configDir
	if dir == "" {
		dir = "."
	}
	m, err := manifest.LoadOrDefault(dir)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	current = m

	verbosity := m.Log.Verbosity
	if verbose > verbosity {
		verbosity = verbose
	}
	commonlog.Configure(verbosity, m.LogPath())
	return nil
}
