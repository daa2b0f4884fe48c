package cmd

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/chazu/chaperone/conformance"
	"github.com/chazu/chaperone/vm"
)

var checkMetrics bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the conformance scenarios",
	Long:  `Builds a VM from the loaded configuration, runs every built-in scenario against it and prints a pass/fail table. Exits non-zero if any scenario fails.`,
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkMetrics, "metrics", false, "print VM metrics in Prometheus text format after the run")
}

func runCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	machine := vm.NewVMWithConfig(current.VMConfig())
	results := conformance.Run(machine, conformance.All())

	table := tablewriter.NewWriter(out)
	table.Header("Scenario", "Result", "Time")
	for _, r := range results {
		status := "PASS"
		if !r.Passed() {
			status = "FAIL: " + r.Err.Error()
		}
		table.Append(r.Name, status, r.Duration.String())
	}
	table.Render()

	if checkMetrics || current.Metrics.Enabled {
		if err := writeMetrics(out, machine.Metrics()); err != nil {
			return err
		}
	}

	if n := conformance.Failures(results); n > 0 {
		return fmt.Errorf("%d of %d scenarios failed", n, len(results))
	}
	fmt.Fprintf(out, "%d scenarios passed\n", len(results))
	return nil
}

func writeMetrics(w io.Writer, m *vm.Metrics) error {
	families, err := m.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	encoder := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := encoder.Encode(mf); err != nil {
			return fmt.Errorf("encoding metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
