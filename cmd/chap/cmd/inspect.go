package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/chazu/chaperone/vm"
	"github.com/chazu/chaperone/vm/snapshot"
)

var inspectCBOR string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Build a sample wrapper chain and show its layers",
	Long:  `Wraps a vector in a chaperone and then an impersonator carrying a property, prints one row per layer, and optionally writes the canonical CBOR snapshot of the chain.`,
	Args:  cobra.NoArgs,
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectCBOR, "cbor", "", "write the CBOR snapshot to this file")
}

// sampleChain returns #(1 "two") behind a chaperone and an impersonator.
func sampleChain(machine *vm.VM) (vm.Value, error) {
	pass := vm.NewSimplePrimitive("pass", 1, vm.Variadic, func(args []vm.Value) (vm.Value, error) {
		return args[len(args)-1], nil
	})
	chp, err := machine.MakeVectorWrapper(vm.Chaperone, []vm.Value{
		vm.NewVector(vm.Fixnum(1), vm.NewString("two")), pass, pass,
	})
	if err != nil {
		return nil, err
	}
	label := vm.NewPropertyDescriptor("label")
	return machine.MakeVectorWrapper(vm.Impersonator, []vm.Value{
		chp, pass, pass, label, vm.Intern("sample"), vm.ApplicationMark, vm.False,
	})
}

func runInspect(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	machine := vm.NewVMWithConfig(current.VMConfig())
	v, err := sampleChain(machine)
	if err != nil {
		return err
	}

	result := vm.NewInspector(machine).Inspect(v)
	fmt.Fprintf(out, "%s: %s\n", result.Type, result.Value)

	table := tablewriter.NewWriter(out)
	table.Header("Layer", "Strength", "Kind", "Handlers", "Properties")
	for i, l := range result.Layers {
		props := make([]string, 0, len(l.Properties))
		for _, p := range l.Properties {
			props = append(props, fmt.Sprintf("%s=%s", p.Name, p.Value))
		}
		table.Append(fmt.Sprint(i), l.Strength, l.Kind, fmt.Sprint(l.Handlers), strings.Join(props, " "))
	}
	table.Render()

	if inspectCBOR == "" {
		return nil
	}
	data, err := snapshot.Marshal(snapshot.FromInspection(result))
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(inspectCBOR, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	fmt.Fprintf(out, "wrote %d bytes to %s\n", len(data), inspectCBOR)
	return nil
}
