// Command chap exercises the chaperone runtime: it runs the conformance
// scenarios, inspects wrapper chains and prints the effective
// configuration.
package main

import (
	"os"

	"github.com/chazu/chaperone/cmd/chap/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
