// Command synapdb manages the synaptic physiology database: schema
// inspection, destructive resets, and timestamp lookups.
package main

import (
	"fmt"
	"os"

	"github.com/ephyslab/synapdb/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
