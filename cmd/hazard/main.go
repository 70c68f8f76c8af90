// Command hazard computes probabilistic seismic hazard curves.
//
// The calc subcommand runs a batch calculation over a site file and
// writes per-site result rows; the serve subcommand exposes the engine
// over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "hazard",
		Short:         "Probabilistic seismic hazard curve engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCalcCmd(), newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
