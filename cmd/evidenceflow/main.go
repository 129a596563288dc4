// Command evidenceflow validates an evidence-exchange deployment end to
// end: it drives the Evidence Requester gateway and the data-provider
// simulator through a catalog of scenario paths and asserts that the
// structured log trail in the search index matches each path's expected
// shape.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.3.0"

var configFile string

var rootCmd = &cobra.Command{
	Use:     "evidenceflow",
	Short:   "Contract tests for the evidence-exchange bridge",
	Version: version,
	Long: `evidenceflow drives the evidence-exchange deployment (requester gateway,
bridge, data-provider simulator) through scenario paths and validates the
structured log records each path must leave behind.

The process exit code is the machine-readable signal: 0 iff every executed
path passed.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to YAML config file (defaults target a local deployment)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(simulatorCmd)
	rootCmd.AddCommand(pathsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
