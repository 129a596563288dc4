package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/oots-bridge/evidence-contract-tests/scenarios"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "List the scenario catalog",
	Run: func(cmd *cobra.Command, args []string) {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tBEHAVIOR\tDESCRIPTION")
		for _, p := range scenarios.Catalog() {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Behavior, p.Description)
		}
		w.Flush()
	},
}
