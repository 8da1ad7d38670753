package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/pricebook/config"
)

// pricebook config:list
var configListCmd = &cobra.Command{
	Use:   "config:list",
	Short: "Show every setting with its resolved value (secrets masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "KEY\tVALUE\tDESCRIPTION")
		fmt.Fprintln(w, "---\t-----\t-----------")
		for _, k := range config.Keys() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", k.Name, config.Display(k.Name), k.Usage)
		}
		return w.Flush()
	},
}
