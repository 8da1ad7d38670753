package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/pricebook/app/repositories"
	"github.com/shashiranjanraj/pricebook/internal/kernel"
	"github.com/shashiranjanraj/pricebook/internal/server"
)

// pricebook serve
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run", "start"},
	Short:   "Start the HTTP server (and gRPC health when GRPC_PORT is set)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// pricebook route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := kernel.NewRouter(memoryStores())
		if err != nil {
			return err
		}

		infos := r.Routes()
		sort.Slice(infos, func(i, j int) bool {
			if infos[i].Path != infos[j].Path {
				return infos[i].Path < infos[j].Path
			}
			return infos[i].Method < infos[j].Method
		})

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

// pricebook schedule:list
var scheduleListCmd = &cobra.Command{
	Use:   "schedule:list",
	Short: "List the background tasks the server would run",
	RunE: func(cmd *cobra.Command, args []string) error {
		shutdown, err := server.Boot(cmd.Context())
		if err != nil {
			return err
		}
		defer shutdown()

		jobs, err := kernel.Jobs(memoryStores())
		if err != nil {
			return err
		}
		if jobs == nil {
			fmt.Println("No scheduled tasks (CATALOG_SYNC_FILE is not set).")
			return nil
		}
		for _, line := range jobs.List() {
			fmt.Println(line)
		}
		return nil
	},
}

// memoryStores backs commands that only need to build the service graph.
func memoryStores() *kernel.Stores {
	return &kernel.Stores{
		Driver:   "memory",
		Products: repositories.NewMemoryProductRepository(),
		Prices:   repositories.NewMemorySpecialPriceRepository(),
	}
}
