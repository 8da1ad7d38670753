// Command pricebook serves the catalog and special-price API and carries the
// operational commands around it.
//
//	pricebook serve                     # HTTP (+ gRPC health when GRPC_PORT is set)
//	pricebook migrate                   # run pending SQL migrations
//	pricebook migrate:rollback
//	pricebook migrate:status
//	pricebook seed                      # load the demo catalog
//	pricebook catalog:import products.yaml --disk s3
//	pricebook route:list
//	pricebook schedule:list
//	pricebook config:list
//	pricebook token:issue --subject alice
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Import migrations so their init() funcs run and register themselves.
	_ "github.com/shashiranjanraj/pricebook/database/migrations"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "pricebook",
	Short:         "pricebook — product catalog with per-user special prices",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Server
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)
	rootCmd.AddCommand(scheduleListCmd)
	rootCmd.AddCommand(configListCmd)

	// Database
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(catalogImportCmd)

	// Auth
	rootCmd.AddCommand(tokenIssueCmd)
}
