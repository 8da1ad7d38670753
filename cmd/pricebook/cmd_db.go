package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/pricebook/config"
	"github.com/shashiranjanraj/pricebook/database/seeders"
	"github.com/shashiranjanraj/pricebook/internal/kernel"
	"github.com/shashiranjanraj/pricebook/internal/server"
	"github.com/shashiranjanraj/pricebook/pkg/database"
	"github.com/shashiranjanraj/pricebook/pkg/migration"
)

// bootDB loads config and opens the SQL connection. Migrations only concern
// the gorm store; Mongo creates its indexes at startup.
func bootDB() (*migration.Runner, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	if d := config.StoreDriver(); d != "gorm" {
		return nil, fmt.Errorf("migrations apply to STORE_DRIVER=gorm, not %q", d)
	}
	if err := database.Connect(); err != nil {
		return nil, err
	}
	return migration.New(database.DB), nil
}

// pricebook migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, err := bootDB()
		if err != nil {
			return err
		}
		defer database.Close()
		fmt.Println("Running migrations…")
		return runner.Run(cmd.Context())
	},
}

// pricebook migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, err := bootDB()
		if err != nil {
			return err
		}
		defer database.Close()
		fmt.Println("Rolling back last batch…")
		return runner.Rollback(cmd.Context())
	},
}

// pricebook migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, err := bootDB()
		if err != nil {
			return err
		}
		defer database.Close()
		return runner.PrintStatus(cmd.Context())
	},
}

// pricebook seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo catalog into the configured store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		shutdown, err := server.Boot(ctx)
		if err != nil {
			return err
		}
		defer shutdown()

		stores, err := kernel.OpenStores(ctx, true)
		if err != nil {
			return err
		}
		defer stores.Close()

		fmt.Println("Running seeders…")
		return seeders.RunAll(ctx, stores.Products, os.Stdout)
	},
}
