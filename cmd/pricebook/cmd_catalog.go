package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/pricebook/app/services"
	"github.com/shashiranjanraj/pricebook/internal/kernel"
	"github.com/shashiranjanraj/pricebook/internal/server"
	"github.com/shashiranjanraj/pricebook/pkg/storage"
)

var importDisk string

// pricebook catalog:import <path> [--disk local|s3]
// A path ending in "/" imports every catalog file in that directory.
var catalogImportCmd = &cobra.Command{
	Use:   "catalog:import <path>",
	Short: "Upsert products by SKU from a JSON or YAML file (or a directory of them) on a storage disk",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		shutdown, err := server.Boot(ctx)
		if err != nil {
			return err
		}
		defer shutdown()

		disk, err := storage.Use(importDisk)
		if err != nil {
			return err
		}

		stores, err := kernel.OpenStores(ctx, true)
		if err != nil {
			return err
		}
		defer stores.Close()

		importer := services.NewCatalogImporter(stores.Products)
		var n int
		if strings.HasSuffix(args[0], "/") {
			n, err = importer.ImportDir(ctx, disk, args[0])
		} else {
			n, err = importer.Import(ctx, disk, args[0])
		}
		if err != nil {
			return err
		}
		fmt.Printf("✅ Imported %d products from %s\n", n, args[0])
		return nil
	},
}

func init() {
	catalogImportCmd.Flags().StringVar(&importDisk, "disk", "", "storage disk to read from (default STORAGE_DISK)")
}
