package seeders

import (
	"context"
	_ "embed"

	"github.com/shashiranjanraj/pricebook/app/repositories"
	"github.com/shashiranjanraj/pricebook/app/services"
)

//go:embed catalog.yaml
var demoCatalog []byte

func init() {
	Register("catalog", SeedCatalog)
}

// SeedCatalog upserts the demo catalog, so running it twice is harmless.
func SeedCatalog(ctx context.Context, products repositories.ProductStore) error {
	_, err := services.NewCatalogImporter(products).ImportBytes(ctx, demoCatalog, services.FormatYAML)
	return err
}
