package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/pricebook/app/repositories"
	"github.com/shashiranjanraj/pricebook/app/services"
	"github.com/shashiranjanraj/pricebook/pkg/storage"
)

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, services.FormatYAML, services.FormatFromPath("catalog/products.YML"))
	assert.Equal(t, services.FormatYAML, services.FormatFromPath("products.yaml"))
	assert.Equal(t, services.FormatJSON, services.FormatFromPath("products.json"))
	assert.Equal(t, services.FormatJSON, services.FormatFromPath("products"))
}

func TestCatalogImporter_JSONFromDisk(t *testing.T) {
	ctx := context.Background()
	disk := storage.NewLocalDisk(t.TempDir())
	require.NoError(t, disk.Put(ctx, "products.json", []byte(`[
		{"sku": "A1", "name": "Yerba", "description": "1kg", "price": 100},
		{"sku": "B2", "name": "Mate", "price": "49.90"}
	]`)))

	store := repositories.NewMemoryProductRepository()
	n, err := services.NewCatalogImporter(store).Import(ctx, disk, "products.json")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	b2, err := store.FindBySKU(ctx, "B2")
	require.NoError(t, err)
	assert.True(t, b2.Price.Equal(dec("49.9")))
}

func TestCatalogImporter_YAMLUpsertsBySKU(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryProductRepository()
	importer := services.NewCatalogImporter(store)

	_, err := importer.ImportBytes(ctx, []byte("- sku: A1\n  name: Yerba\n  price: 100\n"), services.FormatYAML)
	require.NoError(t, err)
	_, err = importer.ImportBytes(ctx, []byte("- sku: A1\n  name: Yerba Mate\n  price: 95.5\n"), services.FormatYAML)
	require.NoError(t, err)

	list, err := store.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Yerba Mate", list[0].Name)
	assert.True(t, list[0].Price.Equal(dec("95.5")))
}

func TestCatalogImporter_RejectsWholeFileOnInvalidEntry(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryProductRepository()
	importer := services.NewCatalogImporter(store)

	cases := map[string]string{
		"missing name":   `[{"sku": "A1", "price": 10}, {"sku": "B2", "name": "x"}]`,
		"zero price":     `[{"sku": "A1", "name": "Yerba", "price": 0}]`,
		"duplicate sku":  `[{"sku": "A1", "name": "a", "price": 1}, {"sku": "A1", "name": "b", "price": 2}]`,
		"not a list":     `{"sku": "A1"}`,
		"three decimals": `[{"sku": "A1", "name": "Yerba", "price": 9.999}]`,
		"sku too long":   `[{"sku": "` + strings.Repeat("x", 101) + `", "name": "Yerba", "price": 10}]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := importer.ImportBytes(ctx, []byte(body), services.FormatJSON)
			assert.ErrorIs(t, err, services.ErrValidation)
		})
	}

	list, err := store.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCatalogImporter_MissingFile(t *testing.T) {
	disk := storage.NewLocalDisk(t.TempDir())
	_, err := services.NewCatalogImporter(repositories.NewMemoryProductRepository()).
		Import(context.Background(), disk, "absent.json")
	assert.ErrorIs(t, err, services.ErrPersistence)
}

func TestCatalogImporter_ImportDir(t *testing.T) {
	ctx := context.Background()
	disk := storage.NewLocalDisk(t.TempDir())
	require.NoError(t, disk.Put(ctx, "catalog/a.json", []byte(`[{"sku":"A1","name":"Yerba","price":10}]`)))
	require.NoError(t, disk.Put(ctx, "catalog/b.yaml", []byte("- sku: B2\n  name: Mate\n  price: 4.50\n")))
	require.NoError(t, disk.Put(ctx, "catalog/README.md", []byte("not a catalog")))

	store := repositories.NewMemoryProductRepository()
	n, err := services.NewCatalogImporter(store).ImportDir(ctx, disk, "catalog/")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, err := store.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestCatalogImporter_ImportDirStopsAtInvalidFile(t *testing.T) {
	ctx := context.Background()
	disk := storage.NewLocalDisk(t.TempDir())
	require.NoError(t, disk.Put(ctx, "catalog/a.json", []byte(`[{"sku":"A1","name":"Yerba","price":10}]`)))
	require.NoError(t, disk.Put(ctx, "catalog/b.json", []byte(`[{"sku":"B2","price":10}]`)))

	n, err := services.NewCatalogImporter(repositories.NewMemoryProductRepository()).ImportDir(ctx, disk, "catalog")
	assert.ErrorIs(t, err, services.ErrValidation)
	assert.ErrorContains(t, err, "catalog/b.json")
	assert.Equal(t, 1, n)
}
