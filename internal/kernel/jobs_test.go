package kernel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/pricebook/app/services"
	"github.com/shashiranjanraj/pricebook/config"
	"github.com/shashiranjanraj/pricebook/pkg/storage"
)

func TestJobsDisabledWithoutFile(t *testing.T) {
	config.Set("CATALOG_SYNC_FILE", "")
	s, err := Jobs(memoryStores(t))
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestJobsUnknownDisk(t *testing.T) {
	config.Set("CATALOG_SYNC_FILE", "products.json")
	config.Set("CATALOG_SYNC_DISK", "nowhere")
	t.Cleanup(func() { config.Set("CATALOG_SYNC_FILE", "") })

	_, err := Jobs(memoryStores(t))
	assert.ErrorIs(t, err, storage.ErrNotConfigured)
}

func TestCatalogSyncJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	disk := storage.NewLocalDisk(t.TempDir())
	require.NoError(t, disk.Put(ctx, "products.json", []byte(`[{"sku":"Z9","name":"Termo","price":30}]`)))
	storage.RegisterDisk("sync-test", disk)

	config.Set("CATALOG_SYNC_FILE", "products.json")
	config.Set("CATALOG_SYNC_DISK", "sync-test")
	config.Set("CATALOG_SYNC_INTERVAL", "10ms")
	t.Cleanup(func() { config.Set("CATALOG_SYNC_FILE", "") })
	scheduleTick = 5 * time.Millisecond
	t.Cleanup(func() { scheduleTick = time.Second })

	stores := memoryStores(t)
	s, err := Jobs(stores)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, []string{"catalog-sync  [every 10ms]"}, s.List())

	s.Start(ctx)
	assert.Eventually(t, func() bool {
		_, err := stores.Products.FindBySKU(ctx, "Z9")
		return err == nil
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, disk.Put(ctx, "products.json", []byte(`[{"sku":"Z9","name":"Termo","price":35}]`)))
	assert.Eventually(t, func() bool {
		p, err := stores.Products.FindBySKU(ctx, "Z9")
		return err == nil && p.Price.String() == "35"
	}, time.Second, 5*time.Millisecond)

	cancel()
	s.Wait()
}

func TestCatalogSyncSkipsUnchangedFile(t *testing.T) {
	ctx := context.Background()
	disk := storage.NewLocalDisk(t.TempDir())
	require.NoError(t, disk.Put(ctx, "c.json", []byte(`[{"sku":"Z9","name":"Termo","price":30}]`)))

	stores := memoryStores(t)
	task := catalogSync(services.NewCatalogImporter(stores.Products), disk, "c.json")
	require.NoError(t, task(ctx))

	// Unchanged content is skipped; changed content is parsed again.
	require.NoError(t, task(ctx))
	require.NoError(t, disk.Put(ctx, "c.json", []byte(`not json`)))
	assert.Error(t, task(ctx))
}

func TestCatalogSyncWaitsForFile(t *testing.T) {
	ctx := context.Background()
	disk := storage.NewLocalDisk(t.TempDir())
	stores := memoryStores(t)
	task := catalogSync(services.NewCatalogImporter(stores.Products), disk, "later.json")

	require.NoError(t, task(ctx))
	_, err := stores.Products.FindBySKU(ctx, "Z9")
	assert.Error(t, err)

	require.NoError(t, disk.Put(ctx, "later.json", []byte(`[{"sku":"Z9","name":"Termo","price":30}]`)))
	require.NoError(t, task(ctx))
	_, err = stores.Products.FindBySKU(ctx, "Z9")
	assert.NoError(t, err)
}
