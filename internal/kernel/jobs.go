package kernel

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shashiranjanraj/pricebook/app/services"
	"github.com/shashiranjanraj/pricebook/config"
	"github.com/shashiranjanraj/pricebook/pkg/logger"
	"github.com/shashiranjanraj/pricebook/pkg/schedule"
	"github.com/shashiranjanraj/pricebook/pkg/storage"
)

var scheduleTick = time.Second

// Jobs returns the scheduler with every background task enabled by config,
// or nil when there is none. The caller starts it.
func Jobs(stores *Stores) (*schedule.Scheduler, error) {
	file := config.CatalogSyncFile()
	if file == "" {
		return nil, nil
	}

	disk, err := storage.Use(config.CatalogSyncDisk())
	if err != nil {
		return nil, fmt.Errorf("kernel: catalog sync: %w", err)
	}

	s := schedule.New(scheduleTick)
	s.Every(config.CatalogSyncInterval()).
		Name("catalog-sync").
		WithoutOverlapping().
		Run(catalogSync(services.NewCatalogImporter(stores.Products), disk, file))
	return s, nil
}

// catalogSync re-imports file whenever its content changes. A missing file
// is skipped so the job can be enabled before the first upload.
func catalogSync(importer *services.CatalogImporter, disk storage.Disk, file string) schedule.Task {
	var last []byte
	return func(ctx context.Context) error {
		ok, err := disk.Exists(ctx, file)
		if err != nil {
			return fmt.Errorf("stat %s: %w", file, err)
		}
		if !ok {
			logger.Debug("catalog sync: file not present", "file", file)
			return nil
		}

		data, err := disk.Get(ctx, file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		sum := sha256.Sum256(data)
		if bytes.Equal(sum[:], last) {
			return nil
		}

		n, err := importer.ImportBytes(ctx, data, services.FormatFromPath(file))
		if err != nil {
			return err
		}
		last = sum[:]
		logger.Info("catalog synced", "file", file, "products", n)
		return nil
	}
}
