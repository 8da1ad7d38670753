package kernel

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo/readpref"

	_ "github.com/shashiranjanraj/pricebook/database/migrations"

	"github.com/shashiranjanraj/pricebook/app/repositories"
	"github.com/shashiranjanraj/pricebook/config"
	"github.com/shashiranjanraj/pricebook/pkg/database"
	"github.com/shashiranjanraj/pricebook/pkg/logger"
	"github.com/shashiranjanraj/pricebook/pkg/migration"
	"github.com/shashiranjanraj/pricebook/pkg/mongodb"
)

// Stores is the pair of stores for the configured backend.
type Stores struct {
	Driver   string
	Products repositories.ProductStore
	Prices   repositories.SpecialPriceStore

	ping  func(ctx context.Context) error
	close func() error
}

// Ping reports whether the backend answers.
func (s *Stores) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the backend connection.
func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStores connects the STORE_DRIVER backend. With migrate set, pending
// SQL migrations run first (gorm only; mongo ensures its indexes always).
// The product store is fronted by the Redis catalog cache when
// CATALOG_CACHE_TTL is positive.
func OpenStores(ctx context.Context, migrate bool) (*Stores, error) {
	s, err := openBackend(ctx, config.StoreDriver(), migrate)
	if err != nil {
		return nil, err
	}
	if ttl := config.CatalogCacheTTL(); ttl > 0 {
		s.Products = repositories.NewCachedProductRepository(s.Products, ttl)
	}
	logger.Info("stores ready", "driver", s.Driver)
	return s, nil
}

func openBackend(ctx context.Context, driver string, migrate bool) (*Stores, error) {
	switch driver {
	case "memory":
		return &Stores{
			Driver:   driver,
			Products: repositories.NewMemoryProductRepository(),
			Prices:   repositories.NewMemorySpecialPriceRepository(),
		}, nil

	case "mongo":
		client, err := mongodb.Connect(ctx, config.MongoURI())
		if err != nil {
			return nil, err
		}
		db := client.Database(config.MongoDatabase())
		if err := repositories.EnsureMongoIndexes(ctx, db); err != nil {
			_ = mongodb.Disconnect(client)
			return nil, fmt.Errorf("kernel: mongo indexes: %w", err)
		}
		return &Stores{
			Driver:   driver,
			Products: repositories.NewMongoProductRepository(db),
			Prices:   repositories.NewMongoSpecialPriceRepository(db),
			ping:     func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
			close:    func() error { return mongodb.Disconnect(client) },
		}, nil

	default:
		if err := database.Connect(); err != nil {
			return nil, err
		}
		if migrate {
			if err := migration.New(database.DB).Run(ctx); err != nil {
				_ = database.Close()
				return nil, err
			}
		}
		db := database.DB
		return &Stores{
			Driver:   "gorm/" + config.DatabaseDriver(),
			Products: repositories.NewGormProductRepository(db),
			Prices:   repositories.NewGormSpecialPriceRepository(db),
			ping:     func(ctx context.Context) error { return repositories.PingGorm(ctx, db) },
			close:    database.Close,
		}, nil
	}
}
