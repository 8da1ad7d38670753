package repositories_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/pricebook/app/models"
	"github.com/shashiranjanraj/pricebook/app/repositories"
	"github.com/shashiranjanraj/pricebook/pkg/database"
)

type storeFactory func(t *testing.T) (repositories.ProductStore, repositories.SpecialPriceStore)

func backends() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T) (repositories.ProductStore, repositories.SpecialPriceStore) {
			return repositories.NewMemoryProductRepository(), repositories.NewMemorySpecialPriceRepository()
		},
		"gorm-sqlite": func(t *testing.T) (repositories.ProductStore, repositories.SpecialPriceStore) {
			db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "pricebook_test.db"))
			require.NoError(t, err)
			require.NoError(t, db.AutoMigrate(&models.Product{}, &models.SpecialPrice{}))
			t.Cleanup(func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			})
			return repositories.NewGormProductRepository(db), repositories.NewGormSpecialPriceRepository(db)
		},
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestProductStore(t *testing.T) {
	ctx := context.Background()

	for name, newStores := range backends() {
		t.Run(name, func(t *testing.T) {
			products, _ := newStores(t)

			n, err := products.UpsertProducts(ctx, []models.Product{
				{SKU: "A1", Name: "Yerba", Description: "1kg", Price: dec("100")},
				{SKU: "B2", Name: "Mate", Description: "gourd", Price: dec("49.90")},
			})
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			list, err := products.ListProducts(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "A1", list[0].SKU)
			assert.Equal(t, "B2", list[1].SKU)
			assert.NotEmpty(t, list[0].ID)

			a1, err := products.FindBySKU(ctx, "A1")
			require.NoError(t, err)
			assert.True(t, a1.Price.Equal(dec("100")), "price = %s", a1.Price)

			_, err = products.FindBySKU(ctx, "UNKNOWN")
			assert.ErrorIs(t, err, repositories.ErrProductNotFound)

			_, err = products.UpsertProducts(ctx, []models.Product{{SKU: "A1", Name: "Yerba", Description: "1kg", Price: dec("90")}})
			require.NoError(t, err)

			again, err := products.FindBySKU(ctx, "A1")
			require.NoError(t, err)
			assert.Equal(t, a1.ID, again.ID)
			assert.True(t, again.Price.Equal(dec("90")))

			list, err = products.ListProducts(ctx)
			require.NoError(t, err)
			assert.Len(t, list, 2)
		})
	}
}

func TestSpecialPriceStore_UpsertReplaces(t *testing.T) {
	ctx := context.Background()

	for name, newStores := range backends() {
		t.Run(name, func(t *testing.T) {
			_, prices := newStores(t)

			first, err := prices.Upsert(ctx, models.SpecialPrice{UserID: "u1", ProductSKU: "A1", Price: dec("80")})
			require.NoError(t, err)
			assert.NotEmpty(t, first.ID)
			assert.True(t, first.Price.Equal(dec("80")))

			second, err := prices.Upsert(ctx, models.SpecialPrice{UserID: "u1", ProductSKU: "A1", Price: dec("70.5")})
			require.NoError(t, err)
			assert.Equal(t, first.ID, second.ID)
			assert.True(t, second.Price.Equal(dec("70.5")))

			_, err = prices.Upsert(ctx, models.SpecialPrice{UserID: "u2", ProductSKU: "A1", Price: dec("60")})
			require.NoError(t, err)

			list, err := prices.ListByUser(ctx, "u1")
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, "A1", list[0].ProductSKU)
			assert.True(t, list[0].Price.Equal(dec("70.5")))

			ok, err := prices.ExistsForUser(ctx, "u1")
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = prices.ExistsForUser(ctx, "nobody")
			require.NoError(t, err)
			assert.False(t, ok)

			empty, err := prices.ListByUser(ctx, "nobody")
			require.NoError(t, err)
			assert.NotNil(t, empty)
			assert.Empty(t, empty)
		})
	}
}

func TestSpecialPriceStore_ConcurrentUpsertsKeepOneRow(t *testing.T) {
	ctx := context.Background()

	for name, newStores := range backends() {
		t.Run(name, func(t *testing.T) {
			_, prices := newStores(t)

			const writers = 16
			var wg sync.WaitGroup
			errs := make(chan error, writers)
			for i := 1; i <= writers; i++ {
				wg.Add(1)
				go func(price int64) {
					defer wg.Done()
					_, err := prices.Upsert(ctx, models.SpecialPrice{UserID: "u1", ProductSKU: "A1", Price: decimal.NewFromInt(price)})
					errs <- err
				}(int64(i))
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				require.NoError(t, err)
			}

			list, err := prices.ListByUser(ctx, "u1")
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.True(t, list[0].Price.GreaterThanOrEqual(decimal.NewFromInt(1)))
			assert.True(t, list[0].Price.LessThanOrEqual(decimal.NewFromInt(writers)))
		})
	}
}
