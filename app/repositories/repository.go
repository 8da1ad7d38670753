// Package repositories holds the catalog and special-price stores.
//
// Three backends implement the same interfaces: GORM (sqlite, postgres,
// mysql, sqlserver), MongoDB, and an in-process memory store.
package repositories

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/pricebook/app/models"
)

// ErrProductNotFound is returned by FindBySKU when no product has the SKU.
var ErrProductNotFound = errors.New("product not found")

// ProductStore is the catalog.
type ProductStore interface {
	// ListProducts returns every product in stable catalog order.
	ListProducts(ctx context.Context) ([]models.Product, error)
	// FindBySKU returns ErrProductNotFound for unknown SKUs.
	FindBySKU(ctx context.Context, sku string) (models.Product, error)
	// UpsertProducts inserts products or replaces name, description and
	// price of those whose SKU already exists. Returns how many were written.
	UpsertProducts(ctx context.Context, products []models.Product) (int, error)
}

// SpecialPriceStore holds at most one override per (UserID, ProductSKU).
type SpecialPriceStore interface {
	// Upsert atomically inserts sp, or replaces the price of the existing row
	// with the same (UserID, ProductSKU), using the backend's native
	// insert-or-replace primitive. It returns the stored row. Concurrent
	// calls for one pair never create two rows; the last writer wins.
	Upsert(ctx context.Context, sp models.SpecialPrice) (models.SpecialPrice, error)
	// ListByUser returns the user's overrides, oldest first.
	ListByUser(ctx context.Context, userID string) ([]models.SpecialPrice, error)
	// ExistsForUser reports whether the user has any override.
	ExistsForUser(ctx context.Context, userID string) (bool, error)
}
