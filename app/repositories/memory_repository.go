package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/pricebook/app/models"
)

// MemoryProductRepository keeps the catalog in process memory, in insertion order.
type MemoryProductRepository struct {
	mu       sync.RWMutex
	products []models.Product
	bySKU    map[string]int
}

func NewMemoryProductRepository(products ...models.Product) *MemoryProductRepository {
	r := &MemoryProductRepository{bySKU: make(map[string]int)}
	_, _ = r.UpsertProducts(context.Background(), products)
	return r
}

func (r *MemoryProductRepository) ListProducts(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.Product{}, r.products...), nil
}

func (r *MemoryProductRepository) FindBySKU(_ context.Context, sku string) (models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.bySKU[sku]
	if !ok {
		return models.Product{}, ErrProductNotFound
	}
	return r.products[i], nil
}

func (r *MemoryProductRepository) UpsertProducts(_ context.Context, products []models.Product) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for _, p := range products {
		if i, ok := r.bySKU[p.SKU]; ok {
			existing := &r.products[i]
			existing.Name, existing.Description, existing.Price = p.Name, p.Description, p.Price
			existing.UpdatedAt = now
			continue
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.CreatedAt, p.UpdatedAt = now, now
		r.bySKU[p.SKU] = len(r.products)
		r.products = append(r.products, p)
	}
	return len(products), nil
}

type pairKey struct{ user, sku string }

// MemorySpecialPriceRepository keeps overrides in process memory. The map
// keyed by (user, sku) plays the role of the unique index; the mutex makes
// Upsert atomic.
type MemorySpecialPriceRepository struct {
	mu     sync.RWMutex
	rows   []models.SpecialPrice
	byPair map[pairKey]int
}

func NewMemorySpecialPriceRepository() *MemorySpecialPriceRepository {
	return &MemorySpecialPriceRepository{byPair: make(map[pairKey]int)}
}

func (r *MemorySpecialPriceRepository) Upsert(_ context.Context, sp models.SpecialPrice) (models.SpecialPrice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	key := pairKey{sp.UserID, sp.ProductSKU}
	if i, ok := r.byPair[key]; ok {
		r.rows[i].Price = sp.Price
		r.rows[i].UpdatedAt = now
		return r.rows[i], nil
	}

	row := models.SpecialPrice{
		ID:         uuid.NewString(),
		UserID:     sp.UserID,
		ProductSKU: sp.ProductSKU,
		Price:      sp.Price,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.byPair[key] = len(r.rows)
	r.rows = append(r.rows, row)
	return row, nil
}

func (r *MemorySpecialPriceRepository) ListByUser(_ context.Context, userID string) ([]models.SpecialPrice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.SpecialPrice{}
	for _, row := range r.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *MemorySpecialPriceRepository) ExistsForUser(_ context.Context, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, row := range r.rows {
		if row.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

// Count returns the number of stored overrides.
func (r *MemorySpecialPriceRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows)
}
