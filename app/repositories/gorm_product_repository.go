package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/pricebook/app/models"
	"github.com/shashiranjanraj/pricebook/pkg/metrics"
)

const importBatchSize = 200

// GormProductRepository is the SQL catalog.
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	defer metrics.ObserveStore("gorm", "list_products", time.Now())

	products := []models.Product{}
	if err := r.db.WithContext(ctx).Order("created_at asc").Order("sku asc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *GormProductRepository) FindBySKU(ctx context.Context, sku string) (models.Product, error) {
	defer metrics.ObserveStore("gorm", "find_product", time.Now())

	var p models.Product
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Product{}, ErrProductNotFound
	}
	return p, err
}

func (r *GormProductRepository) UpsertProducts(ctx context.Context, products []models.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}
	defer metrics.ObserveStore("gorm", "upsert_products", time.Now())

	rows := make([]models.Product, len(products))
	copy(rows, products)

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sku"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "price", "updated_at"}),
		}).
		CreateInBatches(&rows, importBatchSize).Error
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}
