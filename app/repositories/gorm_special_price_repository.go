package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/pricebook/app/models"
	"github.com/shashiranjanraj/pricebook/pkg/metrics"
)

// GormSpecialPriceRepository stores overrides in the special_prices table.
// The composite unique index idx_special_user_sku backs Upsert.
type GormSpecialPriceRepository struct {
	db *gorm.DB
}

func NewGormSpecialPriceRepository(db *gorm.DB) *GormSpecialPriceRepository {
	return &GormSpecialPriceRepository{db: db}
}

func (r *GormSpecialPriceRepository) Upsert(ctx context.Context, sp models.SpecialPrice) (models.SpecialPrice, error) {
	defer metrics.ObserveStore("gorm", "upsert_special_price", time.Now())

	row := models.SpecialPrice{UserID: sp.UserID, ProductSKU: sp.ProductSKU, Price: sp.Price}

	// INSERT ... ON CONFLICT (user_id, product_sku) DO UPDATE; MERGE on sqlserver,
	// ON DUPLICATE KEY UPDATE on mysql.
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_sku"}},
			DoUpdates: clause.AssignmentColumns([]string{"price", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return models.SpecialPrice{}, err
	}

	// The generated id is discarded when the row already existed; read the stored one back.
	var stored models.SpecialPrice
	err = r.db.WithContext(ctx).
		Where("user_id = ? AND product_sku = ?", sp.UserID, sp.ProductSKU).
		First(&stored).Error
	if err != nil {
		return models.SpecialPrice{}, fmt.Errorf("read back special price: %w", err)
	}
	return stored, nil
}

func (r *GormSpecialPriceRepository) ListByUser(ctx context.Context, userID string) ([]models.SpecialPrice, error) {
	defer metrics.ObserveStore("gorm", "list_special_prices", time.Now())

	prices := []models.SpecialPrice{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").Order("product_sku asc").
		Find(&prices).Error
	if err != nil {
		return nil, err
	}
	return prices, nil
}

func (r *GormSpecialPriceRepository) ExistsForUser(ctx context.Context, userID string) (bool, error) {
	defer metrics.ObserveStore("gorm", "exists_special_price", time.Now())

	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.SpecialPrice{}).
		Where("user_id = ?", userID).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

// PingGorm checks that db answers.
func PingGorm(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
