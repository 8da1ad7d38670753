package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SpecialPrice is a per-user override of a product's list price.
// (UserID, ProductSKU) is unique.
type SpecialPrice struct {
	ID         string          `gorm:"primaryKey;size:36"                                   json:"_id"`
	UserID     string          `gorm:"size:191;not null;uniqueIndex:idx_special_user_sku,priority:1" json:"userId"`
	ProductSKU string          `gorm:"size:100;not null;uniqueIndex:idx_special_user_sku,priority:2;index" json:"productSku"`
	Price      decimal.Decimal `gorm:"type:decimal(12,2);not null"                          json:"price"`
	CreatedAt  time.Time       `json:"-"`
	UpdatedAt  time.Time       `json:"-"`
}

func (SpecialPrice) TableName() string { return "special_prices" }

func (sp *SpecialPrice) BeforeCreate(_ *gorm.DB) error {
	if sp.ID == "" {
		sp.ID = uuid.NewString()
	}
	return nil
}
