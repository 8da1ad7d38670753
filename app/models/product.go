package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// Prices go over the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// PriceScale is the number of fractional digits the price columns keep.
const PriceScale = 2

// FitsPriceScale reports whether d is stored without rounding.
func FitsPriceScale(d decimal.Decimal) bool { return d.Equal(d.Round(PriceScale)) }

// Product is a catalogue entry. SKU is the natural key; Price is the list price.
type Product struct {
	ID          string          `gorm:"primaryKey;size:36"            json:"_id"`
	SKU         string          `gorm:"size:100;uniqueIndex;not null" json:"sku"`
	Name        string          `gorm:"size:255;not null;index"       json:"name"`
	Description string          `gorm:"type:text"                     json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"   json:"price"`
	CreatedAt   time.Time       `json:"-"`
	UpdatedAt   time.Time       `json:"-"`
}

// BeforeCreate assigns a UUID when the caller did not set one.
func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PricedProduct is a Product as seen by one requester. HasSpecialPrice is nil
// when no user was given, so the field is left out of the JSON entirely.
type PricedProduct struct {
	Product
	HasSpecialPrice *bool `json:"hasSpecialPrice,omitempty"`
}
