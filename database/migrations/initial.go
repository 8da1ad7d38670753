// Package migrations holds the SQL schema of the catalog and the
// special-price overrides. Importing it registers every migration.
package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/pricebook/app/models"
	"github.com/shashiranjanraj/pricebook/pkg/migration"
)

func init() {
	migration.Register("20260101000000_create_products_table", &CreateProductsTable{})
	migration.Register("20260101000001_create_special_prices_table", &CreateSpecialPricesTable{})
}

type CreateProductsTable struct{}

func (m *CreateProductsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Product{})
}

func (m *CreateProductsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.Product{})
}

// CreateSpecialPricesTable carries the unique (user_id, product_sku) index
// that the upsert relies on.
type CreateSpecialPricesTable struct{}

func (m *CreateSpecialPricesTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.SpecialPrice{})
}

func (m *CreateSpecialPricesTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.SpecialPrice{})
}
