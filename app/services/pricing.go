// Package services holds the special-price rules on top of the stores.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/pricebook/app/models"
	"github.com/shashiranjanraj/pricebook/app/repositories"
	"github.com/shashiranjanraj/pricebook/pkg/event"
	"github.com/shashiranjanraj/pricebook/pkg/logger"
	"github.com/shashiranjanraj/pricebook/pkg/metrics"
)

// UpsertSpecialPriceInput is the payload of a special-price write.
type UpsertSpecialPriceInput struct {
	UserID     string          `json:"userId"     validate:"required,max=191"`
	ProductSKU string          `json:"productSku" validate:"required,max=100"`
	Price      decimal.Decimal `json:"price"`
}

// TopicSpecialPriceSaved is published with the stored models.SpecialPrice
// after every successful upsert.
const TopicSpecialPriceSaved = "special_price.saved"

type PricingService struct {
	products repositories.ProductStore
	prices   repositories.SpecialPriceStore
	events   *event.Bus
}

func NewPricingService(products repositories.ProductStore, prices repositories.SpecialPriceStore) *PricingService {
	return &PricingService{products: products, prices: prices, events: event.NewBus()}
}

// Events is the bus saved overrides are published on.
func (s *PricingService) Events() *event.Bus { return s.events }

// UpsertSpecialPrice stores the override for (UserID, ProductSKU), replacing
// any previous one. The price must be strictly below the product's list
// price; rejected writes touch nothing.
func (s *PricingService) UpsertSpecialPrice(ctx context.Context, in UpsertSpecialPriceInput) (models.SpecialPrice, error) {
	log := logger.WithCtx(ctx)

	in.UserID = strings.TrimSpace(in.UserID)
	in.ProductSKU = strings.TrimSpace(in.ProductSKU)
	if in.UserID == "" || in.ProductSKU == "" {
		metrics.SpecialPriceUpserts.WithLabelValues("invalid").Inc()
		return models.SpecialPrice{}, fmt.Errorf("%w: userId and productSku are required", ErrValidation)
	}

	product, err := s.products.FindBySKU(ctx, in.ProductSKU)
	if errors.Is(err, repositories.ErrProductNotFound) {
		metrics.SpecialPriceUpserts.WithLabelValues("not_found").Inc()
		return models.SpecialPrice{}, fmt.Errorf("%w: %s", ErrNotFound, in.ProductSKU)
	}
	if err != nil {
		metrics.SpecialPriceUpserts.WithLabelValues("error").Inc()
		return models.SpecialPrice{}, fmt.Errorf("%w: find product: %v", ErrPersistence, err)
	}

	// Checked at column scale: 79.999 would be stored as 80.00.
	if !in.Price.IsPositive() || !models.FitsPriceScale(in.Price) || in.Price.GreaterThanOrEqual(product.Price) {
		metrics.SpecialPriceUpserts.WithLabelValues("invalid").Inc()
		return models.SpecialPrice{}, ErrInvalidPrice
	}

	stored, err := s.prices.Upsert(ctx, models.SpecialPrice{
		UserID:     in.UserID,
		ProductSKU: in.ProductSKU,
		Price:      in.Price,
	})
	if err != nil {
		metrics.SpecialPriceUpserts.WithLabelValues("error").Inc()
		return models.SpecialPrice{}, fmt.Errorf("%w: upsert special price: %v", ErrPersistence, err)
	}

	metrics.SpecialPriceUpserts.WithLabelValues("saved").Inc()
	log.Info("special price saved",
		"user_id", stored.UserID,
		"sku", stored.ProductSKU,
		"price", stored.Price.String(),
		"list_price", product.Price.String(),
	)
	s.events.Publish(TopicSpecialPriceSaved, stored)
	return stored, nil
}

// EffectivePrices returns the catalog as userID sees it. With no user the
// catalog comes back unchanged and without the hasSpecialPrice flag.
func (s *PricingService) EffectivePrices(ctx context.Context, userID string) ([]models.PricedProduct, error) {
	catalog, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list products: %v", ErrPersistence, err)
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ResolvePrices(catalog, nil, false), nil
	}

	overrides, err := s.prices.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list special prices: %v", ErrPersistence, err)
	}
	return ResolvePrices(catalog, overrides, true), nil
}

// ListSpecialPrices returns the user's overrides, oldest first.
func (s *PricingService) ListSpecialPrices(ctx context.Context, userID string) ([]models.SpecialPrice, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrValidation)
	}

	rows, err := s.prices.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list special prices: %v", ErrPersistence, err)
	}
	return rows, nil
}

// HasSpecialPrices reports whether userID has at least one override.
func (s *PricingService) HasSpecialPrices(ctx context.Context, userID string) (bool, error) {
	ok, err := s.prices.ExistsForUser(ctx, strings.TrimSpace(userID))
	if err != nil {
		return false, fmt.Errorf("%w: check special prices: %v", ErrPersistence, err)
	}
	return ok, nil
}

// ResolvePrices merges overrides into catalog, keeping catalog order.
// flag controls whether hasSpecialPrice is set on every entry.
func ResolvePrices(catalog []models.Product, overrides []models.SpecialPrice, flag bool) []models.PricedProduct {
	bySKU := make(map[string]decimal.Decimal, len(overrides))
	for _, o := range overrides {
		bySKU[o.ProductSKU] = o.Price
	}

	out := make([]models.PricedProduct, 0, len(catalog))
	for _, p := range catalog {
		pp := models.PricedProduct{Product: p}
		if flag {
			price, ok := bySKU[p.SKU]
			if ok {
				pp.Price = price
			}
			pp.HasSpecialPrice = &ok
		}
		out = append(out, pp)
	}
	return out
}
