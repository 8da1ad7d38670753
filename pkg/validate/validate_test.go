package validate_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/pricebook/pkg/validate"
)

type overrideInput struct {
	UserID     string          `json:"userId"     validate:"required,max=191"`
	ProductSKU string          `json:"productSku" validate:"required,alpha_dash,max=100"`
	Price      decimal.Decimal `json:"price"      validate:"required,gt=0"`
	Channel    string          `json:"channel"    validate:"nullable,in=web|app"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(overrideInput{
		UserID:     "user1",
		ProductSKU: "A-1_b",
		Price:      decimal.RequireFromString("79.99"),
	})
	assert.False(t, validate.HasErrors(errs), "unexpected errors: %v", errs)
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(&overrideInput{UserID: "   "})

	assert.Contains(t, errs, "userId")
	assert.Contains(t, errs, "productSku")
	assert.Contains(t, errs, "price")
	assert.NotContains(t, errs, "channel")
}

func TestDecimalBounds(t *testing.T) {
	cases := map[string]bool{
		"0.01": true,
		"0":    false,
		"-5":   false,
	}
	for price, ok := range cases {
		errs := validate.Struct(overrideInput{UserID: "u", ProductSKU: "A1", Price: decimal.RequireFromString(price)})
		if ok {
			assert.NotContains(t, errs, "price", price)
		} else {
			assert.Equal(t, "The price must be greater than 0.", errs["price"], price)
		}
	}
}

func TestStringRules(t *testing.T) {
	errs := validate.Struct(overrideInput{UserID: "u", ProductSKU: "A 1", Price: decimal.NewFromInt(1), Channel: "fax"})

	assert.Contains(t, errs["productSku"], "letters, numbers, dashes")
	assert.Equal(t, "The selected channel is invalid.", errs["channel"])
}

func TestMaxLength(t *testing.T) {
	type in struct {
		Name string `json:"name" validate:"max=3"`
	}
	assert.Contains(t, validate.Struct(in{Name: "abcd"}), "name")
	assert.Empty(t, validate.Struct(in{Name: "abc"}))
}
