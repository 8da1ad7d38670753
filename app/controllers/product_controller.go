package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/pricebook/app/services"
	"github.com/shashiranjanraj/pricebook/pkg/response"
)

type ProductController struct {
	pricing *services.PricingService
}

func NewProductController(pricing *services.PricingService) *ProductController {
	return &ProductController{pricing: pricing}
}

// Index lists the catalog. With ?userId= prices are resolved for that user
// and each item carries hasSpecialPrice.
func (c *ProductController) Index(w http.ResponseWriter, r *http.Request) {
	products, err := c.pricing.EffectivePrices(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, products)
}
