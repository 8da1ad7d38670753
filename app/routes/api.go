package routes

import (
	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/pricebook/app/controllers"
	"github.com/shashiranjanraj/pricebook/app/services"
	"github.com/shashiranjanraj/pricebook/pkg/auth"
	gql "github.com/shashiranjanraj/pricebook/pkg/graphql"
	"github.com/shashiranjanraj/pricebook/pkg/metrics"
	"github.com/shashiranjanraj/pricebook/pkg/middleware"
	"github.com/shashiranjanraj/pricebook/pkg/router"
)

// Deps carries what the route handlers need.
type Deps struct {
	Pricing      *services.PricingService
	Ping         controllers.Pinger
	Schema       graphql.Schema
	OperatorAuth bool
}

// RegisterAPI mounts the /api surface.
func RegisterAPI(r *router.Router, d Deps) {
	products := controllers.NewProductController(d.Pricing)
	specialPrices := controllers.NewSpecialPriceController(d.Pricing)

	var writeGuard []router.Middleware
	if d.OperatorAuth {
		writeGuard = append(writeGuard, middleware.RequireRole(auth.RoleOperator))
	}

	api := r.Group("/api")
	api.Get("/products", "products.index", products.Index)
	api.Get("/special-prices", "special-prices.index", specialPrices.Index)
	api.Post("/special-prices", "special-prices.store", specialPrices.Store, writeGuard...)
	api.Get("/special-prices/validate/{userId}", "special-prices.validate", specialPrices.Validate)
	api.Get("/special-prices/stream", "special-prices.stream", specialPrices.Stream)
}

// RegisterSystem mounts health, metrics and GraphQL.
func RegisterSystem(r *router.Router, d Deps) {
	r.Get("/healthz", "health", controllers.NewHealthController(d.Ping).Show)
	r.Get("/metrics", "metrics", metrics.Handler())
	r.Post("/graphql", "graphql", gql.Handler(d.Schema), middleware.OptionalAuth)
}
