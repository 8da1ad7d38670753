// Package kernel assembles the service: stores for the configured backend,
// the HTTP handler with its global middleware, and the route table.
package kernel

import (
	"fmt"
	"net/http"
	"time"

	"github.com/shashiranjanraj/pricebook/app/routes"
	"github.com/shashiranjanraj/pricebook/app/schema"
	"github.com/shashiranjanraj/pricebook/app/services"
	"github.com/shashiranjanraj/pricebook/config"
	"github.com/shashiranjanraj/pricebook/pkg/metrics"
	"github.com/shashiranjanraj/pricebook/pkg/middleware"
	"github.com/shashiranjanraj/pricebook/pkg/reqid"
	"github.com/shashiranjanraj/pricebook/pkg/router"
)

// NewRouter builds the router with every route mounted on stores.
func NewRouter(stores *Stores) (*router.Router, error) {
	pricing := services.NewPricingService(stores.Products, stores.Prices)

	s, err := schema.New(pricing, config.OperatorAuth())
	if err != nil {
		return nil, fmt.Errorf("kernel: graphql schema: %w", err)
	}

	r := router.New()

	// Global middleware stack (outermost → innermost):
	//  1. Prometheus metrics — outermost for accurate total latency
	//  2. Request ID        — inject unique ID before anything logs
	//  3. Logger            — logs request_id from context
	//  4. Recovery          — panics become 500s and are logged with the request logger
	//  5. CORS
	//  6. Rate limiter      — reject abusers early
	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS(middleware.CORSFromOrigins(config.CORSOrigins())))
	r.Use(middleware.NewRateLimiter(config.RateLimit(), time.Minute).Middleware)

	deps := routes.Deps{
		Pricing:      pricing,
		Ping:         stores.Ping,
		Schema:       s,
		OperatorAuth: config.OperatorAuth(),
	}
	routes.RegisterSystem(r, deps)
	routes.RegisterAPI(r, deps)
	return r, nil
}

// Handler is NewRouter's http.Handler.
func Handler(stores *Stores) (http.Handler, error) {
	r, err := NewRouter(stores)
	if err != nil {
		return nil, err
	}
	return r.Handler(), nil
}
