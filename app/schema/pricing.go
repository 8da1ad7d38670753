// Package schema exposes the pricing service over GraphQL.
package schema

import (
	"context"
	"errors"

	"github.com/graphql-go/graphql"
	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/pricebook/app/models"
	"github.com/shashiranjanraj/pricebook/app/services"
	"github.com/shashiranjanraj/pricebook/pkg/auth"
	gql "github.com/shashiranjanraj/pricebook/pkg/graphql"
	"github.com/shashiranjanraj/pricebook/pkg/logger"
)

var errUnauthorized = errors.New("operator token required")

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":              &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"sku":             &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"name":            &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"description":     &graphql.Field{Type: graphql.String},
		"price":           &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"hasSpecialPrice": &graphql.Field{Type: graphql.Boolean},
	},
})

var specialPriceType = graphql.NewObject(graphql.ObjectConfig{
	Name: "SpecialPrice",
	Fields: graphql.Fields{
		"id":         &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"userId":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"productSku": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"price":      &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
	},
})

func productMap(p models.PricedProduct) map[string]interface{} {
	m := map[string]interface{}{
		"id":          p.ID,
		"sku":         p.SKU,
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price.InexactFloat64(),
	}
	if p.HasSpecialPrice != nil {
		m["hasSpecialPrice"] = *p.HasSpecialPrice
	}
	return m
}

func specialPriceMap(sp models.SpecialPrice) map[string]interface{} {
	return map[string]interface{}{
		"id":         sp.ID,
		"userId":     sp.UserID,
		"productSku": sp.ProductSKU,
		"price":      sp.Price.InexactFloat64(),
	}
}

// publicError keeps store details out of GraphQL responses.
func publicError(ctx context.Context, err error) error {
	if errors.Is(err, services.ErrPersistence) {
		logger.WithCtx(ctx).Error("graphql: store failure", "error", err)
		return errors.New("internal error")
	}
	return err
}

func stringArg(p graphql.ResolveParams, name string) string {
	s, _ := p.Args[name].(string)
	return s
}

// New builds the schema. With requireOperator the mutation needs claims with
// the operator role in the request context (see middleware.OptionalAuth).
func New(svc *services.PricingService, requireOperator bool) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(productType))),
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					list, err := svc.EffectivePrices(p.Context, stringArg(p, "userId"))
					if err != nil {
						return nil, publicError(p.Context, err)
					}
					out := make([]map[string]interface{}, 0, len(list))
					for _, pp := range list {
						out = append(out, productMap(pp))
					}
					return out, nil
				},
			},
			"specialPrices": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(specialPriceType))),
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rows, err := svc.ListSpecialPrices(p.Context, stringArg(p, "userId"))
					if err != nil {
						return nil, publicError(p.Context, err)
					}
					out := make([]map[string]interface{}, 0, len(rows))
					for _, sp := range rows {
						out = append(out, specialPriceMap(sp))
					}
					return out, nil
				},
			},
			"hasSpecialPrices": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					ok, err := svc.HasSpecialPrices(p.Context, stringArg(p, "userId"))
					if err != nil {
						return nil, publicError(p.Context, err)
					}
					return ok, nil
				},
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"upsertSpecialPrice": &graphql.Field{
				Type: graphql.NewNonNull(specialPriceType),
				Args: graphql.FieldConfigArgument{
					"userId":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"productSku": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"price":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if requireOperator {
						if err := auth.RequireRole(auth.ClaimsFromContext(p.Context), auth.RoleOperator); err != nil {
							return nil, errUnauthorized
						}
					}
					price, _ := p.Args["price"].(float64)
					sp, err := svc.UpsertSpecialPrice(p.Context, services.UpsertSpecialPriceInput{
						UserID:     stringArg(p, "userId"),
						ProductSKU: stringArg(p, "productSku"),
						Price:      decimal.NewFromFloat(price),
					})
					if err != nil {
						return nil, publicError(p.Context, err)
					}
					return specialPriceMap(sp), nil
				},
			},
		},
	})

	return gql.NewSchema(query, mutation)
}
