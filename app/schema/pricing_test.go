package schema_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/pricebook/app/models"
	"github.com/shashiranjanraj/pricebook/app/repositories"
	"github.com/shashiranjanraj/pricebook/app/schema"
	"github.com/shashiranjanraj/pricebook/app/services"
	"github.com/shashiranjanraj/pricebook/config"
	"github.com/shashiranjanraj/pricebook/pkg/auth"
	gql "github.com/shashiranjanraj/pricebook/pkg/graphql"
	"github.com/shashiranjanraj/pricebook/pkg/middleware"
)

type gqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func newHandler(t *testing.T, requireOperator bool) http.Handler {
	t.Helper()
	products := repositories.NewMemoryProductRepository(
		models.Product{SKU: "A1", Name: "Yerba", Price: decimal.NewFromInt(100)},
	)
	svc := services.NewPricingService(products, repositories.NewMemorySpecialPriceRepository())
	s, err := schema.New(svc, requireOperator)
	require.NoError(t, err)
	return middleware.OptionalAuth(gql.Handler(s))
}

func post(t *testing.T, h http.Handler, query, token string) gqlResponse {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"query": query})
	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out gqlResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestGraphQL_UpsertThenQuery(t *testing.T) {
	h := newHandler(t, false)

	res := post(t, h, `mutation { upsertSpecialPrice(userId: "u1", productSku: "A1", price: 80) { userId productSku price } }`, "")
	require.Empty(t, res.Errors)
	assert.JSONEq(t, `{"userId":"u1","productSku":"A1","price":80}`, string(res.Data["upsertSpecialPrice"]))

	res = post(t, h, `{ products(userId: "u1") { sku price hasSpecialPrice } }`, "")
	require.Empty(t, res.Errors)
	assert.JSONEq(t, `[{"sku":"A1","price":80,"hasSpecialPrice":true}]`, string(res.Data["products"]))

	res = post(t, h, `{ products { sku price hasSpecialPrice } }`, "")
	require.Empty(t, res.Errors)
	assert.JSONEq(t, `[{"sku":"A1","price":100,"hasSpecialPrice":null}]`, string(res.Data["products"]))

	res = post(t, h, `{ hasSpecialPrices(userId: "u1") specialPrices(userId: "u1") { productSku } }`, "")
	require.Empty(t, res.Errors)
	assert.Equal(t, "true", string(res.Data["hasSpecialPrices"]))
	assert.JSONEq(t, `[{"productSku":"A1"}]`, string(res.Data["specialPrices"]))
}

func TestGraphQL_RejectsPriceAboveList(t *testing.T) {
	h := newHandler(t, false)

	res := post(t, h, `mutation { upsertSpecialPrice(userId: "u1", productSku: "A1", price: 120) { id } }`, "")
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0].Message, "lower than the product price")
}

func TestGraphQL_OperatorAuth(t *testing.T) {
	config.Set("JWT_SECRET", "graphql-test")
	h := newHandler(t, true)
	const m = `mutation { upsertSpecialPrice(userId: "u1", productSku: "A1", price: 80) { id } }`

	res := post(t, h, m, "")
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, "operator token required", res.Errors[0].Message)

	tok, err := auth.GenerateToken("ops", auth.RoleOperator, time.Hour)
	require.NoError(t, err)
	res = post(t, h, m, tok)
	assert.Empty(t, res.Errors)

	res = post(t, h, `{ products { sku } }`, "")
	assert.Empty(t, res.Errors)
}
