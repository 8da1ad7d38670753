package controllers_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/pricebook/app/models"
	"github.com/shashiranjanraj/pricebook/app/repositories"
	"github.com/shashiranjanraj/pricebook/app/routes"
	"github.com/shashiranjanraj/pricebook/app/schema"
	"github.com/shashiranjanraj/pricebook/app/services"
	"github.com/shashiranjanraj/pricebook/config"
	"github.com/shashiranjanraj/pricebook/pkg/auth"
	"github.com/shashiranjanraj/pricebook/pkg/router"
)

type app struct {
	handler http.Handler
	prices  *repositories.MemorySpecialPriceRepository
}

func newApp(t *testing.T, operatorAuth bool, ping func(context.Context) error) *app {
	t.Helper()
	products := repositories.NewMemoryProductRepository(
		models.Product{SKU: "A1", Name: "Yerba", Description: "1kg", Price: decimal.NewFromInt(100)},
		models.Product{SKU: "B2", Name: "Mate", Price: decimal.RequireFromString("49.90")},
	)
	prices := repositories.NewMemorySpecialPriceRepository()
	pricing := services.NewPricingService(products, prices)

	s, err := schema.New(pricing, operatorAuth)
	require.NoError(t, err)

	r := router.New()
	deps := routes.Deps{Pricing: pricing, Ping: ping, Schema: s, OperatorAuth: operatorAuth}
	routes.RegisterAPI(r, deps)
	routes.RegisterSystem(r, deps)
	return &app{handler: r.Handler(), prices: prices}
}

func (a *app) do(t *testing.T, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestCreateSpecialPriceThenListProducts(t *testing.T) {
	a := newApp(t, false, nil)

	rec := a.do(t, http.MethodPost, "/api/special-prices", `{"userId":"u1","productSku":"A1","price":80}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "u1", created["userId"])
	assert.Equal(t, "A1", created["productSku"])
	assert.Equal(t, 80.0, created["price"])
	assert.NotEmpty(t, created["_id"])

	rec = a.do(t, http.MethodGet, "/api/products?userId=u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeList(t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, "A1", list[0]["sku"])
	assert.Equal(t, 80.0, list[0]["price"])
	assert.Equal(t, true, list[0]["hasSpecialPrice"])
	assert.Equal(t, 49.9, list[1]["price"])
	assert.Equal(t, false, list[1]["hasSpecialPrice"])

	rec = a.do(t, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list = decodeList(t, rec)
	assert.Equal(t, 100.0, list[0]["price"])
	_, present := list[0]["hasSpecialPrice"]
	assert.False(t, present, "anonymous listing must not carry the flag")
	for _, key := range []string{"_id", "name", "description", "price", "sku"} {
		assert.Contains(t, list[0], key)
	}
}

func TestCreateSpecialPriceRejections(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"above list price", `{"userId":"u1","productSku":"A1","price":120}`, http.StatusBadRequest},
		{"equal to list price", `{"userId":"u1","productSku":"A1","price":100}`, http.StatusBadRequest},
		{"negative price", `{"userId":"u1","productSku":"A1","price":-1}`, http.StatusBadRequest},
		{"more decimals than stored", `{"userId":"u1","productSku":"A1","price":99.999}`, http.StatusBadRequest},
		{"below a cent", `{"userId":"u1","productSku":"A1","price":0.001}`, http.StatusBadRequest},
		{"unknown sku", `{"userId":"u1","productSku":"UNKNOWN","price":10}`, http.StatusNotFound},
		{"unknown sku with negative price", `{"userId":"u1","productSku":"UNKNOWN","price":-5}`, http.StatusNotFound},
		{"missing user", `{"productSku":"A1","price":10}`, http.StatusBadRequest},
		{"malformed json", `{"userId":`, http.StatusBadRequest},
		{"price as text", `{"userId":"u1","productSku":"A1","price":"abc"}`, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := newApp(t, false, nil)
			rec := a.do(t, http.MethodPost, "/api/special-prices", tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["message"])
			assert.Equal(t, 0, a.prices.Count(), "nothing stored")
		})
	}
}

func TestUpsertReplacesPrevious(t *testing.T) {
	a := newApp(t, false, nil)

	require.Equal(t, http.StatusCreated, a.do(t, http.MethodPost, "/api/special-prices", `{"userId":"u1","productSku":"A1","price":80}`).Code)
	require.Equal(t, http.StatusCreated, a.do(t, http.MethodPost, "/api/special-prices", `{"userId":"u1","productSku":"A1","price":70}`).Code)

	rec := a.do(t, http.MethodGet, "/api/special-prices?userId=u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeList(t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, 70.0, list[0]["price"])
}

func TestListSpecialPricesRequiresUser(t *testing.T) {
	a := newApp(t, false, nil)

	rec := a.do(t, http.MethodGet, "/api/special-prices", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"userId is required"}`, rec.Body.String())

	rec = a.do(t, http.MethodGet, "/api/special-prices?userId=nobody", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestValidateEndpoint(t *testing.T) {
	a := newApp(t, false, nil)

	rec := a.do(t, http.MethodGet, "/api/special-prices/validate/u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"hasSpecialPrices":false}`, rec.Body.String())

	a.do(t, http.MethodPost, "/api/special-prices", `{"userId":"u1","productSku":"B2","price":40}`)

	rec = a.do(t, http.MethodGet, "/api/special-prices/validate/u1", "")
	assert.JSONEq(t, `{"hasSpecialPrices":true}`, rec.Body.String())
}

func TestOperatorAuthGuardsWrites(t *testing.T) {
	config.Set("JWT_SECRET", "controller-test")
	a := newApp(t, true, nil)
	body := `{"userId":"u1","productSku":"A1","price":80}`

	rec := a.do(t, http.MethodPost, "/api/special-prices", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := auth.GenerateToken("ops", auth.RoleOperator, time.Hour)
	require.NoError(t, err)
	rec = a.do(t, http.MethodPost, "/api/special-prices", body, "Authorization", "Bearer "+tok)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/products?userId=u1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthz(t *testing.T) {
	up := newApp(t, false, func(context.Context) error { return nil })
	rec := up.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	down := newApp(t, false, func(context.Context) error { return errors.New("dial tcp: refused") })
	rec = down.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type brokenProducts struct{ repositories.ProductStore }

func (brokenProducts) ListProducts(context.Context) ([]models.Product, error) {
	return nil, errors.New("connection reset by peer")
}

func TestStoreFailureIs500WithoutDriverText(t *testing.T) {
	pricing := services.NewPricingService(brokenProducts{}, repositories.NewMemorySpecialPriceRepository())
	s, err := schema.New(pricing, false)
	require.NoError(t, err)
	r := router.New()
	routes.RegisterAPI(r, routes.Deps{Pricing: pricing, Schema: s})

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestStreamPushesOnlyTheUsersOverrides(t *testing.T) {
	a := newApp(t, false, nil)
	srv := httptest.NewServer(a.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/special-prices/stream?userId=u1", nil)
	require.NoError(t, err)
	res, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	for _, body := range []string{
		`{"userId":"u2","productSku":"A1","price":70}`,
		`{"userId":"u1","productSku":"A1","price":80}`,
	} {
		post, err := srv.Client().Post(srv.URL+"/api/special-prices", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		post.Body.Close()
		require.Equal(t, http.StatusCreated, post.StatusCode)
	}

	sc := bufio.NewScanner(res.Body)
	require.True(t, sc.Scan())
	assert.Equal(t, "event: special_price", sc.Text())
	require.True(t, sc.Scan())
	assert.Contains(t, sc.Text(), `"userId":"u1"`)
	assert.Contains(t, sc.Text(), `"price":80`)
}

func TestStreamRequiresUser(t *testing.T) {
	rec := newApp(t, false, nil).do(t, http.MethodGet, "/api/special-prices/stream", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
