package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tienda/internal/domain/catalog"
	"tienda/internal/inventory"
	"tienda/internal/ratelimiter"
	"tienda/internal/realtime"
	"tienda/internal/store"
	filestore "tienda/internal/store/file"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) *application {
	t.Helper()

	dir := t.TempDir()
	cat, err := filestore.NewCatalogStore(dir)
	require.NoError(t, err)
	carts, err := filestore.NewCartRepository(dir)
	require.NoError(t, err)

	logger := zap.NewNop().Sugar()
	bus := realtime.NewBus()
	coordinator := inventory.NewCoordinator(store.Storage{Catalog: cat, Carts: carts}, bus, logger)
	hub := realtime.NewHub(coordinator, logger)
	bus.Subscribe(hub.HandleEvent)

	return &application{
		config:      config{env: "test", catalogBackend: "file", cartBackend: "file"},
		coordinator: coordinator,
		hub:         hub,
		logger:      logger,
		rateLimiter: ratelimiter.NewFixedWindowLimiter(100, time.Second),
	}
}

func seedTestProduct(t *testing.T, app *application, stock int) *catalog.Product {
	t.Helper()
	p := &catalog.Product{Title: "camiseta", Code: "tee-01", PriceCents: 1000, Stock: stock, Category: "ropa", Status: true}
	require.NoError(t, app.coordinator.CreateProduct(t.Context(), p))
	return p
}

func doRequest(t *testing.T, mux http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

type cartEnvelope struct {
	Status string `json:"status"`
	Cart   struct {
		ID       string `json:"id"`
		Products []struct {
			Product  int64 `json:"product"`
			Quantity int   `json:"quantity"`
		} `json:"products"`
		TotalCents int64 `json:"total_cents"`
	} `json:"cart"`
}

func decodeCart(t *testing.T, rr *httptest.ResponseRecorder) cartEnvelope {
	t.Helper()
	var env cartEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}

func TestCartLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)
	mux := app.mount()
	p := seedTestProduct(t, app, 5)

	// create
	rr := doRequest(t, mux, http.MethodPost, "/v1/carts", nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	env := decodeCart(t, rr)
	assert.Equal(t, "success", env.Status)
	cartID := env.Cart.ID
	require.NotEmpty(t, cartID)

	// add twice, quantities merge
	itemURL := fmt.Sprintf("/v1/carts/%s/items/%d", cartID, p.ID)
	rr = doRequest(t, mux, http.MethodPost, itemURL, map[string]int{"quantity": 2})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = doRequest(t, mux, http.MethodPost, itemURL, nil) // empty body defaults to 1
	require.Equal(t, http.StatusOK, rr.Code)

	env = decodeCart(t, rr)
	require.Len(t, env.Cart.Products, 1)
	assert.Equal(t, 3, env.Cart.Products[0].Quantity)
	assert.Equal(t, int64(3000), env.Cart.TotalCents)

	// set quantity
	rr = doRequest(t, mux, http.MethodPut, itemURL, map[string]int{"quantity": 5})
	require.Equal(t, http.StatusOK, rr.Code)
	env = decodeCart(t, rr)
	assert.Equal(t, 5, env.Cart.Products[0].Quantity)

	// clear
	rr = doRequest(t, mux, http.MethodDelete, "/v1/carts/"+cartID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	env = decodeCart(t, rr)
	assert.Empty(t, env.Cart.Products)
	assert.Zero(t, env.Cart.TotalCents)
}

func TestErrorEnvelopes(t *testing.T) {
	app := newTestApp(t)
	mux := app.mount()
	p := seedTestProduct(t, app, 2)

	rr := doRequest(t, mux, http.MethodPost, "/v1/carts", nil)
	cartID := decodeCart(t, rr).Cart.ID

	type errEnvelope struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	decodeErr := func(rr *httptest.ResponseRecorder) errEnvelope {
		var e errEnvelope
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &e))
		return e
	}

	// unknown product -> 404
	rr = doRequest(t, mux, http.MethodPost, "/v1/carts/"+cartID+"/items/999", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "error", decodeErr(rr).Status)

	// malformed product reference -> 400
	rr = doRequest(t, mux, http.MethodPost, "/v1/carts/"+cartID+"/items/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// beyond stock -> 409, cart unchanged
	itemURL := fmt.Sprintf("/v1/carts/%s/items/%d", cartID, p.ID)
	rr = doRequest(t, mux, http.MethodPost, itemURL, map[string]int{"quantity": 3})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "error", decodeErr(rr).Status)

	rr = doRequest(t, mux, http.MethodGet, "/v1/carts/"+cartID, nil)
	assert.Empty(t, decodeCart(t, rr).Cart.Products)

	// zero quantity on update -> 400
	rr = doRequest(t, mux, http.MethodPut, itemURL, map[string]int{"quantity": 0})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// unknown cart -> 404
	rr = doRequest(t, mux, http.MethodGet, "/v1/carts/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteProductLeavesDanglingLine(t *testing.T) {
	app := newTestApp(t)
	mux := app.mount()
	p := seedTestProduct(t, app, 5)

	rr := doRequest(t, mux, http.MethodPost, "/v1/carts", nil)
	cartID := decodeCart(t, rr).Cart.ID

	itemURL := fmt.Sprintf("/v1/carts/%s/items/%d", cartID, p.ID)
	rr = doRequest(t, mux, http.MethodPost, itemURL, map[string]int{"quantity": 2})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, mux, http.MethodDelete, fmt.Sprintf("/v1/products/%d", p.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, mux, http.MethodGet, "/v1/carts/"+cartID, nil)
	env := decodeCart(t, rr)
	require.Len(t, env.Cart.Products, 1)
	assert.Zero(t, env.Cart.TotalCents)
}

func TestPurgeCart(t *testing.T) {
	app := newTestApp(t)
	mux := app.mount()

	rr := doRequest(t, mux, http.MethodPost, "/v1/carts", nil)
	cartID := decodeCart(t, rr).Cart.ID

	rr = doRequest(t, mux, http.MethodDelete, "/v1/carts/"+cartID+"?purge=true", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, mux, http.MethodGet, "/v1/carts/"+cartID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
