package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohanjain3/AGRISMART-12/internal/entity"
	"github.com/rohanjain3/AGRISMART-12/internal/repository/memory"
	"github.com/rohanjain3/AGRISMART-12/internal/seed"
	"github.com/rohanjain3/AGRISMART-12/internal/service"
)

type noopPublisher struct{}

func (noopPublisher) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	return nil
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()

	catalog, err := seed.Default(time.Now())
	require.NoError(t, err)
	products := memory.NewProductRepository()
	require.NoError(t, products.Seed(ctx, catalog.Products))

	cart, err := service.NewCartService(ctx, memory.NewEventStore(), "test", 20)
	require.NoError(t, err)
	delivery, err := service.NewDeliveryService(service.DefaultPincodes)
	require.NoError(t, err)

	h := NewHandler(
		service.NewCatalogService(products, catalog.Farmers),
		cart,
		service.NewOrderService(memory.NewOrderRepository(), cart, noopPublisher{}),
		delivery,
		service.NewChatService(),
	)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return EnableCORS(mux)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestProducts(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]entity.Product](t, rec), 29)

	rec = do(t, h, http.MethodGet, "/api/products?q=mango", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	found := decodeBody[[]entity.Product](t, rec)
	require.Len(t, found, 1)
	assert.Equal(t, "Mangoes", found[0].Name)

	rec = do(t, h, http.MethodGet, "/api/products?q=durian", nil)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/products/"+found[0].ID.String(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/products/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/products/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateProductQuantity(t *testing.T) {
	h := newTestServer(t)
	mangoes := seed.ProductID("alice_grower", "Mangoes")
	path := "/api/products/" + mangoes.String() + "/quantity"

	rec := do(t, h, http.MethodPut, path, map[string]float64{"quantity": 25})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeBody[entity.Product](t, rec)
	assert.Equal(t, 25.0, updated.QuantityAvailable)
	assert.Equal(t, 50, updated.PercentageLeft())

	rec = do(t, h, http.MethodGet, "/api/products/"+mangoes.String(), nil)
	assert.Equal(t, 25.0, decodeBody[entity.Product](t, rec).QuantityAvailable)

	tests := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{"above original", path, map[string]float64{"quantity": 51}, http.StatusBadRequest},
		{"negative", path, map[string]float64{"quantity": -1}, http.StatusBadRequest},
		{"missing quantity", path, map[string]any{}, http.StatusBadRequest},
		{"unknown product", "/api/products/" + uuid.NewString() + "/quantity", map[string]float64{"quantity": 1}, http.StatusNotFound},
		{"bad id", "/api/products/x/quantity", map[string]float64{"quantity": 1}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPut, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	rec = do(t, h, http.MethodGet, "/api/products/"+mangoes.String(), nil)
	assert.Equal(t, 25.0, decodeBody[entity.Product](t, rec).QuantityAvailable)
}

func TestCategoriesAndFarmers(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	groups := decodeBody[[]service.CategoryGroup](t, rec)
	require.NotEmpty(t, groups)
	assert.Equal(t, entity.CategoryVegetables, groups[0].Category)

	rec = do(t, h, http.MethodGet, "/api/farmers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]entity.Farmer](t, rec), 5)

	farmerID := seed.FarmerID("john123")
	rec = do(t, h, http.MethodGet, "/api/farmers/"+farmerID.String()+"/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, p := range decodeBody[[]entity.Product](t, rec) {
		assert.Equal(t, farmerID, p.FarmerID)
	}

	rec = do(t, h, http.MethodGet, "/api/farmers/"+uuid.NewString()+"/products", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartAndCheckoutFlow(t *testing.T) {
	h := newTestServer(t)
	tomato := seed.ProductID("john123", "Tomatoes")

	rec := do(t, h, http.MethodPost, "/api/cart/items", AddCartItemRequest{ProductID: tomato, Quantity: 20})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1000.0, decodeBody[service.CartSnapshot](t, rec).Total)

	rec = do(t, h, http.MethodPost, "/api/cart/items", AddCartItemRequest{ProductID: tomato, Quantity: 5})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1250.0, decodeBody[service.CartSnapshot](t, rec).Total)

	rec = do(t, h, http.MethodPut, "/api/cart/items/"+tomato.String(), SetQuantityRequest{Quantity: 10})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/cart/items", AddCartItemRequest{ProductID: tomato, Quantity: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/cart/items/"+uuid.NewString(), SetQuantityRequest{Quantity: 30})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/orders", service.CheckoutRequest{FullName: "Asha"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "zip_code")

	rec = do(t, h, http.MethodPost, "/api/orders", service.CheckoutRequest{
		FullName: "Asha Rao", Address: "12 MG Road", City: "Bengaluru", State: "Karnataka", ZipCode: "560001",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	order := decodeBody[entity.Order](t, rec)
	assert.Equal(t, 1250.0, order.Total)

	rec = do(t, h, http.MethodGet, "/api/cart", nil)
	assert.Equal(t, 0.0, decodeBody[service.CartSnapshot](t, rec).Total)

	rec = do(t, h, http.MethodGet, "/api/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]entity.Order](t, rec), 1)

	rec = do(t, h, http.MethodDelete, "/api/orders", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/orders", nil)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestCheckoutEmptyCart(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/orders", service.CheckoutRequest{
		FullName: "Asha Rao", Address: "12 MG Road", City: "Bengaluru", State: "Karnataka", ZipCode: "560001",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveAndClearCart(t *testing.T) {
	h := newTestServer(t)
	tomato := seed.ProductID("john123", "Tomatoes")

	do(t, h, http.MethodPost, "/api/cart/items", AddCartItemRequest{ProductID: tomato, Quantity: 20})

	rec := do(t, h, http.MethodDelete, "/api/cart/items/"+tomato.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decodeBody[service.CartSnapshot](t, rec).Count)

	do(t, h, http.MethodPost, "/api/cart/items", AddCartItemRequest{ProductID: tomato, Quantity: 20})
	rec = do(t, h, http.MethodDelete, "/api/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[service.CartSnapshot](t, rec).Lines)
}

func TestDelivery(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		code        string
		status      int
		deliverable bool
	}{
		{"560001", http.StatusOK, true},
		{"123456", http.StatusOK, false},
		{"12345", http.StatusBadRequest, false},
		{"abcdef", http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, "/api/delivery/"+tt.code, nil)
			require.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				body := decodeBody[map[string]any](t, rec)
				assert.Equal(t, tt.deliverable, body["deliverable"])
			}
		})
	}
}

func TestMessages(t *testing.T) {
	h := newTestServer(t)
	buyer, farmer := uuid.New(), seed.FarmerID("john123")

	rec := do(t, h, http.MethodPost, "/api/messages", service.SendMessageRequest{SenderID: buyer, ReceiverID: farmer, Content: "Hello"})
	require.Equal(t, http.StatusCreated, rec.Code)
	sent := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "Hello", sent["content"])
	assert.Regexp(t, `^\d{1,2}:\d{2}(AM|PM)$`, sent["time"])

	rec = do(t, h, http.MethodGet, "/api/messages?user="+farmer.String()+"&peer="+buyer.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var conv struct {
		Messages []struct {
			entity.Message
			Time string `json:"time"`
		} `json:"messages"`
		Unread int `json:"unread"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&conv))
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, conv.Messages[0].FormattedTime(), conv.Messages[0].Time)
	assert.Equal(t, 1, conv.Unread)

	rec = do(t, h, http.MethodPost, "/api/messages/read", MarkReadRequest{ReaderID: farmer, PeerID: buyer})
	assert.JSONEq(t, `{"marked":1}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/messages?user=x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/messages", service.SendMessageRequest{SenderID: buyer, ReceiverID: farmer})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSAndHealth(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodOptions, "/api/cart", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(t, h, http.MethodGet, "/health", nil)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestInvalidBody(t *testing.T) {
	h := newTestServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cart/items", bytes.NewBufferString("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
