package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohanjain3/AGRISMART-12/internal/messaging"
)

func TestMiddleware(t *testing.T) {
	m := New()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "missing" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	h := m.Middleware(mux)

	for _, id := range []string{"a", "b", "missing"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/"+id, nil))
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues("GET", "GET /api/products/{id}")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ErrorCounter.WithLabelValues("GET", "GET /api/products/{id}", "404")))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues("GET", "unmatched")))
}

func TestCountEvent(t *testing.T) {
	m := New()
	ctx := context.Background()

	require.NoError(t, m.CountEvent(ctx, messaging.Message{Topic: messaging.TopicCartEvents, Type: "ItemAddedToCart", Payload: []byte(`{}`)}))
	require.NoError(t, m.CountEvent(ctx, messaging.Message{Topic: messaging.TopicOrdersPlaced, Type: "OrderPlaced", Payload: []byte(`{"total":1250}`)}))
	require.NoError(t, m.CountEvent(ctx, messaging.Message{Topic: messaging.TopicOrdersPlaced, Type: "OrderPlaced", Payload: []byte(`{"total":250}`)}))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventCounter.WithLabelValues(messaging.TopicCartEvents, "ItemAddedToCart")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EventCounter.WithLabelValues(messaging.TopicOrdersPlaced, "OrderPlaced")))
	assert.Equal(t, 1500.0, testutil.ToFloat64(m.OrderValue))

	err := m.CountEvent(ctx, messaging.Message{Topic: messaging.TopicOrdersPlaced, Type: "OrderPlaced", Payload: []byte(`{`)})
	assert.Error(t, err)
}

func TestHandler(t *testing.T) {
	m := New()
	m.OrderValue.Add(10)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "agrismart_order_value_rupees_total 10")
	assert.Contains(t, string(body), "go_goroutines")
}
