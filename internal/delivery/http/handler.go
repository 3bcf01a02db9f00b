package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/rohanjain3/AGRISMART-12/internal/entity"
	"github.com/rohanjain3/AGRISMART-12/internal/service"
)

// Handler handles HTTP requests for the application.
type Handler struct {
	catalog  *service.CatalogService
	cart     *service.CartService
	orders   *service.OrderService
	delivery *service.DeliveryService
	chat     *service.ChatService
}

func NewHandler(
	catalog *service.CatalogService,
	cart *service.CartService,
	orders *service.OrderService,
	delivery *service.DeliveryService,
	chat *service.ChatService,
) *Handler {
	return &Handler{
		catalog:  catalog,
		cart:     cart,
		orders:   orders,
		delivery: delivery,
		chat:     chat,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handleHealth)

	mux.HandleFunc("GET /api/products", h.handleGetProducts)
	mux.HandleFunc("GET /api/products/{id}", h.handleGetProduct)
	mux.HandleFunc("PUT /api/products/{id}/quantity", h.handleUpdateProductQuantity)
	mux.HandleFunc("GET /api/categories", h.handleGetCategories)
	mux.HandleFunc("GET /api/farmers", h.handleGetFarmers)
	mux.HandleFunc("GET /api/farmers/{id}", h.handleGetFarmer)
	mux.HandleFunc("GET /api/farmers/{id}/products", h.handleGetFarmerProducts)

	mux.HandleFunc("GET /api/cart", h.handleGetCart)
	mux.HandleFunc("POST /api/cart/items", h.handleAddCartItem)
	mux.HandleFunc("PUT /api/cart/items/{id}", h.handleSetCartQuantity)
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.handleRemoveCartItem)
	mux.HandleFunc("DELETE /api/cart", h.handleClearCart)

	mux.HandleFunc("POST /api/orders", h.handleCreateOrder)
	mux.HandleFunc("GET /api/orders", h.handleGetOrders)
	mux.HandleFunc("DELETE /api/orders", h.handleClearOrders)

	mux.HandleFunc("GET /api/delivery/{pincode}", h.handleCheckDelivery)

	mux.HandleFunc("POST /api/messages", h.handleSendMessage)
	mux.HandleFunc("GET /api/messages", h.handleGetConversation)
	mux.HandleFunc("POST /api/messages/read", h.handleMarkRead)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Catalog ---

func (h *Handler) handleGetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Filter(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, "Failed to get products", err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	product, err := h.catalog.Find(r.Context(), id)
	if err != nil {
		writeError(w, "Failed to get product", err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

type UpdateQuantityRequest struct {
	Quantity *float64 `json:"quantity"`
}

func (h *Handler) handleUpdateProductQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req UpdateQuantityRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Quantity == nil {
		writeError(w, "Failed to update quantity", &entity.ValidationError{Fields: []string{"quantity"}})
		return
	}
	if err := h.catalog.UpdateQuantity(r.Context(), id, *req.Quantity); err != nil {
		writeError(w, "Failed to update quantity", err)
		return
	}
	product, err := h.catalog.Find(r.Context(), id)
	if err != nil {
		writeError(w, "Failed to get product", err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	groups, err := h.catalog.GroupByCategory(r.Context())
	if err != nil {
		writeError(w, "Failed to group products", err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *Handler) handleGetFarmers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.FilterFarmers(r.URL.Query().Get("q")))
}

func (h *Handler) handleGetFarmer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	farmer, err := h.catalog.FindFarmer(id)
	if err != nil {
		writeError(w, "Failed to get farmer", err)
		return
	}
	writeJSON(w, http.StatusOK, farmer)
}

func (h *Handler) handleGetFarmerProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, err := h.catalog.FindFarmer(id); err != nil {
		writeError(w, "Failed to get farmer", err)
		return
	}
	products, err := h.catalog.ProductsByFarmer(r.Context(), id)
	if err != nil {
		writeError(w, "Failed to get farmer products", err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// --- Cart ---

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cart.Snapshot())
}

func (h *Handler) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if !decode(w, r, &req) {
		return
	}
	product, err := h.catalog.Find(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, "Failed to add cart item", err)
		return
	}
	snap, err := h.cart.AddOrIncrement(r.Context(), product, req.Quantity)
	if err != nil {
		writeError(w, "Failed to add cart item", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleSetCartQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req SetQuantityRequest
	if !decode(w, r, &req) {
		return
	}
	snap, err := h.cart.SetQuantity(r.Context(), id, req.Quantity)
	if err != nil {
		writeError(w, "Failed to set cart quantity", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	snap, err := h.cart.Remove(r.Context(), id)
	if err != nil {
		writeError(w, "Failed to remove cart item", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	snap, err := h.cart.Clear(r.Context())
	if err != nil {
		writeError(w, "Failed to clear cart", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// --- Orders ---

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req service.CheckoutRequest
	if !decode(w, r, &req) {
		return
	}
	order, err := h.orders.Checkout(r.Context(), req)
	if err != nil {
		writeError(w, "Failed to place order", err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) handleGetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		writeError(w, "Failed to get orders", err)
		return
	}
	if orders == nil {
		orders = []entity.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) handleClearOrders(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Clear(r.Context()); err != nil {
		writeError(w, "Failed to clear orders", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Delivery ---

func (h *Handler) handleCheckDelivery(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("pincode")
	ok, err := h.delivery.IsDeliverable(code)
	if err != nil {
		writeError(w, "Failed to check delivery", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pincode":     code,
		"deliverable": ok,
	})
}

// --- Messages ---

// messageView adds the display time to a message.
type messageView struct {
	entity.Message
	Time string `json:"time"`
}

func viewMessage(m entity.Message) messageView {
	return messageView{Message: m, Time: m.FormattedTime()}
}

type MarkReadRequest struct {
	ReaderID uuid.UUID `json:"reader_id"`
	PeerID   uuid.UUID `json:"peer_id"`
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req service.SendMessageRequest
	if !decode(w, r, &req) {
		return
	}
	msg, err := h.chat.Send(req)
	if err != nil {
		writeError(w, "Failed to send message", err)
		return
	}
	writeJSON(w, http.StatusCreated, viewMessage(msg))
}

func (h *Handler) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	user, err1 := uuid.Parse(r.URL.Query().Get("user"))
	peer, err2 := uuid.Parse(r.URL.Query().Get("peer"))
	if err := errors.Join(err1, err2); err != nil {
		http.Error(w, "user and peer must be UUIDs", http.StatusBadRequest)
		return
	}
	conversation := h.chat.Conversation(user, peer)
	views := make([]messageView, 0, len(conversation))
	for _, m := range conversation {
		views = append(views, viewMessage(m))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"messages": views,
		"unread":   h.chat.Unread(user),
	})
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	var req MarkReadRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"marked": h.chat.MarkRead(req.ReaderID, req.PeerID)})
}

// --- helpers ---

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "err", err)
	}
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var verr *entity.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, entity.ErrInvalidQuantity),
		errors.Is(err, entity.ErrMalformedPostalCode),
		errors.Is(err, entity.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrBelowMinimum):
		return http.StatusUnprocessableEntity
	case errors.Is(err, entity.ErrProductNotFound),
		errors.Is(err, entity.ErrFarmerNotFound),
		errors.Is(err, entity.ErrLineNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error(msg, "err", err)
		http.Error(w, "internal server error", status)
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// EnableCORS is a middleware that lets browser clients call the API.
func EnableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
