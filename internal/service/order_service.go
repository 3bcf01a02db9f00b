package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rohanjain3/AGRISMART-12/internal/entity"
	"github.com/rohanjain3/AGRISMART-12/internal/messaging"
	"github.com/rohanjain3/AGRISMART-12/internal/repository"
)

// CheckoutRequest carries the shipping details entered at checkout.
type CheckoutRequest struct {
	FullName string `json:"full_name"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zip_code"`
}

// Validate reports every blank field.
func (r CheckoutRequest) Validate() error {
	var fields []string
	for _, f := range []struct {
		name, value string
	}{
		{"full_name", r.FullName},
		{"address", r.Address},
		{"city", r.City},
		{"state", r.State},
		{"zip_code", r.ZipCode},
	} {
		if strings.TrimSpace(f.value) == "" {
			fields = append(fields, f.name)
		}
	}
	if len(fields) > 0 {
		return &entity.ValidationError{Fields: fields}
	}
	return nil
}

// OrderService records orders and runs checkout.
type OrderService struct {
	orderRepo repository.OrderRepository
	cart      *CartService
	publisher messaging.Publisher
	now       func() time.Time
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cart *CartService,
	publisher messaging.Publisher,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		cart:      cart,
		publisher: publisher,
		now:       time.Now,
	}
}

// Save appends order to the history. A zero ID or creation time is filled in.
func (s *OrderService) Save(ctx context.Context, order entity.Order) (entity.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = s.now()
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return entity.Order{}, fmt.Errorf("failed to save order: %w", err)
	}
	slog.Info("Service: Order saved", "order_id", order.ID, "total", order.Total)
	return order, nil
}

// List returns every recorded order, oldest first.
func (s *OrderService) List(ctx context.Context) ([]entity.Order, error) {
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// Clear drops the whole order history.
func (s *OrderService) Clear(ctx context.Context) error {
	slog.Info("Service: Clearing order history")
	if err := s.orderRepo.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear orders: %w", err)
	}
	return nil
}

// Checkout turns the current cart into an order, empties the cart and
// announces the order on the orders.placed topic. The cart is held for the
// whole snapshot, save and clear sequence. The order stays recorded even if a
// later step fails.
func (s *OrderService) Checkout(ctx context.Context, req CheckoutRequest) (entity.Order, error) {
	if err := req.Validate(); err != nil {
		return entity.Order{}, err
	}

	var order entity.Order
	_, err := s.cart.Checkout(ctx, func(cart CartSnapshot) error {
		if len(cart.Lines) == 0 {
			return entity.ErrEmptyCart
		}
		slog.Info("Service: Placing order", "items", len(cart.Lines), "total", cart.Total)

		saved, err := s.Save(ctx, entity.Order{
			FullName: strings.TrimSpace(req.FullName),
			Address:  strings.TrimSpace(req.Address),
			City:     strings.TrimSpace(req.City),
			State:    strings.TrimSpace(req.State),
			ZipCode:  strings.TrimSpace(req.ZipCode),
			Total:    cart.Total,
			Items:    cart.Lines,
		})
		order = saved
		return err
	})
	if err != nil {
		if order.ID != uuid.Nil {
			return order, fmt.Errorf("order %s recorded but cart not cleared: %w", order.ID, err)
		}
		return entity.Order{}, err
	}

	placed := entity.OrderPlaced{
		OrderID:  order.ID,
		Items:    order.Items,
		Total:    order.Total,
		ZipCode:  order.ZipCode,
		PlacedAt: order.CreatedAt,
	}
	if err := s.publisher.PublishEvent(ctx, messaging.TopicOrdersPlaced, order.ID.String(), placed); err != nil {
		// The order is already durable; consumers only feed read-side counters.
		slog.Error("Failed to publish OrderPlaced", "order_id", order.ID, "err", err)
	}

	return order, nil
}
