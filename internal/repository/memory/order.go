package memory

import (
	"context"
	"sync"

	"github.com/rohanjain3/AGRISMART-12/internal/entity"
	"github.com/rohanjain3/AGRISMART-12/internal/repository"
)

type orderRepository struct {
	mu     sync.RWMutex
	orders []entity.Order
}

// NewOrderRepository creates an OrderRepository held in memory.
func NewOrderRepository() repository.OrderRepository {
	return &orderRepository{}
}

func (r *orderRepository) Save(ctx context.Context, order entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order.Items = append([]entity.CartLine(nil), order.Items...)
	r.orders = append(r.orders, order)
	return nil
}

func (r *orderRepository) List(ctx context.Context) ([]entity.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entity.Order, len(r.orders))
	copy(out, r.orders)
	return out, nil
}

func (r *orderRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.orders = nil
	return nil
}
