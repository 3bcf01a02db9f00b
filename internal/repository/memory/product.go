package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/rohanjain3/AGRISMART-12/internal/entity"
	"github.com/rohanjain3/AGRISMART-12/internal/repository"
)

type productRepository struct {
	mu       sync.RWMutex
	products []entity.Product
	index    map[uuid.UUID]int
}

// NewProductRepository creates a ProductRepository held in memory.
func NewProductRepository() repository.ProductRepository {
	return &productRepository{index: make(map[uuid.UUID]int)}
}

func (r *productRepository) FindAll(ctx context.Context) ([]entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entity.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}

// Seed fills an empty repository with products, all or nothing. A populated
// repository only takes the expiry dates of matching products.
func (r *productRepository) Seed(ctx context.Context, products []entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.products) > 0 {
		for _, p := range products {
			if i, ok := r.index[p.ID]; ok {
				r.products[i].ExpiryDate = p.ExpiryDate
			}
		}
		return nil
	}

	index := make(map[uuid.UUID]int, len(products))
	for i, p := range products {
		if _, dup := index[p.ID]; dup {
			return fmt.Errorf("failed to seed product %s: duplicate id", p.ID)
		}
		index[p.ID] = i
	}
	r.products = append([]entity.Product(nil), products...)
	r.index = index
	return nil
}

func (r *productRepository) UpdateQuantity(ctx context.Context, productID uuid.UUID, quantity float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[productID]
	if !ok {
		return fmt.Errorf("%w: %s", entity.ErrProductNotFound, productID)
	}
	return r.products[i].UpdateQuantity(quantity)
}
