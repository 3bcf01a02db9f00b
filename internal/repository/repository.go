package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/rohanjain3/AGRISMART-12/internal/entity"
)

// ErrConcurrency is returned when a stream moved past the expected version.
var ErrConcurrency = errors.New("concurrency exception")

// ProductRepository handles persistence for the product catalog.
type ProductRepository interface {
	// FindAll returns products in the order they were seeded.
	FindAll(ctx context.Context) ([]entity.Product, error)
	// Seed inserts initial products if none exist. On a populated store it only
	// refreshes the expiry dates of the given products.
	Seed(ctx context.Context, products []entity.Product) error
	UpdateQuantity(ctx context.Context, productID uuid.UUID, quantity float64) error
}

// OrderRepository records completed orders. List returns them in the order
// they were saved.
type OrderRepository interface {
	Save(ctx context.Context, order entity.Order) error
	List(ctx context.Context) ([]entity.Order, error)
	Clear(ctx context.Context) error
}

// EventStore handles appending and loading events for an aggregate stream.
// SaveEvents fails when the stream is not at expectedVersion.
type EventStore interface {
	SaveEvents(ctx context.Context, streamID string, streamType string, expectedVersion int, events []entity.Event) error
	LoadEvents(ctx context.Context, streamID string) ([]entity.EventStoreRecord, error)
}
