package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rohanjain3/AGRISMART-12/internal/entity"
	"github.com/rohanjain3/AGRISMART-12/internal/messaging"
	"github.com/rohanjain3/AGRISMART-12/internal/repository/memory"
	"github.com/rohanjain3/AGRISMART-12/internal/seed"
)

type published struct {
	topic string
	key   string
	event any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, published{topic: topic, key: key, event: event})
	return nil
}

func (p *recordingPublisher) onTopic(topic string) []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []published
	for _, e := range p.events {
		if e.topic == topic {
			out = append(out, e)
		}
	}
	return out
}

var _ messaging.Publisher = (*recordingPublisher)(nil)

func product(name string, price float64) entity.Product {
	return entity.Product{
		ID:                uuid.New(),
		Name:              name,
		Category:          entity.CategoryVegetables,
		PricePerKg:        price,
		QuantityAvailable: 100,
		OriginalQuantity:  100,
		Description:       "Fresh from the farm.",
		ImageNames:        []string{name + ".png"},
		Status:            entity.StatusAvailable,
		ExpiryDate:        time.Now().Add(72 * time.Hour),
	}
}

func newTestCart(t *testing.T) *CartService {
	t.Helper()
	cart, err := NewCartService(context.Background(), memory.NewEventStore(), "test-cart", 20)
	require.NoError(t, err)
	return cart
}

func newTestCatalog(t *testing.T) (*CatalogService, *seed.Catalog) {
	t.Helper()
	catalog, err := seed.Default(time.Now())
	require.NoError(t, err)

	repo := memory.NewProductRepository()
	require.NoError(t, repo.Seed(context.Background(), catalog.Products))
	return NewCatalogService(repo, catalog.Farmers), catalog
}
