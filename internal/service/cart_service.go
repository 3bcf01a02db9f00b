package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rohanjain3/AGRISMART-12/internal/entity"
	"github.com/rohanjain3/AGRISMART-12/internal/repository"
)

const cartStreamType = "cart"

// CartSnapshot is the state of the cart after a change.
type CartSnapshot struct {
	Lines []entity.CartLine `json:"lines"`
	Total float64           `json:"total"`
	Count int               `json:"count"`
}

// CartChange is delivered to observers after every successful mutation.
type CartChange struct {
	Event entity.Event
	Cart  CartSnapshot
}

// CartObserver receives cart changes. It runs on the mutating goroutine, so
// it must not call back into a mutating CartService method.
type CartObserver func(change CartChange)

type subscription struct {
	id int
	fn CartObserver
}

// CartService orchestrates shopping cart logic using Event Sourcing. The
// aggregate is kept in memory and every decided event is appended to the
// store before it is applied.
type CartService struct {
	eventStore repository.EventStore

	mu   sync.Mutex
	cart *entity.CartAggregate

	subMu  sync.Mutex
	subs   []subscription
	nextID int
}

// NewCartService loads cartID from the event store.
func NewCartService(ctx context.Context, eventStore repository.EventStore, cartID string, minQuantity int) (*CartService, error) {
	s := &CartService{eventStore: eventStore}
	cart, err := s.load(ctx, cartID, minQuantity)
	if err != nil {
		return nil, err
	}
	s.cart = cart
	slog.Info("Service: Cart loaded", "cart_id", cartID, "lines", cart.Len(), "version", cart.GetVersion())
	return s, nil
}

func (s *CartService) load(ctx context.Context, cartID string, minQuantity int) (*entity.CartAggregate, error) {
	records, err := s.eventStore.LoadEvents(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart history: %w", err)
	}

	agg := entity.NewCartAggregate(cartID, minQuantity)
	if err := agg.Rehydrate(records); err != nil {
		return nil, fmt.Errorf("failed to rehydrate cart aggregate: %w", err)
	}
	return agg, nil
}

// AddOrIncrement adds quantity of product, merging into an existing line.
func (s *CartService) AddOrIncrement(ctx context.Context, product entity.Product, quantity int) (CartSnapshot, error) {
	slog.Info("Service: Adding item to cart", "product_id", product.ID, "quantity", quantity)
	return s.mutate(ctx, func(cart *entity.CartAggregate) (entity.Event, error) {
		return cart.AddOrIncrement(product, quantity)
	})
}

// SetQuantity replaces the quantity of an existing line.
func (s *CartService) SetQuantity(ctx context.Context, productID uuid.UUID, quantity int) (CartSnapshot, error) {
	slog.Info("Service: Setting cart quantity", "product_id", productID, "quantity", quantity)
	return s.mutate(ctx, func(cart *entity.CartAggregate) (entity.Event, error) {
		return cart.SetQuantity(productID, quantity)
	})
}

// Remove deletes the line for productID. Removing an absent product changes
// nothing and notifies nobody.
func (s *CartService) Remove(ctx context.Context, productID uuid.UUID) (CartSnapshot, error) {
	slog.Info("Service: Removing item from cart", "product_id", productID)
	return s.mutate(ctx, func(cart *entity.CartAggregate) (entity.Event, error) {
		e, ok := cart.Remove(productID)
		if !ok {
			return nil, nil
		}
		return e, nil
	})
}

// Clear drops every line.
func (s *CartService) Clear(ctx context.Context) (CartSnapshot, error) {
	slog.Info("Service: Clearing cart")
	return s.mutate(ctx, func(cart *entity.CartAggregate) (entity.Event, error) {
		return cart.Clear(), nil
	})
}

// mutate decides an event, persists it and applies it. A nil event means
// there is nothing to record.
func (s *CartService) mutate(ctx context.Context, decide func(cart *entity.CartAggregate) (entity.Event, error)) (CartSnapshot, error) {
	s.mu.Lock()
	event, err := s.commitLocked(ctx, decide)
	snap := s.snapshot()
	s.mu.Unlock()

	if err != nil {
		return snap, err
	}
	if event != nil {
		s.notify(CartChange{Event: event, Cart: snap})
	}
	return snap, nil
}

// commitLocked runs decide against the aggregate and appends the result. If
// another writer moved the stream, the cart is reloaded and the decision
// retried once. s.mu must be held.
func (s *CartService) commitLocked(ctx context.Context, decide func(cart *entity.CartAggregate) (entity.Event, error)) (entity.Event, error) {
	for attempt := 0; ; attempt++ {
		event, err := decide(s.cart)
		if err != nil || event == nil {
			return nil, err
		}
		err = s.eventStore.SaveEvents(ctx, s.cart.GetAggregateID(), cartStreamType, s.cart.GetVersion(), []entity.Event{event})
		if err == nil {
			if err := s.cart.ApplyEvent(event); err != nil {
				return nil, err
			}
			return event, nil
		}
		if !errors.Is(err, repository.ErrConcurrency) || attempt > 0 {
			return nil, fmt.Errorf("failed to save %s event: %w", event.EventType(), err)
		}

		slog.Warn("Cart stream moved, reloading", "cart_id", s.cart.GetAggregateID(), "err", err)
		fresh, err := s.load(ctx, s.cart.GetAggregateID(), s.cart.MinQuantity)
		if err != nil {
			return nil, err
		}
		s.cart = fresh
	}
}

// Checkout hands the current cart to place and clears it once place
// succeeds. The cart stays locked from the snapshot to the clear, so a
// concurrent change either lands before the snapshot or after the clear.
// place must not call back into CartService.
func (s *CartService) Checkout(ctx context.Context, place func(cart CartSnapshot) error) (CartSnapshot, error) {
	s.mu.Lock()
	placed := s.snapshot()
	if err := place(placed); err != nil {
		s.mu.Unlock()
		return placed, err
	}

	event, err := s.commitLocked(ctx, func(cart *entity.CartAggregate) (entity.Event, error) {
		return cart.Clear(), nil
	})
	after := s.snapshot()
	s.mu.Unlock()

	if err != nil {
		return placed, fmt.Errorf("failed to clear cart after checkout: %w", err)
	}
	slog.Info("Service: Cart checked out", "cart_id", s.ID(), "lines", len(placed.Lines), "total", placed.Total)
	s.notify(CartChange{Event: event, Cart: after})
	return placed, nil
}

// Subscribe registers fn for every future change. Call the returned function
// to stop receiving changes.
func (s *CartService) Subscribe(fn CartObserver) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *CartService) notify(change CartChange) {
	s.subMu.Lock()
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(change)
	}
}

// Snapshot returns the current lines and total.
func (s *CartService) Snapshot() CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *CartService) snapshot() CartSnapshot {
	return CartSnapshot{
		Lines: s.cart.Lines(),
		Total: s.cart.Total(),
		Count: s.cart.Len(),
	}
}

// Lines returns the cart lines in the order they were first added.
func (s *CartService) Lines() []entity.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Lines()
}

// Total is the sum of price * quantity over all lines.
func (s *CartService) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Total()
}

// Contains reports whether productID has a line in the cart.
func (s *CartService) Contains(productID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.cart.Line(productID)
	return ok
}

// Count returns the number of distinct products in the cart.
func (s *CartService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Len()
}

// ID is the cart's stream ID.
func (s *CartService) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.GetAggregateID()
}

// MinQuantity is the smallest quantity a line may hold.
func (s *CartService) MinQuantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.MinQuantity
}
