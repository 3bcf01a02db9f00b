package entity

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduct(name string, price float64) Product {
	return Product{
		ID:         uuid.New(),
		Name:       name,
		Category:   CategoryVegetables,
		PricePerKg: price,
		ImageNames: []string{name + ".png"},
	}
}

func apply(t *testing.T, a *CartAggregate, e Event, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NoError(t, a.ApplyEvent(e))
}

func TestCartAggregate_AddOrIncrement(t *testing.T) {
	tomatoes := newProduct("Tomatoes", 50)

	t.Run("repeated adds keep a single line", func(t *testing.T) {
		cart := NewCartAggregate("cart-1", 20)
		for _, q := range []int{20, 5, 7, 1} {
			e, err := cart.AddOrIncrement(tomatoes, q)
			apply(t, cart, e, err)
		}

		lines := cart.Lines()
		require.Len(t, lines, 1)
		assert.Equal(t, 33, lines[0].Quantity)
		assert.Equal(t, "Tomatoes.png", lines[0].ImageName)
		assert.Equal(t, 4, cart.GetVersion())
	})

	t.Run("non-positive quantity is rejected", func(t *testing.T) {
		cart := NewCartAggregate("cart-1", 20)
		for _, q := range []int{0, -3} {
			_, err := cart.AddOrIncrement(tomatoes, q)
			assert.ErrorIs(t, err, ErrInvalidQuantity)
		}
		assert.Equal(t, 0, cart.Len())
	})

	t.Run("new line below minimum is rejected", func(t *testing.T) {
		cart := NewCartAggregate("cart-1", 20)
		_, err := cart.AddOrIncrement(tomatoes, 19)
		assert.ErrorIs(t, err, ErrBelowMinimum)
		assert.Equal(t, 0, cart.Len())
	})

	t.Run("deciding does not mutate", func(t *testing.T) {
		cart := NewCartAggregate("cart-1", 20)
		_, err := cart.AddOrIncrement(tomatoes, 25)
		require.NoError(t, err)
		assert.Equal(t, 0, cart.Len())
		assert.Equal(t, 0, cart.GetVersion())
	})
}

func TestCartAggregate_Total(t *testing.T) {
	cart := NewCartAggregate("cart-1", 20)
	assert.Zero(t, cart.Total())

	p := newProduct("Tomatoes", 50)
	e, err := cart.AddOrIncrement(p, 20)
	apply(t, cart, e, err)
	assert.Equal(t, 1000.0, cart.Total())

	e, err = cart.AddOrIncrement(p, 5)
	apply(t, cart, e, err)
	assert.Equal(t, 1250.0, cart.Total())

	mango := newProduct("Mangoes", 120)
	e, err = cart.AddOrIncrement(mango, 20)
	apply(t, cart, e, err)
	assert.Equal(t, 1250.0+2400.0, cart.Total())

	require.NoError(t, cart.ApplyEvent(cart.Clear()))
	assert.Zero(t, cart.Total())
	assert.Empty(t, cart.Lines())
}

func TestCartAggregate_SetQuantity(t *testing.T) {
	p := newProduct("Wheat", 30)
	cart := NewCartAggregate("cart-1", 20)
	e, err := cart.AddOrIncrement(p, 40)
	apply(t, cart, e, err)

	_, err = cart.SetQuantity(p.ID, 10)
	assert.ErrorIs(t, err, ErrBelowMinimum)
	line, _ := cart.Line(p.ID)
	assert.Equal(t, 40, line.Quantity)

	_, err = cart.SetQuantity(uuid.New(), 30)
	assert.ErrorIs(t, err, ErrLineNotFound)

	set, err := cart.SetQuantity(p.ID, 20)
	apply(t, cart, set, err)
	line, _ = cart.Line(p.ID)
	assert.Equal(t, 20, line.Quantity)
}

func TestCartAggregate_Remove(t *testing.T) {
	a, b, c := newProduct("A", 10), newProduct("B", 20), newProduct("C", 30)
	cart := NewCartAggregate("cart-1", 1)
	for _, p := range []Product{a, b, c} {
		e, err := cart.AddOrIncrement(p, 1)
		apply(t, cart, e, err)
	}

	e, ok := cart.Remove(b.ID)
	require.True(t, ok)
	require.NoError(t, cart.ApplyEvent(e))

	_, ok = cart.Remove(b.ID)
	assert.False(t, ok)

	lines := cart.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, a.ID, lines[0].ProductID)
	assert.Equal(t, c.ID, lines[1].ProductID)
}

func TestCartAggregate_Rehydrate(t *testing.T) {
	p := newProduct("Milk", 60)
	cart := NewCartAggregate("cart-1", 20)
	var records []EventStoreRecord

	record := func(e Event) {
		payload, err := json.Marshal(e)
		require.NoError(t, err)
		records = append(records, EventStoreRecord{
			StreamID:  "cart-1",
			EventType: e.EventType(),
			Payload:   payload,
			Version:   len(records) + 1,
		})
	}

	add, err := cart.AddOrIncrement(p, 20)
	require.NoError(t, err)
	record(add)
	record(CartQuantitySet{CartID: "cart-1", ProductID: p.ID, Quantity: 35})

	replayed := NewCartAggregate("cart-1", 20)
	require.NoError(t, replayed.Rehydrate(records))
	assert.Equal(t, 2, replayed.GetVersion())
	assert.Equal(t, 35.0*60, replayed.Total())

	records = append(records, EventStoreRecord{StreamID: "cart-1", EventType: "Bogus"})
	assert.Error(t, NewCartAggregate("cart-1", 20).Rehydrate(records))
}
