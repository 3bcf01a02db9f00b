package entity

import (
	"fmt"

	"github.com/google/uuid"
)

// CartAggregate holds the lines of a shopping cart. It keeps at most one line
// per product and remembers the order in which products were first added.
//
// The Add/Set/Remove/Clear methods only decide: they check the business rules
// against the current state and return the event to record, leaving the
// aggregate untouched. State changes happen in ApplyEvent.
type CartAggregate struct {
	AggregateBase
	MinQuantity int

	items map[uuid.UUID]*CartLine
	order []uuid.UUID
}

// NewCartAggregate creates an empty cart enforcing minQuantity per line.
func NewCartAggregate(cartID string, minQuantity int) *CartAggregate {
	return &CartAggregate{
		AggregateBase: AggregateBase{ID: cartID, Version: 0},
		MinQuantity:   minQuantity,
		items:         make(map[uuid.UUID]*CartLine),
	}
}

// AddOrIncrement decides an ItemAddedToCart for product.
func (a *CartAggregate) AddOrIncrement(product Product, quantity int) (ItemAddedToCart, error) {
	if quantity <= 0 {
		return ItemAddedToCart{}, fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}
	resulting := quantity
	if line, ok := a.items[product.ID]; ok {
		resulting += line.Quantity
	}
	if resulting < a.MinQuantity {
		return ItemAddedToCart{}, fmt.Errorf("%w: %d < %d", ErrBelowMinimum, resulting, a.MinQuantity)
	}

	var image string
	if len(product.ImageNames) > 0 {
		image = product.ImageNames[0]
	}
	return ItemAddedToCart{
		CartID:     a.ID,
		ProductID:  product.ID,
		Name:       product.Name,
		PricePerKg: product.PricePerKg,
		ImageName:  image,
		Quantity:   quantity,
	}, nil
}

// SetQuantity decides a CartQuantitySet for an existing line.
func (a *CartAggregate) SetQuantity(productID uuid.UUID, quantity int) (CartQuantitySet, error) {
	if _, ok := a.items[productID]; !ok {
		return CartQuantitySet{}, fmt.Errorf("%w: %s", ErrLineNotFound, productID)
	}
	if quantity < a.MinQuantity {
		return CartQuantitySet{}, fmt.Errorf("%w: %d < %d", ErrBelowMinimum, quantity, a.MinQuantity)
	}
	return CartQuantitySet{CartID: a.ID, ProductID: productID, Quantity: quantity}, nil
}

// Remove decides an ItemRemovedFromCart. ok is false when the product is
// not in the cart and there is nothing to record.
func (a *CartAggregate) Remove(productID uuid.UUID) (e ItemRemovedFromCart, ok bool) {
	if _, exists := a.items[productID]; !exists {
		return ItemRemovedFromCart{}, false
	}
	return ItemRemovedFromCart{CartID: a.ID, ProductID: productID}, true
}

// Clear decides a CartCleared.
func (a *CartAggregate) Clear() CartCleared {
	return CartCleared{CartID: a.ID}
}

// ApplyEvent mutates the aggregate state based on the event.
func (a *CartAggregate) ApplyEvent(e Event) error {
	switch e := e.(type) {
	case ItemAddedToCart:
		if line, exists := a.items[e.ProductID]; exists {
			line.Quantity += e.Quantity
		} else {
			a.items[e.ProductID] = &CartLine{
				ProductID:  e.ProductID,
				Name:       e.Name,
				PricePerKg: e.PricePerKg,
				Quantity:   e.Quantity,
				ImageName:  e.ImageName,
			}
			a.order = append(a.order, e.ProductID)
		}
	case CartQuantitySet:
		if line, exists := a.items[e.ProductID]; exists {
			line.Quantity = e.Quantity
		}
	case ItemRemovedFromCart:
		if _, exists := a.items[e.ProductID]; exists {
			delete(a.items, e.ProductID)
			for i, id := range a.order {
				if id == e.ProductID {
					a.order = append(a.order[:i], a.order[i+1:]...)
					break
				}
			}
		}
	case CartCleared:
		a.items = make(map[uuid.UUID]*CartLine)
		a.order = nil
	default:
		return fmt.Errorf("unknown event type for CartAggregate: %s", e.EventType())
	}
	a.Version++
	return nil
}

// Rehydrate rebuilds the aggregate from a list of records.
func (a *CartAggregate) Rehydrate(records []EventStoreRecord) error {
	for _, rec := range records {
		e, err := DecodeEvent(rec)
		if err == nil {
			err = a.ApplyEvent(e)
		}
		if err != nil {
			return fmt.Errorf("failed to apply cart event from stream: %w", err)
		}
	}
	return nil
}

// Lines returns a copy of the cart lines in the order they were added.
func (a *CartAggregate) Lines() []CartLine {
	lines := make([]CartLine, 0, len(a.order))
	for _, id := range a.order {
		lines = append(lines, *a.items[id])
	}
	return lines
}

// Line returns the line for productID.
func (a *CartAggregate) Line(productID uuid.UUID) (CartLine, bool) {
	line, ok := a.items[productID]
	if !ok {
		return CartLine{}, false
	}
	return *line, true
}

// Total is the sum of price * quantity over all lines.
func (a *CartAggregate) Total() float64 {
	var total float64
	for _, id := range a.order {
		total += a.items[id].LineTotal()
	}
	return total
}

// Len returns the number of distinct products in the cart.
func (a *CartAggregate) Len() int {
	return len(a.order)
}
