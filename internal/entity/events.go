package entity

import (
	"time"

	"github.com/google/uuid"
)

// --- Cart events ---

// ItemAddedToCart is emitted when a product is added to the cart or its
// existing line is incremented.
type ItemAddedToCart struct {
	CartID     string    `json:"cart_id"`
	ProductID  uuid.UUID `json:"product_id"`
	Name       string    `json:"name"`
	PricePerKg float64   `json:"price_per_kg"`
	ImageName  string    `json:"image_name,omitempty"`
	Quantity   int       `json:"quantity"`
}

func (e ItemAddedToCart) EventType() string { return "ItemAddedToCart" }

// CartQuantitySet is emitted when a line's quantity is replaced.
type CartQuantitySet struct {
	CartID    string    `json:"cart_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

func (e CartQuantitySet) EventType() string { return "CartQuantitySet" }

// ItemRemovedFromCart is emitted when a line is deleted.
type ItemRemovedFromCart struct {
	CartID    string    `json:"cart_id"`
	ProductID uuid.UUID `json:"product_id"`
}

func (e ItemRemovedFromCart) EventType() string { return "ItemRemovedFromCart" }

// CartCleared is emitted when every line is dropped, usually after checkout.
type CartCleared struct {
	CartID string `json:"cart_id"`
}

func (e CartCleared) EventType() string { return "CartCleared" }

// --- Order events ---

// OrderPlaced is emitted once an order has been recorded at checkout.
type OrderPlaced struct {
	OrderID  uuid.UUID  `json:"order_id"`
	Items    []CartLine `json:"items"`
	Total    float64    `json:"total"`
	ZipCode  string     `json:"zip_code"`
	PlacedAt time.Time  `json:"placed_at"`
}

func (e OrderPlaced) EventType() string { return "OrderPlaced" }
