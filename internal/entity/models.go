package entity

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Category groups products on the explore screen.
type Category string

const (
	CategoryVegetables Category = "Vegetables"
	CategoryFruits     Category = "Fruits"
	CategoryGrains     Category = "Grains"
	CategoryPulses     Category = "Pulses"
	CategoryDairy      Category = "Dairy"
	CategorySpices     Category = "Spices"
	CategoryOrganic    Category = "Organic"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryVegetables,
	CategoryFruits,
	CategoryGrains,
	CategoryPulses,
	CategoryDairy,
	CategorySpices,
	CategoryOrganic,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ProductStatus is the listing state of a product.
type ProductStatus string

const (
	StatusAvailable ProductStatus = "Available"
	StatusSoldOut   ProductStatus = "Sold Out"
	StatusExpired   ProductStatus = "Expired"
)

// DisplayColor is the badge color used for the status.
func (s ProductStatus) DisplayColor() string {
	switch s {
	case StatusAvailable:
		return "green"
	case StatusSoldOut:
		return "gray"
	case StatusExpired:
		return "red"
	}
	return ""
}

// Product represents a crop listed by a farmer.
type Product struct {
	ID                uuid.UUID     `json:"id"`
	Name              string        `json:"name"`
	Category          Category      `json:"category"`
	PricePerKg        float64       `json:"price_per_kg"`
	QuantityAvailable float64       `json:"quantity_available"`
	OriginalQuantity  float64       `json:"original_quantity"`
	Description       string        `json:"description"`
	ImageNames        []string      `json:"image_names"`
	ImageURLs         []string      `json:"image_urls"`
	Status            ProductStatus `json:"status"`
	ExpiryDate        time.Time     `json:"expiry_date"`
	FarmerID          uuid.UUID     `json:"farmer_id"`
	Rating            *float64      `json:"rating,omitempty"`
	ReviewsCount      int           `json:"reviews_count"`
	Reviews           []string      `json:"reviews"`
}

// PercentageLeft returns how much of the original stock is still available,
// truncated to a whole percent in [0,100].
func (p Product) PercentageLeft() int {
	if p.OriginalQuantity <= 0 {
		return 0
	}
	pct := int(p.QuantityAvailable / p.OriginalQuantity * 100)
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

// FormattedPrice renders the unit price for display.
func (p Product) FormattedPrice() string {
	return fmt.Sprintf("₹%d per kg", int(p.PricePerKg))
}

// IsAvailable reports whether the product can currently be bought.
func (p Product) IsAvailable() bool {
	return p.Status == StatusAvailable && p.QuantityAvailable > 0
}

// UpdateQuantity sets the available stock. It is the only mutation allowed
// on a listed product.
func (p *Product) UpdateQuantity(quantity float64) error {
	if quantity < 0 || quantity > p.OriginalQuantity {
		return fmt.Errorf("%w: %v outside [0, %v]", ErrInvalidQuantity, quantity, p.OriginalQuantity)
	}
	p.QuantityAvailable = quantity
	return nil
}

// Validate checks the listing rules for a product.
func (p Product) Validate(now time.Time) error {
	var fields []string
	if strings.TrimSpace(p.Name) == "" {
		fields = append(fields, "name")
	}
	if p.PricePerKg <= 0 {
		fields = append(fields, "price_per_kg")
	}
	if p.QuantityAvailable <= 0 {
		fields = append(fields, "quantity_available")
	}
	if !p.ExpiryDate.After(now) {
		fields = append(fields, "expiry_date")
	}
	if len(strings.TrimSpace(p.Description)) < 10 {
		fields = append(fields, "description")
	}
	if !p.Category.Valid() {
		fields = append(fields, "category")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// UserRole distinguishes buyers from farmers.
type UserRole string

const (
	RoleBuyer  UserRole = "buyer"
	RoleFarmer UserRole = "farmer"
)

// Address is a physical delivery address.
type Address struct {
	FullName      string `json:"full_name" yaml:"full_name"`
	AddressLine1  string `json:"address_line1" yaml:"address_line1"`
	AddressLine2  string `json:"address_line2,omitempty" yaml:"address_line2"`
	City          string `json:"city" yaml:"city"`
	State         string `json:"state" yaml:"state"`
	ZipCode       string `json:"zip_code" yaml:"zip_code"`
	ContactNumber string `json:"contact_number" yaml:"contact_number"`
}

// FormattedAddress joins the address parts on a single line.
func (a Address) FormattedAddress() string {
	parts := []string{a.AddressLine1}
	if a.AddressLine2 != "" {
		parts = append(parts, a.AddressLine2)
	}
	parts = append(parts, a.City+", "+a.State, a.ZipCode)
	return strings.Join(parts, ", ")
}

// IsComplete reports whether every mandatory field is set.
func (a Address) IsComplete() bool {
	return a.FullName != "" &&
		a.AddressLine1 != "" &&
		a.City != "" &&
		a.State != "" &&
		a.ZipCode != "" &&
		a.ContactNumber != ""
}

// Profile holds the public details of a user.
type Profile struct {
	Name            string    `json:"name"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	ContactNumber   string    `json:"contact_number"`
	CountryRegion   string    `json:"country_region"`
	JoinedDate      time.Time `json:"joined_date"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	DefaultAddress  *Address  `json:"default_address,omitempty"`
	SavedAddresses  []Address `json:"saved_addresses"`
}

// HasValidContactNumber reports whether the contact number has at least ten
// digits and nothing else.
func (p Profile) HasValidContactNumber() bool {
	if len(p.ContactNumber) < 10 {
		return false
	}
	for _, r := range p.ContactNumber {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// UserSettings are the per-user toggles from the settings screen.
type UserSettings struct {
	PushNotificationsEnabled  bool `json:"push_notifications_enabled"`
	DarkModeEnabled           bool `json:"dark_mode_enabled"`
	EmailNotificationsEnabled bool `json:"email_notifications_enabled"`
}

// UserMetrics summarises a user's community activity.
type UserMetrics struct {
	PostCount        int     `json:"post_count"`
	CommentCount     int     `json:"comment_count"`
	IsTopContributor bool    `json:"is_top_contributor"`
	Rating           float64 `json:"rating"`
	ReviewCount      int     `json:"review_count"`
}

// Farmer is a user selling on the marketplace. Read-only sample data.
type Farmer struct {
	ID       uuid.UUID    `json:"id"`
	Role     UserRole     `json:"role"`
	Profile  Profile      `json:"profile"`
	Settings UserSettings `json:"settings"`
	Presence Presence     `json:"presence"`
	Metrics  UserMetrics  `json:"metrics"`
}

// CartLine is one product/quantity pairing held in the cart.
type CartLine struct {
	ProductID  uuid.UUID `json:"product_id"`
	Name       string    `json:"name"`
	PricePerKg float64   `json:"price_per_kg"`
	Quantity   int       `json:"quantity"`
	ImageName  string    `json:"image_name,omitempty"`
}

// LineTotal is the price of the line.
func (l CartLine) LineTotal() float64 {
	return l.PricePerKg * float64(l.Quantity)
}

// Order is an immutable record created at checkout.
type Order struct {
	ID        uuid.UUID  `json:"id"`
	FullName  string     `json:"full_name"`
	Address   string     `json:"address"`
	City      string     `json:"city"`
	State     string     `json:"state"`
	ZipCode   string     `json:"zip_code"`
	Total     float64    `json:"total"`
	Items     []CartLine `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
}

// Message is a chat message between two users.
type Message struct {
	ID                uuid.UUID  `json:"id"`
	SenderID          uuid.UUID  `json:"sender_id"`
	ReceiverID        uuid.UUID  `json:"receiver_id"`
	Content           string     `json:"content"`
	Timestamp         time.Time  `json:"timestamp"`
	IsRead            bool       `json:"is_read"`
	AttachedProductID *uuid.UUID `json:"attached_product_id,omitempty"`
}

// FormattedTime renders the message time for the chat bubble.
func (m Message) FormattedTime() string {
	return m.Timestamp.Format(time.Kitchen)
}
