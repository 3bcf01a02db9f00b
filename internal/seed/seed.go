// Package seed loads the sample farmers and products the catalog starts with.
package seed

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/rohanjain3/AGRISMART-12/internal/entity"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// namespace scopes the name-derived IDs so they stay stable across restarts.
var namespace = uuid.MustParse("4f1c7a52-3d0e-4a8e-9b3c-8f6d2a1e5c70")

type farmerDoc struct {
	Username        string         `yaml:"username"`
	Name            string         `yaml:"name"`
	Email           string         `yaml:"email"`
	ContactNumber   string         `yaml:"contact_number"`
	CountryRegion   string         `yaml:"country_region"`
	JoinedYearsAgo  int            `yaml:"joined_years_ago"`
	ProfileImage    string         `yaml:"profile_image"`
	Presence        string         `yaml:"presence"`
	LastSeenDaysAgo int            `yaml:"last_seen_days_ago"`
	Address         entity.Address `yaml:"address"`
	Settings        struct {
		Push  bool `yaml:"push_notifications"`
		Dark  bool `yaml:"dark_mode"`
		Email bool `yaml:"email_notifications"`
	} `yaml:"settings"`
	Metrics struct {
		PostCount      int     `yaml:"post_count"`
		CommentCount   int     `yaml:"comment_count"`
		TopContributor bool    `yaml:"top_contributor"`
		Rating         float64 `yaml:"rating"`
		ReviewCount    int     `yaml:"review_count"`
	} `yaml:"metrics"`
}

type productDoc struct {
	Name          string   `yaml:"name"`
	Category      string   `yaml:"category"`
	PricePerKg    float64  `yaml:"price_per_kg"`
	Quantity      float64  `yaml:"quantity"`
	Description   string   `yaml:"description"`
	Images        []string `yaml:"images"`
	ExpiresInDays int      `yaml:"expires_in_days"`
	Farmer        string   `yaml:"farmer"`
	Rating        *float64 `yaml:"rating"`
	ReviewsCount  int      `yaml:"reviews_count"`
	Reviews       []string `yaml:"reviews"`
}

type catalogDoc struct {
	Farmers  []farmerDoc  `yaml:"farmers"`
	Products []productDoc `yaml:"products"`
}

// Catalog is the decoded seed data.
type Catalog struct {
	Farmers  []entity.Farmer
	Products []entity.Product
}

// Default decodes the embedded sample catalog relative to now.
func Default(now time.Time) (*Catalog, error) {
	return Parse(defaultCatalog, now)
}

// Parse decodes a YAML catalog. Relative dates (joined, last seen, expiry)
// are resolved against now, and every product must pass validation.
func Parse(data []byte, now time.Time) (*Catalog, error) {
	var doc catalogDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	cat := &Catalog{}
	byUsername := make(map[string]uuid.UUID, len(doc.Farmers))

	for _, f := range doc.Farmers {
		if _, dup := byUsername[f.Username]; dup {
			return nil, fmt.Errorf("duplicate farmer username %q", f.Username)
		}
		farmer := entity.Farmer{
			ID:   FarmerID(f.Username),
			Role: entity.RoleFarmer,
			Profile: entity.Profile{
				Name:            f.Name,
				Username:        f.Username,
				Email:           f.Email,
				ContactNumber:   f.ContactNumber,
				CountryRegion:   f.CountryRegion,
				JoinedDate:      now.AddDate(-f.JoinedYearsAgo, 0, 0),
				ProfileImageURL: f.ProfileImage,
				SavedAddresses:  []entity.Address{},
			},
			Settings: entity.UserSettings{
				PushNotificationsEnabled:  f.Settings.Push,
				DarkModeEnabled:           f.Settings.Dark,
				EmailNotificationsEnabled: f.Settings.Email,
			},
			Metrics: entity.UserMetrics{
				PostCount:        f.Metrics.PostCount,
				CommentCount:     f.Metrics.CommentCount,
				IsTopContributor: f.Metrics.TopContributor,
				Rating:           f.Metrics.Rating,
				ReviewCount:      f.Metrics.ReviewCount,
			},
		}
		if f.Address.AddressLine1 != "" {
			addr := f.Address
			farmer.Profile.DefaultAddress = &addr
		}

		switch entity.PresenceState(f.Presence) {
		case entity.PresenceOnline:
			farmer.Presence = entity.Online()
		case entity.PresenceLastSeen:
			farmer.Presence = entity.LastSeenAt(now.AddDate(0, 0, -f.LastSeenDaysAgo))
		case entity.PresenceOffline, "":
			farmer.Presence = entity.Offline()
		default:
			return nil, fmt.Errorf("farmer %q: unknown presence %q", f.Username, f.Presence)
		}

		byUsername[f.Username] = farmer.ID
		cat.Farmers = append(cat.Farmers, farmer)
	}

	for _, p := range doc.Products {
		farmerID, ok := byUsername[p.Farmer]
		if !ok {
			return nil, fmt.Errorf("product %q: unknown farmer %q", p.Name, p.Farmer)
		}
		product := entity.Product{
			ID:                ProductID(p.Farmer, p.Name),
			Name:              p.Name,
			Category:          entity.Category(p.Category),
			PricePerKg:        p.PricePerKg,
			QuantityAvailable: p.Quantity,
			OriginalQuantity:  p.Quantity,
			Description:       p.Description,
			ImageNames:        p.Images,
			ImageURLs:         []string{},
			Status:            entity.StatusAvailable,
			ExpiryDate:        now.AddDate(0, 0, p.ExpiresInDays),
			FarmerID:          farmerID,
			Rating:            p.Rating,
			ReviewsCount:      p.ReviewsCount,
			Reviews:           p.Reviews,
		}
		if err := product.Validate(now); err != nil {
			return nil, fmt.Errorf("product %q: %w", p.Name, err)
		}
		cat.Products = append(cat.Products, product)
	}

	return cat, nil
}

// FarmerID derives the stable ID of a seeded farmer.
func FarmerID(username string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte("farmer:"+username))
}

// ProductID derives the stable ID of a seeded product.
func ProductID(farmerUsername, name string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte("product:"+farmerUsername+"/"+name))
}
