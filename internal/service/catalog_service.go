package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/rohanjain3/AGRISMART-12/internal/entity"
	"github.com/rohanjain3/AGRISMART-12/internal/repository"
)

// CategoryGroup is one section of the grouped catalog.
type CategoryGroup struct {
	Category entity.Category  `json:"category"`
	Products []entity.Product `json:"products"`
}

// CatalogService serves the read-only product and farmer catalog.
type CatalogService struct {
	productRepo repository.ProductRepository
	farmers     []entity.Farmer
}

func NewCatalogService(productRepo repository.ProductRepository, farmers []entity.Farmer) *CatalogService {
	list := make([]entity.Farmer, len(farmers))
	copy(list, farmers)
	return &CatalogService{
		productRepo: productRepo,
		farmers:     list,
	}
}

// List returns every product in catalog order.
func (s *CatalogService) List(ctx context.Context) ([]entity.Product, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Farmers returns every farmer in catalog order.
func (s *CatalogService) Farmers() []entity.Farmer {
	out := make([]entity.Farmer, len(s.farmers))
	copy(out, s.farmers)
	return out
}

// FilterFarmers returns the farmers whose name contains query, ignoring case.
func (s *CatalogService) FilterFarmers(query string) []entity.Farmer {
	if query == "" {
		return s.Farmers()
	}
	out := []entity.Farmer{}
	for _, f := range s.farmers {
		if containsFold(f.Profile.Name, query) {
			out = append(out, f)
		}
	}
	return out
}

// Find returns the product with the given id.
func (s *CatalogService) Find(ctx context.Context, id uuid.UUID) (entity.Product, error) {
	products, err := s.List(ctx)
	if err != nil {
		return entity.Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return entity.Product{}, fmt.Errorf("%w: %s", entity.ErrProductNotFound, id)
}

// FindFarmer returns the farmer with the given id.
func (s *CatalogService) FindFarmer(id uuid.UUID) (entity.Farmer, error) {
	for _, f := range s.farmers {
		if f.ID == id {
			return f, nil
		}
	}
	return entity.Farmer{}, fmt.Errorf("%w: %s", entity.ErrFarmerNotFound, id)
}

// Filter returns the products whose name contains query, ignoring case.
// An empty query returns the whole catalog.
func (s *CatalogService) Filter(ctx context.Context, query string) ([]entity.Product, error) {
	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return products, nil
	}
	out := []entity.Product{}
	for _, p := range products {
		if containsFold(p.Name, query) {
			out = append(out, p)
		}
	}
	return out, nil
}

// GroupByCategory partitions the catalog by category. Groups appear in the
// order their first product appears, and products keep catalog order.
func (s *CatalogService) GroupByCategory(ctx context.Context) ([]CategoryGroup, error) {
	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	groups := []CategoryGroup{}
	index := make(map[entity.Category]int)
	for _, p := range products {
		i, ok := index[p.Category]
		if !ok {
			i = len(groups)
			index[p.Category] = i
			groups = append(groups, CategoryGroup{Category: p.Category})
		}
		groups[i].Products = append(groups[i].Products, p)
	}
	return groups, nil
}

// ProductsByFarmer returns the products listed by farmerID.
func (s *CatalogService) ProductsByFarmer(ctx context.Context, farmerID uuid.UUID) ([]entity.Product, error) {
	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []entity.Product{}
	for _, p := range products {
		if p.FarmerID == farmerID {
			out = append(out, p)
		}
	}
	return out, nil
}

// UpdateQuantity changes the available stock of a product.
func (s *CatalogService) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity float64) error {
	slog.Info("Service: Updating product quantity", "product_id", id, "quantity", quantity)
	if err := s.productRepo.UpdateQuantity(ctx, id, quantity); err != nil {
		return fmt.Errorf("failed to update quantity: %w", err)
	}
	return nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
