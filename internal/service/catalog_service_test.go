package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohanjain3/AGRISMART-12/internal/entity"
	"github.com/rohanjain3/AGRISMART-12/internal/seed"
)

func TestCatalogService_List(t *testing.T) {
	svc, catalog := newTestCatalog(t)

	products, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, catalog.Products, products)
	assert.Len(t, svc.Farmers(), 5)
}

func TestCatalogService_Filter(t *testing.T) {
	svc, _ := newTestCatalog(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"case insensitive", "TOMATO", []string{"Tomatoes"}},
		{"substring", "app", []string{"Apples", "Pineapples"}},
		{"no match", "durian", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Filter(ctx, tt.query)
			require.NoError(t, err)
			var names []string
			for _, p := range got {
				names = append(names, p.Name)
			}
			assert.ElementsMatch(t, tt.want, names)
		})
	}

	t.Run("empty query returns all", func(t *testing.T) {
		all, err := svc.List(ctx)
		require.NoError(t, err)
		got, err := svc.Filter(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, all, got)
	})

	t.Run("no match is an empty list", func(t *testing.T) {
		got, err := svc.Filter(ctx, "durian")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestCatalogService_GroupByCategory(t *testing.T) {
	svc, _ := newTestCatalog(t)
	ctx := context.Background()

	groups, err := svc.GroupByCategory(ctx)
	require.NoError(t, err)

	all, err := svc.List(ctx)
	require.NoError(t, err)

	// First-appearance order.
	require.NotEmpty(t, groups)
	assert.Equal(t, all[0].Category, groups[0].Category)

	seen := make(map[entity.Category]bool)
	var total int
	for _, g := range groups {
		assert.False(t, seen[g.Category], "category %s appears twice", g.Category)
		seen[g.Category] = true
		total += len(g.Products)
		for _, p := range g.Products {
			assert.Equal(t, g.Category, p.Category)
		}
	}
	assert.Equal(t, len(all), total)
}

func TestCatalogService_Find(t *testing.T) {
	svc, _ := newTestCatalog(t)
	ctx := context.Background()

	id := seed.ProductID("john123", "Tomatoes")
	p, err := svc.Find(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Tomatoes", p.Name)

	_, err = svc.Find(ctx, uuid.New())
	assert.ErrorIs(t, err, entity.ErrProductNotFound)
}

func TestCatalogService_Farmers(t *testing.T) {
	svc, _ := newTestCatalog(t)
	ctx := context.Background()

	f, err := svc.FindFarmer(seed.FarmerID("alice_grower"))
	require.NoError(t, err)
	assert.Equal(t, "Alice Grower", f.Profile.Name)

	_, err = svc.FindFarmer(uuid.New())
	assert.ErrorIs(t, err, entity.ErrFarmerNotFound)

	found := svc.FilterFarmers("PATEL")
	require.Len(t, found, 1)
	assert.Equal(t, "raj_patel", found[0].Profile.Username)

	products, err := svc.ProductsByFarmer(ctx, f.ID)
	require.NoError(t, err)
	require.NotEmpty(t, products)
	for _, p := range products {
		assert.Equal(t, f.ID, p.FarmerID)
	}

	none, err := svc.ProductsByFarmer(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCatalogService_UpdateQuantity(t *testing.T) {
	svc, _ := newTestCatalog(t)
	ctx := context.Background()
	id := seed.ProductID("john123", "Tomatoes")

	require.NoError(t, svc.UpdateQuantity(ctx, id, 25))
	p, err := svc.Find(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 25, p.PercentageLeft())

	err = svc.UpdateQuantity(ctx, id, -1)
	assert.ErrorIs(t, err, entity.ErrInvalidQuantity)

	err = svc.UpdateQuantity(ctx, uuid.New(), 1)
	assert.ErrorIs(t, err, entity.ErrProductNotFound)
}
