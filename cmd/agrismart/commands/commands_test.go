package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohanjain3/AGRISMART-12/internal/entity"
	"github.com/rohanjain3/AGRISMART-12/internal/service"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")

	t.Cleanup(func() {
		jsonOutput, productQuery, byCategory, farmerQuery = false, "", false, ""
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestProductsCommand(t *testing.T) {
	out, err := run(t, "products", "--query", "MANGO")
	require.NoError(t, err)
	assert.Contains(t, out, "Mangoes")
	assert.Contains(t, out, "₹120 per kg")
	assert.Contains(t, out, "BADGE")
	assert.Regexp(t, `Mangoes.*Available\s+green`, out)
	assert.NotContains(t, out, "Tomatoes")

	out, err = run(t, "products", "--query", "durian")
	require.NoError(t, err)
	assert.Contains(t, out, "No products found")
}

func TestProductsCommand_ByCategoryJSON(t *testing.T) {
	out, err := run(t, "products", "--by-category", "--json")
	require.NoError(t, err)

	var groups []service.CategoryGroup
	require.NoError(t, json.Unmarshal([]byte(out), &groups))
	require.NotEmpty(t, groups)
	assert.Equal(t, entity.CategoryVegetables, groups[0].Category)
}

func TestFarmersCommand(t *testing.T) {
	out, err := run(t, "farmers", "--query", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Alice Grower")
	assert.NotContains(t, out, "John Farmer")
}

func TestDeliverableCommand(t *testing.T) {
	t.Setenv("DELIVERY_PINCODES", "560001,110002")

	out, err := run(t, "deliverable", "560001")
	require.NoError(t, err)
	assert.Contains(t, out, "Delivery available to 560001")

	out, err = run(t, "deliverable", "400002")
	require.NoError(t, err)
	assert.Contains(t, out, "Delivery not available to 400002")

	_, err = run(t, "deliverable", "56001")
	assert.ErrorIs(t, err, entity.ErrMalformedPostalCode)

	out, err = run(t, "deliverable", "--json", "110002")
	require.NoError(t, err)
	assert.JSONEq(t, `{"pincode":"110002","deliverable":true}`, out)
}
