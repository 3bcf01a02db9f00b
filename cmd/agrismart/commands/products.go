package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rohanjain3/AGRISMART-12/internal/config"
	"github.com/rohanjain3/AGRISMART-12/internal/entity"
	"github.com/rohanjain3/AGRISMART-12/internal/service"
)

var (
	// Products flags
	productQuery string
	byCategory   bool
)

// productsCmd lists the catalog
var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List products",
	Long: `List the products in the catalog.

Examples:
  agrismart products                    # Every product
  agrismart products --query tom        # Names containing "tom", any case
  agrismart products --by-category      # Grouped by category`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProducts(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(productsCmd)

	productsCmd.Flags().StringVarP(&productQuery, "query", "q", "", "Filter by product name")
	productsCmd.Flags().BoolVar(&byCategory, "by-category", false, "Group products by category")
}

func loadCatalog(ctx context.Context) (*service.CatalogService, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() error { return nil }
	if db != nil {
		closeDB = db.Close
	}
	catalog, err := newCatalog(ctx, db)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	return catalog, closeDB, nil
}

func runProducts(ctx context.Context, out io.Writer) error {
	catalog, closeDB, err := loadCatalog(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	if byCategory {
		groups, err := catalog.GroupByCategory(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return encodeJSON(out, groups)
		}
		for _, g := range groups {
			fmt.Fprintf(out, "%s (%d)\n", g.Category, len(g.Products))
			printProducts(out, g.Products)
			fmt.Fprintln(out)
		}
		return nil
	}

	products, err := catalog.Filter(ctx, productQuery)
	if err != nil {
		return err
	}
	if jsonOutput {
		return encodeJSON(out, products)
	}
	if len(products) == 0 {
		fmt.Fprintln(out, "No products found")
		return nil
	}
	printProducts(out, products)
	return nil
}

func printProducts(out io.Writer, products []entity.Product) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tLEFT\tSTATUS\tBADGE")
	for _, p := range products {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d%%\t%s\t%s\n",
			p.ID, p.Name, p.Category, p.FormattedPrice(), p.PercentageLeft(), p.Status, p.Status.DisplayColor())
	}
	w.Flush()
}

func encodeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
