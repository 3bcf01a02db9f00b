package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	jsonOutput bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "agrismart",
	Short: "AgriSmart - farm produce storefront",
	Long: `AgriSmart connects buyers with farmers selling fresh produce.

The serve command runs the JSON API: catalog browsing, a shopping cart with
a minimum order quantity per product, checkout with order history, delivery
pincode checks and buyer/farmer chat. The other commands query the catalog
from the terminal.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}
