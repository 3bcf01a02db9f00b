package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var farmerQuery string

// farmersCmd lists the farmers
var farmersCmd = &cobra.Command{
	Use:   "farmers",
	Short: "List farmers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFarmers(cmd, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(farmersCmd)

	farmersCmd.Flags().StringVarP(&farmerQuery, "query", "q", "", "Filter by farmer name")
}

func runFarmers(cmd *cobra.Command, out io.Writer) error {
	catalog, closeDB, err := loadCatalog(cmd.Context())
	if err != nil {
		return err
	}
	defer closeDB()

	farmers := catalog.FilterFarmers(farmerQuery)
	if jsonOutput {
		return encodeJSON(out, farmers)
	}

	now := time.Now()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tUSERNAME\tRATING\tPRESENCE")
	for _, f := range farmers {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%s\n", f.ID, f.Profile.Name, f.Profile.Username, f.Metrics.Rating, f.Presence.DisplayText(now))
	}
	return w.Flush()
}
