package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rohanjain3/AGRISMART-12/internal/config"
	"github.com/rohanjain3/AGRISMART-12/internal/service"
)

// deliverableCmd checks a pincode against the delivery allow-list
var deliverableCmd = &cobra.Command{
	Use:   "deliverable <pincode>",
	Short: "Check whether a pincode is served",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		svc, err := service.NewDeliveryService(cfg.Delivery.Pincodes)
		if err != nil {
			return err
		}

		ok, err := svc.IsDeliverable(args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return encodeJSON(cmd.OutOrStdout(), map[string]any{"pincode": args[0], "deliverable": ok})
		}
		if ok {
			fmt.Fprintf(cmd.OutOrStdout(), "Delivery available to %s\n", args[0])
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Delivery not available to %s\n", args[0])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deliverableCmd)
}
