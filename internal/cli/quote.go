package cli

import (
	"github.com/spf13/cobra"

	"freight-rate-hub/internal/app"
)

var quoteOpts app.QuoteOptions

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Quote a shipment across all enabled providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Quote(cmd.Context(), quoteOpts)
	},
}

func init() {
	quoteCmd.Flags().StringVar(&quoteOpts.RequestPath, "request", "", "Path to a YAML shipment request")
	quoteCmd.Flags().BoolVar(&quoteOpts.Sandbox, "sandbox", false, "Include synthetic sandbox rates")
	quoteCmd.Flags().BoolVar(&quoteOpts.JSON, "json", false, "Print the result as JSON")
	quoteCmd.Flags().StringVar(&quoteOpts.BookRateID, "book", "", "Record commission for the rate with this id")
	quoteCmd.Flags().StringVar(&quoteOpts.ShipmentID, "shipment-id", "", "Shipment id stored with the booking")
	quoteCmd.Flags().StringVar(&quoteOpts.Email, "email", "", "Customer email stored with the booking")
	_ = quoteCmd.MarkFlagRequired("request")
}
