package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"freight-rate-hub/internal/app"
)

var (
	hscodeLimit int
	hscodeJSON  bool
)

var hscodeCmd = &cobra.Command{
	Use:   "hscode <goods description>",
	Short: "Suggest Harmonized System codes for a goods description",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().HSCode(cmd.Context(), app.HSCodeOptions{
			Description: strings.Join(args, " "),
			Limit:       hscodeLimit,
			JSON:        hscodeJSON,
		})
	},
}

func init() {
	hscodeCmd.Flags().IntVar(&hscodeLimit, "limit", 0, "Maximum suggestions (defaults to config)")
	hscodeCmd.Flags().BoolVar(&hscodeJSON, "json", false, "Print as JSON")
}
