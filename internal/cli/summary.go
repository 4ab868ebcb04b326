package cli

import (
	"github.com/spf13/cobra"

	"freight-rate-hub/internal/app"
)

var (
	summaryFrom     string
	summaryTo       string
	summaryProvider string
	summaryJSON     bool

	topLimit int
	topJSON  bool

	statusJSON bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarise recorded commissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to, err := parseWindow(summaryFrom, summaryTo)
		if err != nil {
			return err
		}
		return getApp().Summary(cmd.Context(), app.SummaryOptions{
			From:     from,
			To:       to,
			Provider: summaryProvider,
			JSON:     summaryJSON,
		})
	},
}

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the highest-earning providers and carriers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Top(cmd.Context(), app.TopOptions{Limit: topLimit, JSON: topJSON})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show commission tracking health",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Status(cmd.Context(), statusJSON)
	},
}

func init() {
	summaryCmd.Flags().StringVar(&summaryFrom, "from", "", "Start (RFC3339 or YYYY-MM-DD, inclusive)")
	summaryCmd.Flags().StringVar(&summaryTo, "to", "", "End (RFC3339 or YYYY-MM-DD, inclusive)")
	summaryCmd.Flags().StringVar(&summaryProvider, "provider", "", "Only include this provider")
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "Print the summary as JSON")

	topCmd.Flags().IntVar(&topLimit, "limit", 0, "Number of entries (defaults to config)")
	topCmd.Flags().BoolVar(&topJSON, "json", false, "Print as JSON")

	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print as JSON")
}
