package cli

import (
	"github.com/spf13/cobra"
)

var (
	simulateFrom string
	simulateTo   string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "Send a synthetic commission health alert through the configured channel",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().SimulateAlert(cmd.Context(), simulateFrom, simulateTo)
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateFrom, "from", "healthy", "Previous status")
	simulateCmd.Flags().StringVar(&simulateTo, "to", "low", "Degraded status")
}
