package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "papertrader",
	Short: "An unattended paper-trading engine with composite signals",
	Long: `Papertrader is a continuously-running paper-trading engine written in Go.

It ingests periodic market quotes for one instrument, derives a composite
trade signal from independent scoring engines, converts that signal into a
risk-bounded position decision, simulates execution against a virtual
portfolio, and persists enough state to resume safely after interruption.

It provides tools for:
  - Running unattended trading sessions with durable snapshots
  - Training the learned-signal classifier offline from historical prices
  - Journaling every cycle and fill to CSV or SQLite for replay`,

	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
