package cli

import (
	"github.com/spf13/cobra"
)

// guestCmd groups guest record management subcommands.
var guestCmd = &cobra.Command{
	Use:   "guest",
	Short: "Manage guest records",
	Long: `Manage guest records: register new guests, inspect or list
existing ones, update preferences, and remove guests.`,
}

func init() {
	rootCmd.AddCommand(guestCmd)
}
