package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stayflow-tech/stayflow/internal/application/journey"
)

var deleteActor string

// deleteCmd soft-deletes a guest.
var deleteCmd = &cobra.Command{
	Use:   "delete <guest-id>",
	Short: "Delete a guest",
	Long: `Delete soft-deletes a guest. The record is retained for audit but
disappears from lookups and listings.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().StringVar(&deleteActor, "actor", "", "who requested the deletion")

	guestCmd.AddCommand(deleteCmd)
}

// DeleteOutput is the JSON shape of the delete command result.
type DeleteOutput struct {
	GuestID string `json:"guest_id"`
	Deleted bool   `json:"deleted"`
}

func runDelete(cmd *cobra.Command, args []string) error {
	app, err := newApp(cfg)
	if err != nil {
		return err
	}

	out, err := app.deleteGuest.Execute(cmd.Context(), journey.DeleteGuestInput{
		GuestID: args[0],
		Actor:   deleteActor,
	})
	if err != nil {
		return fmt.Errorf("failed to delete guest: %w", err)
	}

	if outputJSON {
		return writeJSON(DeleteOutput{GuestID: out.GuestID, Deleted: out.Deleted})
	}

	printSuccess(fmt.Sprintf("Guest %s deleted", out.GuestID))
	return nil
}
