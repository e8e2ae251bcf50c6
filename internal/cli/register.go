package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stayflow-tech/stayflow/internal/application/journey"
)

var (
	registerID     string
	registerName   string
	registerPhone  string
	registerEmail  string
	registerIDCard string
	registerAvatar string
)

// registerCmd registers a new guest.
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new guest",
	Long: `Register creates a guest record and starts the first journey at the
awareness stage. Phone numbers must be unique across active guests.`,
	RunE: runRegister,
}

func init() {
	registerCmd.Flags().StringVar(&registerID, "id", "", "guest ID (generated when omitted)")
	registerCmd.Flags().StringVarP(&registerName, "name", "n", "", "guest name (required)")
	registerCmd.Flags().StringVarP(&registerPhone, "phone", "p", "", "guest phone number (required)")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "guest email address")
	registerCmd.Flags().StringVar(&registerIDCard, "id-card", "", "identity document number")
	registerCmd.Flags().StringVar(&registerAvatar, "avatar", "", "avatar URL")
	registerCmd.MarkFlagRequired("name")
	registerCmd.MarkFlagRequired("phone")

	guestCmd.AddCommand(registerCmd)
}

// RegisterOutput is the JSON shape of the register command result.
type RegisterOutput struct {
	GuestID string             `json:"guest_id"`
	Guest   GuestSummaryOutput `json:"guest"`
}

func runRegister(cmd *cobra.Command, args []string) error {
	app, err := newApp(cfg)
	if err != nil {
		return err
	}

	out, err := app.register.Execute(cmd.Context(), journey.RegisterGuestInput{
		GuestID: registerID,
		Name:    registerName,
		Phone:   registerPhone,
		Email:   registerEmail,
		IDCard:  registerIDCard,
		Avatar:  registerAvatar,
	})
	if err != nil {
		return fmt.Errorf("failed to register guest: %w", err)
	}

	if outputJSON {
		return writeJSON(RegisterOutput{
			GuestID: out.GuestID,
			Guest:   summaryOutput(out.Guest.Summary()),
		})
	}

	printSuccess(fmt.Sprintf("Registered guest %s", out.GuestID))
	printSummaryText(out.Guest.Summary())
	return nil
}
