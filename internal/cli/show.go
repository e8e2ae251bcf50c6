package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stayflow-tech/stayflow/internal/application/journey"
)

var showPhone string

// showCmd displays a single guest.
var showCmd = &cobra.Command{
	Use:   "show [guest-id]",
	Short: "Show a guest record",
	Long: `Show displays a guest's journey state, derived tags and invariant
checks. Look up by ID or, with --phone, by phone number.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVarP(&showPhone, "phone", "p", "", "look up by phone number instead of ID")

	guestCmd.AddCommand(showCmd)
}

// InvariantOutput is the JSON shape of a single invariant check.
type InvariantOutput struct {
	Name    string `json:"name"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// ShowOutput is the JSON shape of the show command result.
type ShowOutput struct {
	Guest      GuestSummaryOutput `json:"guest"`
	Invariants []InvariantOutput  `json:"invariants"`
}

func runShow(cmd *cobra.Command, args []string) error {
	app, err := newApp(cfg)
	if err != nil {
		return err
	}

	input := journey.GetGuestInput{Phone: showPhone}
	if len(args) == 1 {
		input.GuestID = args[0]
	}

	out, err := app.get.Execute(cmd.Context(), input)
	if err != nil {
		return fmt.Errorf("failed to show guest: %w", err)
	}

	if outputJSON {
		invariants := make([]InvariantOutput, 0, len(out.Invariants))
		for _, inv := range out.Invariants {
			invariants = append(invariants, InvariantOutput{
				Name:    inv.Name,
				Valid:   inv.Valid,
				Message: inv.Message,
			})
		}
		return writeJSON(ShowOutput{
			Guest:      summaryOutput(out.Summary),
			Invariants: invariants,
		})
	}

	printTitle(fmt.Sprintf("Guest %s", out.Summary.ID))
	printSummaryText(out.Summary)

	broken := 0
	for _, inv := range out.Invariants {
		if !inv.Valid {
			broken++
			printError(fmt.Sprintf("%s: %s", inv.Name, inv.Message))
		}
	}
	if broken == 0 {
		printSubtle("all invariants hold")
	}
	return nil
}
