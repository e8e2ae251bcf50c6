package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stayflow-tech/stayflow/internal/application/journey"
	"github.com/stayflow-tech/stayflow/internal/domain/guest"
)

var (
	listStage          string
	listLoyalty        string
	listRisk           string
	listSegment        string
	listMinValue       float64
	listIncludeDeleted bool
	listPage           int
	listPageSize       int
)

// listCmd lists guests matching filter criteria.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List guests",
	Long: `List shows guests one page at a time, optionally filtered by
journey stage, loyalty level, risk level or value segment.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listStage, "stage", "", "filter by journey stage")
	listCmd.Flags().StringVar(&listLoyalty, "loyalty", "", "filter by loyalty level (bronze, silver, gold, platinum)")
	listCmd.Flags().StringVar(&listRisk, "risk", "", "filter by risk level (low, medium, high)")
	listCmd.Flags().StringVar(&listSegment, "segment", "", "filter by value segment (budget, mid-range, luxury)")
	listCmd.Flags().Float64Var(&listMinValue, "min-value", 0, "minimum lifetime value")
	listCmd.Flags().BoolVar(&listIncludeDeleted, "include-deleted", false, "include soft-deleted guests")
	listCmd.Flags().IntVar(&listPage, "page", 1, "page number")
	listCmd.Flags().IntVar(&listPageSize, "page-size", 20, "guests per page")

	guestCmd.AddCommand(listCmd)
}

// ListOutput is the JSON shape of the list command result.
type ListOutput struct {
	Guests   []GuestSummaryOutput `json:"guests"`
	Total    int                  `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
}

func runList(cmd *cobra.Command, args []string) error {
	app, err := newApp(cfg)
	if err != nil {
		return err
	}

	criteria := guest.Criteria{
		Stage:            guest.Stage(listStage),
		LoyaltyLevel:     guest.LoyaltyLevel(listLoyalty),
		RiskLevel:        guest.RiskLevel(listRisk),
		ValueSegment:     guest.ValueSegment(listSegment),
		MinLifetimeValue: listMinValue,
		IncludeDeleted:   listIncludeDeleted,
	}

	out, err := app.list.Execute(cmd.Context(), journey.ListGuestsInput{
		Criteria: criteria,
		Page:     listPage,
		PageSize: listPageSize,
	})
	if err != nil {
		return fmt.Errorf("failed to list guests: %w", err)
	}

	if outputJSON {
		guests := make([]GuestSummaryOutput, 0, len(out.Summaries))
		for _, s := range out.Summaries {
			guests = append(guests, summaryOutput(s))
		}
		return writeJSON(ListOutput{
			Guests:   guests,
			Total:    out.Total,
			Page:     out.Page,
			PageSize: out.PageSize,
		})
	}

	if len(out.Summaries) == 0 {
		printInfo("No guests match the given filters")
		return nil
	}

	printTitle(fmt.Sprintf("Guests (page %d, %d total)", out.Page, out.Total))
	for _, s := range out.Summaries {
		line := fmt.Sprintf("  %-20s %-16s %-12s %s", s.ID, s.Name, string(s.Stage), string(s.LoyaltyLevel))
		if s.Deleted {
			line += " " + styles.Warning.Render("(deleted)")
		}
		fmt.Println(line)
	}
	return nil
}
