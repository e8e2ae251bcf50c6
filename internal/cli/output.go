package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/stayflow-tech/stayflow/internal/domain/guest"
)

// writeJSON renders v as indented JSON on stdout.
func writeJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// GuestSummaryOutput is the JSON shape for a guest summary row.
type GuestSummaryOutput struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	Stage         string    `json:"stage"`
	LoyaltyLevel  string    `json:"loyalty_level"`
	RiskLevel     string    `json:"risk_level"`
	ValueSegment  string    `json:"value_segment"`
	LifetimeValue float64   `json:"lifetime_value"`
	JourneyCount  int       `json:"journey_count"`
	Version       int64     `json:"version"`
	Deleted       bool      `json:"deleted,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func summaryOutput(s guest.Summary) GuestSummaryOutput {
	return GuestSummaryOutput{
		ID:            s.ID,
		Name:          s.Name,
		Phone:         s.Phone,
		Stage:         string(s.Stage),
		LoyaltyLevel:  string(s.LoyaltyLevel),
		RiskLevel:     string(s.RiskLevel),
		ValueSegment:  string(s.ValueSegment),
		LifetimeValue: s.LifetimeValue,
		JourneyCount:  s.JourneyCount,
		Version:       s.Version,
		Deleted:       s.Deleted,
		UpdatedAt:     s.UpdatedAt,
	}
}

// printSummaryText renders a guest summary as aligned key/value lines.
func printSummaryText(s guest.Summary) {
	fmt.Printf("  %s %s\n", styles.Bold.Render("ID:"), s.ID)
	fmt.Printf("  %s %s\n", styles.Bold.Render("Name:"), s.Name)
	fmt.Printf("  %s %s\n", styles.Bold.Render("Phone:"), s.Phone)
	fmt.Printf("  %s %s\n", styles.Bold.Render("Stage:"), string(s.Stage))
	fmt.Printf("  %s %s / %s / %s\n", styles.Bold.Render("Tags:"),
		string(s.LoyaltyLevel), string(s.RiskLevel), string(s.ValueSegment))
	fmt.Printf("  %s %.2f\n", styles.Bold.Render("Lifetime value:"), s.LifetimeValue)
	fmt.Printf("  %s %d\n", styles.Bold.Render("Journeys completed:"), s.JourneyCount)
	if s.Deleted {
		fmt.Printf("  %s\n", styles.Warning.Render("deleted"))
	}
}
