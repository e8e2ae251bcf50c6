package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stayflow-tech/stayflow/internal/application/journey"
	"github.com/stayflow-tech/stayflow/internal/domain/guest"
)

var (
	trackSource     string
	trackSourceID   string
	trackURL        string
	trackCampaign   string
	trackRoomType   string
	trackTopic      string
	trackReason     string
	trackRoomNumber string
	trackIssueType  string
	trackChannel    string
	trackPrice      float64
	trackAmount     float64
	trackNights     int
	trackSeverity   int
	trackRating     int
	trackImpact     int
	trackPayload    []string
	trackSessionID  string
	trackDevice     string
	trackLocation   string
)

// trackCmd records a fulfillment event for a guest.
var trackCmd = &cobra.Command{
	Use:   "track <guest-id> <kind>",
	Short: "Track a fulfillment event",
	Long: `Track records a fulfillment event against the guest's current stage.
The event must belong to that stage's catalog; its impact feeds the
stage quality score and the guest's derived tags.

Examples:
  stayflow track gst-1 page_view --url /rooms/deluxe
  stayflow track gst-1 payment_succeeded --amount 1200 --source user
  stayflow track gst-1 complaint --issue-type noise --severity 7`,
	Args: cobra.ExactArgs(2),
	RunE: runTrack,
}

func init() {
	trackCmd.Flags().StringVar(&trackSource, "source", "", "event source kind (defaults to journey.default_source)")
	trackCmd.Flags().StringVar(&trackSourceID, "source-id", "", "source identifier (staff ID, API client, ...)")
	trackCmd.Flags().StringVar(&trackURL, "url", "", "page URL (page_view)")
	trackCmd.Flags().StringVar(&trackCampaign, "campaign", "", "campaign name (campaign_click)")
	trackCmd.Flags().StringVar(&trackRoomType, "room-type", "", "room type (room_viewed, wishlist_added)")
	trackCmd.Flags().StringVar(&trackTopic, "topic", "", "inquiry topic (inquiry)")
	trackCmd.Flags().StringVar(&trackReason, "reason", "", "reason (payment_failed, booking_cancelled)")
	trackCmd.Flags().StringVar(&trackRoomNumber, "room-number", "", "room number (check_in, check_out)")
	trackCmd.Flags().StringVar(&trackIssueType, "issue-type", "", "issue type (complaint, issue_resolved)")
	trackCmd.Flags().StringVar(&trackChannel, "channel", "", "referral channel (referral_made)")
	trackCmd.Flags().Float64Var(&trackPrice, "price", 0, "room or booking price")
	trackCmd.Flags().Float64Var(&trackAmount, "amount", 0, "payment amount")
	trackCmd.Flags().IntVar(&trackNights, "nights", 0, "booked nights (booking_confirmed)")
	trackCmd.Flags().IntVar(&trackSeverity, "severity", 0, "complaint severity 1-10 (complaint)")
	trackCmd.Flags().IntVar(&trackRating, "rating", 0, "review rating 1-5 (review_submitted)")
	trackCmd.Flags().IntVar(&trackImpact, "impact", 0, "impact for catalog kinds without a recipe")
	trackCmd.Flags().StringArrayVar(&trackPayload, "payload", nil, "extra payload entry as key=value (repeatable)")
	trackCmd.Flags().StringVar(&trackSessionID, "session", "", "session ID metadata")
	trackCmd.Flags().StringVar(&trackDevice, "device", "", "device type metadata")
	trackCmd.Flags().StringVar(&trackLocation, "location", "", "location metadata")

	rootCmd.AddCommand(trackCmd)
}

// TrackOutput is the JSON shape of the track command result.
type TrackOutput struct {
	GuestID      string `json:"guest_id"`
	EventID      string `json:"event_id"`
	Kind         string `json:"kind"`
	Impact       int    `json:"impact"`
	Severity     string `json:"severity"`
	Stage        string `json:"stage"`
	LoyaltyLevel string `json:"loyalty_level"`
}

func runTrack(cmd *cobra.Command, args []string) error {
	kind, err := guest.ParseEventKind(args[1])
	if err != nil {
		return err
	}

	source := defaultSource(cfg)
	if trackSource != "" {
		sk, err := guest.ParseSourceKind(trackSource)
		if err != nil {
			return err
		}
		source.Kind = sk
	}
	source.Identifier = trackSourceID

	payload, err := parsePayload(trackPayload)
	if err != nil {
		return err
	}

	app, err := newApp(cfg)
	if err != nil {
		return err
	}

	out, err := app.track.Execute(cmd.Context(), journey.TrackFulfillmentInput{
		GuestID: args[0],
		Kind:    kind,
		Source:  source,
		Metadata: guest.EventMetadata{
			SessionID:  trackSessionID,
			DeviceType: trackDevice,
			Location:   trackLocation,
			Campaign:   trackCampaign,
		},
		URL:           trackURL,
		Campaign:      trackCampaign,
		RoomType:      trackRoomType,
		Topic:         trackTopic,
		Reason:        trackReason,
		RoomNumber:    trackRoomNumber,
		IssueType:     trackIssueType,
		Channel:       trackChannel,
		Price:         trackPrice,
		Amount:        trackAmount,
		Nights:        trackNights,
		Severity:      trackSeverity,
		Rating:        trackRating,
		CustomImpact:  trackImpact,
		CustomPayload: payload,
	})
	if err != nil {
		return fmt.Errorf("failed to track event: %w", err)
	}

	if outputJSON {
		return writeJSON(TrackOutput{
			GuestID:      out.GuestID,
			EventID:      out.EventID,
			Kind:         string(out.Kind),
			Impact:       out.Impact,
			Severity:     string(out.Severity),
			Stage:        string(out.Stage),
			LoyaltyLevel: string(out.LoyaltyLevel),
		})
	}

	printSuccess(fmt.Sprintf("Tracked %s for guest %s (impact %+d)", out.Kind, out.GuestID, out.Impact))
	printSubtle(fmt.Sprintf("  stage %s, loyalty %s", out.Stage, out.LoyaltyLevel))
	return nil
}

// parsePayload converts repeated key=value flags into a payload map.
func parsePayload(entries []string) (map[string]any, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	payload := make(map[string]any, len(entries))
	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid payload entry %q, expected key=value", entry)
		}
		payload[key] = value
	}
	return payload, nil
}
