package journey

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stayflow-tech/stayflow/internal/domain/guest"
)

func TestTrackFulfillmentUseCase_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("page view during awareness", func(t *testing.T) {
		repo := newMockGuestRepository()
		publisher := &mockEventPublisher{}
		seedGuest(t, repo, "guest-001", "Zhang San", "13800138000")

		uc := NewTrackFulfillmentUseCase(repo, publisher, fastRetryConfig(3))
		output, err := uc.Execute(ctx, TrackFulfillmentInput{
			GuestID: "guest-001",
			Kind:    guest.EventPageView,
			Source:  guest.EventSource{Kind: guest.SourceWebApp},
			URL:     "/rooms/deluxe",
		})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		if output.Impact != 1 {
			t.Errorf("Impact = %d, want 1", output.Impact)
		}
		if output.Stage != guest.StageAwareness {
			t.Errorf("Stage = %v, want awareness", output.Stage)
		}
		if output.EventID == "" {
			t.Error("EventID is empty")
		}
		if len(publisher.published()) != 1 {
			t.Errorf("published %d events, want 1", len(publisher.published()))
		}
	})

	t.Run("payment updates metrics and loyalty", func(t *testing.T) {
		repo := newMockGuestRepository()
		g := seedGuest(t, repo, "guest-001", "Zhang San", "13800138000")
		for _, stage := range []guest.Stage{guest.StageEvaluation, guest.StageBooking} {
			if err := g.AdvanceToStage(stage); err != nil {
				t.Fatalf("AdvanceToStage(%s) error = %v", stage, err)
			}
		}
		g.MarkEventsCommitted()

		uc := NewTrackFulfillmentUseCase(repo, &mockEventPublisher{}, fastRetryConfig(3))
		output, err := uc.Execute(ctx, TrackFulfillmentInput{
			GuestID: "guest-001",
			Kind:    guest.EventPaymentSucceeded,
			Source:  guest.EventSource{Kind: guest.SourceSystem},
			Amount:  9000,
		})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		if output.Guest.Metrics().LifetimeValue != 9000 {
			t.Errorf("LifetimeValue = %v, want 9000", output.Guest.Metrics().LifetimeValue)
		}
		if output.LoyaltyLevel != guest.LoyaltySilver {
			t.Errorf("LoyaltyLevel = %v, want silver", output.LoyaltyLevel)
		}
	})

	t.Run("complaint severity validation", func(t *testing.T) {
		uc := NewTrackFulfillmentUseCase(newMockGuestRepository(), &mockEventPublisher{}, fastRetryConfig(3))
		_, err := uc.Execute(ctx, TrackFulfillmentInput{
			GuestID:  "guest-001",
			Kind:     guest.EventComplaint,
			Source:   guest.EventSource{Kind: guest.SourceStaff},
			Severity: 11,
		})
		if err == nil || !strings.Contains(err.Error(), "severity") {
			t.Errorf("error = %v, want severity validation", err)
		}
	})

	t.Run("stage mismatch", func(t *testing.T) {
		repo := newMockGuestRepository()
		seedGuest(t, repo, "guest-001", "Zhang San", "13800138000")

		uc := NewTrackFulfillmentUseCase(repo, &mockEventPublisher{}, fastRetryConfig(3))
		_, err := uc.Execute(ctx, TrackFulfillmentInput{
			GuestID: "guest-001",
			Kind:    guest.EventBookingConfirmed,
			Source:  guest.EventSource{Kind: guest.SourceUser},
			Price:   1200,
			Nights:  2,
		})
		if !errors.Is(err, guest.ErrEventStageMismatch) {
			t.Errorf("error = %v, want ErrEventStageMismatch", err)
		}
	})

	t.Run("unknown source kind", func(t *testing.T) {
		uc := NewTrackFulfillmentUseCase(newMockGuestRepository(), &mockEventPublisher{}, fastRetryConfig(3))
		_, err := uc.Execute(ctx, TrackFulfillmentInput{
			GuestID: "guest-001",
			Kind:    guest.EventPageView,
			Source:  guest.EventSource{Kind: "carrier_pigeon"},
		})
		if err == nil || !strings.Contains(err.Error(), "source") {
			t.Errorf("error = %v, want source validation", err)
		}
	})

	t.Run("guest not found", func(t *testing.T) {
		uc := NewTrackFulfillmentUseCase(newMockGuestRepository(), &mockEventPublisher{}, fastRetryConfig(3))
		_, err := uc.Execute(ctx, TrackFulfillmentInput{
			GuestID: "guest-404",
			Kind:    guest.EventPageView,
			Source:  guest.EventSource{Kind: guest.SourceUser},
		})
		if !errors.Is(err, guest.ErrGuestNotFound) {
			t.Errorf("error = %v, want ErrGuestNotFound", err)
		}
	})
}

func TestUpdatePreferencesUseCase_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("successful update", func(t *testing.T) {
		repo := newMockGuestRepository()
		seedGuest(t, repo, "guest-001", "Zhang San", "13800138000")

		uc := NewUpdatePreferencesUseCase(repo, &mockEventPublisher{}, fastRetryConfig(3))
		output, err := uc.Execute(ctx, UpdatePreferencesInput{
			GuestID: "guest-001",
			Preferences: &guest.Preferences{
				RoomTypes:               []string{"deluxe", "suite"},
				PriceRange:              guest.PriceRange{Min: 500, Max: 2000},
				CommunicationPreference: "wechat",
			},
			BehaviorPatterns: []string{"early_check_in"},
		})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		prefs := output.Guest.Preferences()
		if len(prefs.RoomTypes) != 2 || prefs.PriceRange.Max != 2000 {
			t.Errorf("Preferences = %+v", prefs)
		}
		patterns := output.Guest.Tags().BehaviorPatterns
		if len(patterns) != 1 || patterns[0] != "early_check_in" {
			t.Errorf("BehaviorPatterns = %v", patterns)
		}
	})

	t.Run("inverted price range", func(t *testing.T) {
		uc := NewUpdatePreferencesUseCase(newMockGuestRepository(), &mockEventPublisher{}, fastRetryConfig(3))
		_, err := uc.Execute(ctx, UpdatePreferencesInput{
			GuestID:     "guest-001",
			Preferences: &guest.Preferences{PriceRange: guest.PriceRange{Min: 2000, Max: 500}},
		})
		if err == nil || !strings.Contains(err.Error(), "price range") {
			t.Errorf("error = %v, want price range validation", err)
		}
	})

	t.Run("nothing to update", func(t *testing.T) {
		uc := NewUpdatePreferencesUseCase(newMockGuestRepository(), &mockEventPublisher{}, fastRetryConfig(3))
		_, err := uc.Execute(ctx, UpdatePreferencesInput{GuestID: "guest-001"})
		if err == nil || !strings.Contains(err.Error(), "nothing to update") {
			t.Errorf("error = %v, want nothing-to-update validation", err)
		}
	})
}

func TestDeleteGuestUseCase_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("successful delete", func(t *testing.T) {
		repo := newMockGuestRepository()
		publisher := &mockEventPublisher{}
		seedGuest(t, repo, "guest-001", "Zhang San", "13800138000")

		uc := NewDeleteGuestUseCase(repo, publisher, fastRetryConfig(3))
		output, err := uc.Execute(ctx, DeleteGuestInput{GuestID: "guest-001", Actor: "privacy-officer"})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if !output.Deleted {
			t.Error("Deleted = false")
		}

		if _, err := repo.FindByID(ctx, "guest-001"); !errors.Is(err, guest.ErrGuestNotFound) {
			t.Errorf("FindByID after delete error = %v, want ErrGuestNotFound", err)
		}
		if len(publisher.published()) != 1 {
			t.Errorf("published %d events, want 1", len(publisher.published()))
		}
	})

	t.Run("already deleted", func(t *testing.T) {
		repo := newMockGuestRepository()
		publisher := &mockEventPublisher{}
		seedGuest(t, repo, "guest-001", "Zhang San", "13800138000")

		uc := NewDeleteGuestUseCase(repo, publisher, fastRetryConfig(3))
		if _, err := uc.Execute(ctx, DeleteGuestInput{GuestID: "guest-001"}); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if _, err := uc.Execute(ctx, DeleteGuestInput{GuestID: "guest-001"}); !errors.Is(err, guest.ErrGuestNotFound) {
			t.Errorf("second delete error = %v, want ErrGuestNotFound", err)
		}
	})
}

func TestGetGuestUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	repo := newMockGuestRepository()
	seedGuest(t, repo, "guest-001", "Zhang San", "13800138000")
	uc := NewGetGuestUseCase(repo)

	t.Run("by ID", func(t *testing.T) {
		output, err := uc.Execute(ctx, GetGuestInput{GuestID: "guest-001"})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if output.Summary.Name != "Zhang San" {
			t.Errorf("Summary.Name = %q", output.Summary.Name)
		}
		for _, inv := range output.Invariants {
			if !inv.Valid {
				t.Errorf("invariant %s violated: %s", inv.Name, inv.Message)
			}
		}
	})

	t.Run("by phone", func(t *testing.T) {
		output, err := uc.Execute(ctx, GetGuestInput{Phone: "13800138000"})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if output.Guest.ID() != "guest-001" {
			t.Errorf("ID() = %q", output.Guest.ID())
		}
	})

	t.Run("both set", func(t *testing.T) {
		_, err := uc.Execute(ctx, GetGuestInput{GuestID: "guest-001", Phone: "13800138000"})
		if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
			t.Errorf("error = %v, want mutual exclusion", err)
		}
	})

	t.Run("neither set", func(t *testing.T) {
		_, err := uc.Execute(ctx, GetGuestInput{})
		if err == nil {
			t.Error("Execute() expected error")
		}
	})
}

func TestListGuestsUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	repo := newMockGuestRepository()
	seedGuest(t, repo, "guest-001", "Zhang San", "13800138001")
	seedGuest(t, repo, "guest-002", "Li Si", "13800138002")
	seedGuest(t, repo, "guest-003", "Wang Wu", "13800138003")

	uc := NewListGuestsUseCase(repo)

	t.Run("first page", func(t *testing.T) {
		output, err := uc.Execute(ctx, ListGuestsInput{Page: 1, PageSize: 2})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if output.Total != 3 || len(output.Summaries) != 2 {
			t.Errorf("total=%d len=%d, want 3/2", output.Total, len(output.Summaries))
		}
	})

	t.Run("stage filter", func(t *testing.T) {
		output, err := uc.Execute(ctx, ListGuestsInput{
			Criteria: guest.Criteria{Stage: guest.StageAwareness},
			Page:     1,
			PageSize: 10,
		})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if output.Total != 3 {
			t.Errorf("Total = %d, want 3", output.Total)
		}
	})

	t.Run("invalid page", func(t *testing.T) {
		if _, err := uc.Execute(ctx, ListGuestsInput{Page: 0, PageSize: 10}); err == nil {
			t.Error("Execute() expected error for page 0")
		}
	})
}
