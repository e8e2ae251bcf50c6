package journey

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stayflow-tech/stayflow/internal/domain/guest"
)

// UpdatePreferencesInput represents the input for the UpdatePreferences use
// case.
type UpdatePreferencesInput struct {
	GuestID     string
	Preferences *guest.Preferences
	// BehaviorPatterns are appended to the guest's tags; duplicates are
	// ignored.
	BehaviorPatterns []string
}

// Validate validates the UpdatePreferencesInput.
func (i *UpdatePreferencesInput) Validate() error {
	v := NewValidationError()

	v.Add(ValidateGuestID(i.GuestID))
	if i.Preferences == nil && len(i.BehaviorPatterns) == 0 {
		v.AddMessage("nothing to update")
	}
	if i.Preferences != nil {
		pr := i.Preferences.PriceRange
		if pr.Min < 0 || pr.Max < 0 {
			v.AddMessage("price range must be non-negative")
		}
		if pr.Max > 0 && pr.Min > pr.Max {
			v.AddMessage("price range min must not exceed max")
		}
	}
	for _, p := range i.BehaviorPatterns {
		v.Add(ValidateSafeString(p, "behavior pattern", MaxFieldLength))
	}

	return v.ToError()
}

// UpdatePreferencesOutput represents the output of the UpdatePreferences
// use case.
type UpdatePreferencesOutput struct {
	GuestID string
	Guest   *guest.Guest
}

// UpdatePreferencesUseCase implements the update preferences use case.
type UpdatePreferencesUseCase struct {
	guestRepo      guest.Repository
	eventPublisher guest.EventPublisher
	retryCfg       RetryConfig
	logger         *slog.Logger
}

// NewUpdatePreferencesUseCase creates a new UpdatePreferencesUseCase.
func NewUpdatePreferencesUseCase(
	guestRepo guest.Repository,
	eventPublisher guest.EventPublisher,
	retryCfg RetryConfig,
) *UpdatePreferencesUseCase {
	return &UpdatePreferencesUseCase{
		guestRepo:      guestRepo,
		eventPublisher: eventPublisher,
		retryCfg:       retryCfg,
		logger:         slog.Default().With("usecase", "update_preferences"),
	}
}

// Execute executes the update preferences use case.
func (uc *UpdatePreferencesUseCase) Execute(ctx context.Context, input UpdatePreferencesInput) (*UpdatePreferencesOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	return executeWithConflictRetry(ctx, uc.retryCfg, func(ctx context.Context) (*UpdatePreferencesOutput, error) {
		g, err := uc.guestRepo.FindByID(ctx, input.GuestID)
		if err != nil {
			return nil, fmt.Errorf("failed to find guest: %w", err)
		}

		if input.Preferences != nil {
			if err := g.UpdatePreferences(*input.Preferences); err != nil {
				return nil, fmt.Errorf("failed to update preferences: %w", err)
			}
		}
		for _, pattern := range input.BehaviorPatterns {
			if err := g.AddBehaviorPattern(pattern); err != nil {
				return nil, fmt.Errorf("failed to add behavior pattern: %w", err)
			}
		}

		if err := uc.guestRepo.Save(ctx, g); err != nil {
			return nil, fmt.Errorf("failed to save guest: %w", err)
		}

		publishUncommitted(ctx, uc.eventPublisher, uc.logger, g)

		uc.logger.Info("preferences updated",
			"guest_id", g.ID(),
			"patterns_added", len(input.BehaviorPatterns))

		return &UpdatePreferencesOutput{GuestID: g.ID(), Guest: g}, nil
	})
}
