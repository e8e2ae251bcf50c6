package journey

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stayflow-tech/stayflow/internal/domain/guest"
)

// DeleteGuestInput represents the input for the DeleteGuest use case.
type DeleteGuestInput struct {
	GuestID string
	Actor   string
}

// Validate validates the DeleteGuestInput.
func (i *DeleteGuestInput) Validate() error {
	v := NewValidationError()

	v.Add(ValidateGuestID(i.GuestID))
	if i.Actor != "" {
		v.Add(ValidateSafeString(i.Actor, "actor", MaxFieldLength))
	}

	return v.ToError()
}

// DeleteGuestOutput represents the output of the DeleteGuest use case.
type DeleteGuestOutput struct {
	GuestID string
	Deleted bool
}

// DeleteGuestUseCase implements the delete guest use case. Deletion is a
// soft delete through the aggregate so the tombstone carries a version and
// the deletion event reaches subscribers.
type DeleteGuestUseCase struct {
	guestRepo      guest.Repository
	eventPublisher guest.EventPublisher
	retryCfg       RetryConfig
	logger         *slog.Logger
}

// NewDeleteGuestUseCase creates a new DeleteGuestUseCase.
func NewDeleteGuestUseCase(
	guestRepo guest.Repository,
	eventPublisher guest.EventPublisher,
	retryCfg RetryConfig,
) *DeleteGuestUseCase {
	return &DeleteGuestUseCase{
		guestRepo:      guestRepo,
		eventPublisher: eventPublisher,
		retryCfg:       retryCfg,
		logger:         slog.Default().With("usecase", "delete_guest"),
	}
}

// Execute executes the delete guest use case.
func (uc *DeleteGuestUseCase) Execute(ctx context.Context, input DeleteGuestInput) (*DeleteGuestOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	return executeWithConflictRetry(ctx, uc.retryCfg, func(ctx context.Context) (*DeleteGuestOutput, error) {
		g, err := uc.guestRepo.FindByID(ctx, input.GuestID)
		if err != nil {
			return nil, fmt.Errorf("failed to find guest: %w", err)
		}

		if err := g.MarkDeleted(); err != nil {
			return nil, fmt.Errorf("failed to delete guest: %w", err)
		}

		if err := uc.guestRepo.Save(ctx, g); err != nil {
			return nil, fmt.Errorf("failed to save guest: %w", err)
		}

		publishUncommitted(ctx, uc.eventPublisher, uc.logger, g)

		uc.logger.Info("guest deleted",
			"guest_id", g.ID(),
			"actor", input.Actor)

		return &DeleteGuestOutput{GuestID: g.ID(), Deleted: true}, nil
	})
}
