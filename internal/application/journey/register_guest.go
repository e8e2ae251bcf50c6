package journey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/stayflow-tech/stayflow/internal/domain/guest"
)

// RegisterGuestInput represents the input for the RegisterGuest use case.
type RegisterGuestInput struct {
	// GuestID is optional; a fresh ID is generated when empty.
	GuestID string
	Name    string
	Phone   string
	Email   string
	IDCard  string
	Avatar  string
}

// Validate validates the RegisterGuestInput.
func (i *RegisterGuestInput) Validate() error {
	v := NewValidationError()

	if i.GuestID != "" {
		v.Add(ValidateGuestID(i.GuestID))
	}
	if i.Name == "" {
		v.AddMessage("name is required")
	} else {
		v.Add(ValidateSafeString(i.Name, "name", MaxNameLength))
	}
	v.Add(ValidatePhone(i.Phone))
	if i.Email != "" {
		v.Add(ValidateSafeString(i.Email, "email", MaxEmailLength))
	}
	v.Add(ValidateSafeString(i.IDCard, "id_card", MaxFieldLength))
	v.Add(ValidateSafeString(i.Avatar, "avatar", MaxFieldLength))

	return v.ToError()
}

// RegisterGuestOutput represents the output of the RegisterGuest use case.
type RegisterGuestOutput struct {
	GuestID string
	Guest   *guest.Guest
}

// RegisterGuestUseCase implements the register guest use case.
type RegisterGuestUseCase struct {
	guestRepo      guest.Repository
	eventPublisher guest.EventPublisher
	logger         *slog.Logger
}

// NewRegisterGuestUseCase creates a new RegisterGuestUseCase.
func NewRegisterGuestUseCase(
	guestRepo guest.Repository,
	eventPublisher guest.EventPublisher,
) *RegisterGuestUseCase {
	return &RegisterGuestUseCase{
		guestRepo:      guestRepo,
		eventPublisher: eventPublisher,
		logger:         slog.Default().With("usecase", "register_guest"),
	}
}

// Execute executes the register guest use case.
func (uc *RegisterGuestUseCase) Execute(ctx context.Context, input RegisterGuestInput) (*RegisterGuestOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	// Phone numbers identify guests across channels; reject duplicates.
	if _, err := uc.guestRepo.FindByPhone(ctx, input.Phone); err == nil {
		return nil, fmt.Errorf("%w: phone %s already registered", guest.ErrGuestAlreadyExists, input.Phone)
	} else if !errors.Is(err, guest.ErrGuestNotFound) {
		return nil, fmt.Errorf("failed to check phone: %w", err)
	}

	guestID := input.GuestID
	if guestID == "" {
		guestID = "gst-" + uuid.NewString()
	}

	g, err := guest.NewGuest(guestID, guest.PersonalInfo{
		Name:   input.Name,
		Phone:  input.Phone,
		Email:  input.Email,
		IDCard: input.IDCard,
		Avatar: input.Avatar,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create guest: %w", err)
	}

	if err := uc.guestRepo.Save(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to save guest: %w", err)
	}

	uc.publishEvents(ctx, g)

	uc.logger.Info("guest registered",
		"guest_id", g.ID(),
		"journey_id", g.JourneyID())

	return &RegisterGuestOutput{GuestID: g.ID(), Guest: g}, nil
}

func (uc *RegisterGuestUseCase) publishEvents(ctx context.Context, g *guest.Guest) {
	publishUncommitted(ctx, uc.eventPublisher, uc.logger, g)
}
