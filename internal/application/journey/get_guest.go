package journey

import (
	"context"
	"fmt"

	"github.com/stayflow-tech/stayflow/internal/domain/guest"
)

// GetGuestInput represents the input for the GetGuest use case. Exactly one
// of GuestID or Phone must be set.
type GetGuestInput struct {
	GuestID string
	Phone   string
}

// Validate validates the GetGuestInput.
func (i *GetGuestInput) Validate() error {
	v := NewValidationError()

	switch {
	case i.GuestID == "" && i.Phone == "":
		v.AddMessage("guest ID or phone is required")
	case i.GuestID != "" && i.Phone != "":
		v.AddMessage("guest ID and phone are mutually exclusive")
	case i.GuestID != "":
		v.Add(ValidateGuestID(i.GuestID))
	default:
		v.Add(ValidatePhone(i.Phone))
	}

	return v.ToError()
}

// GetGuestOutput represents the output of the GetGuest use case.
type GetGuestOutput struct {
	Guest      *guest.Guest
	Summary    guest.Summary
	Invariants []guest.Invariant
}

// GetGuestUseCase retrieves a single guest by ID or phone.
type GetGuestUseCase struct {
	guestRepo guest.Repository
}

// NewGetGuestUseCase creates a new GetGuestUseCase.
func NewGetGuestUseCase(guestRepo guest.Repository) *GetGuestUseCase {
	return &GetGuestUseCase{guestRepo: guestRepo}
}

// Execute retrieves the guest.
func (uc *GetGuestUseCase) Execute(ctx context.Context, input GetGuestInput) (*GetGuestOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	var (
		g   *guest.Guest
		err error
	)
	if input.GuestID != "" {
		g, err = uc.guestRepo.FindByID(ctx, input.GuestID)
	} else {
		g, err = uc.guestRepo.FindByPhone(ctx, input.Phone)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find guest: %w", err)
	}

	return &GetGuestOutput{
		Guest:      g,
		Summary:    g.Summary(),
		Invariants: g.ValidateInvariants(),
	}, nil
}

// ListGuestsInput represents the input for the ListGuests use case.
type ListGuestsInput struct {
	Criteria guest.Criteria
	Page     int
	PageSize int
}

// Validate validates the ListGuestsInput.
func (i *ListGuestsInput) Validate() error {
	v := NewValidationError()

	if i.Page < 1 {
		v.AddMessage("page must be at least 1")
	}
	if i.PageSize < 1 || i.PageSize > 500 {
		v.AddMessage("page size must be between 1 and 500")
	}

	return v.ToError()
}

// ListGuestsOutput represents the output of the ListGuests use case.
type ListGuestsOutput struct {
	Summaries []guest.Summary
	Total     int
	Page      int
	PageSize  int
}

// ListGuestsUseCase retrieves a page of guests matching filter criteria.
type ListGuestsUseCase struct {
	guestRepo guest.Repository
}

// NewListGuestsUseCase creates a new ListGuestsUseCase.
func NewListGuestsUseCase(guestRepo guest.Repository) *ListGuestsUseCase {
	return &ListGuestsUseCase{guestRepo: guestRepo}
}

// Execute retrieves one page of guests.
func (uc *ListGuestsUseCase) Execute(ctx context.Context, input ListGuestsInput) (*ListGuestsOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	page, err := uc.guestRepo.FindWithPagination(ctx, guest.FromCriteria(input.Criteria), input.Page, input.PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}

	summaries := make([]guest.Summary, 0, len(page.Data))
	for _, g := range page.Data {
		summaries = append(summaries, g.Summary())
	}

	return &ListGuestsOutput{
		Summaries: summaries,
		Total:     page.Total,
		Page:      page.Page,
		PageSize:  page.PageSize,
	}, nil
}
