package persistence

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/stayflow-tech/stayflow/internal/domain/guest"
)

// InMemoryGuestRepository implements guest.Repository with in-memory
// storage. Guests are stored as DTO snapshots so callers never share
// mutable aggregate state with the store. Useful for tests and ephemeral
// deployments.
type InMemoryGuestRepository struct {
	mu     sync.RWMutex
	guests map[string]*guestDTO
}

// NewInMemoryGuestRepository creates a new in-memory guest repository.
func NewInMemoryGuestRepository() *InMemoryGuestRepository {
	return &InMemoryGuestRepository{
		guests: make(map[string]*guestDTO),
	}
}

// Save persists a guest snapshot, enforcing optimistic concurrency.
func (r *InMemoryGuestRepository) Save(ctx context.Context, g *guest.Guest) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if g == nil {
		return guest.ErrNilGuest
	}
	if !g.IsValid() {
		return fmt.Errorf("%w: aggregate invariants violated", guest.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.guests[g.ID()]
	if exists {
		if g.BaseVersion() == 0 {
			return guest.ErrGuestAlreadyExists
		}
		if stored.Version != g.BaseVersion() {
			return fmt.Errorf("%w: stored version %d, expected %d", guest.ErrVersionConflict, stored.Version, g.BaseVersion())
		}
	} else if g.BaseVersion() != 0 {
		return guest.ErrGuestNotFound
	}

	r.guests[g.ID()] = toDTO(g)
	g.SyncBaseVersion()
	return nil
}

// FindByID retrieves a guest by ID.
func (r *InMemoryGuestRepository) FindByID(ctx context.Context, id string) (*guest.Guest, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	dto, ok := r.guests[id]
	if !ok || dto.Deleted {
		return nil, guest.ErrGuestNotFound
	}
	return fromDTO(dto)
}

// FindByPhone retrieves a guest by phone number.
func (r *InMemoryGuestRepository) FindByPhone(ctx context.Context, phone string) (*guest.Guest, error) {
	guests, err := r.FindBySpecification(ctx, guest.And(guest.Active(), guest.ByPhone(phone)))
	if err != nil {
		return nil, err
	}
	if len(guests) == 0 {
		return nil, guest.ErrGuestNotFound
	}
	return guests[0], nil
}

// FindByCurrentStage retrieves guests in a specific stage.
func (r *InMemoryGuestRepository) FindByCurrentStage(ctx context.Context, stage guest.Stage) ([]*guest.Guest, error) {
	return r.FindBySpecification(ctx, guest.And(guest.Active(), guest.ByStage(stage)))
}

// FindByLoyaltyLevel retrieves guests at a specific loyalty tier.
func (r *InMemoryGuestRepository) FindByLoyaltyLevel(ctx context.Context, level guest.LoyaltyLevel) ([]*guest.Guest, error) {
	return r.FindBySpecification(ctx, guest.And(guest.Active(), guest.ByLoyaltyLevel(level)))
}

// FindAll retrieves all non-deleted guests.
func (r *InMemoryGuestRepository) FindAll(ctx context.Context) ([]*guest.Guest, error) {
	return r.FindBySpecification(ctx, guest.Active())
}

// FindBySpecification retrieves guests matching the specification.
func (r *InMemoryGuestRepository) FindBySpecification(ctx context.Context, spec guest.Specification) ([]*guest.Guest, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*guest.Guest, 0, len(r.guests))
	for _, dto := range r.guests {
		g, err := fromDTO(dto)
		if err != nil {
			continue
		}
		if spec.IsSatisfiedBy(g) {
			result = append(result, g)
		}
	}
	return result, nil
}

// FindByCriteria retrieves guests matching every set field of the criteria.
func (r *InMemoryGuestRepository) FindByCriteria(ctx context.Context, c guest.Criteria) ([]*guest.Guest, error) {
	return r.FindBySpecification(ctx, guest.FromCriteria(c))
}

// FindWithPagination retrieves one page of matching guests, ordered by
// registration time then ID.
func (r *InMemoryGuestRepository) FindWithPagination(ctx context.Context, spec guest.Specification, page, pageSize int) (*guest.Page, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be at least 1", guest.ErrValidation)
	}
	if pageSize < 1 {
		return nil, fmt.Errorf("%w: page size must be at least 1", guest.ErrValidation)
	}

	matched, err := r.FindBySpecification(ctx, spec)
	if err != nil {
		return nil, err
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt().Equal(matched[j].CreatedAt()) {
			return matched[i].CreatedAt().Before(matched[j].CreatedAt())
		}
		return matched[i].ID() < matched[j].ID()
	})

	total := len(matched)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return &guest.Page{
		Data:     matched[start:end],
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// BulkInsert atomically inserts a batch of new guests.
func (r *InMemoryGuestRepository) BulkInsert(ctx context.Context, guests []*guest.Guest) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(guests))
	for _, g := range guests {
		if g == nil {
			return guest.ErrNilGuest
		}
		if !g.IsValid() {
			return fmt.Errorf("%w: aggregate invariants violated for %s", guest.ErrValidation, g.ID())
		}
		if seen[g.ID()] {
			return fmt.Errorf("%w: duplicate id %s in batch", guest.ErrGuestAlreadyExists, g.ID())
		}
		seen[g.ID()] = true
		if _, exists := r.guests[g.ID()]; exists {
			return fmt.Errorf("%w: %s", guest.ErrGuestAlreadyExists, g.ID())
		}
	}

	for _, g := range guests {
		r.guests[g.ID()] = toDTO(g)
	}
	for _, g := range guests {
		g.SyncBaseVersion()
	}
	return nil
}

// Delete soft-deletes a guest.
func (r *InMemoryGuestRepository) Delete(ctx context.Context, id string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	dto, ok := r.guests[id]
	if !ok || dto.Deleted {
		return guest.ErrGuestNotFound
	}

	dto.Deleted = true
	dto.Version++
	dto.UpdatedAt = time.Now().Format(time.RFC3339Nano)
	return nil
}

// Count returns the number of non-deleted guests.
func (r *InMemoryGuestRepository) Count(ctx context.Context) (int, error) {
	if err := checkContext(ctx); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, dto := range r.guests {
		if !dto.Deleted {
			count++
		}
	}
	return count, nil
}
