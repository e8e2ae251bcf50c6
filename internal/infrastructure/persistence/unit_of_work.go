// Package persistence provides infrastructure implementations for data persistence.
package persistence

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/stayflow-tech/stayflow/internal/domain/ddd"
	"github.com/stayflow-tech/stayflow/internal/domain/guest"
)

// FileUnitOfWork implements guest.UnitOfWork for file-based storage.
// It provides transactional semantics by deferring writes until commit and
// providing rollback capability.
type FileUnitOfWork struct {
	baseRepo       *FileGuestRepository
	eventPublisher guest.EventPublisher
	mu             sync.Mutex

	// Transaction state
	active         bool
	pendingWrites  map[string]*guest.Guest
	pendingDeletes map[string]struct{}
	pendingEvents  []ddd.DomainEvent
}

// FileUnitOfWorkFactory creates new FileUnitOfWork instances.
type FileUnitOfWorkFactory struct {
	baseRepo       *FileGuestRepository
	eventPublisher guest.EventPublisher
}

// NewFileUnitOfWorkFactory creates a new FileUnitOfWorkFactory.
func NewFileUnitOfWorkFactory(
	baseRepo *FileGuestRepository,
	eventPublisher guest.EventPublisher,
) *FileUnitOfWorkFactory {
	return &FileUnitOfWorkFactory{
		baseRepo:       baseRepo,
		eventPublisher: eventPublisher,
	}
}

// Begin starts a new unit of work transaction.
func (f *FileUnitOfWorkFactory) Begin(ctx context.Context) (guest.UnitOfWork, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	return &FileUnitOfWork{
		baseRepo:       f.baseRepo,
		eventPublisher: f.eventPublisher,
		active:         true,
		pendingWrites:  make(map[string]*guest.Guest),
		pendingDeletes: make(map[string]struct{}),
		pendingEvents:  make([]ddd.DomainEvent, 0),
	}, nil
}

// unitOfWorkRepository wraps the base repository to track changes within a
// transaction.
type unitOfWorkRepository struct {
	uow      *FileUnitOfWork
	baseRepo *FileGuestRepository
}

// Begin returns an error: nested transactions are not supported.
func (u *FileUnitOfWork) Begin(ctx context.Context) (guest.UnitOfWork, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if !u.active {
		return nil, fmt.Errorf("unit of work is not active")
	}

	return nil, fmt.Errorf("unit of work already active: nested transactions not supported")
}

// Commit commits all pending changes. Deletes run first, then writes, then
// event publication.
func (u *FileUnitOfWork) Commit(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if !u.active {
		return fmt.Errorf("unit of work is not active")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit aborted: %w", err)
	}

	for id := range u.pendingDeletes {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("commit aborted during deletes: %w", err)
		}
		if err := u.baseRepo.Delete(ctx, id); err != nil {
			// Rollback is not possible for file operations, fail fast on error
			return fmt.Errorf("failed to delete guest %s: %w", id, err)
		}
	}

	for _, g := range u.pendingWrites {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("commit aborted during writes: %w", err)
		}
		if err := u.baseRepo.Save(ctx, g); err != nil {
			return fmt.Errorf("failed to save guest %s: %w", g.ID(), err)
		}
	}

	if u.eventPublisher != nil && len(u.pendingEvents) > 0 {
		if err := u.eventPublisher.Publish(ctx, u.pendingEvents...); err != nil {
			// Event publishing failure after persistence is non-fatal
			log.Warn("failed to publish domain events after commit",
				"error", err,
				"event_count", len(u.pendingEvents))
		}
	}

	u.active = false
	u.clearPending()

	return nil
}

// Rollback discards all pending changes.
func (u *FileUnitOfWork) Rollback() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if !u.active {
		// Already rolled back or committed, no-op
		return nil
	}

	u.active = false
	u.clearPending()

	return nil
}

// GuestRepository returns the guest repository within this unit of work.
func (u *FileUnitOfWork) GuestRepository() guest.Repository {
	return &unitOfWorkRepository{
		uow:      u,
		baseRepo: u.baseRepo,
	}
}

// AddEvents adds domain events to be published on commit.
func (u *FileUnitOfWork) AddEvents(events ...ddd.DomainEvent) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.active {
		u.pendingEvents = append(u.pendingEvents, events...)
	}
}

func (u *FileUnitOfWork) clearPending() {
	u.pendingWrites = make(map[string]*guest.Guest)
	u.pendingDeletes = make(map[string]struct{})
	u.pendingEvents = make([]ddd.DomainEvent, 0)
}

// unitOfWorkRepository implementation

// Save stages a guest for saving on commit and drains its uncommitted
// events into the transaction.
func (r *unitOfWorkRepository) Save(ctx context.Context, g *guest.Guest) error {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()

	if !r.uow.active {
		return fmt.Errorf("unit of work is not active")
	}
	if g == nil {
		return guest.ErrNilGuest
	}

	delete(r.uow.pendingDeletes, g.ID())
	r.uow.pendingWrites[g.ID()] = g

	events := g.UncommittedEvents()
	if len(events) > 0 {
		r.uow.pendingEvents = append(r.uow.pendingEvents, events...)
		g.MarkEventsCommitted()
	}

	return nil
}

// FindByID retrieves a guest, checking pending changes first.
func (r *unitOfWorkRepository) FindByID(ctx context.Context, id string) (*guest.Guest, error) {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()

	if !r.uow.active {
		return nil, fmt.Errorf("unit of work is not active")
	}

	if _, deleted := r.uow.pendingDeletes[id]; deleted {
		return nil, guest.ErrGuestNotFound
	}
	if g, ok := r.uow.pendingWrites[id]; ok {
		if g.IsDeleted() {
			return nil, guest.ErrGuestNotFound
		}
		return g, nil
	}

	return r.baseRepo.FindByID(ctx, id)
}

// FindByPhone retrieves a guest by phone, checking pending changes first.
func (r *unitOfWorkRepository) FindByPhone(ctx context.Context, phone string) (*guest.Guest, error) {
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
func (r *unitOfWorkRepository) FindByCurrentStage(ctx context.Context, stage guest.Stage) ([]*guest.Guest, error) {
	return r.FindBySpecification(ctx, guest.And(guest.Active(), guest.ByStage(stage)))
}

// FindByLoyaltyLevel retrieves guests at a specific loyalty tier.
func (r *unitOfWorkRepository) FindByLoyaltyLevel(ctx context.Context, level guest.LoyaltyLevel) ([]*guest.Guest, error) {
	return r.FindBySpecification(ctx, guest.And(guest.Active(), guest.ByLoyaltyLevel(level)))
}

// FindAll retrieves all non-deleted guests.
func (r *unitOfWorkRepository) FindAll(ctx context.Context) ([]*guest.Guest, error) {
	return r.FindBySpecification(ctx, guest.Active())
}

// FindBySpecification retrieves guests matching the specification, with
// pending writes overlaying the base store and pending deletes hidden.
func (r *unitOfWorkRepository) FindBySpecification(ctx context.Context, spec guest.Specification) ([]*guest.Guest, error) {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()

	if !r.uow.active {
		return nil, fmt.Errorf("unit of work is not active")
	}

	base, err := r.baseRepo.FindBySpecification(ctx, spec)
	if err != nil {
		return nil, err
	}

	result := make([]*guest.Guest, 0, len(base)+len(r.uow.pendingWrites))
	seen := make(map[string]bool, len(r.uow.pendingWrites))

	for id, g := range r.uow.pendingWrites {
		seen[id] = true
		if _, deleted := r.uow.pendingDeletes[id]; deleted {
			continue
		}
		if spec.IsSatisfiedBy(g) {
			result = append(result, g)
		}
	}

	for _, g := range base {
		if _, deleted := r.uow.pendingDeletes[g.ID()]; deleted {
			continue
		}
		if seen[g.ID()] {
			continue
		}
		result = append(result, g)
	}

	return result, nil
}

// FindByCriteria retrieves guests matching every set field of the criteria.
func (r *unitOfWorkRepository) FindByCriteria(ctx context.Context, c guest.Criteria) ([]*guest.Guest, error) {
	return r.FindBySpecification(ctx, guest.FromCriteria(c))
}

// FindWithPagination retrieves one page of matching guests.
func (r *unitOfWorkRepository) FindWithPagination(ctx context.Context, spec guest.Specification, page, pageSize int) (*guest.Page, error) {
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

// BulkInsert stages a batch of new guests for insertion on commit.
func (r *unitOfWorkRepository) BulkInsert(ctx context.Context, guests []*guest.Guest) error {
	for _, g := range guests {
		if err := r.Save(ctx, g); err != nil {
			return err
		}
	}
	return nil
}

// Delete stages a soft delete for commit.
func (r *unitOfWorkRepository) Delete(ctx context.Context, id string) error {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()

	if !r.uow.active {
		return fmt.Errorf("unit of work is not active")
	}

	delete(r.uow.pendingWrites, id)
	r.uow.pendingDeletes[id] = struct{}{}

	return nil
}

// Count returns the number of non-deleted guests visible to the
// transaction.
func (r *unitOfWorkRepository) Count(ctx context.Context) (int, error) {
	guests, err := r.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(guests), nil
}
