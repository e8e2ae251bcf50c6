package guest

import (
	"context"

	"github.com/stayflow-tech/stayflow/internal/domain/ddd"
)

// Page is one page of a paginated guest query.
type Page struct {
	Data     []*Guest
	Total    int
	Page     int
	PageSize int
}

// Criteria is a flat multi-field filter for guest queries. Zero values
// mean "no constraint on this field".
type Criteria struct {
	Stage            Stage
	LoyaltyLevel     LoyaltyLevel
	RiskLevel        RiskLevel
	ValueSegment     ValueSegment
	MinLifetimeValue float64
	IncludeDeleted   bool
}

// Repository defines the persistence boundary for guest aggregates.
// Implementations enforce optimistic concurrency on Save: a stored
// version that differs from the aggregate's base version fails with
// ErrVersionConflict. Finders treat soft-deleted guests as absent unless
// stated otherwise.
type Repository interface {
	// Save persists a guest, inserting or updating as needed.
	Save(ctx context.Context, g *Guest) error

	// FindByID retrieves a guest by ID. Soft-deleted guests are reported
	// as ErrGuestNotFound.
	FindByID(ctx context.Context, id string) (*Guest, error)

	// FindByPhone retrieves a guest by phone number.
	FindByPhone(ctx context.Context, phone string) (*Guest, error)

	// FindByCurrentStage retrieves guests currently in the given stage.
	FindByCurrentStage(ctx context.Context, stage Stage) ([]*Guest, error)

	// FindByLoyaltyLevel retrieves guests at the given loyalty tier.
	FindByLoyaltyLevel(ctx context.Context, level LoyaltyLevel) ([]*Guest, error)

	// FindAll retrieves all non-deleted guests.
	FindAll(ctx context.Context) ([]*Guest, error)

	// FindBySpecification retrieves guests matching the specification.
	// This is the preferred method for composed queries.
	FindBySpecification(ctx context.Context, spec Specification) ([]*Guest, error)

	// FindByCriteria retrieves guests matching every set field of the
	// criteria.
	FindByCriteria(ctx context.Context, c Criteria) ([]*Guest, error)

	// FindWithPagination retrieves one page of guests matching the
	// specification, ordered by registration time. Page numbers start
	// at 1.
	FindWithPagination(ctx context.Context, spec Specification, page, pageSize int) (*Page, error)

	// BulkInsert atomically inserts a batch of new guests. If any guest
	// already exists the whole batch is rejected.
	BulkInsert(ctx context.Context, guests []*Guest) error

	// Delete soft-deletes a guest. The record survives for audit but is
	// hidden from finders.
	Delete(ctx context.Context, id string) error

	// Count returns the number of non-deleted guests.
	Count(ctx context.Context) (int, error)
}

// EventPublisher defines the interface for publishing domain events after
// a successful save.
type EventPublisher interface {
	Publish(ctx context.Context, events ...ddd.DomainEvent) error
}

// UnitOfWork batches guest writes and event publication into a single
// commit.
type UnitOfWork interface {
	// Begin starts a new unit of work. Calling Begin on an active unit
	// of work is an error.
	Begin(ctx context.Context) (UnitOfWork, error)

	// Commit flushes pending writes, deletes and events.
	Commit(ctx context.Context) error

	// Rollback discards all pending work.
	Rollback() error

	// GuestRepository returns the repository scoped to this unit of work.
	GuestRepository() Repository
}
