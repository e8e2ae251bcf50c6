package journey

import (
	"context"
	"sort"
	"sync"

	"github.com/stayflow-tech/stayflow/internal/domain/ddd"
	"github.com/stayflow-tech/stayflow/internal/domain/guest"
)

// mockGuestRepository is an in-memory guest.Repository for use case tests.
type mockGuestRepository struct {
	mu     sync.Mutex
	guests map[string]*guest.Guest

	findErr  error
	saveErr  error
	saveErrs []error // consumed one per Save before saveErr is consulted
	saves    int
}

func newMockGuestRepository() *mockGuestRepository {
	return &mockGuestRepository{guests: make(map[string]*guest.Guest)}
}

func (m *mockGuestRepository) Save(ctx context.Context, g *guest.Guest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saves++
	if len(m.saveErrs) > 0 {
		err := m.saveErrs[0]
		m.saveErrs = m.saveErrs[1:]
		if err != nil {
			return err
		}
	} else if m.saveErr != nil {
		return m.saveErr
	}
	if g == nil {
		return guest.ErrNilGuest
	}
	m.guests[g.ID()] = g
	g.SyncBaseVersion()
	return nil
}

func (m *mockGuestRepository) FindByID(ctx context.Context, id string) (*guest.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findErr != nil {
		return nil, m.findErr
	}
	g, ok := m.guests[id]
	if !ok || g.IsDeleted() {
		return nil, guest.ErrGuestNotFound
	}
	return g, nil
}

func (m *mockGuestRepository) FindByPhone(ctx context.Context, phone string) (*guest.Guest, error) {
	guests, err := m.FindBySpecification(ctx, guest.And(guest.Active(), guest.ByPhone(phone)))
	if err != nil {
		return nil, err
	}
	if len(guests) == 0 {
		return nil, guest.ErrGuestNotFound
	}
	return guests[0], nil
}

func (m *mockGuestRepository) FindByCurrentStage(ctx context.Context, stage guest.Stage) ([]*guest.Guest, error) {
	return m.FindBySpecification(ctx, guest.And(guest.Active(), guest.ByStage(stage)))
}

func (m *mockGuestRepository) FindByLoyaltyLevel(ctx context.Context, level guest.LoyaltyLevel) ([]*guest.Guest, error) {
	return m.FindBySpecification(ctx, guest.And(guest.Active(), guest.ByLoyaltyLevel(level)))
}

func (m *mockGuestRepository) FindAll(ctx context.Context) ([]*guest.Guest, error) {
	return m.FindBySpecification(ctx, guest.Active())
}

func (m *mockGuestRepository) FindBySpecification(ctx context.Context, spec guest.Specification) ([]*guest.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findErr != nil {
		return nil, m.findErr
	}
	result := make([]*guest.Guest, 0, len(m.guests))
	for _, g := range m.guests {
		if spec.IsSatisfiedBy(g) {
			result = append(result, g)
		}
	}
	return result, nil
}

func (m *mockGuestRepository) FindByCriteria(ctx context.Context, c guest.Criteria) ([]*guest.Guest, error) {
	return m.FindBySpecification(ctx, guest.FromCriteria(c))
}

func (m *mockGuestRepository) FindWithPagination(ctx context.Context, spec guest.Specification, page, pageSize int) (*guest.Page, error) {
	matched, err := m.FindBySpecification(ctx, spec)
	if err != nil {
		return nil, err
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID() < matched[j].ID() })

	total := len(matched)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return &guest.Page{Data: matched[start:end], Total: total, Page: page, PageSize: pageSize}, nil
}

func (m *mockGuestRepository) BulkInsert(ctx context.Context, guests []*guest.Guest) error {
	for _, g := range guests {
		if err := m.Save(ctx, g); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockGuestRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.guests[id]
	if !ok || g.IsDeleted() {
		return guest.ErrGuestNotFound
	}
	delete(m.guests, id)
	return nil
}

func (m *mockGuestRepository) Count(ctx context.Context) (int, error) {
	guests, err := m.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(guests), nil
}

// mockEventPublisher records published events.
type mockEventPublisher struct {
	mu         sync.Mutex
	events     []ddd.DomainEvent
	publishErr error
}

func (m *mockEventPublisher) Publish(ctx context.Context, events ...ddd.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.publishErr != nil {
		return m.publishErr
	}
	m.events = append(m.events, events...)
	return nil
}

func (m *mockEventPublisher) published() []ddd.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ddd.DomainEvent{}, m.events...)
}
