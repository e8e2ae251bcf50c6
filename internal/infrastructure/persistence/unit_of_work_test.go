package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/stayflow-tech/stayflow/internal/domain/guest"
)

func newUnitOfWorkFixture(t *testing.T) (*FileUnitOfWorkFactory, *FileGuestRepository, *InMemoryEventPublisher) {
	t.Helper()
	baseRepo := newFileRepo(t)
	publisher := NewInMemoryEventPublisher()
	return NewFileUnitOfWorkFactory(baseRepo, publisher), baseRepo, publisher
}

func TestFileUnitOfWork_BasicOperations(t *testing.T) {
	factory, baseRepo, publisher := newUnitOfWorkFixture(t)
	ctx := context.Background()

	t.Run("commit saves changes", func(t *testing.T) {
		uow, err := factory.Begin(ctx)
		if err != nil {
			t.Fatalf("Begin() error = %v", err)
		}

		g := newGuest(t, "g-commit", "Zhang San", "13800138001")
		repo := uow.GuestRepository()

		if err := repo.Save(ctx, g); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		// Before commit, nothing reaches the base repository.
		if _, err := baseRepo.FindByID(ctx, "g-commit"); !errors.Is(err, guest.ErrGuestNotFound) {
			t.Errorf("FindByID before commit error = %v, want ErrGuestNotFound", err)
		}

		if err := uow.Commit(ctx); err != nil {
			t.Fatalf("Commit() error = %v", err)
		}

		found, err := baseRepo.FindByID(ctx, "g-commit")
		if err != nil {
			t.Fatalf("FindByID after commit error = %v", err)
		}
		if found.ID() != "g-commit" {
			t.Errorf("ID() = %q, want g-commit", found.ID())
		}
	})

	t.Run("commit publishes drained aggregate events", func(t *testing.T) {
		publisher.ClearEvents()

		uow, err := factory.Begin(ctx)
		if err != nil {
			t.Fatalf("Begin() error = %v", err)
		}

		g := newGuest(t, "g-events", "Li Si", "13800138002")
		if len(g.UncommittedEvents()) != 1 {
			t.Fatalf("UncommittedEvents() = %d, want 1", len(g.UncommittedEvents()))
		}

		if err := uow.GuestRepository().Save(ctx, g); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if len(g.UncommittedEvents()) != 0 {
			t.Errorf("UncommittedEvents() = %d after staging, want 0", len(g.UncommittedEvents()))
		}
		if len(publisher.GetEvents()) != 0 {
			t.Errorf("events published before commit: %d", len(publisher.GetEvents()))
		}

		if err := uow.Commit(ctx); err != nil {
			t.Fatalf("Commit() error = %v", err)
		}

		published := publisher.GetEventsByAggregateID("g-events")
		if len(published) != 1 {
			t.Errorf("published events = %d, want 1", len(published))
		}
	})

	t.Run("rollback discards changes", func(t *testing.T) {
		uow, err := factory.Begin(ctx)
		if err != nil {
			t.Fatalf("Begin() error = %v", err)
		}

		g := newGuest(t, "g-rollback", "Wang Wu", "13800138003")
		if err := uow.GuestRepository().Save(ctx, g); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		if err := uow.Rollback(); err != nil {
			t.Fatalf("Rollback() error = %v", err)
		}

		if _, err := baseRepo.FindByID(ctx, "g-rollback"); !errors.Is(err, guest.ErrGuestNotFound) {
			t.Errorf("FindByID after rollback error = %v, want ErrGuestNotFound", err)
		}

		// Rollback is idempotent.
		if err := uow.Rollback(); err != nil {
			t.Errorf("second Rollback() error = %v", err)
		}
	})

	t.Run("commit after rollback fails", func(t *testing.T) {
		uow, err := factory.Begin(ctx)
		if err != nil {
			t.Fatalf("Begin() error = %v", err)
		}
		if err := uow.Rollback(); err != nil {
			t.Fatalf("Rollback() error = %v", err)
		}
		if err := uow.Commit(ctx); err == nil {
			t.Error("Commit() after rollback should fail")
		}
	})

	t.Run("nested begin is rejected", func(t *testing.T) {
		uow, err := factory.Begin(ctx)
		if err != nil {
			t.Fatalf("Begin() error = %v", err)
		}
		defer func() { _ = uow.Rollback() }()

		if _, err := uow.Begin(ctx); err == nil {
			t.Error("nested Begin() should fail")
		}
	})
}

func TestFileUnitOfWork_ReadYourWrites(t *testing.T) {
	factory, baseRepo, _ := newUnitOfWorkFixture(t)
	ctx := context.Background()

	if err := baseRepo.Save(ctx, newGuest(t, "g-base", "Zhang San", "13800138001")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	uow, err := factory.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	defer func() { _ = uow.Rollback() }()
	repo := uow.GuestRepository()

	t.Run("pending write is visible", func(t *testing.T) {
		g := newGuest(t, "g-pending", "Li Si", "13800138002")
		if err := repo.Save(ctx, g); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		found, err := repo.FindByID(ctx, "g-pending")
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		if found.ID() != "g-pending" {
			t.Errorf("ID() = %q", found.ID())
		}

		all, err := repo.FindAll(ctx)
		if err != nil {
			t.Fatalf("FindAll() error = %v", err)
		}
		if len(all) != 2 {
			t.Errorf("FindAll() = %d guests, want 2", len(all))
		}
	})

	t.Run("pending delete hides base record", func(t *testing.T) {
		if err := repo.Delete(ctx, "g-base"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}

		if _, err := repo.FindByID(ctx, "g-base"); !errors.Is(err, guest.ErrGuestNotFound) {
			t.Errorf("FindByID(staged delete) error = %v, want ErrGuestNotFound", err)
		}

		// The base repository still sees it until commit.
		if _, err := baseRepo.FindByID(ctx, "g-base"); err != nil {
			t.Errorf("base FindByID() error = %v", err)
		}
	})

	t.Run("count reflects transaction view", func(t *testing.T) {
		count, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("Count() error = %v", err)
		}
		if count != 1 {
			t.Errorf("Count() = %d, want 1", count)
		}
	})
}

func TestFileUnitOfWork_DeleteOnCommit(t *testing.T) {
	factory, baseRepo, _ := newUnitOfWorkFixture(t)
	ctx := context.Background()

	if err := baseRepo.Save(ctx, newGuest(t, "g-1", "Zhang San", "13800138001")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	uow, err := factory.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if err := uow.GuestRepository().Delete(ctx, "g-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := uow.Commit(ctx); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	if _, err := baseRepo.FindByID(ctx, "g-1"); !errors.Is(err, guest.ErrGuestNotFound) {
		t.Errorf("FindByID after committed delete error = %v, want ErrGuestNotFound", err)
	}
}

func TestFileUnitOfWork_UpdateThroughTransaction(t *testing.T) {
	factory, baseRepo, _ := newUnitOfWorkFixture(t)
	ctx := context.Background()

	if err := baseRepo.Save(ctx, newGuest(t, "g-1", "Zhang San", "13800138001")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	uow, err := factory.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	repo := uow.GuestRepository()

	g, err := repo.FindByID(ctx, "g-1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if err := g.AdvanceToStage(guest.StageEvaluation); err != nil {
		t.Fatalf("AdvanceToStage() error = %v", err)
	}
	if err := repo.Save(ctx, g); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := uow.Commit(ctx); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	found, err := baseRepo.FindByID(ctx, "g-1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found.CurrentStage() != guest.StageEvaluation {
		t.Errorf("CurrentStage() = %v, want evaluation", found.CurrentStage())
	}
	if found.Version() != 2 {
		t.Errorf("Version() = %d, want 2", found.Version())
	}
}
