package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/stayflow-tech/stayflow/internal/domain/guest"
)

func TestInMemoryGuestRepository_SaveAndFindByID(t *testing.T) {
	repo := NewInMemoryGuestRepository()
	ctx := context.Background()

	g := newGuest(t, "g-1", "Zhang San", "13800138000")
	if err := repo.Save(ctx, g); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	found, err := repo.FindByID(ctx, "g-1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found.PersonalInfo().Name != "Zhang San" {
		t.Errorf("Name = %q", found.PersonalInfo().Name)
	}
	if found.Version() != 1 {
		t.Errorf("Version() = %d, want 1", found.Version())
	}
}

func TestInMemoryGuestRepository_SnapshotIsolation(t *testing.T) {
	repo := NewInMemoryGuestRepository()
	ctx := context.Background()

	g := newGuest(t, "g-1", "Zhang San", "13800138000")
	if err := repo.Save(ctx, g); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Mutating the saved aggregate must not leak into the store.
	if err := g.AdvanceToStage(guest.StageEvaluation); err != nil {
		t.Fatalf("AdvanceToStage() error = %v", err)
	}

	found, err := repo.FindByID(ctx, "g-1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found.CurrentStage() != guest.StageAwareness {
		t.Errorf("stored stage = %v, want awareness", found.CurrentStage())
	}
}

func TestInMemoryGuestRepository_VersionProtocol(t *testing.T) {
	repo := NewInMemoryGuestRepository()
	ctx := context.Background()

	if err := repo.Save(ctx, newGuest(t, "g-1", "Zhang San", "13800138000")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	t.Run("duplicate insert", func(t *testing.T) {
		dup := newGuest(t, "g-1", "Impostor", "13900139000")
		if err := repo.Save(ctx, dup); !errors.Is(err, guest.ErrGuestAlreadyExists) {
			t.Errorf("Save(duplicate) error = %v, want ErrGuestAlreadyExists", err)
		}
	})

	t.Run("stale update", func(t *testing.T) {
		first, err := repo.FindByID(ctx, "g-1")
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		second, err := repo.FindByID(ctx, "g-1")
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}

		if err := first.AdvanceToStage(guest.StageEvaluation); err != nil {
			t.Fatalf("AdvanceToStage() error = %v", err)
		}
		if err := repo.Save(ctx, first); err != nil {
			t.Fatalf("Save(first) error = %v", err)
		}

		if err := second.AdvanceToStage(guest.StageEvaluation); err != nil {
			t.Fatalf("AdvanceToStage() error = %v", err)
		}
		if err := repo.Save(ctx, second); !errors.Is(err, guest.ErrVersionConflict) {
			t.Errorf("Save(stale) error = %v, want ErrVersionConflict", err)
		}
	})
}

func TestInMemoryGuestRepository_Queries(t *testing.T) {
	repo := NewInMemoryGuestRepository()
	ctx := context.Background()

	g1 := newGuest(t, "g-1", "Zhang San", "13800138001")
	g2 := newGuest(t, "g-2", "Li Si", "13800138002")
	if err := g2.AdvanceToStage(guest.StageEvaluation); err != nil {
		t.Fatalf("AdvanceToStage() error = %v", err)
	}
	for _, g := range []*guest.Guest{g1, g2} {
		if err := repo.Save(ctx, g); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	t.Run("find by phone", func(t *testing.T) {
		found, err := repo.FindByPhone(ctx, "13800138002")
		if err != nil {
			t.Fatalf("FindByPhone() error = %v", err)
		}
		if found.ID() != "g-2" {
			t.Errorf("ID() = %q, want g-2", found.ID())
		}
	})

	t.Run("find by stage", func(t *testing.T) {
		guests, err := repo.FindByCurrentStage(ctx, guest.StageAwareness)
		if err != nil {
			t.Fatalf("FindByCurrentStage() error = %v", err)
		}
		if len(guests) != 1 || guests[0].ID() != "g-1" {
			t.Errorf("FindByCurrentStage() = %d guests", len(guests))
		}
	})

	t.Run("find by criteria", func(t *testing.T) {
		guests, err := repo.FindByCriteria(ctx, guest.Criteria{Stage: guest.StageEvaluation})
		if err != nil {
			t.Fatalf("FindByCriteria() error = %v", err)
		}
		if len(guests) != 1 || guests[0].ID() != "g-2" {
			t.Errorf("FindByCriteria() = %d guests", len(guests))
		}
	})

	t.Run("pagination", func(t *testing.T) {
		page, err := repo.FindWithPagination(ctx, guest.Active(), 1, 1)
		if err != nil {
			t.Fatalf("FindWithPagination() error = %v", err)
		}
		if page.Total != 2 || len(page.Data) != 1 {
			t.Errorf("page: total=%d len=%d, want 2/1", page.Total, len(page.Data))
		}
	})
}

func TestInMemoryGuestRepository_BulkInsert(t *testing.T) {
	repo := NewInMemoryGuestRepository()
	ctx := context.Background()

	if err := repo.Save(ctx, newGuest(t, "g-2", "Li Si", "13800138002")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	batch := []*guest.Guest{
		newGuest(t, "g-1", "Zhang San", "13800138001"),
		newGuest(t, "g-2", "Impostor", "13800138009"),
	}
	if err := repo.BulkInsert(ctx, batch); !errors.Is(err, guest.ErrGuestAlreadyExists) {
		t.Fatalf("BulkInsert() error = %v, want ErrGuestAlreadyExists", err)
	}
	if _, err := repo.FindByID(ctx, "g-1"); !errors.Is(err, guest.ErrGuestNotFound) {
		t.Errorf("FindByID(g-1) error = %v, want ErrGuestNotFound after failed batch", err)
	}

	ok := []*guest.Guest{
		newGuest(t, "g-3", "Wang Wu", "13800138003"),
		newGuest(t, "g-4", "Zhao Liu", "13800138004"),
	}
	if err := repo.BulkInsert(ctx, ok); err != nil {
		t.Fatalf("BulkInsert() error = %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}
}

func TestInMemoryGuestRepository_Delete(t *testing.T) {
	repo := NewInMemoryGuestRepository()
	ctx := context.Background()

	if err := repo.Save(ctx, newGuest(t, "g-1", "Zhang San", "13800138000")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := repo.Delete(ctx, "g-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.FindByID(ctx, "g-1"); !errors.Is(err, guest.ErrGuestNotFound) {
		t.Errorf("FindByID(deleted) error = %v, want ErrGuestNotFound", err)
	}
	if err := repo.Delete(ctx, "g-1"); !errors.Is(err, guest.ErrGuestNotFound) {
		t.Errorf("Delete(again) error = %v, want ErrGuestNotFound", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d, want 0", count)
	}
}
