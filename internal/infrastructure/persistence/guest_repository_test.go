package persistence

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stayflow-tech/stayflow/internal/domain/guest"
)

func newFileRepo(t *testing.T) *FileGuestRepository {
	t.Helper()
	repo, err := NewFileGuestRepository(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileGuestRepository() error = %v", err)
	}
	return repo
}

func newGuest(t *testing.T, id, name, phone string) *guest.Guest {
	t.Helper()
	g, err := guest.NewGuest(id, guest.PersonalInfo{Name: name, Phone: phone})
	if err != nil {
		t.Fatalf("NewGuest() error = %v", err)
	}
	return g
}

func TestFileGuestRepository_SaveAndFindByID(t *testing.T) {
	repo := newFileRepo(t)
	ctx := context.Background()

	g := newGuest(t, "g-1", "Zhang San", "13800138000")
	if err := repo.Save(ctx, g); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	found, err := repo.FindByID(ctx, "g-1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}

	if found.ID() != "g-1" {
		t.Errorf("ID() = %q", found.ID())
	}
	if found.PersonalInfo().Name != "Zhang San" || found.PersonalInfo().Phone != "13800138000" {
		t.Errorf("PersonalInfo() = %+v", found.PersonalInfo())
	}
	if found.CurrentStage() != guest.StageAwareness {
		t.Errorf("CurrentStage() = %v", found.CurrentStage())
	}
	if found.Version() != 1 {
		t.Errorf("Version() = %d, want 1", found.Version())
	}
	if found.Tags().LoyaltyLevel != guest.LoyaltyBronze {
		t.Errorf("LoyaltyLevel = %v", found.Tags().LoyaltyLevel)
	}
}

func TestFileGuestRepository_SaveNil(t *testing.T) {
	repo := newFileRepo(t)
	if err := repo.Save(context.Background(), nil); !errors.Is(err, guest.ErrNilGuest) {
		t.Errorf("Save(nil) error = %v, want ErrNilGuest", err)
	}
}

func TestFileGuestRepository_SaveDuplicate(t *testing.T) {
	repo := newFileRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, newGuest(t, "g-1", "Zhang San", "13800138000")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// A fresh aggregate with the same ID is an insert, not an update.
	dup := newGuest(t, "g-1", "Impostor", "13900139000")
	if err := repo.Save(ctx, dup); !errors.Is(err, guest.ErrGuestAlreadyExists) {
		t.Errorf("Save(duplicate) error = %v, want ErrGuestAlreadyExists", err)
	}
}

func TestFileGuestRepository_UpdateFlow(t *testing.T) {
	repo := newFileRepo(t)
	ctx := context.Background()

	g := newGuest(t, "g-1", "Zhang San", "13800138000")
	if err := repo.Save(ctx, g); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := g.AdvanceToStage(guest.StageEvaluation); err != nil {
		t.Fatalf("AdvanceToStage() error = %v", err)
	}
	if err := repo.Save(ctx, g); err != nil {
		t.Fatalf("Save(update) error = %v", err)
	}

	found, err := repo.FindByID(ctx, "g-1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found.CurrentStage() != guest.StageEvaluation {
		t.Errorf("CurrentStage() = %v, want evaluation", found.CurrentStage())
	}
	if found.Version() != 2 {
		t.Errorf("Version() = %d, want 2", found.Version())
	}
	if len(found.CompletedStages()) != 1 {
		t.Errorf("CompletedStages() len = %d, want 1", len(found.CompletedStages()))
	}
}

func TestFileGuestRepository_VersionConflict(t *testing.T) {
	repo := newFileRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, newGuest(t, "g-1", "Zhang San", "13800138000")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

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

	// The second copy still carries the old base version.
	if err := second.AdvanceToStage(guest.StageEvaluation); err != nil {
		t.Fatalf("AdvanceToStage() error = %v", err)
	}
	if err := repo.Save(ctx, second); !errors.Is(err, guest.ErrVersionConflict) {
		t.Errorf("Save(stale) error = %v, want ErrVersionConflict", err)
	}
}

func TestFileGuestRepository_RoundTripJourneyState(t *testing.T) {
	repo := newFileRepo(t)
	ctx := context.Background()

	g := newGuest(t, "g-1", "Zhang San", "13800138000")
	factory := g.EventFactory(guest.EventSource{Kind: guest.SourceMobileApp})

	if err := g.RecordFulfillment(factory.PageView("/rooms")); err != nil {
		t.Fatalf("RecordFulfillment() error = %v", err)
	}
	if err := g.AdvanceToStage(guest.StageEvaluation); err != nil {
		t.Fatalf("AdvanceToStage() error = %v", err)
	}
	if err := g.RecordFulfillment(factory.RoomViewed("deluxe", 1280)); err != nil {
		t.Fatalf("RecordFulfillment() error = %v", err)
	}
	if err := repo.Save(ctx, g); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	found, err := repo.FindByID(ctx, "g-1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}

	history := found.CompletedStages()
	if len(history) != 1 {
		t.Fatalf("CompletedStages() len = %d, want 1", len(history))
	}
	if history[0].Stage != guest.StageAwareness {
		t.Errorf("closed stage = %v", history[0].Stage)
	}
	if history[0].QualityScore != 51 {
		t.Errorf("QualityScore = %d, want 51", history[0].QualityScore)
	}
	if len(history[0].Events) != 1 || history[0].Events[0].Kind() != guest.EventPageView {
		t.Errorf("closed stage events = %+v", history[0].Events)
	}

	buffered := found.StageEvents()
	if len(buffered) != 1 || buffered[0].Kind() != guest.EventRoomViewed {
		t.Errorf("StageEvents() = %+v", buffered)
	}
	if buffered[0].Payload()["roomType"] != "deluxe" {
		t.Errorf("payload = %+v", buffered[0].Payload())
	}
	if found.JourneyID() != g.JourneyID() {
		t.Errorf("JourneyID() = %q, want %q", found.JourneyID(), g.JourneyID())
	}
}

func TestFileGuestRepository_FindByPhone(t *testing.T) {
	repo := newFileRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, newGuest(t, "g-1", "Zhang San", "13800138000")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := repo.Save(ctx, newGuest(t, "g-2", "Li Si", "13900139000")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	found, err := repo.FindByPhone(ctx, "13900139000")
	if err != nil {
		t.Fatalf("FindByPhone() error = %v", err)
	}
	if found.ID() != "g-2" {
		t.Errorf("FindByPhone() = %q, want g-2", found.ID())
	}

	if _, err := repo.FindByPhone(ctx, "10000000000"); !errors.Is(err, guest.ErrGuestNotFound) {
		t.Errorf("FindByPhone(unknown) error = %v, want ErrGuestNotFound", err)
	}
}

func TestFileGuestRepository_FindByCurrentStage(t *testing.T) {
	repo := newFileRepo(t)
	ctx := context.Background()

	g1 := newGuest(t, "g-1", "Zhang San", "13800138000")
	g2 := newGuest(t, "g-2", "Li Si", "13900139000")
	if err := g2.AdvanceToStage(guest.StageEvaluation); err != nil {
		t.Fatalf("AdvanceToStage() error = %v", err)
	}
	for _, g := range []*guest.Guest{g1, g2} {
		if err := repo.Save(ctx, g); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	evaluating, err := repo.FindByCurrentStage(ctx, guest.StageEvaluation)
	if err != nil {
		t.Fatalf("FindByCurrentStage() error = %v", err)
	}
	if len(evaluating) != 1 || evaluating[0].ID() != "g-2" {
		t.Errorf("FindByCurrentStage() = %d guests", len(evaluating))
	}
}

func TestFileGuestRepository_FindBySpecification(t *testing.T) {
	repo := newFileRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		g := newGuest(t, fmt.Sprintf("g-%d", i), "Guest", fmt.Sprintf("1380013800%d", i))
		if i > 0 {
			if err := g.AdvanceToStage(guest.StageEvaluation); err != nil {
				t.Fatalf("AdvanceToStage() error = %v", err)
			}
		}
		if err := repo.Save(ctx, g); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	matched, err := repo.FindBySpecification(ctx, guest.ByStage(guest.StageEvaluation))
	if err != nil {
		t.Fatalf("FindBySpecification() error = %v", err)
	}
	if len(matched) != 2 {
		t.Errorf("FindBySpecification() = %d guests, want 2", len(matched))
	}
}

func TestFileGuestRepository_FindWithPagination(t *testing.T) {
	repo := newFileRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		g := newGuest(t, fmt.Sprintf("g-%d", i), "Guest", fmt.Sprintf("1380013800%d", i))
		if err := repo.Save(ctx, g); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	page, err := repo.FindWithPagination(ctx, guest.Active(), 1, 2)
	if err != nil {
		t.Fatalf("FindWithPagination() error = %v", err)
	}
	if page.Total != 5 || len(page.Data) != 2 {
		t.Errorf("page 1: total=%d len=%d, want 5/2", page.Total, len(page.Data))
	}

	last, err := repo.FindWithPagination(ctx, guest.Active(), 3, 2)
	if err != nil {
		t.Fatalf("FindWithPagination() error = %v", err)
	}
	if len(last.Data) != 1 {
		t.Errorf("page 3: len=%d, want 1", len(last.Data))
	}

	beyond, err := repo.FindWithPagination(ctx, guest.Active(), 10, 2)
	if err != nil {
		t.Fatalf("FindWithPagination() error = %v", err)
	}
	if len(beyond.Data) != 0 || beyond.Total != 5 {
		t.Errorf("page 10: total=%d len=%d, want 5/0", beyond.Total, len(beyond.Data))
	}

	if _, err := repo.FindWithPagination(ctx, guest.Active(), 0, 2); !errors.Is(err, guest.ErrValidation) {
		t.Errorf("FindWithPagination(page 0) error = %v, want ErrValidation", err)
	}
}

func TestFileGuestRepository_BulkInsert(t *testing.T) {
	repo := newFileRepo(t)
	ctx := context.Background()

	batch := []*guest.Guest{
		newGuest(t, "g-1", "Zhang San", "13800138001"),
		newGuest(t, "g-2", "Li Si", "13800138002"),
		newGuest(t, "g-3", "Wang Wu", "13800138003"),
	}
	if err := repo.BulkInsert(ctx, batch); err != nil {
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

func TestFileGuestRepository_BulkInsertRejectsExisting(t *testing.T) {
	repo := newFileRepo(t)
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

	// Nothing from the failed batch may be visible.
	if _, err := repo.FindByID(ctx, "g-1"); !errors.Is(err, guest.ErrGuestNotFound) {
		t.Errorf("FindByID(g-1) error = %v, want ErrGuestNotFound after rollback", err)
	}
	count, _ := repo.Count(ctx)
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}

func TestFileGuestRepository_Delete(t *testing.T) {
	repo := newFileRepo(t)
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

	// The record survives for audit queries through specifications.
	all, err := repo.FindBySpecification(ctx, guest.Not(guest.Active()))
	if err != nil {
		t.Fatalf("FindBySpecification() error = %v", err)
	}
	if len(all) != 1 || !all[0].IsDeleted() {
		t.Errorf("deleted record not retained: %d", len(all))
	}
}

func TestFileGuestRepository_ContextCanceled(t *testing.T) {
	repo := newFileRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := repo.Save(ctx, newGuest(t, "g-1", "Zhang San", "13800138000")); !errors.Is(err, context.Canceled) {
		t.Errorf("Save(canceled ctx) error = %v, want context.Canceled", err)
	}
	if _, err := repo.FindByID(ctx, "g-1"); !errors.Is(err, context.Canceled) {
		t.Errorf("FindByID(canceled ctx) error = %v, want context.Canceled", err)
	}
}
