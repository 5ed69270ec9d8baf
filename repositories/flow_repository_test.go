package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/beachpoint/portal/models"
)

func TestMemoryFlowRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryFlowRepository()

	flow := &models.Flow{
		ID:           "f1",
		PlayerID:     2,
		TournamentID: 7,
		Simples:      []models.Category{{ID: 10}},
		Selections:   map[int]*models.CategorySelection{10: {Phase: models.PhaseSelected}},
	}
	if err := repo.Save(ctx, flow); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.Get(ctx, "f1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.PlayerID != 2 || len(got.Simples) != 1 || got.Selections[10].Phase != models.PhaseSelected {
		t.Errorf("Get = %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("Save should stamp UpdatedAt")
	}
}

func TestMemoryFlowRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryFlowRepository()

	partner := 5
	flow := &models.Flow{
		ID: "f1",
		Selections: map[int]*models.CategorySelection{
			10: {Phase: models.PhaseSelected, PartnerID: &partner},
		},
	}
	if err := repo.Save(ctx, flow); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Мутация возвращённой копии не должна протечь в хранилище.
	first, _ := repo.Get(ctx, "f1")
	first.Selections[10].Phase = models.PhaseUnselected
	*first.Selections[10].PartnerID = 99

	second, _ := repo.Get(ctx, "f1")
	if second.Selections[10].Phase != models.PhaseSelected {
		t.Error("stored phase mutated through returned copy")
	}
	if *second.Selections[10].PartnerID != 5 {
		t.Error("stored partner id mutated through returned copy")
	}
}

func TestMemoryFlowRepositoryDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryFlowRepository()

	if err := repo.Delete(ctx, "missing"); !errors.Is(err, ErrFlowNotFound) {
		t.Fatalf("Delete missing err = %v, want ErrFlowNotFound", err)
	}

	if err := repo.Save(ctx, &models.Flow{ID: "f1"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := repo.Delete(ctx, "f1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, "f1"); !errors.Is(err, ErrFlowNotFound) {
		t.Fatalf("Get after delete err = %v, want ErrFlowNotFound", err)
	}
}

func TestDeleteIdleSince(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryFlowRepository()

	if err := repo.Save(ctx, &models.Flow{ID: "stale"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := repo.Save(ctx, &models.Flow{ID: "fresh"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Всё сохранено только что: ранний cutoff ничего не выметает.
	if swept := repo.DeleteIdleSince(ctx, time.Now().Add(-time.Hour)); swept != 0 {
		t.Errorf("swept = %d, want 0", swept)
	}

	// Состарим один поток напрямую в хранилище.
	mem := repo.(*memoryFlowRepository)
	mem.mu.Lock()
	mem.flows["stale"].UpdatedAt = time.Now().Add(-2 * time.Hour)
	mem.mu.Unlock()

	if swept := repo.DeleteIdleSince(ctx, time.Now().Add(-time.Hour)); swept != 1 {
		t.Errorf("swept = %d, want 1", swept)
	}
	if _, err := repo.Get(ctx, "stale"); !errors.Is(err, ErrFlowNotFound) {
		t.Errorf("stale flow should be swept, got err = %v", err)
	}
	if _, err := repo.Get(ctx, "fresh"); err != nil {
		t.Errorf("fresh flow should survive: %v", err)
	}
}
