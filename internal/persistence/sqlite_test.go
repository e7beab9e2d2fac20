package persistence

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "wingbot.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	if err := repo.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repo
}

func TestSaveAndLoadBandStates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	states := []BandState{
		{Index: 0, TriggerPrice: "17880", Triggered: true, OpenQty: 16, CloseQty: 8},
		{Index: 1, TriggerPrice: "17920", Triggered: false, OpenQty: 8, CloseQty: 4},
	}
	for _, s := range states {
		if err := repo.SaveBandState(ctx, "2025-09-10", s); err != nil {
			t.Fatalf("save band %d: %v", s.Index, err)
		}
	}

	loaded, err := repo.LoadBandStates(ctx, "2025-09-10")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("got %d states, want 2", len(loaded))
	}
	if loaded[0] != states[0] || loaded[1] != states[1] {
		t.Errorf("loaded = %+v, want %+v", loaded, states)
	}
}

func TestSaveBandStateUpserts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := BandState{Index: 3, TriggerPrice: "17980", Triggered: false, OpenQty: 2, CloseQty: 0}
	if err := repo.SaveBandState(ctx, "2025-09-10", first); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := first
	second.Triggered = true
	second.OpenQty = 1
	if err := repo.SaveBandState(ctx, "2025-09-10", second); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	loaded, err := repo.LoadBandStates(ctx, "2025-09-10")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("got %d states, want 1", len(loaded))
	}
	if loaded[0] != second {
		t.Errorf("loaded = %+v, want %+v", loaded[0], second)
	}
}

func TestLoadUnknownDayIsEmpty(t *testing.T) {
	repo := newTestRepo(t)

	loaded, err := repo.LoadBandStates(context.Background(), "1999-01-01")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("got %d states, want 0", len(loaded))
	}
}

func TestDaysAreIsolated(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_ = repo.SaveBandState(ctx, "2025-09-10", BandState{Index: 0, TriggerPrice: "17880", OpenQty: 16, CloseQty: 8})
	_ = repo.SaveBandState(ctx, "2025-09-11", BandState{Index: 0, TriggerPrice: "17700", OpenQty: 16, CloseQty: 8})

	loaded, err := repo.LoadBandStates(ctx, "2025-09-10")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 || loaded[0].TriggerPrice != "17880" {
		t.Errorf("loaded = %+v", loaded)
	}
}
