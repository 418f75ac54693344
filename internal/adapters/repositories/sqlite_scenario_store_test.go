package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mbenhaddou/optimisation-service/internal/domain"
	"github.com/mbenhaddou/optimisation-service/internal/ports"
)

func newTestStore(t *testing.T) *SqliteScenarioStore {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := InitSchema(db); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	return NewSqliteScenarioStore(db)
}

func TestSettingsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	settings, err := store.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings != (domain.Settings{}) {
		t.Fatalf("expected zero settings, got %+v", settings)
	}

	want := domain.Settings{
		APIBase:  "https://api.example.com",
		APIKey:   "key-123",
		OSRMBase: "http://localhost:5000",
	}
	if err := store.SaveSettings(ctx, want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	settings, err = store.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings != want {
		t.Fatalf("settings = %+v, want %+v", settings, want)
	}
}

func TestSaveScenarioReplacesSameName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.SaveScenario(ctx, "morning run", domain.SampleScenario())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := store.SaveScenario(ctx, "other", domain.NewScenario()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Re-saving under the same name replaces the snapshot and moves it first.
	second, err := store.SaveScenario(ctx, "morning run", domain.NewScenario())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID == first.ID {
		t.Fatal("expected a fresh id on re-save")
	}

	list, err := store.ListScenarios(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 scenarios, got %d", len(list))
	}
	if list[0].Name != "morning run" {
		t.Fatalf("first scenario = %q, want %q", list[0].Name, "morning run")
	}
	if list[0].ID != second.ID {
		t.Fatalf("first scenario id = %q, want %q", list[0].ID, second.ID)
	}
	if list[1].Name != "other" {
		t.Fatalf("second scenario = %q, want %q", list[1].Name, "other")
	}
}

func TestGetScenario(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	saved, err := store.SaveScenario(ctx, "sample", domain.SampleScenario())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.GetScenario(ctx, saved.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "sample" {
		t.Fatalf("name = %q, want %q", got.Name, "sample")
	}
	if len(got.Data.Vehicles) != 2 || len(got.Data.Tasks) != 5 {
		t.Fatalf("data = %d vehicles, %d tasks", len(got.Data.Vehicles), len(got.Data.Tasks))
	}

	if _, err := store.GetScenario(ctx, "missing"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestDeleteScenarioUnknownIDIsNoOp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	saved, err := store.SaveScenario(ctx, "keep", domain.NewScenario())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.DeleteScenario(ctx, "never-existed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.DeleteScenario(ctx, saved.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list, err := store.ListScenarios(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}
}

func TestConsoleStateRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	state, err := store.LoadConsoleState(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != nil {
		t.Fatalf("expected nil state, got %q", state)
	}

	if err := store.SaveConsoleState(ctx, []byte(`{"tab": "planner"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state, err = store.LoadConsoleState(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(state) != `{"tab": "planner"}` {
		t.Fatalf("state = %q", state)
	}
}

func TestHistoryBounded(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < domain.HistoryLimit+5; i++ {
		entry := domain.HistoryEntry{
			At:     base.Add(time.Duration(i) * time.Second),
			Method: "POST",
			Path:   fmt.Sprintf("/v1/optimize#%d", i),
			Status: 200,
		}
		if err := store.AppendHistory(ctx, entry); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	history, err := store.ListHistory(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != domain.HistoryLimit {
		t.Fatalf("history length = %d, want %d", len(history), domain.HistoryLimit)
	}

	// Newest first, oldest entries dropped.
	if history[0].Path != fmt.Sprintf("/v1/optimize#%d", domain.HistoryLimit+4) {
		t.Fatalf("newest entry = %q", history[0].Path)
	}
	if history[len(history)-1].Path != "/v1/optimize#5" {
		t.Fatalf("oldest kept entry = %q", history[len(history)-1].Path)
	}
}
