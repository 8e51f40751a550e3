package store

import (
	"context"
	"testing"
	"time"

	"github.com/modehaus/stylesynth/models"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return s
}

func TestSQLiteUpsertAndLoad(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	row := DistributionRow{
		UserID:      "u1",
		Category:    models.CategoryColor,
		Value:       "navy blue",
		Alpha:       3.5,
		Beta:        1.2,
		LastUpdated: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := s.UpsertRow(ctx, row); err != nil {
		t.Fatalf("UpsertRow: %v", err)
	}

	rows, err := s.LoadUser(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadUser: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	got := rows[0]
	if got.Category != models.CategoryColor || got.Value != "navy blue" {
		t.Errorf("unexpected identity %s/%s", got.Category, got.Value)
	}
	if got.Alpha != 3.5 || got.Beta != 1.2 {
		t.Errorf("parameters = (%v,%v), want (3.5,1.2)", got.Alpha, got.Beta)
	}
	if !got.LastUpdated.Equal(row.LastUpdated) {
		t.Errorf("LastUpdated = %v, want %v", got.LastUpdated, row.LastUpdated)
	}
}

func TestSQLiteUpsertReplacesExistingRow(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	row := DistributionRow{
		UserID: "u1", Category: models.CategoryFabric, Value: "silk",
		Alpha: 2, Beta: 1, LastUpdated: time.Now(),
	}
	if err := s.UpsertRow(ctx, row); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	row.Alpha = 5
	if err := s.UpsertRow(ctx, row); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	rows, err := s.LoadUser(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadUser: %v", err)
	}
	if len(rows) != 1 || rows[0].Alpha != 5 {
		t.Errorf("expected one row with alpha 5, got %+v", rows)
	}
}

func TestSQLiteLoadUnknownUserEmpty(t *testing.T) {
	s := setupTestStore(t)

	rows, err := s.LoadUser(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("LoadUser: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestSQLiteLoadUserIsolation(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, user := range []string{"u1", "u2"} {
		err := s.UpsertRow(ctx, DistributionRow{
			UserID: user, Category: models.CategoryColor, Value: "black",
			Alpha: 1, Beta: 1, LastUpdated: time.Now(),
		})
		if err != nil {
			t.Fatalf("UpsertRow(%s): %v", user, err)
		}
	}

	rows, err := s.LoadUser(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadUser: %v", err)
	}
	if len(rows) != 1 || rows[0].UserID != "u1" {
		t.Errorf("user rows leaked across users: %+v", rows)
	}
}

func TestSQLiteRejectsSubFloorParameters(t *testing.T) {
	s := setupTestStore(t)

	err := s.UpsertRow(context.Background(), DistributionRow{
		UserID: "u1", Category: models.CategoryColor, Value: "black",
		Alpha: 0.5, Beta: 1, LastUpdated: time.Now(),
	})
	if err == nil {
		t.Error("alpha below 1 must violate the schema check")
	}
}

func TestSQLiteProcessedEvents(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	processed, err := s.IsEventProcessed(ctx, "evt-1")
	if err != nil || processed {
		t.Fatalf("fresh event: processed=%v err=%v", processed, err)
	}

	if err := s.MarkEventProcessed(ctx, "evt-1"); err != nil {
		t.Fatalf("MarkEventProcessed: %v", err)
	}
	// Marking twice must not error.
	if err := s.MarkEventProcessed(ctx, "evt-1"); err != nil {
		t.Fatalf("repeat MarkEventProcessed: %v", err)
	}

	processed, err = s.IsEventProcessed(ctx, "evt-1")
	if err != nil || !processed {
		t.Fatalf("marked event: processed=%v err=%v", processed, err)
	}
}
