package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/fentz26/sailboard/internal/models"
)

func strPtr(s string) *string { return &s }

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestTaskSnapshots(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()
	ctx := context.Background()

	if _, err := s.LatestTaskSnapshot(ctx); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("Expected ErrNoSnapshot on empty store, got %v", err)
	}

	first := []models.Task{{ID: "a", CompletionStatus: strPtr("Success")}}
	if _, err := s.SaveTaskSnapshot(ctx, "fixture", first); err != nil {
		t.Fatalf("SaveTaskSnapshot failed: %v", err)
	}

	second := []models.Task{
		{ID: "b", Description: strPtr("Aggregate AD")},
		{ID: "c", Target: &models.Target{Name: strPtr("Workday")}},
	}
	saved, err := s.SaveTaskSnapshot(ctx, "sailpoint", second)
	if err != nil {
		t.Fatalf("SaveTaskSnapshot failed: %v", err)
	}
	if saved.ID == "" {
		t.Error("Snapshot ID should not be empty")
	}

	got, err := s.LatestTaskSnapshot(ctx)
	if err != nil {
		t.Fatalf("LatestTaskSnapshot failed: %v", err)
	}
	if got.ID != saved.ID {
		t.Errorf("Expected latest snapshot %s, got %s", saved.ID, got.ID)
	}
	if got.Connector != "sailpoint" {
		t.Errorf("Expected connector sailpoint, got %s", got.Connector)
	}
	if len(got.Tasks) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(got.Tasks))
	}
	if got.Tasks[0].Description == nil || *got.Tasks[0].Description != "Aggregate AD" {
		t.Errorf("Description did not survive round trip: %+v", got.Tasks[0])
	}
	if got.Tasks[1].CompletionStatus != nil {
		t.Error("Absent completion status should stay nil")
	}
	if got.FetchedAt.IsZero() {
		t.Error("FetchedAt should be set")
	}
}

func TestSaveTaskSnapshot_Empty(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()
	ctx := context.Background()

	if _, err := s.SaveTaskSnapshot(ctx, "fixture", nil); err != nil {
		t.Fatalf("SaveTaskSnapshot failed: %v", err)
	}
	got, err := s.LatestTaskSnapshot(ctx)
	if err != nil {
		t.Fatalf("LatestTaskSnapshot failed: %v", err)
	}
	if got.Tasks == nil || len(got.Tasks) != 0 {
		t.Errorf("Expected empty non-nil task list, got %#v", got.Tasks)
	}
}

func TestPruneTaskSnapshots(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()
	ctx := context.Background()

	var lastID string
	for i := 0; i < 5; i++ {
		snap, err := s.SaveTaskSnapshot(ctx, "fixture", []models.Task{{ID: fmt.Sprintf("t%d", i)}})
		if err != nil {
			t.Fatalf("SaveTaskSnapshot failed: %v", err)
		}
		lastID = snap.ID
	}

	removed, err := s.PruneTaskSnapshots(ctx, 2)
	if err != nil {
		t.Fatalf("PruneTaskSnapshots failed: %v", err)
	}
	if removed != 3 {
		t.Errorf("Expected 3 removed, got %d", removed)
	}

	n, err := s.CountTaskSnapshots(ctx)
	if err != nil {
		t.Fatalf("CountTaskSnapshots failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 snapshots left, got %d", n)
	}

	latest, err := s.LatestTaskSnapshot(ctx)
	if err != nil {
		t.Fatalf("LatestTaskSnapshot failed: %v", err)
	}
	if latest.ID != lastID || latest.Tasks[0].ID != "t4" {
		t.Errorf("Prune removed the newest snapshot")
	}

	if _, err := s.PruneTaskSnapshots(ctx, 0); err == nil {
		t.Error("Expected error for keep=0")
	}
}

func TestTenantSnapshots(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()
	ctx := context.Background()

	if _, err := s.LatestTenantSnapshot(ctx); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("Expected ErrNoSnapshot on empty store, got %v", err)
	}

	if _, err := s.SaveTenantSnapshot(ctx, "sailpoint", models.Tenant{Name: "old"}); err != nil {
		t.Fatalf("SaveTenantSnapshot failed: %v", err)
	}
	tenant := models.Tenant{
		ID:       "t-1",
		Name:     "acme",
		FullName: "Acme Corp",
		Products: []models.Product{{ProductName: "idn", OrgType: "production"}},
	}
	if _, err := s.SaveTenantSnapshot(ctx, "sailpoint", tenant); err != nil {
		t.Fatalf("SaveTenantSnapshot failed: %v", err)
	}

	got, err := s.LatestTenantSnapshot(ctx)
	if err != nil {
		t.Fatalf("LatestTenantSnapshot failed: %v", err)
	}
	if got.Tenant.FullName != "Acme Corp" {
		t.Errorf("Expected Acme Corp, got %s", got.Tenant.FullName)
	}
	if len(got.Tenant.Products) != 1 || got.Tenant.Products[0].OrgType != "production" {
		t.Errorf("Products did not survive round trip: %+v", got.Tenant.Products)
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM tenant_snapshots`).Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected older tenant snapshots to be dropped, have %d", count)
	}
}

func TestFetchLog(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()
	ctx := context.Background()

	records, err := s.ListFetchRecords(ctx, 10)
	if err != nil {
		t.Fatalf("ListFetchRecords failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("Expected empty log, got %d", len(records))
	}

	if _, err := s.WriteFetchRecord(ctx, "tasks.fetch", "hash1", models.OutcomeSuccess, "4 tasks"); err != nil {
		t.Fatalf("WriteFetchRecord failed: %v", err)
	}
	if _, err := s.WriteFetchRecord(ctx, "tenant.fetch", "hash2", models.OutcomeError, ""); err != nil {
		t.Fatalf("WriteFetchRecord failed: %v", err)
	}
	if _, err := s.WriteFetchRecord(ctx, "tasks.fetch", "hash3", models.OutcomeSuccess, "5 tasks"); err != nil {
		t.Fatalf("WriteFetchRecord failed: %v", err)
	}

	records, err = s.ListFetchRecords(ctx, 2)
	if err != nil {
		t.Fatalf("ListFetchRecords failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].InputsHash != "hash3" || records[1].InputsHash != "hash2" {
		t.Errorf("Expected newest first, got %s then %s", records[0].InputsHash, records[1].InputsHash)
	}
	if records[1].Outcome != models.OutcomeError || records[1].Details != "" {
		t.Errorf("Unexpected record: %+v", records[1])
	}
}

func TestConcurrentWrites(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()
	ctx := context.Background()

	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func(i int) {
			_, err := s.WriteFetchRecord(ctx, "tasks.fetch", fmt.Sprintf("h%d", i), models.OutcomeSuccess, "")
			errs <- err
		}(i)
	}
	for i := 0; i < 10; i++ {
		if err := <-errs; err != nil {
			t.Errorf("concurrent write failed: %v", err)
		}
	}

	records, err := s.ListFetchRecords(ctx, 100)
	if err != nil {
		t.Fatalf("ListFetchRecords failed: %v", err)
	}
	if len(records) != 10 {
		t.Errorf("Expected 10 records, got %d", len(records))
	}
}

func newTestStore(t *testing.T) *Store {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return s
}
