// duckstore_test.go - Tests for the DuckDB-backed event log
package eventlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/models"
)

// createTestStore creates a temporary event log for testing
func createTestStore(t *testing.T) *DuckStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "events.duckdb"), DefaultOptions())
	if err != nil {
		t.Fatalf("Failed to open event log: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testEvent(level models.EventLevel, zoneID, message string, ts time.Time) *models.Event {
	return &models.Event{
		Timestamp: ts,
		Level:     level,
		Source:    models.SourceDetector,
		ZoneID:    zoneID,
		Label:     "person",
		Count:     1,
		Message:   message,
	}
}

func TestAppendAndQuery(t *testing.T) {
	store := createTestStore(t)
	now := time.Now().UTC()

	store.Append(testEvent(models.LevelInfo, "z1", "person entered zone", now.Add(-2*time.Minute)))
	store.Append(testEvent(models.LevelAlert, "z1", "intrusion detected", now.Add(-time.Minute)))
	store.Append(testEvent(models.LevelInfo, "z2", "person entered zone", now))

	if store.Len() != 3 {
		t.Fatalf("Expected 3 events, got %d", store.Len())
	}

	events, total, err := store.Query(context.Background(), QueryParams{}, 1, 100)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if total != 3 || len(events) != 3 {
		t.Fatalf("Expected 3 events, got total=%d len=%d", total, len(events))
	}
	// Default ordering is newest first.
	if events[0].ZoneID != "z2" {
		t.Errorf("Expected newest event first, got zone %q", events[0].ZoneID)
	}
}

func TestQueryFilters(t *testing.T) {
	store := createTestStore(t)
	now := time.Now().UTC()

	store.Append(testEvent(models.LevelInfo, "z1", "person entered zone", now.Add(-2*time.Minute)))
	store.Append(testEvent(models.LevelAlert, "z1", "intrusion detected", now.Add(-time.Minute)))
	store.Append(testEvent(models.LevelInfo, "z2", "person entered zone", now))

	t.Run("by level", func(t *testing.T) {
		events, total, err := store.Query(context.Background(), QueryParams{Level: "alert"}, 1, 100)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if total != 1 || events[0].Level != models.LevelAlert {
			t.Errorf("Expected one alert, got total=%d", total)
		}
	})

	t.Run("by zone", func(t *testing.T) {
		_, total, err := store.Query(context.Background(), QueryParams{ZoneID: "z1"}, 1, 100)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if total != 2 {
			t.Errorf("Expected 2 events in z1, got %d", total)
		}
	})

	t.Run("by search", func(t *testing.T) {
		_, total, err := store.Query(context.Background(), QueryParams{Search: "intrusion"}, 1, 100)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if total != 1 {
			t.Errorf("Expected 1 match, got %d", total)
		}
	})

	t.Run("by time window", func(t *testing.T) {
		_, total, err := store.Query(context.Background(), QueryParams{Since: now.Add(-90 * time.Second)}, 1, 100)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if total != 2 {
			t.Errorf("Expected 2 events in window, got %d", total)
		}
	})
}

func TestQueryPagination(t *testing.T) {
	store := createTestStore(t)
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		store.Append(testEvent(models.LevelInfo, "z1", "tick", base.Add(time.Duration(i)*time.Second)))
	}

	events, total, err := store.Query(context.Background(), QueryParams{SortDirection: "asc"}, 3, 10)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if total != 25 {
		t.Errorf("Expected total 25, got %d", total)
	}
	if len(events) != 5 {
		t.Errorf("Expected 5 events on last page, got %d", len(events))
	}
}

func TestBatchFlushOnThreshold(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "events.duckdb"), Options{
		MemoryLimit: "128MB",
		Threads:     1,
		BatchSize:   4,
	})
	if err != nil {
		t.Fatalf("Failed to open event log: %v", err)
	}
	defer store.Close()

	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		store.Append(testEvent(models.LevelInfo, "z1", "tick", now))
	}

	// Four events crossed the threshold and should already be on disk.
	var onDisk int
	if err := store.db.QueryRow("SELECT COUNT(*) FROM events").Scan(&onDisk); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if onDisk != 4 {
		t.Errorf("Expected 4 flushed events, got %d", onDisk)
	}
	if store.LastError() != nil {
		t.Errorf("Unexpected flush error: %v", store.LastError())
	}
}

func TestPrune(t *testing.T) {
	store := createTestStore(t)
	now := time.Now().UTC()

	store.Append(testEvent(models.LevelInfo, "z1", "old", now.Add(-48*time.Hour)))
	store.Append(testEvent(models.LevelInfo, "z1", "recent", now))

	removed, err := store.Prune(context.Background(), 24*time.Hour)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 pruned event, got %d", removed)
	}

	_, total, err := store.Query(context.Background(), QueryParams{}, 1, 100)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if total != 1 {
		t.Errorf("Expected 1 remaining event, got %d", total)
	}
	if store.Len() != 1 {
		t.Errorf("Expected Len 1, got %d", store.Len())
	}
}

func TestReopenPreservesEvents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.duckdb")

	store, err := Open(path, DefaultOptions())
	if err != nil {
		t.Fatalf("Failed to open event log: %v", err)
	}
	store.Append(testEvent(models.LevelInfo, "z1", "persisted", time.Now().UTC()))
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(path, DefaultOptions())
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close()

	if reopened.Len() != 1 {
		t.Errorf("Expected 1 event after reopen, got %d", reopened.Len())
	}

	// IDs keep increasing after reopen.
	e := testEvent(models.LevelInfo, "z1", "new", time.Now().UTC())
	reopened.Append(e)
	if e.ID != 2 {
		t.Errorf("Expected next id 2, got %d", e.ID)
	}
}
