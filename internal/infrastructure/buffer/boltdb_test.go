package buffer

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "buffer.db"), "")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Logf("close failed: %v", err)
		}
	})
	return store
}

func TestEnqueueOrdersByPriorityThenTime(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	items := []Item{
		{ID: "profile", Entity: EntityProfile, Priority: PriorityProfile, Timestamp: base},
		{ID: "task-late", Entity: EntityTask, Priority: PriorityTask, Timestamp: base.Add(time.Minute)},
		{ID: "task-early", Entity: EntityTask, Priority: PriorityTask, Timestamp: base},
	}
	for _, item := range items {
		if err := store.Enqueue(item); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	batch, err := store.GetBatch(10)
	if err != nil {
		t.Fatalf("GetBatch failed: %v", err)
	}
	want := []string{"task-early", "task-late", "profile"}
	if len(batch) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(batch))
	}
	for i, id := range want {
		if batch[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, batch[i].ID)
		}
	}
}

func TestEnqueueNormalizesItems(t *testing.T) {
	store := openTestStore(t)
	if err := store.Enqueue(Item{Entity: EntityTask, Priority: 42}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	batch, err := store.GetBatch(1)
	if err != nil || len(batch) != 1 {
		t.Fatalf("GetBatch failed: %v (%d items)", err, len(batch))
	}
	if batch[0].ID == "" || batch[0].Priority != priorityDefault || batch[0].Timestamp.IsZero() {
		t.Fatalf("item not normalized: %+v", batch[0])
	}
}

func TestRemoveAndSize(t *testing.T) {
	store := openTestStore(t)
	for _, id := range []string{"a", "b"} {
		if err := store.Enqueue(Item{ID: id, Entity: EntityTask}); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	if err := store.Remove(Item{ID: "a"}); err != nil {
		t.Fatalf("Remove by id failed: %v", err)
	}
	size, err := store.Size()
	if err != nil || size != 1 {
		t.Fatalf("expected size 1, got %d (%v)", size, err)
	}

	batch, _ := store.GetBatch(1)
	if err := store.Remove(batch[0]); err != nil {
		t.Fatalf("Remove by key failed: %v", err)
	}
	if size, _ := store.Size(); size != 0 {
		t.Fatalf("expected empty store, got %d", size)
	}
}

func TestRetryKeepsQueuePosition(t *testing.T) {
	store := openTestStore(t)
	now := time.Now()
	_ = store.Enqueue(Item{ID: "first", Timestamp: now})
	_ = store.Enqueue(Item{ID: "second", Timestamp: now.Add(time.Second)})

	batch, _ := store.GetBatch(1)
	if err := store.Retry(batch[0]); err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if err := store.Retry(batch[0]); err != nil {
		t.Fatalf("second Retry failed: %v", err)
	}

	batch, _ = store.GetBatch(10)
	if len(batch) != 2 || batch[0].ID != "first" || batch[0].Retries != 1 {
		t.Fatalf("unexpected batch after retry %+v", batch)
	}
	if err := store.Retry(Item{ID: "first"}); err == nil {
		t.Fatalf("expected error for an item without a key")
	}
	_ = store.Remove(batch[0])
	if err := store.Retry(batch[0]); err == nil {
		t.Fatalf("expected error when retrying a removed item")
	}
}

func TestCleanupDropsOldItems(t *testing.T) {
	store := openTestStore(t)
	now := time.Now()
	_ = store.Enqueue(Item{ID: "old", Timestamp: now.Add(-48 * time.Hour)})
	_ = store.Enqueue(Item{ID: "new", Timestamp: now})

	removed, err := store.Cleanup(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	batch, _ := store.GetBatch(10)
	if len(batch) != 1 || batch[0].ID != "new" {
		t.Fatalf("unexpected remaining items %+v", batch)
	}
}

func TestNilStoreReturnsErrors(t *testing.T) {
	var store *Store
	if err := store.Enqueue(Item{}); err == nil {
		t.Fatalf("expected error from nil store")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close on nil store should be a no-op, got %v", err)
	}
}
