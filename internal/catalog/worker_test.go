package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/MikeSquared-Agency/pantry/internal/store"
)

// fakeDriftStore serves canned missing/stale items and records repairs.
type fakeDriftStore struct {
	missing  []store.Item
	stale    []store.Item
	repaired map[string]string // itemID -> content
}

func newFakeDriftStore() *fakeDriftStore {
	return &fakeDriftStore{repaired: make(map[string]string)}
}

func capped(items []store.Item, limit int) []store.Item {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

func (f *fakeDriftStore) ItemsMissingEmbeddings(_ context.Context, limit int) ([]store.Item, error) {
	return capped(f.missing, limit), nil
}

func (f *fakeDriftStore) ItemsWithStaleEmbeddings(_ context.Context, limit int) ([]store.Item, error) {
	return capped(f.stale, limit), nil
}

func (f *fakeDriftStore) ReplaceEmbedding(_ context.Context, itemID, content string, _ pgvector.Vector) error {
	f.repaired[itemID] = content
	return nil
}

func TestRepairBatchPrefersMissingOverStale(t *testing.T) {
	fs := newFakeDriftStore()
	fs.missing = []store.Item{
		{ID: "m1", Name: "A", Price: 100, Description: "a"},
		{ID: "m2", Name: "B", Price: 200, Description: "b"},
	}
	fs.stale = []store.Item{
		{ID: "s1", Name: "C", Price: 300, Description: "c"},
		{ID: "s2", Name: "D", Price: 400, Description: "d"},
	}

	w := NewWorker(fs, &fakeProvider{}, WorkerConfig{Interval: time.Minute, BatchSize: 3}, testLogger())

	if err := w.repairBatch(context.Background()); err != nil {
		t.Fatalf("repairBatch() error = %v", err)
	}

	if len(fs.repaired) != 3 {
		t.Fatalf("repaired %d items, want batch size 3", len(fs.repaired))
	}
	for _, id := range []string{"m1", "m2", "s1"} {
		if _, ok := fs.repaired[id]; !ok {
			t.Errorf("item %s not repaired; got %v", id, fs.repaired)
		}
	}
	if _, ok := fs.repaired["s2"]; ok {
		t.Error("s2 repaired beyond the batch size")
	}
}

func TestRepairBatchEmbedsRenderedContent(t *testing.T) {
	fs := newFakeDriftStore()
	it := store.Item{ID: "m1", Name: "Espresso", Price: 350, Description: "Double shot"}
	fs.missing = []store.Item{it}

	w := NewWorker(fs, &fakeProvider{}, WorkerConfig{Interval: time.Minute, BatchSize: 10}, testLogger())
	if err := w.repairBatch(context.Background()); err != nil {
		t.Fatalf("repairBatch() error = %v", err)
	}

	if got, want := fs.repaired["m1"], RenderContent(&it); got != want {
		t.Errorf("repaired content = %q, want %q", got, want)
	}
}

func TestRepairBatchSkipsProviderFailures(t *testing.T) {
	fs := newFakeDriftStore()
	fs.missing = []store.Item{{ID: "m1", Name: "A", Price: 100, Description: "a"}}

	w := NewWorker(fs, &fakeProvider{failErr: errors.New("down")}, WorkerConfig{Interval: time.Minute, BatchSize: 10}, testLogger())
	if err := w.repairBatch(context.Background()); err != nil {
		t.Fatalf("repairBatch() error = %v, want nil on per-item failure", err)
	}
	if len(fs.repaired) != 0 {
		t.Errorf("repaired %d items despite provider failure", len(fs.repaired))
	}
}
