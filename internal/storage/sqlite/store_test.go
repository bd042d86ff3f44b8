package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/parityroll/internal/trace"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleTrace() []trace.Entry {
	return []trace.Entry{
		{Seq: 0, Op: "roll", Arg: 10, Result: 8},
		{Seq: 1, Op: "roll", Arg: 10, Result: 6},
		{Seq: 2, Op: "die", Arg: 6, Result: 5},
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.SaveRun(ctx, "go-engine", "smoke", 42, sampleTrace())
	if err != nil {
		t.Fatalf("save run: %v", err)
	}

	run, entries, err := store.LoadRun(ctx, id)
	if err != nil {
		t.Fatalf("load run: %v", err)
	}
	if run.Label != "go-engine" || run.Scenario != "smoke" || run.Seed != 42 {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.CreatedAt.IsZero() {
		t.Fatal("created_at not set")
	}
	if len(entries) != 3 {
		t.Fatalf("loaded %d entries, want 3", len(entries))
	}
	for i, want := range sampleTrace() {
		if entries[i] != want {
			t.Fatalf("entry %d = %+v, want %+v", i, entries[i], want)
		}
	}
}

// Seeds and results use the full 64-bit range; the int64 column must
// round-trip values above 1<<63.
func TestSaveRunRoundTripsLargeValues(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	entries := []trace.Entry{{Seq: 0, Op: "roll", Arg: 10, Result: 0xBBD61FA5105A596A}}
	id, err := store.SaveRun(ctx, "go-engine", "smoke", 0xFFFFFFFFFFFFFFFF, entries)
	if err != nil {
		t.Fatalf("save run: %v", err)
	}
	run, loaded, err := store.LoadRun(ctx, id)
	if err != nil {
		t.Fatalf("load run: %v", err)
	}
	if run.Seed != 0xFFFFFFFFFFFFFFFF {
		t.Fatalf("seed = %#x, want all ones", run.Seed)
	}
	if loaded[0].Result != 0xBBD61FA5105A596A {
		t.Fatalf("result = %#x", loaded[0].Result)
	}
}

func TestSaveRunRequiresLabel(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.SaveRun(context.Background(), "  ", "smoke", 1, nil); err == nil {
		t.Fatal("expected error for blank label")
	}
}

func TestLoadRunMissing(t *testing.T) {
	store := openTestStore(t)
	if _, _, err := store.LoadRun(context.Background(), 999); err == nil {
		t.Fatal("expected error for missing run")
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	store.clock = func() time.Time { return now }
	first, err := store.SaveRun(ctx, "go-engine", "smoke", 1, nil)
	if err != nil {
		t.Fatalf("save first: %v", err)
	}
	store.clock = func() time.Time { return now.Add(time.Minute) }
	second, err := store.SaveRun(ctx, "rust-engine", "smoke", 1, nil)
	if err != nil {
		t.Fatalf("save second: %v", err)
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("listed %d runs, want 2", len(runs))
	}
	if runs[0].ID != second || runs[1].ID != first {
		t.Fatalf("unexpected order: %d then %d", runs[0].ID, runs[1].ID)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for blank path")
	}
}

func TestCloseNilSafe(t *testing.T) {
	var store *Store
	if err := store.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}
