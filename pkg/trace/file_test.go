package trace

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/morphtree/pkg/errors"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	tr := sampleTrace("wave")
	if err := store.Save(ctx, tr); err != nil {
		t.Fatalf("Save() = %v", err)
	}

	for _, ref := range []string{tr.ID, "wave", tr.ID[:8]} {
		got, err := store.Load(ctx, ref)
		if err != nil {
			t.Fatalf("Load(%q) = %v", ref, err)
		}
		if got.ID != tr.ID || len(got.Frames) != len(tr.Frames) {
			t.Errorf("Load(%q) = %s with %d frames", ref, got.ID, len(got.Frames))
		}
		if got.Frames[1] != nil {
			t.Errorf("Load(%q): empty frame decoded as %v", ref, got.Frames[1])
		}
		if got.Interval != tr.Interval {
			t.Errorf("Interval = %v, want %v", got.Interval, tr.Interval)
		}
	}
}

func TestFileStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	older := sampleTrace("older")
	older.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := sampleTrace("newer")
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)
	for _, tr := range []*Trace{older, newer} {
		if err := store.Save(ctx, tr); err != nil {
			t.Fatal(err)
		}
	}
	// Stray files are ignored.
	if err := os.WriteFile(filepath.Join(store.Path(), "junk.json"), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("List() returned %d traces, want 2", len(list))
	}
	if list[0].Name != "newer" || list[1].Name != "older" {
		t.Errorf("order = %s, %s", list[0].Name, list[1].Name)
	}
	if list[0].Frames != 3 {
		t.Errorf("Frames = %d, want 3", list[0].Frames)
	}
}

func TestFileStoreDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	tr := sampleTrace("gone")
	if err := store.Save(ctx, tr); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "gone"); err != nil {
		t.Fatalf("Delete() = %v", err)
	}
	if _, err := store.Load(ctx, tr.ID); !errors.Is(err, errors.ErrCodeTraceNotFound) {
		t.Errorf("Load after delete = %v, want TRACE_NOT_FOUND", err)
	}
	if err := store.Delete(ctx, "gone"); !errors.Is(err, errors.ErrCodeTraceNotFound) {
		t.Errorf("second Delete = %v, want TRACE_NOT_FOUND", err)
	}
}

func TestFileStoreRejectsInvalid(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	tr := sampleTrace("bad name!")
	if err := store.Save(context.Background(), tr); err == nil {
		t.Error("Save() accepted an invalid name")
	}
}

func TestFileStoreRefStaysInsideDir(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewFileStore(filepath.Join(root, "traces"))
	if err != nil {
		t.Fatal(err)
	}
	outside := filepath.Join(root, "x.json")
	if err := os.WriteFile(outside, []byte(`{"name":"x"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, ref := range []string{"../x", "..", "a/b", "/etc/passwd", ""} {
		if err := store.Delete(ctx, ref); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Delete(%q) = %v, want INVALID_INPUT", ref, err)
		}
		if _, err := store.Load(ctx, ref); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Load(%q) = %v, want INVALID_INPUT", ref, err)
		}
	}
	if _, err := os.Stat(outside); err != nil {
		t.Errorf("file outside the store was touched: %v", err)
	}
}

func TestNewFileStoreEmptyDir(t *testing.T) {
	if _, err := NewFileStore(""); err == nil {
		t.Error("expected error for empty dir")
	}
}
