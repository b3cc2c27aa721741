package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/pthm-cable/petri/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "petri.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestWriteReadReplace(t *testing.T) {
	ctx := context.Background()
	store := openTempStore(t)

	if err := store.WriteText(ctx, "population", "Genome-> Ag:1\n"); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if err := store.WriteText(ctx, "population", "Genome-> Ag:2\n"); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if err := store.WriteText(ctx, "hall_of_fame", ""); err != nil {
		t.Fatalf("WriteText: %v", err)
	}

	got, err := store.ReadText(ctx, "population")
	if err != nil {
		t.Fatalf("ReadText: %v", err)
	}
	if got != "Genome-> Ag:2\n" {
		t.Errorf("ReadText = %q", got)
	}

	names, err := store.Names(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(names, []string{"hall_of_fame", "population"}) {
		t.Errorf("names = %v", names)
	}
}

func TestReadMissing(t *testing.T) {
	store := openTempStore(t)
	if _, err := store.ReadText(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestReopenKeepsDocuments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "petri.db")
	ctx := context.Background()

	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.WriteText(ctx, "population", "x"); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	store, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if got, err := store.ReadText(ctx, "population"); err != nil || got != "x" {
		t.Errorf("ReadText = %q, %v", got, err)
	}
}
