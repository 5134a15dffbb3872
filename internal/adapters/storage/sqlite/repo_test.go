package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/evanschultz/kanwow/internal/domain"
	"github.com/evanschultz/kanwow/internal/store"
)

func TestRepository_KVLifecycle(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "kanwow.db")
	repo, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	if _, ok, err := repo.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := repo.Put(ctx, "k", []byte("one")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := repo.Put(ctx, "k", []byte("two")); err != nil {
		t.Fatalf("Put() overwrite error = %v", err)
	}
	got, ok, err := repo.Get(ctx, "k")
	if err != nil || !ok || string(got) != "two" {
		t.Fatalf("Get() = %q %v %v", got, ok, err)
	}
	updated, ok, err := repo.UpdatedAt(ctx, "k")
	if err != nil || !ok || !updated.Equal(fixed) {
		t.Fatalf("UpdatedAt() = %v %v %v", updated, ok, err)
	}
	if err := repo.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := repo.Get(ctx, "k"); ok {
		t.Fatal("expected key deleted")
	}
	if err := repo.Put(ctx, "  ", []byte("x")); err == nil {
		t.Fatal("expected empty key to be rejected")
	}
}

func TestRepository_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "kanwow.db")
	repo, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := repo.Put(ctx, "k", []byte("kept")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	_ = repo.Close()

	reopened, err := Open(dbPath)
	if err != nil {
		t.Fatalf("re-Open() error = %v", err)
	}
	defer func() { _ = reopened.Close() }()
	got, ok, err := reopened.Get(ctx, "k")
	if err != nil || !ok || string(got) != "kept" {
		t.Fatalf("Get() after reopen = %q %v %v", got, ok, err)
	}
}

func TestRepository_InMemoryIsolation(t *testing.T) {
	ctx := context.Background()
	a, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = a.Close() }()
	b, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = b.Close() }()
	if err := a.Put(ctx, "k", []byte("a")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, ok, _ := b.Get(ctx, "k"); ok {
		t.Fatal("expected in-memory databases to be isolated")
	}
}

func TestRepository_BacksBoardStore(t *testing.T) {
	ctx := context.Background()
	repo, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = repo.Close() }()

	col, _ := domain.NewColumn("col-1", "Backlog", "", 280, 200)
	defaults, _ := domain.NewBoard(col)
	s := store.New(repo, nil, store.Options{DefaultBoard: defaults})

	board := s.Load(ctx)
	task, _ := domain.NewTask(domain.TaskInput{ID: "t1", Title: "Persist me"}, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	if err := board.AddTask(task, "col-1"); err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	s.Save(ctx, board)

	again := store.New(repo, nil, store.Options{DefaultBoard: defaults}).Load(ctx)
	if got, ok := again.Task("t1"); !ok || got.Title != "Persist me" {
		t.Fatalf("expected persisted task, got %#v", again.Tasks)
	}
	if _, ok, _ := repo.Get(ctx, store.DefaultKey); !ok {
		t.Fatal("expected board under default key")
	}
}
