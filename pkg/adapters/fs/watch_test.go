package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/harp/pkg/core"
)

func waitForEvent(t *testing.T, events <-chan core.Event, id string) core.Event {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case e, ok := <-events:
			if !ok {
				t.Fatal("events channel closed")
			}
			if e.ID == id {
				return e
			}
		case <-timeout:
			t.Fatalf("no event for %s", id)
		}
	}
}

func TestRepository_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := newTestRepo(t, Config{})
	events, err := repo.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	if !repo.State().(RepositoryState).WatcherActive {
		t.Error("Expected watcher to be active")
	}

	p := sampleProfile("Jane")
	if err := repo.Put(ctx, p); err != nil {
		t.Fatal(err)
	}
	waitForEvent(t, events, p.UUID)

	os.Remove(filepath.Join(repo.Path, p.UUID+ProfileExt))
	e := waitForEvent(t, events, p.UUID)
	if e.Type != core.EventDelete {
		t.Errorf("Expected DELETE, got %s", e.Type)
	}

	cancel()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				if repo.State().(RepositoryState).WatcherActive {
					t.Error("Expected watcher to be inactive after close")
				}
				return
			}
		case <-deadline:
			t.Fatal("events channel not closed after cancel")
		}
	}
}

func TestWatch_SingleFile(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	target := filepath.Join(dir, "jane.org")
	os.WriteFile(target, []byte("v1"), 0o644)

	events, err := Watch(ctx, target, nil)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	// Neighbours and temp files are filtered out.
	os.WriteFile(filepath.Join(dir, "other.org"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, TempFilePrefix+"1"), []byte("x"), 0o644)
	os.WriteFile(target, []byte("v2"), 0o644)

	e := waitForEvent(t, events, "jane")
	if e.Type != core.EventModify {
		t.Errorf("Expected MODIFY, got %s", e.Type)
	}
}

func TestWatch_MissingPath(t *testing.T) {
	if _, err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope"), nil); err == nil {
		t.Fatal("Expected error for missing path")
	}
}

func TestEscapeMeta(t *testing.T) {
	if got := escapeMeta("a[1]*.org"); got != `a\[1\]\*.org` {
		t.Errorf("unexpected escape: %s", got)
	}
}

func TestDebouncer_Coalesces(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)
	got := make(chan core.Event, 4)
	emit := func(e core.Event) { got <- e }

	d.add(core.Event{Type: core.EventCreate, ID: "a"}, emit)
	d.add(core.Event{Type: core.EventModify, ID: "a"}, emit)
	d.add(core.Event{Type: core.EventCreate, ID: "b"}, emit)

	seen := map[string]core.EventType{}
	for i := 0; i < 2; i++ {
		select {
		case e := <-got:
			seen[e.ID] = e.Type
		case <-time.After(time.Second):
			t.Fatal("debounced event not delivered")
		}
	}
	if seen["a"] != core.EventModify || seen["b"] != core.EventCreate {
		t.Errorf("unexpected events: %v", seen)
	}

	d.stopAndWait(time.Second)
	d.add(core.Event{ID: "c"}, emit)
	select {
	case e := <-got:
		t.Errorf("event delivered after stop: %v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRepository_WatchRefreshesSummaries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	repo := newTestRepo(t, Config{})
	events, err := repo.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	// Written behind the repository's back, as an editor would.
	p := sampleProfile("Jane")
	full := filepath.Join(repo.Path, p.UUID+ProfileExt)
	if err := WriteFileAtomic(full, []byte(repo.config.Codec.Format(p)), 0o644); err != nil {
		t.Fatal(err)
	}
	waitForEvent(t, events, p.UUID)

	cancel()
	for range events {
	}

	info, err := os.Stat(full)
	if err != nil {
		t.Fatal(err)
	}
	entry, ok := repo.cache.Get(p.UUID+ProfileExt, info.ModTime())
	if !ok {
		t.Fatal("Expected summary to be cached by the watcher")
	}
	if entry.Summary.Name != "Jane" {
		t.Errorf("Unexpected summary %+v", entry.Summary)
	}
}
