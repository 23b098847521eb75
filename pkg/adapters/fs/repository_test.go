package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/harp/pkg/core"
	"github.com/aretw0/harp/pkg/git"
	"github.com/aretw0/harp/pkg/org"
)

func newTestRepo(t *testing.T, cfg Config) *Repository {
	t.Helper()
	if cfg.Path == "" {
		cfg.Path = t.TempDir()
	}
	cfg.Codec = org.NewCodec(org.WithLocation(time.UTC))
	repo := NewRepository(cfg)
	if err := repo.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return repo
}

func sampleProfile(name string) core.Profile {
	p := core.NewProfile(name)
	p.Journals[0].Entries = []core.JournalEntry{{
		UUID:     "e1",
		Datetime: time.Date(2024, 3, 2, 8, 15, 0, 0, time.UTC),
		Text:     "Slept badly #sleep(5.5)",
	}}
	return p
}

func TestRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, Config{})
	p := sampleProfile("Jane Doe")

	if err := repo.Put(ctx, p); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(repo.Path, p.UUID+ProfileExt)); err != nil {
		t.Fatalf("profile file not written: %v", err)
	}

	got, err := repo.Get(ctx, p.UUID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "Jane Doe" {
		t.Errorf("Expected name 'Jane Doe', got %q", got.Name)
	}
	entries := got.Journals[0].Entries
	if len(entries) != 1 || len(entries[0].MetricValues) != 1 {
		t.Fatalf("Expected one entry with one metric value, got %+v", entries)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("Expected 1 profile, got %d", len(list))
	}

	if err := repo.Delete(ctx, p.UUID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.Get(ctx, p.UUID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, p.UUID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestRepository_ListSkipsBrokenFiles(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, Config{})

	if err := repo.Put(ctx, sampleProfile("Jane")); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(repo.Path, "broken.org"), []byte("#+TITLE: no id\n"), 0o644)
	os.WriteFile(filepath.Join(repo.Path, "notes.txt"), []byte("ignored"), 0o644)

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("Expected 1 profile, got %d", len(list))
	}
}

func TestRepository_Summaries(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, Config{})
	p := sampleProfile("Jane")
	if err := repo.Put(ctx, p); err != nil {
		t.Fatal(err)
	}

	summaries, err := repo.Summaries(ctx)
	if err != nil {
		t.Fatalf("Summaries failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("Expected 1 summary, got %d", len(summaries))
	}
	if summaries[0].Counts.JournalEntries != 1 || summaries[0].Counts.MetricValues != 1 {
		t.Errorf("Unexpected counts: %+v", summaries[0].Counts)
	}

	if _, err := os.Stat(filepath.Join(repo.Path, DefaultSystemDir, "index.json")); err != nil {
		t.Errorf("Expected index to be saved: %v", err)
	}

	// Files removed behind the repository's back are pruned from the index.
	os.Remove(filepath.Join(repo.Path, p.UUID+ProfileExt))
	summaries, err = repo.Summaries(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 0 {
		t.Errorf("Expected no summaries, got %d", len(summaries))
	}

	state := repo.State().(RepositoryState)
	if state.CacheSize != 0 {
		t.Errorf("Expected empty cache, got %d", state.CacheSize)
	}
	if state.LastScan == nil {
		t.Error("Expected LastScan to be recorded")
	}
}

func TestRepository_SummaryMatchesStoredProfile(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, Config{})
	p := sampleProfile("Jane")
	if err := repo.Put(ctx, p); err != nil {
		t.Fatal(err)
	}

	stored, err := repo.Get(ctx, p.UUID)
	if err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(filepath.Join(repo.Path, p.UUID+ProfileExt))
	if err != nil {
		t.Fatal(err)
	}
	cached, ok := repo.cache.Get(p.UUID+ProfileExt, info.ModTime())
	if !ok {
		t.Fatal("Expected Put to index the profile")
	}
	if want := core.Summarize(stored).Counts; cached.Summary.Counts != want {
		t.Errorf("Cached counts %+v, stored profile counts %+v", cached.Summary.Counts, want)
	}
}

func TestRepository_SummariesUseCache(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, Config{})
	p := sampleProfile("Jane")
	if err := repo.Put(ctx, p); err != nil {
		t.Fatal(err)
	}

	// Corrupt the file but keep its mtime: the cached summary must be served.
	full := filepath.Join(repo.Path, p.UUID+ProfileExt)
	info, _ := os.Stat(full)
	os.WriteFile(full, []byte("garbage"), 0o644)
	os.Chtimes(full, info.ModTime(), info.ModTime())

	summaries, err := repo.Summaries(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 || summaries[0].Name != "Jane" {
		t.Errorf("Expected cached summary, got %+v", summaries)
	}
}

func TestRepository_Assets(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, Config{})

	if err := repo.PutAsset(ctx, "e1-scan.png", []byte{0x89, 'P', 'N', 'G'}); err != nil {
		t.Fatalf("PutAsset failed: %v", err)
	}
	data, err := repo.GetAsset(ctx, "e1-scan.png")
	if err != nil {
		t.Fatalf("GetAsset failed: %v", err)
	}
	if string(data) != "\x89PNG" {
		t.Errorf("Unexpected asset content %q", data)
	}
	if _, err := repo.GetAsset(ctx, "missing.png"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRepository_InvalidNames(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, Config{})

	for _, id := range []string{"", ".", "..", "../escape", `a\b`} {
		if _, err := repo.Get(ctx, id); !errors.Is(err, core.ErrInvalidProfile) {
			t.Errorf("Get(%q): expected ErrInvalidProfile, got %v", id, err)
		}
		if err := repo.PutAsset(ctx, id, nil); !errors.Is(err, core.ErrInvalidProfile) {
			t.Errorf("PutAsset(%q): expected ErrInvalidProfile, got %v", id, err)
		}
	}
}

func TestRepository_ReadOnly(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writable := newTestRepo(t, Config{Path: dir})
	p := sampleProfile("Jane")
	if err := writable.Put(ctx, p); err != nil {
		t.Fatal(err)
	}

	repo := newTestRepo(t, Config{Path: dir, ReadOnly: true})
	if err := repo.Put(ctx, p); !errors.Is(err, core.ErrReadOnly) {
		t.Errorf("Expected ErrReadOnly on Put, got %v", err)
	}
	if err := repo.Delete(ctx, p.UUID); !errors.Is(err, core.ErrReadOnly) {
		t.Errorf("Expected ErrReadOnly on Delete, got %v", err)
	}
	if err := repo.PutAsset(ctx, "k", nil); !errors.Is(err, core.ErrReadOnly) {
		t.Errorf("Expected ErrReadOnly on PutAsset, got %v", err)
	}
	if _, err := repo.Get(ctx, p.UUID); err != nil {
		t.Errorf("Get should work read-only: %v", err)
	}
}

func TestRepository_MustExist(t *testing.T) {
	repo := NewRepository(Config{
		Path:      filepath.Join(t.TempDir(), "nope"),
		Codec:     org.NewCodec(),
		MustExist: true,
	})
	if err := repo.Initialize(context.Background()); err == nil {
		t.Fatal("Expected error for missing path")
	}
}

func TestRepository_Versioned(t *testing.T) {
	if !git.IsInstalled() {
		t.Skip("git not installed")
	}
	ctx := context.Background()
	repo := newTestRepo(t, Config{Versioned: true})
	p := sampleProfile("Jane")

	if err := repo.Put(ctx, p); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	p.Name = "Jane Doe"
	if err := repo.Put(ctx, p); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	history, err := repo.History(ctx, p.UUID, 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("Expected 2 commits, got %v", history)
	}
	if history[0] != "docs(profile): save "+p.UUID {
		t.Errorf("Unexpected commit subject %q", history[0])
	}

	ignore, err := os.ReadFile(filepath.Join(repo.Path, ".gitignore"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(ignore), DefaultSystemDir+"/") {
		t.Errorf("Expected system dir to be ignored, got %q", ignore)
	}

	if err := repo.Delete(ctx, p.UUID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(repo.Path, p.UUID+ProfileExt)); !os.IsNotExist(err) {
		t.Errorf("Expected file to be removed, got %v", err)
	}
}

func TestRepository_HistoryRequiresVersioning(t *testing.T) {
	repo := newTestRepo(t, Config{})
	if _, err := repo.History(context.Background(), "x", 1); err == nil {
		t.Fatal("Expected error for unversioned repository")
	}
}
