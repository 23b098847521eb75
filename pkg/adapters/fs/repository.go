// Package fs stores profiles as plain Org files in a directory and watches
// that directory for edits made outside harp.
//
// Layout:
//
//	<root>/<uuid>.org          one profile per file
//	<root>/assets/<key>        attachment blobs, key = <parent uuid>-<file name>
//	<root>/.harp/index.json    cached profile summaries
//
// When versioning is enabled every write is committed to a git repository
// rooted at <root>.
package fs

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/harp/pkg/core"
	"github.com/aretw0/harp/pkg/git"
)

const (
	// ProfileExt is the extension of profile files.
	ProfileExt = ".org"
	// DefaultSystemDir holds harp's own bookkeeping inside the root.
	DefaultSystemDir = ".harp"

	assetsDir = "assets"
)

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path      string
	Codec     core.Codec
	Logger    *slog.Logger
	SystemDir string
	ReadOnly  bool
	// Versioned commits every change to a git repository at Path.
	Versioned bool
	// MustExist refuses to create Path.
	MustExist bool
}

// Repository implements core.ProfileStore and core.AssetStore on a directory.
type Repository struct {
	Path   string
	config Config
	logger *slog.Logger
	cache  *cache
	git    *git.Client

	mu            sync.RWMutex
	watcherActive bool
	lastScan      *time.Time
}

// NewRepository creates a filesystem-backed repository. Call Initialize
// before use.
func NewRepository(config Config) *Repository {
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Repository{
		Path:   config.Path,
		config: config,
		logger: logger,
		cache:  newCache(config.Path, config.SystemDir),
	}
	if config.Versioned {
		r.git = git.NewClient(config.Path, logger)
	}
	return r
}

// Initialize creates the directory layout, loads the summary cache and, when
// versioned, the git repository.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("data path does not exist: %s", r.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("data path is not a directory: %s", r.Path)
		}
	}
	if !r.config.ReadOnly {
		if err := os.MkdirAll(filepath.Join(r.Path, assetsDir), 0o755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	if err := r.cache.Load(); err != nil {
		r.logger.Warn("ignoring summary cache", "error", err)
	}

	if r.git == nil || r.config.ReadOnly {
		return nil
	}
	if !git.IsInstalled() {
		return errors.New("versioning requires git, which is not installed")
	}
	if r.git.IsRepo() {
		return nil
	}
	if err := r.git.Init(ctx); err != nil {
		return err
	}
	return r.ensureIgnore()
}

// ensureIgnore keeps the system dir and lock file out of history.
func (r *Repository) ensureIgnore() error {
	path := filepath.Join(r.Path, ".gitignore")
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	content := string(data)
	var missing []string
	for _, line := range []string{r.config.SystemDir + "/", git.LockName} {
		if !strings.Contains(content, line) {
			missing = append(missing, line)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += strings.Join(missing, "\n") + "\n"
	return WriteFileAtomic(path, []byte(content), 0o644)
}

// Put implements core.ProfileStore.
func (r *Repository) Put(ctx context.Context, p core.Profile) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	name, err := profileFile(p.UUID)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	full := filepath.Join(r.Path, name)
	text := r.config.Codec.Format(p)
	if err := WriteFileAtomic(full, []byte(text), 0o644); err != nil {
		return err
	}
	r.cacheWritten(name, full, text)
	return r.commit(ctx, git.FormatCommitMessage(git.CommitTypeDocs, "profile", "save "+p.UUID, p.Name), name, false)
}

// cacheWritten indexes the summary of text as it reads back, since derived
// fields such as metric values come from the entry text rather than p.
func (r *Repository) cacheWritten(name, full, text string) {
	stored, err := r.config.Codec.Parse(text)
	info, statErr := os.Stat(full)
	if err != nil || statErr != nil {
		r.cache.Delete(name)
	} else {
		r.cache.Set(name, &indexEntry{Summary: core.Summarize(stored), LastModified: info.ModTime()})
	}
	r.saveCache()
}

// Get implements core.ProfileStore.
func (r *Repository) Get(ctx context.Context, id string) (core.Profile, error) {
	name, err := profileFile(id)
	if err != nil {
		return core.Profile{}, err
	}
	if err := ctx.Err(); err != nil {
		return core.Profile{}, err
	}
	return r.read(name)
}

func (r *Repository) read(name string) (core.Profile, error) {
	data, err := os.ReadFile(filepath.Join(r.Path, name))
	if os.IsNotExist(err) {
		return core.Profile{}, fmt.Errorf("profile %s: %w", strings.TrimSuffix(name, ProfileExt), core.ErrNotFound)
	}
	if err != nil {
		return core.Profile{}, err
	}
	p, err := r.config.Codec.Parse(string(data))
	if err != nil {
		return core.Profile{}, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return p, nil
}

// List implements core.ProfileStore. Files that fail to parse are logged and
// left out.
func (r *Repository) List(ctx context.Context) ([]core.Profile, error) {
	names, err := r.profileFiles()
	if err != nil {
		return nil, err
	}
	var out []core.Profile
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := r.read(name)
		if err != nil {
			r.logger.Warn("skipping profile file", "file", name, "error", err)
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Summaries returns the summary of every profile, re-parsing only the files
// modified since they were last indexed.
func (r *Repository) Summaries(ctx context.Context) ([]core.ProfileSummary, error) {
	names, err := r.profileFiles()
	if err != nil {
		return nil, err
	}

	keep := make(map[string]bool, len(names))
	var out []core.ProfileSummary
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		keep[name] = true

		info, err := os.Stat(filepath.Join(r.Path, name))
		if err != nil {
			continue
		}
		if entry, ok := r.cache.Get(name, info.ModTime()); ok {
			out = append(out, entry.Summary)
			continue
		}
		p, err := r.read(name)
		if err != nil {
			r.logger.Warn("skipping profile file", "file", name, "error", err)
			continue
		}
		s := core.Summarize(p)
		r.cache.Set(name, &indexEntry{Summary: s, LastModified: info.ModTime()})
		out = append(out, s)
	}

	r.cache.Prune(keep)
	if !r.config.ReadOnly {
		r.saveCache()
	}
	r.recordScan()
	return out, nil
}

// refresh brings the summary of a changed profile file up to date.
func (r *Repository) refresh(_ context.Context, e core.Event) error {
	name := e.ID + ProfileExt
	if e.Type == core.EventDelete {
		r.cache.Delete(name)
	} else {
		info, err := os.Stat(filepath.Join(r.Path, name))
		if err != nil {
			if os.IsNotExist(err) {
				r.cache.Delete(name)
				return nil
			}
			return err
		}
		if _, ok := r.cache.Get(name, info.ModTime()); ok {
			return nil
		}
		p, err := r.read(name)
		if err != nil {
			return err
		}
		r.cache.Set(name, &indexEntry{Summary: core.Summarize(p), LastModified: info.ModTime()})
	}
	if !r.config.ReadOnly {
		r.saveCache()
	}
	return nil
}

// Delete implements core.ProfileStore.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	name, err := profileFile(id)
	if err != nil {
		return err
	}
	full := filepath.Join(r.Path, name)
	if _, err := os.Stat(full); os.IsNotExist(err) {
		return fmt.Errorf("profile %s: %w", id, core.ErrNotFound)
	}

	if r.git != nil {
		if err := r.commit(ctx, git.FormatCommitMessage(git.CommitTypeChore, "profile", "delete "+id, ""), name, true); err != nil {
			return err
		}
	} else if err := os.Remove(full); err != nil {
		return fmt.Errorf("failed to remove file: %w", err)
	}

	r.cache.Delete(name)
	r.saveCache()
	return nil
}

// PutAsset implements core.AssetStore.
func (r *Repository) PutAsset(ctx context.Context, key string, data []byte) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	if err := checkName(key); err != nil {
		return err
	}
	rel := filepath.Join(assetsDir, key)
	if err := WriteFileAtomic(filepath.Join(r.Path, rel), data, 0o644); err != nil {
		return err
	}
	return r.commit(ctx, git.FormatCommitMessage(git.CommitTypeFeat, "asset", "attach "+key, ""), rel, false)
}

// GetAsset implements core.AssetStore.
func (r *Repository) GetAsset(ctx context.Context, key string) ([]byte, error) {
	if err := checkName(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(r.Path, assetsDir, key))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("asset %s: %w", key, core.ErrNotFound)
	}
	return data, err
}

// History returns the commit subjects of a profile, newest first, e.g.
// "docs(profile): save <uuid>".
func (r *Repository) History(ctx context.Context, id string, n int) ([]string, error) {
	if r.git == nil {
		return nil, errors.New("repository is not versioned")
	}
	name, err := profileFile(id)
	if err != nil {
		return nil, err
	}
	return r.git.Log(ctx, name, n)
}

// commit stages rel (or removes it) and records the change. Unversioned
// repositories skip this.
func (r *Repository) commit(ctx context.Context, msg, rel string, remove bool) error {
	if r.git == nil {
		return nil
	}
	unlock, err := r.git.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if remove {
		err = r.git.Rm(ctx, rel)
	} else {
		err = r.git.Add(ctx, rel)
	}
	if err != nil {
		return err
	}
	return r.git.Commit(ctx, msg)
}

// profileFiles lists the profile file names directly under the root, sorted.
func (r *Repository) profileFiles() ([]string, error) {
	names, err := doublestar.Glob(os.DirFS(r.Path), "*"+ProfileExt)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func (r *Repository) saveCache() {
	if err := r.cache.Save(); err != nil {
		r.logger.Warn("failed to save summary cache", "error", err)
	}
}

func profileFile(id string) (string, error) {
	if err := checkName(id); err != nil {
		return "", err
	}
	return id + ProfileExt, nil
}

// checkName rejects ids and keys that would escape their directory.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: invalid name %q", core.ErrInvalidProfile, name)
	}
	return nil
}

var (
	_ core.ProfileStore  = (*Repository)(nil)
	_ core.AssetStore    = (*Repository)(nil)
	_ core.SummaryLister = (*Repository)(nil)
)
