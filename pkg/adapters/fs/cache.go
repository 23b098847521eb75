package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/harp/pkg/core"
)

// indexVersion is bumped whenever the summary layout changes; older indexes
// are discarded on load.
const indexVersion = 1

// indexEntry is the cached summary of one profile file.
type indexEntry struct {
	Summary      core.ProfileSummary `json:"summary"`
	LastModified time.Time           `json:"lastModified"`
}

type index struct {
	Version int                    `json:"version"`
	Entries map[string]*indexEntry `json:"entries"` // keyed by file name, e.g. "<uuid>.org"
	dirty   bool
	mu      sync.RWMutex
}

// cache keeps profile summaries keyed by file modification time so listing
// does not re-parse unchanged profiles.
type cache struct {
	Path  string
	index *index
}

func newCache(root, systemDir string) *cache {
	return &cache{
		Path: filepath.Join(root, systemDir, "index.json"),
		index: &index{
			Version: indexVersion,
			Entries: make(map[string]*indexEntry),
		},
	}
}

// Load reads the index from disk. A missing, corrupt or outdated index
// starts empty.
func (c *cache) Load() error {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	data, err := os.ReadFile(c.Path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	var loaded struct {
		Version int                    `json:"version"`
		Entries map[string]*indexEntry `json:"entries"`
	}
	if err := json.Unmarshal(data, &loaded); err != nil || loaded.Version != indexVersion || loaded.Entries == nil {
		c.index.Entries = make(map[string]*indexEntry)
		c.index.dirty = true
		return nil
	}

	c.index.Entries = loaded.Entries
	c.index.dirty = false
	return nil
}

// Save persists the index if it changed.
func (c *cache) Save() error {
	c.index.mu.RLock()
	if !c.index.dirty {
		c.index.mu.RUnlock()
		return nil
	}
	data, err := json.MarshalIndent(c.index, "", "  ")
	c.index.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
		return err
	}
	if err := WriteFileAtomic(c.Path, data, 0o644); err != nil {
		return err
	}

	c.index.mu.Lock()
	c.index.dirty = false
	c.index.mu.Unlock()
	return nil
}

// Get returns the entry for name if it was recorded for mtime.
func (c *cache) Get(name string, mtime time.Time) (*indexEntry, bool) {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()

	entry, ok := c.index.Entries[name]
	if !ok || !entry.LastModified.Equal(mtime) {
		return nil, false
	}
	return entry, true
}

func (c *cache) Set(name string, entry *indexEntry) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()
	c.index.Entries[name] = entry
	c.index.dirty = true
}

// Prune drops entries whose file is not in keep.
func (c *cache) Prune(keep map[string]bool) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()
	for name := range c.index.Entries {
		if !keep[name] {
			delete(c.index.Entries, name)
			c.index.dirty = true
		}
	}
}

func (c *cache) Delete(name string) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()
	if _, ok := c.index.Entries[name]; ok {
		delete(c.index.Entries, name)
		c.index.dirty = true
	}
}

func (c *cache) Len() int {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()
	return len(c.index.Entries)
}
