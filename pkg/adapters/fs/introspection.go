package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path          string     `json:"path"`
	SystemDir     string     `json:"system_dir"`
	CacheSize     int        `json:"cache_size"`
	ReadOnly      bool       `json:"read_only"`
	Versioned     bool       `json:"versioned"`
	WatcherActive bool       `json:"watcher_active"`
	LastScan      *time.Time `json:"last_scan,omitempty"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return RepositoryState{
		Path:          r.Path,
		SystemDir:     r.config.SystemDir,
		CacheSize:     r.cache.Len(),
		ReadOnly:      r.config.ReadOnly,
		Versioned:     r.git != nil,
		WatcherActive: r.watcherActive,
		LastScan:      r.lastScan,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "fs-repository"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)

func (r *Repository) setWatcherActive(active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watcherActive = active
}

func (r *Repository) recordScan() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.lastScan = &now
}
