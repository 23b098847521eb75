package badger

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Path       string `json:"path,omitempty"`
	InMemory   bool   `json:"in_memory"`
	ReadOnly   bool   `json:"read_only"`
	Serializer string `json:"serializer"`
	LSMSize    int64  `json:"lsm_size"`
	VLogSize   int64  `json:"vlog_size"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	lsm, vlog := s.db.Size()
	return StoreState{
		Path:       s.path,
		InMemory:   s.inMemory,
		ReadOnly:   s.readOnly,
		Serializer: s.serializer.Name(),
		LSMSize:    lsm,
		VLogSize:   vlog,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "badger-store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
