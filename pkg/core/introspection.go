package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	StoreType string `json:"store_type"`
	CodecType string `json:"codec_type"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return ServiceState{
		StoreType: componentType(s.profiles, "store"),
		CodecType: componentType(s.codec, "codec"),
	}
}

func componentType(v any, fallback string) string {
	if v == nil {
		return "unknown"
	}
	if comp, ok := v.(introspection.Component); ok {
		return comp.ComponentType()
	}
	return fallback
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
