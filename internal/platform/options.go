package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/harp/pkg/core"
)

// options holds the internal configuration for building a service.
type options struct {
	profiles  core.ProfileStore
	assets    core.AssetStore
	logger    *slog.Logger
	config    Config
	location  *time.Location
	inMemory  bool
	forceTemp bool
	devSafety bool
	mustExist bool
}

// Option defines a functional option for configuring harp.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		config:    DefaultConfig(),
		devSafety: true,
	}
}

// WithConfig replaces the whole configuration, usually the result of LoadConfig.
// Options given after it still apply on top.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithLogger sets the logger for the service and its stores.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStores injects storage adapters, skipping the configured backend.
// A nil assets store falls back to profiles when it implements core.AssetStore.
func WithStores(profiles core.ProfileStore, assets core.AssetStore) Option {
	return func(o *options) {
		o.profiles = profiles
		o.assets = assets
	}
}

// WithBackend selects the storage backend by name ("fs" or "badger").
func WithBackend(name string) Option {
	return func(o *options) {
		o.config.Backend = name
	}
}

// WithVersioning enables git history for the fs backend.
func WithVersioning(enabled bool) Option {
	return func(o *options) {
		o.config.Versioned = enabled
	}
}

// WithSerializer selects how the Badger backend encodes profiles ("json" or "codec").
func WithSerializer(name string) Option {
	return func(o *options) {
		o.config.Serializer = name
	}
}

// WithReadOnly enables read-only mode. Writes fail with core.ErrReadOnly and
// the dev sandbox is bypassed, since nothing can be damaged.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.config.ReadOnly = enabled
	}
}

// WithLocation sets the zone in which profile timestamps are read,
// overriding the configured timezone.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		o.location = loc
	}
}

// WithInMemory keeps the Badger backend in memory. Useful for tests.
func WithInMemory(enabled bool) Option {
	return func(o *options) {
		o.inMemory = enabled
	}
}

// WithForceTemp forces the data directory into the dev sandbox.
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.forceTemp = force
	}
}

// WithMustExist refuses to create the data directory.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithDevSafety controls the sandbox applied under `go run` and `go test`.
// Enabled by default: the data directory is re-rooted under the temp dir.
//
// CAUTION: only disable this when the code path is known to be safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = enabled
	}
}
