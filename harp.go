package harp

import (
	"log/slog"
	"time"

	"github.com/aretw0/harp/internal/platform"
	"github.com/aretw0/harp/pkg/core"
	"github.com/aretw0/harp/pkg/org"
)

// --- Configuration ---

// Option defines a functional option for configuring harp.
type Option = platform.Option

// Config is the file and environment configuration.
type Config = platform.Config

// Storage backends.
const (
	BackendFS     = platform.BackendFS
	BackendBadger = platform.BackendBadger
)

// LoadConfig reads the YAML configuration at path (or the default location
// when empty) and applies HARP_* environment overrides.
func LoadConfig(path string) (Config, error) {
	return platform.LoadConfig(path)
}

// WithConfig applies a loaded configuration.
func WithConfig(cfg Config) Option {
	return platform.WithConfig(cfg)
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStores injects custom storage adapters.
func WithStores(profiles core.ProfileStore, assets core.AssetStore) Option {
	return platform.WithStores(profiles, assets)
}

// WithBackend selects the storage backend by name.
func WithBackend(name string) Option {
	return platform.WithBackend(name)
}

// WithVersioning enables git history for the fs backend.
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithSerializer selects the Badger value encoding ("json" or "codec").
func WithSerializer(name string) Option {
	return platform.WithSerializer(name)
}

// WithReadOnly enables read-only mode.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithLocation sets the zone in which timestamps are read.
func WithLocation(loc *time.Location) Option {
	return platform.WithLocation(loc)
}

// WithInMemory keeps the Badger backend in memory.
func WithInMemory(enabled bool) Option {
	return platform.WithInMemory(enabled)
}

// WithForceTemp forces the data directory into the dev sandbox.
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist refuses to create the data directory.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithDevSafety controls the sandbox applied under `go run` and `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// --- Factory ---

// New creates a harp service over the data directory at path.
func New(path string, opts ...Option) (*core.Service, error) {
	return platform.New(path, opts...)
}

// --- Codec ---

// Parse reads a profile document.
func Parse(text string) (core.Profile, error) {
	return org.Parse(text)
}

// Format writes a profile document.
func Format(p core.Profile) string {
	return org.Format(p)
}

// --- Safety & Utils ---

// ResolveDataPath determines the directory actually used, applying the dev sandbox.
func ResolveDataPath(userPath string, forceTemp bool) string {
	return platform.ResolveDataPath(userPath, forceTemp)
}

// IsDevRun reports whether the process runs under `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindDataRoot looks upwards from startDir for a harp data directory.
func FindDataRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
