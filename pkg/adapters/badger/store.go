// Package badger stores profiles and attachment blobs in an embedded
// BadgerDB database.
//
// Keys are namespaced by kind:
//
//	profile/<uuid>                 serialized profile
//	asset/<parent uuid>-<file>     raw attachment bytes
package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/aretw0/harp/pkg/core"
)

const (
	profilePrefix = "profile/"
	assetPrefix   = "asset/"
)

// Config holds configuration for a Store.
type Config struct {
	// Path is the directory for database files. Ignored when InMemory is true.
	Path string

	// InMemory keeps everything in RAM. Useful for tests.
	InMemory bool

	// SyncWrites fsyncs every commit.
	SyncWrites bool

	// ReadOnly rejects writes with core.ErrReadOnly.
	ReadOnly bool

	// Logger receives BadgerDB's own logs. If nil, they are discarded.
	Logger *slog.Logger

	// Serializer encodes profile values. Defaults to JSON.
	Serializer Serializer
}

// DefaultConfig returns the configuration for a persistent store at path.
func DefaultConfig(path string) Config {
	return Config{
		Path:       path,
		SyncWrites: true,
	}
}

// InMemoryConfig returns a configuration for tests.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Store implements core.ProfileStore and core.AssetStore on top of BadgerDB.
// It is safe for concurrent use.
type Store struct {
	db         *badger.DB
	serializer Serializer
	readOnly   bool
	path       string
	inMemory   bool
}

// Open opens the database described by cfg. The caller must Close it.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	serializer := cfg.Serializer
	if serializer == nil {
		serializer = JSONSerializer{}
	}

	return &Store{
		db:         db,
		serializer: serializer,
		readOnly:   cfg.ReadOnly,
		path:       cfg.Path,
		inMemory:   cfg.InMemory,
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put implements core.ProfileStore.
func (s *Store) Put(ctx context.Context, p core.Profile) error {
	if s.readOnly {
		return core.ErrReadOnly
	}
	data, err := s.serializer.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile %s: %w", p.UUID, err)
	}
	return s.update(ctx, func(txn *badger.Txn) error {
		return txn.Set([]byte(profilePrefix+p.UUID), data)
	})
}

// Get implements core.ProfileStore.
func (s *Store) Get(ctx context.Context, id string) (core.Profile, error) {
	var p core.Profile
	err := s.view(ctx, func(txn *badger.Txn) error {
		data, err := getValue(txn, profilePrefix+id)
		if err != nil {
			return err
		}
		p, err = s.serializer.Unmarshal(data)
		return err
	})
	if err != nil {
		return core.Profile{}, fmt.Errorf("get profile %s: %w", id, err)
	}
	return p, nil
}

// List implements core.ProfileStore. Profiles come back in key order.
func (s *Store) List(ctx context.Context) ([]core.Profile, error) {
	var out []core.Profile
	err := s.view(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(profilePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			data, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			p, err := s.serializer.Unmarshal(data)
			if err != nil {
				return fmt.Errorf("decode %s: %w", item.Key(), err)
			}
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return out, nil
}

// Delete implements core.ProfileStore.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s.readOnly {
		return core.ErrReadOnly
	}
	key := []byte(profilePrefix + id)
	err := s.update(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return mapNotFound(err)
		}
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("delete profile %s: %w", id, err)
	}
	return nil
}

// PutAsset implements core.AssetStore.
func (s *Store) PutAsset(ctx context.Context, key string, data []byte) error {
	if s.readOnly {
		return core.ErrReadOnly
	}
	return s.update(ctx, func(txn *badger.Txn) error {
		return txn.Set([]byte(assetPrefix+key), data)
	})
}

// GetAsset implements core.AssetStore.
func (s *Store) GetAsset(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		data, err = getValue(txn, assetPrefix+key)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get asset %s: %w", key, err)
	}
	return data, nil
}

func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	return s.db.Update(fn)
}

func (s *Store) view(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	return s.db.View(fn)
}

func getValue(txn *badger.Txn, key string) ([]byte, error) {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return nil, mapNotFound(err)
	}
	return item.ValueCopy(nil)
}

func mapNotFound(err error) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return core.ErrNotFound
	}
	return err
}

var (
	_ core.ProfileStore = (*Store)(nil)
	_ core.AssetStore   = (*Store)(nil)
)
