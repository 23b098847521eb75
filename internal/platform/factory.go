package platform

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/harp/pkg/adapters/badger"
	"github.com/aretw0/harp/pkg/adapters/fs"
	"github.com/aretw0/harp/pkg/core"
	"github.com/aretw0/harp/pkg/org"
)

// New builds a service over the data directory at uri. An empty uri uses the
// configured DataDir. The caller must Close the service.
//
//	svc, err := platform.New("./records", platform.WithBackend("badger"))
func New(uri string, opts ...Option) (*core.Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if uri != "" {
		o.config.DataDir = uri
	}
	if o.location == nil {
		o.location = o.config.Location()
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := o.config.Validate(); err != nil {
		return nil, err
	}

	codec := org.NewCodec(org.WithLogger(o.logger), org.WithLocation(o.location))

	profiles, assets, err := openStores(o, codec)
	if err != nil {
		return nil, err
	}
	return core.NewService(profiles, assets, codec, o.logger), nil
}

// openStores returns the injected stores or opens the configured backend.
func openStores(o *options, codec core.Codec) (core.ProfileStore, core.AssetStore, error) {
	if o.profiles != nil {
		assets := o.assets
		if assets == nil {
			a, ok := o.profiles.(core.AssetStore)
			if !ok {
				return nil, nil, fmt.Errorf("injected store cannot hold assets and no asset store was given")
			}
			assets = a
		}
		return o.profiles, assets, nil
	}

	path := resolvePath(o)

	switch o.config.Backend {
	case BackendFS:
		repo := fs.NewRepository(fs.Config{
			Path:      path,
			Codec:     codec,
			Logger:    o.logger,
			ReadOnly:  o.config.ReadOnly,
			Versioned: o.config.Versioned,
			MustExist: o.mustExist,
		})
		if err := repo.Initialize(context.Background()); err != nil {
			return nil, nil, err
		}
		return repo, repo, nil

	case BackendBadger:
		cfg := badger.DefaultConfig(path)
		cfg.InMemory = o.inMemory
		cfg.ReadOnly = o.config.ReadOnly
		cfg.Logger = o.logger
		if o.config.Serializer == "codec" {
			cfg.Serializer = badger.CodecSerializer{Codec: codec}
		}
		store, err := badger.Open(cfg)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil

	default:
		return nil, nil, fmt.Errorf("unknown backend: %s", o.config.Backend)
	}
}

// resolvePath applies the dev sandbox to the configured data directory.
func resolvePath(o *options) string {
	bypass := o.config.ReadOnly || !o.devSafety
	useTemp := o.forceTemp || (IsDevRun() && !bypass)
	path := ResolveDataPath(o.config.DataDir, useTemp)

	if useTemp && path != o.config.DataDir {
		o.logger.Warn("running in SAFE MODE (dev sandbox)", "original_path", o.config.DataDir, "resolved_path", path)
	} else if IsDevRun() && bypass && !o.config.ReadOnly {
		o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", path)
	}
	return path
}
