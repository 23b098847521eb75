// Package harp is the composition root of harp, a local-first personal health
// record kept as plain Org documents.
//
// A profile holds a person's journal, lab reports, documents and metric
// definitions. The Org text format is the source of truth: profiles are
// parsed into pkg/core values, edited through core.Service and written back
// with a stable layout that survives editing by hand.
//
// Storage is pluggable behind core.ProfileStore:
//
//   - fs: one <uuid>.org file per profile, optionally versioned with git and
//     watched for edits made in an editor.
//   - badger: an embedded key-value database holding profiles and their
//     attachment blobs.
//
// Usage:
//
//	svc, err := harp.New("./records",
//		harp.WithBackend(harp.BackendFS),
//		harp.WithLogger(logger),
//	)
//	defer svc.Close()
//
//	p, err := svc.CreateProfile(ctx, "Jane Doe")
package harp
