package core

import "context"

// ProfileStore defines the contract for persisting whole profiles, keyed by
// Profile.UUID. Adhering to this interface keeps the core independent of the
// storage engine (Badger, SQL, browser storage...).
type ProfileStore interface {
	// Put persists a profile. It creates if not exists, or replaces if it does.
	Put(ctx context.Context, p Profile) error

	// Get retrieves a profile by its UUID. Missing profiles yield ErrNotFound.
	Get(ctx context.Context, id string) (Profile, error)

	// List returns all stored profiles.
	List(ctx context.Context) ([]Profile, error)

	// Delete removes a profile by its UUID.
	Delete(ctx context.Context, id string) error
}

// SummaryLister is implemented by stores that can list summaries without
// loading every profile.
type SummaryLister interface {
	Summaries(ctx context.Context) ([]ProfileSummary, error)
}

// Watcher is implemented by stores that can report changes made outside harp.
type Watcher interface {
	Watch(ctx context.Context) (<-chan Event, error)
}

// AssetStore persists attachment blobs under AssetKey(parentID, asset).
type AssetStore interface {
	PutAsset(ctx context.Context, key string, data []byte) error
	GetAsset(ctx context.Context, key string) ([]byte, error)
}

// Codec converts profiles to and from their text representation.
type Codec interface {
	Parse(text string) (Profile, error)
	Format(p Profile) string
}

// AssetLinker renders the inline reference to an attachment, for codecs that
// derive entry assets from the entry text.
type AssetLinker interface {
	AssetLink(fileName string) string
}

// AssetResolver returns the bytes of an asset owned by parentID.
type AssetResolver func(ctx context.Context, parentID string, asset Asset) ([]byte, error)

// AssetKey is the storage key of an attachment blob.
func AssetKey(parentID string, asset Asset) string {
	return parentID + "-" + asset.FileName
}
