// Package archive bundles a profile with its attachments into a single zip
// file and reads such bundles back.
//
// A bundle holds the profile text as index.org and one entry per attachment
// at its org-attach path, data/<id[:2]>/<id[2:]>/<file name>.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/aretw0/harp/pkg/core"
	"github.com/aretw0/harp/pkg/org"
)

// IndexName is the bundle entry holding the profile text.
const IndexName = "index.org"

// Extension is the file suffix of bundles.
const Extension = ".harp.zip"

var (
	// ErrMissingIndex is returned when a bundle has no index.org entry.
	ErrMissingIndex = errors.New("archive has no " + IndexName)
	// ErrMissingAsset is returned when a bundle lacks a referenced attachment.
	ErrMissingAsset = errors.New("asset not in archive")
)

// FileName is the suggested name of the bundle of p created at now.
func FileName(p core.Profile, now time.Time) string {
	return "archive-" + p.UUID + "." + now.UTC().Format(time.RFC3339) + Extension
}

// Writer assembles bundles.
type Writer struct {
	codec  core.Codec
	logger *slog.Logger
}

// NewWriter creates a Writer formatting profiles with codec.
func NewWriter(codec core.Codec, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{codec: codec, logger: logger}
}

// Write streams the bundle of p to w. Attachment bytes come from resolve; an
// attachment that cannot be resolved is logged and left out of the bundle.
// It returns the number of attachments written.
func (bw *Writer) Write(ctx context.Context, w io.Writer, p core.Profile, resolve core.AssetResolver) (int, error) {
	zw := zip.NewWriter(w)

	if err := writeEntry(zw, IndexName, []byte(bw.codec.Format(p))); err != nil {
		return 0, err
	}

	written := 0
	seen := make(map[string]struct{})
	for _, ref := range core.ParentAssetPairs(p) {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		name := org.AttachPath(ref.Asset, ref.ParentID)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		data, err := resolve(ctx, ref.ParentID, ref.Asset)
		if err != nil {
			bw.logger.Warn("skipping attachment", "parent", ref.ParentID, "file", ref.Asset.FileName, "error", err)
			continue
		}
		if err := writeEntry(zw, name, data); err != nil {
			return written, err
		}
		written++
	}

	if err := zw.Close(); err != nil {
		return written, fmt.Errorf("finalize archive: %w", err)
	}
	return written, nil
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	f, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Bundle is an opened archive.
type Bundle struct {
	Profile core.Profile
	files   map[string]*zip.File
}

// Open reads the bundle in r and parses its index with codec.
func Open(r io.ReaderAt, size int64, codec core.Codec) (*Bundle, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}

	b := &Bundle{files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		b.files[strings.TrimPrefix(f.Name, "./")] = f
	}

	index, ok := b.files[IndexName]
	if !ok {
		return nil, ErrMissingIndex
	}
	text, err := readFile(index)
	if err != nil {
		return nil, err
	}
	b.Profile, err = codec.Parse(string(text))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", IndexName, err)
	}
	return b, nil
}

// Asset returns the bytes of an attachment owned by parentID.
func (b *Bundle) Asset(parentID string, asset core.Asset) ([]byte, error) {
	name := org.AttachPath(asset, parentID)
	f, ok := b.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingAsset, name)
	}
	return readFile(f)
}

// Resolve adapts Asset to core.AssetResolver.
func (b *Bundle) Resolve(_ context.Context, parentID string, asset core.Asset) ([]byte, error) {
	return b.Asset(parentID, asset)
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return data, nil
}
