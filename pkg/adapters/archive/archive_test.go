package archive_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/harp/pkg/adapters/archive"
	"github.com/aretw0/harp/pkg/core"
	"github.com/aretw0/harp/pkg/org"
)

func bundleProfile() core.Profile {
	dt := time.Date(2024, 3, 2, 8, 15, 0, 0, time.UTC)
	return core.Profile{
		UUID: "4b1f0c2e",
		Name: "Jane",
		Journals: []core.Journal{{Name: core.MainJournal, Entries: []core.JournalEntry{{
			UUID:     "e1aa",
			Datetime: dt,
			Text:     "[[attachment:scan.png][scan.png]]",
			Assets:   []core.Asset{{FileName: "scan.png", MimeType: "image/png"}},
		}}}},
		Reports: []core.Report{{
			Name:     "Panel",
			Datetime: dt,
			UUID:     "r1bb",
			Source:   core.Source{ID: "lab"},
			Assets:   []core.Asset{{FileName: "panel.pdf", MimeType: "application/pdf"}, {FileName: "lost.pdf", MimeType: "application/pdf"}},
		}},
	}
}

func blobs() map[string][]byte {
	return map[string][]byte{
		"e1aa-scan.png":  []byte("png bytes"),
		"r1bb-panel.pdf": []byte("%PDF-1.4"),
	}
}

func resolver(m map[string][]byte) core.AssetResolver {
	return func(_ context.Context, parentID string, asset core.Asset) ([]byte, error) {
		b, ok := m[core.AssetKey(parentID, asset)]
		if !ok {
			return nil, core.ErrNotFound
		}
		return b, nil
	}
}

func TestWriteOpen_RoundTrip(t *testing.T) {
	codec := org.NewCodec(org.WithLocation(time.UTC))
	p := bundleProfile()

	var buf bytes.Buffer
	n, err := archive.NewWriter(codec, nil).Write(context.Background(), &buf, p, resolver(blobs()))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"index.org", "data/e1/aa/scan.png", "data/r1/bb/panel.pdf"}, names)

	b, err := archive.Open(bytes.NewReader(buf.Bytes()), int64(buf.Len()), codec)
	require.NoError(t, err)
	assert.Equal(t, p.UUID, b.Profile.UUID)
	assert.Equal(t, p.Journals, b.Profile.Journals)

	data, err := b.Asset("e1aa", core.Asset{FileName: "scan.png"})
	require.NoError(t, err)
	assert.Equal(t, []byte("png bytes"), data)

	_, err = b.Resolve(context.Background(), "r1bb", core.Asset{FileName: "lost.pdf"})
	assert.ErrorIs(t, err, archive.ErrMissingAsset)
}

func TestOpen_MissingIndex(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("notes.txt")
	require.NoError(t, err)
	_, err = f.Write([]byte("hi"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = archive.Open(bytes.NewReader(buf.Bytes()), int64(buf.Len()), org.NewCodec())
	assert.ErrorIs(t, err, archive.ErrMissingIndex)
}

func TestOpen_NotAZip(t *testing.T) {
	data := []byte("plain text")
	_, err := archive.Open(bytes.NewReader(data), int64(len(data)), org.NewCodec())
	assert.Error(t, err)
}

func TestWrite_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	_, err := archive.NewWriter(org.NewCodec(), nil).Write(ctx, &buf, bundleProfile(), resolver(blobs()))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFileName(t *testing.T) {
	now := time.Date(2024, 3, 2, 8, 15, 30, 0, time.UTC)
	assert.Equal(t, "archive-4b1f0c2e.2024-03-02T08:15:30Z.harp.zip", archive.FileName(bundleProfile(), now))
}
