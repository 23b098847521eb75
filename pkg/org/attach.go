package org

import (
	"strings"

	"github.com/aretw0/harp/pkg/core"
	"github.com/aretw0/harp/pkg/outline"
)

// AttachMarker is the headline tag telling Org that a node has attachments.
// It is synthesized when formatting and never part of an entity's tags.
const AttachMarker = "ATTACH"

const attachmentScheme = "attachment:"

var mimeTypes = map[string]string{
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"webp": "image/webp",
	"tiff": "image/tiff",
	"tif":  "image/tiff",
	"svg":  "image/svg+xml",
	"pdf":  "application/pdf",
}

// DeriveMimeType maps the file extension to a mime type. Unknown or missing
// extensions give "".
func DeriveMimeType(fileName string) string {
	i := strings.LastIndex(fileName, ".")
	if i < 0 {
		return ""
	}
	return mimeTypes[strings.ToLower(fileName[i+1:])]
}

// NewAsset builds an asset with its derived mime type.
func NewAsset(fileName string) core.Asset {
	return core.Asset{FileName: fileName, MimeType: DeriveMimeType(fileName)}
}

// AttachPath is the archive path of an asset owned by parentID, following the
// org-attach layout: data/<first two chars of id>/<rest of id>/<file name>.
func AttachPath(asset core.Asset, parentID string) string {
	head, tail := parentID, ""
	if len(parentID) > 2 {
		head, tail = parentID[:2], parentID[2:]
	}
	return "data/" + head + "/" + tail + "/" + asset.FileName
}

// FormatAssetLink renders the inline link referencing an attached file.
func FormatAssetLink(fileName string) string {
	return (&outline.Link{URL: attachmentScheme + fileName, Description: fileName}).String()
}

// ParseAssetLinks returns one asset per [[attachment:NAME][NAME]] link found
// in the paragraphs. Links whose description differs from the file name are
// ordinary links, not attachments.
func ParseAssetLinks(paras []*outline.Paragraph) []core.Asset {
	var assets []core.Asset
	for _, p := range paras {
		for _, l := range p.Links() {
			name, ok := strings.CutPrefix(l.URL, attachmentScheme)
			if !ok || name == "" || name != l.Description {
				continue
			}
			assets = append(assets, NewAsset(name))
		}
	}
	return assets
}

// stripMarker drops the attachment marker from headline tags.
func stripMarker(tags []string) []string {
	var out []string
	for _, t := range tags {
		if t != AttachMarker {
			out = append(out, t)
		}
	}
	return out
}

// withMarker appends the attachment marker when the entity has assets.
func withMarker(tags []string, assets []core.Asset) []string {
	out := append([]string(nil), tags...)
	if len(assets) > 0 {
		out = append(out, AttachMarker)
	}
	return out
}
