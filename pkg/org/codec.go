package org

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aretw0/harp/pkg/core"
	"github.com/aretw0/harp/pkg/outline"
)

// Codec reads and writes profiles in the Org text format. It implements
// core.Codec and core.Annotator.
type Codec struct {
	parser *Parser
}

// NewCodec creates a Codec whose parser is configured with opts.
func NewCodec(opts ...Option) *Codec {
	return &Codec{parser: NewParser(opts...)}
}

// Parse implements core.Codec. Diagnostics are logged by the parser and
// otherwise discarded; use ParseResult to inspect them.
func (c *Codec) Parse(text string) (core.Profile, error) {
	res, err := c.parser.Parse(text)
	if err != nil {
		return core.Profile{}, err
	}
	return res.Profile, nil
}

// ParseResult parses text and returns the diagnostics along with the profile.
func (c *Codec) ParseResult(text string) (*Result, error) {
	return c.parser.Parse(text)
}

// Format implements core.Codec.
func (c *Codec) Format(p core.Profile) string {
	return Format(p)
}

// Decode reads a whole document from r.
func (c *Codec) Decode(r io.Reader) (core.Profile, error) {
	var b strings.Builder
	if _, err := io.Copy(&b, r); err != nil {
		return core.Profile{}, fmt.Errorf("read profile: %w", err)
	}
	return c.Parse(b.String())
}

// Encode writes the document of p to w.
func (c *Codec) Encode(w io.Writer, p core.Profile) error {
	if _, err := io.WriteString(w, Format(p)); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}

// Annotate implements core.Annotator: it extracts the metric values and
// attachment links of a free text body.
func (c *Codec) Annotate(text string, datetime time.Time, reference string) ([]core.MetricValue, []core.Asset) {
	doc := outline.Parse(text)
	var paras []*outline.Paragraph
	for _, n := range doc.Children {
		if p, ok := n.(*outline.Paragraph); ok {
			paras = append(paras, p)
		}
	}
	return ParseMetricValues(text, datetime, reference), ParseAssetLinks(paras)
}

// AssetLink implements core.AssetLinker.
func (c *Codec) AssetLink(fileName string) string {
	return FormatAssetLink(fileName)
}

// ComponentType implements introspection.Component.
func (c *Codec) ComponentType() string {
	return "org-codec"
}

var (
	_ core.Codec       = (*Codec)(nil)
	_ core.Annotator   = (*Codec)(nil)
	_ core.AssetLinker = (*Codec)(nil)
)
