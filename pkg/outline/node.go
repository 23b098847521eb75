// Package outline builds a generic heading tree out of Org-style outline text.
//
// It understands the subset of the format that harp writes: headlines with
// tags, property drawers, #+KEYWORD lines, paragraphs and bracket links.
// Anything else is kept as paragraph text, so parsing never fails.
package outline

import "strings"

// Node is any element of the outline tree.
type Node interface {
	node()
}

// Document is the root of the tree. Its children are the nodes appearing
// before the first headline followed by the top-level sections.
type Document struct {
	Children []Node
}

// Section is a headline together with everything it owns: its property
// drawer, paragraphs and deeper sections.
type Section struct {
	Headline Headline
	Children []Node
}

// Headline is the title line of a section.
type Headline struct {
	Level int
	Title string
	Tags  []string
}

// PropertyDrawer is a :PROPERTIES: ... :END: block. Properties keep their
// original order and key spelling.
type PropertyDrawer struct {
	Properties []Property
}

// Property is a single :KEY: value line of a drawer.
type Property struct {
	Key   string
	Value string
}

// Keyword is a #+KEY: value line.
type Keyword struct {
	Key   string
	Value string
}

// Paragraph is a run of non-blank lines. Children are Text and Link nodes.
type Paragraph struct {
	Children []Node
}

// Text is literal paragraph content, newlines included.
type Text struct {
	Value string
}

// Link is a [[url]] or [[url][description]] reference.
type Link struct {
	URL         string
	Description string
}

func (*Document) node()       {}
func (*Section) node()        {}
func (*PropertyDrawer) node() {}
func (*Keyword) node()        {}
func (*Paragraph) node()      {}
func (*Text) node()           {}
func (*Link) node()           {}

// Drawer returns the first property drawer among the document's own nodes.
func (d *Document) Drawer() *PropertyDrawer {
	return firstDrawer(d.Children)
}

// Keyword returns the value of the first #+KEY keyword at document level.
// Keys compare case-insensitively.
func (d *Document) Keyword(key string) (string, bool) {
	for _, n := range d.Children {
		if kw, ok := n.(*Keyword); ok && strings.EqualFold(kw.Key, key) {
			return kw.Value, true
		}
	}
	return "", false
}

// Sections returns the top-level sections.
func (d *Document) Sections() []*Section {
	return sections(d.Children)
}

// Drawer returns the section's property drawer, or nil.
func (s *Section) Drawer() *PropertyDrawer {
	return firstDrawer(s.Children)
}

// Sections returns the direct subsections.
func (s *Section) Sections() []*Section {
	return sections(s.Children)
}

// Paragraphs returns the paragraphs owned directly by the section.
func (s *Section) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, n := range s.Children {
		if p, ok := n.(*Paragraph); ok {
			out = append(out, p)
		}
	}
	return out
}

// Get returns the value of the first property whose key matches
// case-insensitively.
func (d *PropertyDrawer) Get(key string) (string, bool) {
	if d == nil {
		return "", false
	}
	for _, p := range d.Properties {
		if strings.EqualFold(p.Key, key) {
			return p.Value, true
		}
	}
	return "", false
}

// Raw reproduces the paragraph source, links included.
func (p *Paragraph) Raw() string {
	var b strings.Builder
	for _, n := range p.Children {
		switch v := n.(type) {
		case *Text:
			b.WriteString(v.Value)
		case *Link:
			b.WriteString(v.String())
		}
	}
	return b.String()
}

// Links returns the links of the paragraph in order.
func (p *Paragraph) Links() []*Link {
	var out []*Link
	for _, n := range p.Children {
		if l, ok := n.(*Link); ok {
			out = append(out, l)
		}
	}
	return out
}

// String renders the link in bracket syntax.
func (l *Link) String() string {
	if l.Description == "" {
		return "[[" + l.URL + "]]"
	}
	return "[[" + l.URL + "][" + l.Description + "]]"
}

func firstDrawer(nodes []Node) *PropertyDrawer {
	for _, n := range nodes {
		if d, ok := n.(*PropertyDrawer); ok {
			return d
		}
	}
	return nil
}

func sections(nodes []Node) []*Section {
	var out []*Section
	for _, n := range nodes {
		if s, ok := n.(*Section); ok {
			out = append(out, s)
		}
	}
	return out
}
