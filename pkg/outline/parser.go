package outline

import (
	"regexp"
	"strings"
)

var (
	headlineRe = regexp.MustCompile(`^(\*+)(?:[ \t]+(.*))?$`)
	tagsRe     = regexp.MustCompile(`^(?:(.*?)[ \t]+)?(:(?:[^\s:]+:)+)$`)
	propertyRe = regexp.MustCompile(`^\s*:([^\s:]+):(?:[ \t]+(.*))?$`)
	keywordRe  = regexp.MustCompile(`^\s*#\+([A-Za-z_][A-Za-z0-9_-]*):[ \t]*(.*)$`)
	linkRe     = regexp.MustCompile(`\[\[([^\]]+)\](?:\[([^\]]+)\])?\]`)
)

// Parse builds the outline tree of text. It never fails: lines that are not
// recognised as structure end up in paragraphs.
func Parse(text string) *Document {
	p := &parser{
		lines: strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n"),
		doc:   &Document{},
	}
	p.run()
	return p.doc
}

type parser struct {
	lines []string
	pos   int
	doc   *Document
	stack []*Section

	// pending paragraph lines
	para []string
	// a property drawer is only recognised right after a headline or at the
	// top of the document
	expectDrawer bool
}

func (p *parser) run() {
	p.expectDrawer = true
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]

		if m := headlineRe.FindStringSubmatch(line); m != nil {
			p.flush()
			p.openSection(parseHeadline(len(m[1]), m[2]))
			p.expectDrawer = true
			p.pos++
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			p.flush()
			p.pos++
		case p.expectDrawer && strings.EqualFold(trimmed, ":PROPERTIES:"):
			p.flush()
			p.appendNode(p.parseDrawer())
			p.expectDrawer = false
		default:
			if m := keywordRe.FindStringSubmatch(line); m != nil {
				p.flush()
				p.appendNode(&Keyword{Key: m[1], Value: strings.TrimSpace(m[2])})
			} else {
				p.para = append(p.para, line)
			}
			p.expectDrawer = false
			p.pos++
		}
	}
	p.flush()
}

// parseDrawer consumes lines from :PROPERTIES: up to :END:. A drawer left
// open ends at the next headline or at the end of input.
func (p *parser) parseDrawer() *PropertyDrawer {
	drawer := &PropertyDrawer{}
	p.pos++ // skip :PROPERTIES:
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		if headlineRe.MatchString(line) {
			return drawer
		}
		p.pos++
		if strings.EqualFold(strings.TrimSpace(line), ":END:") {
			return drawer
		}
		if m := propertyRe.FindStringSubmatch(line); m != nil {
			drawer.Properties = append(drawer.Properties, Property{
				Key:   m[1],
				Value: strings.TrimSpace(m[2]),
			})
		}
	}
	return drawer
}

func (p *parser) openSection(h Headline) {
	for len(p.stack) > 0 && p.stack[len(p.stack)-1].Headline.Level >= h.Level {
		p.stack = p.stack[:len(p.stack)-1]
	}
	s := &Section{Headline: h}
	p.appendNode(s)
	p.stack = append(p.stack, s)
}

func (p *parser) appendNode(n Node) {
	if len(p.stack) == 0 {
		p.doc.Children = append(p.doc.Children, n)
		return
	}
	top := p.stack[len(p.stack)-1]
	top.Children = append(top.Children, n)
}

func (p *parser) flush() {
	if len(p.para) == 0 {
		return
	}
	p.appendNode(parseParagraph(strings.Join(p.para, "\n")))
	p.para = nil
}

func parseHeadline(level int, rest string) Headline {
	h := Headline{Level: level}
	rest = strings.TrimSpace(rest)
	if m := tagsRe.FindStringSubmatch(rest); m != nil {
		h.Title = strings.TrimSpace(m[1])
		h.Tags = strings.Split(strings.Trim(m[2], ":"), ":")
		return h
	}
	h.Title = rest
	return h
}

func parseParagraph(text string) *Paragraph {
	para := &Paragraph{}
	last := 0
	for _, loc := range linkRe.FindAllStringSubmatchIndex(text, -1) {
		if loc[0] > last {
			para.Children = append(para.Children, &Text{Value: text[last:loc[0]]})
		}
		link := &Link{URL: text[loc[2]:loc[3]]}
		if loc[4] >= 0 {
			link.Description = text[loc[4]:loc[5]]
		}
		para.Children = append(para.Children, link)
		last = loc[1]
	}
	if last < len(text) {
		para.Children = append(para.Children, &Text{Value: text[last:]})
	}
	return para
}
