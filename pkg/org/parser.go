package org

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/harp/pkg/core"
	"github.com/aretw0/harp/pkg/outline"
)

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger receiving diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithLocation sets the zone in which timestamps are read. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(p *Parser) {
		if loc != nil {
			p.loc = loc
		}
	}
}

// WithKnownMetricCheck records a warning for each metric value whose id has
// no definition in the metadata. Values are kept either way. Enabled by default.
func WithKnownMetricCheck(enabled bool) Option {
	return func(p *Parser) {
		p.checkMetrics = enabled
	}
}

// Parser turns profile documents into core.Profile values. It holds no
// mutable state and is safe for concurrent use.
type Parser struct {
	logger       *slog.Logger
	loc          *time.Location
	checkMetrics bool
}

// NewParser creates a Parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		logger:       slog.Default(),
		loc:          time.Local,
		checkMetrics: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is a parsed profile along with everything that was tolerated.
type Result struct {
	Profile     core.Profile
	Diagnostics Diagnostics
}

// Parse reads a profile document with a default Parser.
func Parse(text string) (core.Profile, error) {
	res, err := NewParser().Parse(text)
	if err != nil {
		return core.Profile{}, err
	}
	return res.Profile, nil
}

// Parse reads a profile document. Only a missing profile id or title fails
// the whole parse; broken metrics, entries, reports and documents are dropped
// and reported in the result diagnostics.
func (p *Parser) Parse(text string) (*Result, error) {
	doc := outline.Parse(text)

	id := PropertyDrawerToMap(doc.Drawer())["ID"]
	if id == "" {
		return nil, fatalf(ErrMissingID, "document property drawer has no ID")
	}
	title, ok := doc.Keyword("TITLE")
	if !ok || strings.TrimSpace(title) == "" {
		return nil, fatalf(ErrMissingTitle, "document has no #+TITLE")
	}

	res := &Result{}
	d := &res.Diagnostics
	top := p.index(doc.Sections(), d, SectionMetadata, SectionJournals, SectionReports, SectionDocuments)

	metrics := p.parseMetrics(p.section(top, SectionMetadata, d), d)
	journals := p.parseJournals(p.section(top, SectionJournals, d), d)
	reports := p.parseReports(p.section(top, SectionReports, d), d)
	documents := p.parseDocuments(p.section(top, SectionDocuments, d), d)

	profile := core.Profile{
		UUID: id,
		Name: strings.TrimSpace(title),
		Metadata: core.Metadata{
			Sources: deriveSources(documents, reports),
			Metrics: metrics,
		},
		Journals:  journals,
		Reports:   reports,
		Documents: documents,
	}

	if p.checkMetrics {
		p.checkMetricIDs(profile, d)
	}

	res.Profile = profile
	return res, nil
}

// index resolves the known kinds among secs. A repeated heading, such as a
// body line that reads like a top-level headline, shadows the later section
// and is reported as a soft warning.
func (p *Parser) index(secs []*outline.Section, d *Diagnostics, kinds ...SectionKind) sectionIndex {
	idx, shadowed := indexSections(secs, kinds...)
	for _, k := range shadowed {
		p.warn(d, k, k.Heading(), fmt.Errorf("%w: %q", ErrDuplicateSection, k.Heading()))
	}
	return idx
}

// section looks up kind in idx and records it as missing when absent.
func (p *Parser) section(idx sectionIndex, kind SectionKind, d *Diagnostics) *outline.Section {
	sec, ok := idx[kind]
	if !ok {
		p.logger.Warn("section not found", "section", kind.String())
		d.Missing = append(d.Missing, kind)
		return nil
	}
	return sec
}

func (p *Parser) parseMetrics(meta *outline.Section, d *Diagnostics) []core.Metric {
	if meta == nil {
		return nil
	}
	metrics := p.section(p.index(meta.Sections(), d, SectionMetrics), SectionMetrics, d)
	if metrics == nil {
		return nil
	}

	c := newCollector[core.Metric](SectionMetrics, p.logger)
	for i, sec := range metrics.Sections() {
		props := PropertyDrawerToMap(sec.Drawer())
		if err := requireProps(props, "UNIT", "TAG_ID", "RANGE", "HEALTHY_RANGE"); err != nil {
			c.skip(i, sec.Headline.Title, err)
			continue
		}
		if props["TAG_ID"] == "" {
			c.skip(i, sec.Headline.Title, missingProperty("TAG_ID"))
			continue
		}

		m := core.Metric{
			ID:   props["TAG_ID"],
			Name: sec.Headline.Title,
			Unit: props["UNIT"],
			Tags: sec.Headline.Tags,
		}
		m.Range = p.numericRange(props["RANGE"], m.ID, d)
		m.HealthyRange = p.numericRange(props["HEALTHY_RANGE"], m.ID, d)
		c.add(m)
	}
	return c.drain(d)
}

func (p *Parser) numericRange(text, ref string, d *Diagnostics) core.Range {
	r, ok := parseNumericRange(text)
	if !ok {
		p.warn(d, SectionMetrics, ref, fmt.Errorf("%w: %q", ErrMalformedRange, text))
	}
	return r
}

func (p *Parser) parseJournals(journals *outline.Section, d *Diagnostics) []core.Journal {
	if journals == nil {
		return nil
	}
	mainSec := p.section(p.index(journals.Sections(), d, SectionMainJournal), SectionMainJournal, d)
	if mainSec == nil {
		return nil
	}

	c := newCollector[core.JournalEntry](SectionMainJournal, p.logger)
	for i, sec := range mainSec.Sections() {
		e, err := p.parseEntry(sec, d)
		if err != nil {
			c.skip(i, sec.Headline.Title, err)
			continue
		}
		c.add(e)
	}

	return []core.Journal{{Name: core.MainJournal, Entries: c.drain(d)}}
}

func (p *Parser) parseEntry(sec *outline.Section, d *Diagnostics) (core.JournalEntry, error) {
	text := sectionBody(sec)
	if text == "" {
		return core.JournalEntry{}, ErrEmptyBody
	}

	props := PropertyDrawerToMap(sec.Drawer())
	if err := requireProps(props, "ID", "DATETIME", "PRIVATE"); err != nil {
		return core.JournalEntry{}, err
	}
	id := props["ID"]
	if id == "" {
		return core.JournalEntry{}, missingProperty("ID")
	}
	dt, err := ParseInactiveTimestamp(props["DATETIME"], p.loc)
	if err != nil {
		return core.JournalEntry{}, err
	}

	assets := ParseAssetLinks(sec.Paragraphs())
	p.checkMimeTypes(assets, SectionMainJournal, id, d)

	return core.JournalEntry{
		UUID:         id,
		Datetime:     dt,
		Tags:         stripMarker(sec.Headline.Tags),
		Text:         text,
		MetricValues: ParseMetricValues(text, dt, id),
		Assets:       assets,
		IsPrivate:    props["PRIVATE"] == "t",
	}, nil
}

// attached holds the fields shared by reports and documents.
type attached struct {
	name       string
	uuid       string
	datetime   time.Time
	tags       []string
	source     core.Source
	assets     []core.Asset
	annotation string
}

func (p *Parser) parseReports(sec *outline.Section, d *Diagnostics) []core.Report {
	return parseAttached(p, sec, SectionReports, d, func(a attached) core.Report {
		return core.Report{
			Name:         a.name,
			Datetime:     a.datetime,
			UUID:         a.uuid,
			Tags:         a.tags,
			Source:       a.source,
			Assets:       a.assets,
			Annotation:   a.annotation,
			MetricValues: ParseMetricValues(a.annotation, a.datetime, a.uuid),
		}
	})
}

func (p *Parser) parseDocuments(sec *outline.Section, d *Diagnostics) []core.Document {
	return parseAttached(p, sec, SectionDocuments, d, func(a attached) core.Document {
		return core.Document{
			Name:       a.name,
			Datetime:   a.datetime,
			UUID:       a.uuid,
			Tags:       a.tags,
			Source:     a.source,
			Assets:     a.assets,
			Annotation: a.annotation,
		}
	})
}

func parseAttached[T any](p *Parser, parent *outline.Section, kind SectionKind, d *Diagnostics, build func(attached) T) []T {
	if parent == nil {
		return nil
	}

	c := newCollector[T](kind, p.logger)
	for i, sec := range parent.Sections() {
		a, err := p.parseAttachedItem(sec, kind, d)
		if err != nil {
			c.skip(i, sec.Headline.Title, err)
			continue
		}
		c.add(build(a))
	}
	return c.drain(d)
}

func (p *Parser) parseAttachedItem(sec *outline.Section, kind SectionKind, d *Diagnostics) (attached, error) {
	props := PropertyDrawerToMap(sec.Drawer())
	if err := requireProps(props, "SOURCE", "ID", "FILES", "DATETIME"); err != nil {
		return attached{}, err
	}
	id := props["ID"]
	if id == "" {
		return attached{}, missingProperty("ID")
	}
	dt, err := ParseInactiveTimestamp(props["DATETIME"], p.loc)
	if err != nil {
		return attached{}, err
	}

	assets := parseFiles(props["FILES"])
	p.checkMimeTypes(assets, kind, id, d)

	return attached{
		name:       sec.Headline.Title,
		uuid:       id,
		datetime:   dt,
		tags:       stripMarker(sec.Headline.Tags),
		source:     core.Source{ID: props["SOURCE"]},
		assets:     assets,
		annotation: sectionBody(sec),
	}, nil
}

// parseFiles reads the comma separated FILES property.
func parseFiles(files string) []core.Asset {
	var assets []core.Asset
	for _, name := range strings.Split(files, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		assets = append(assets, NewAsset(name))
	}
	return assets
}

// sectionBody joins the section's paragraphs with blank lines.
func sectionBody(sec *outline.Section) string {
	paras := sec.Paragraphs()
	texts := make([]string, 0, len(paras))
	for _, para := range paras {
		texts = append(texts, para.Raw())
	}
	return strings.TrimSpace(strings.Join(texts, "\n\n"))
}

// deriveSources rebuilds the source listing from the entities referencing
// sources, documents first. Descriptions are not stored with references.
func deriveSources(documents []core.Document, reports []core.Report) []core.Source {
	var sources []core.Source
	seen := make(map[string]struct{})
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		sources = append(sources, core.Source{ID: id})
	}
	for _, doc := range documents {
		add(doc.Source.ID)
	}
	for _, r := range reports {
		add(r.Source.ID)
	}
	return sources
}

func (p *Parser) checkMimeTypes(assets []core.Asset, kind SectionKind, ref string, d *Diagnostics) {
	for _, a := range assets {
		if a.MimeType == "" {
			p.warn(d, kind, ref, fmt.Errorf("%w: %s", ErrUnknownMimeType, a.FileName))
		}
	}
}

func (p *Parser) checkMetricIDs(profile core.Profile, d *Diagnostics) {
	known := make(map[string]struct{}, len(profile.Metadata.Metrics))
	for _, m := range profile.Metadata.Metrics {
		known[m.ID] = struct{}{}
	}
	check := func(kind SectionKind, values []core.MetricValue) {
		for _, v := range values {
			if _, ok := known[v.ID]; !ok {
				p.warn(d, kind, v.Reference, fmt.Errorf("%w: %s", ErrUnknownMetric, v.ID))
			}
		}
	}
	for _, j := range profile.Journals {
		for _, e := range j.Entries {
			check(SectionMainJournal, e.MetricValues)
		}
	}
	for _, r := range profile.Reports {
		check(SectionReports, r.MetricValues)
	}
}

func (p *Parser) warn(d *Diagnostics, kind SectionKind, ref string, err error) {
	p.logger.Debug("soft parse issue", "section", kind.String(), "ref", ref, "error", err)
	d.Warnings = append(d.Warnings, Warning{Section: kind, Reference: ref, Err: err})
}
