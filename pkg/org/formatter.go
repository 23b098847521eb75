package org

import (
	"strings"
	"time"

	"github.com/aretw0/harp/pkg/core"
)

// entryTitle is the headline of every journal entry.
const entryTitle = "Entry"

// node is a headline with its drawer and body, ready to be written.
type node struct {
	level   int
	title   string
	tags    []string
	props   []prop
	content string
}

type prop struct {
	key   string
	value string
}

// Format renders a profile as a document that Parse reads back. It never
// fails: fields the parser would reject are still written out.
func Format(p core.Profile) string {
	var b strings.Builder

	writePreamble(&b, p)
	b.WriteString("\n")
	writeMetadata(&b, p.Metadata)
	b.WriteString("\n")
	writeJournals(&b, p.Journals)
	b.WriteString("\n")
	writeAttached(&b, SectionReports, reportNodes(p.Reports))
	b.WriteString("\n")
	writeAttached(&b, SectionDocuments, documentNodes(p.Documents))

	return b.String()
}

func writePreamble(b *strings.Builder, p core.Profile) {
	writeDrawer(b, []prop{{"ID", p.UUID}})
	b.WriteString("#+TITLE: " + p.Name + "\n")
}

func writeMetadata(b *strings.Builder, m core.Metadata) {
	writeHeadline(b, 1, SectionMetadata.Heading(), nil)

	sources := make([]string, 0, len(m.Sources))
	for _, s := range m.Sources {
		sources = append(sources, "- "+s.ID+" :: "+s.Description)
	}
	writeNode(b, node{level: 2, title: SectionSources.Heading(), content: strings.Join(sources, "\n")})
	b.WriteString("\n")

	writeHeadline(b, 2, SectionMetrics.Heading(), nil)
	for i, metric := range m.Metrics {
		if i > 0 {
			b.WriteString("\n")
		}
		writeNode(b, node{
			level: 3,
			title: metric.Name,
			tags:  metric.Tags,
			props: []prop{
				{"TAG_ID", metric.ID},
				{"UNIT", metric.Unit},
				{"RANGE", FormatNumericRange(metric.Range)},
				{"HEALTHY_RANGE", FormatNumericRange(metric.HealthyRange)},
			},
		})
	}
}

func writeJournals(b *strings.Builder, journals []core.Journal) {
	writeHeadline(b, 1, SectionJournals.Heading(), nil)
	for _, j := range journals {
		writeHeadline(b, 2, j.Name, nil)
		for i, e := range j.Entries {
			if i > 0 {
				b.WriteString("\n")
			}
			writeNode(b, node{
				level: 3,
				title: entryTitle,
				tags:  withMarker(e.Tags, e.Assets),
				props: []prop{
					{"ID", e.UUID},
					{"DATETIME", FormatInactiveTimestamp(e.Datetime)},
					{"PRIVATE", formatBool(e.IsPrivate)},
				},
				content: e.Text,
			})
		}
	}
}

func reportNodes(reports []core.Report) []node {
	nodes := make([]node, 0, len(reports))
	for _, r := range reports {
		// metric values are carried by the annotation text
		nodes = append(nodes, attachedNode(r.Name, r.UUID, r.Datetime, r.Source, r.Tags, r.Assets, r.Annotation))
	}
	return nodes
}

func documentNodes(docs []core.Document) []node {
	nodes := make([]node, 0, len(docs))
	for _, d := range docs {
		nodes = append(nodes, attachedNode(d.Name, d.UUID, d.Datetime, d.Source, d.Tags, d.Assets, d.Annotation))
	}
	return nodes
}

func attachedNode(name, id string, datetime time.Time, source core.Source, tags []string, assets []core.Asset, annotation string) node {
	files := make([]string, 0, len(assets))
	for _, a := range assets {
		files = append(files, a.FileName)
	}
	return node{
		level: 2,
		title: name,
		tags:  withMarker(tags, assets),
		props: []prop{
			{"ID", id},
			{"DATETIME", FormatInactiveTimestamp(datetime)},
			{"SOURCE", source.ID},
			{"FILES", strings.Join(files, ", ")},
		},
		content: annotation,
	}
}

func writeAttached(b *strings.Builder, kind SectionKind, nodes []node) {
	writeHeadline(b, 1, kind.Heading(), nil)
	for i, n := range nodes {
		if i > 0 {
			b.WriteString("\n")
		}
		writeNode(b, n)
	}
}

func writeNode(b *strings.Builder, n node) {
	writeHeadline(b, n.level, n.title, n.tags)
	if len(n.props) > 0 {
		writeDrawer(b, n.props)
	}
	if content := strings.TrimSpace(n.content); content != "" {
		b.WriteString("\n")
		b.WriteString(content)
		b.WriteString("\n")
	}
}

func writeHeadline(b *strings.Builder, level int, title string, tags []string) {
	b.WriteString(strings.Repeat("*", level))
	b.WriteString(" ")
	b.WriteString(title)
	if len(tags) > 0 {
		b.WriteString("    :" + strings.Join(tags, ":") + ":")
	}
	b.WriteString("\n")
}

func writeDrawer(b *strings.Builder, props []prop) {
	b.WriteString(":PROPERTIES:\n")
	for _, p := range props {
		b.WriteString(":" + p.key + ":")
		if p.value != "" {
			b.WriteString(" " + p.value)
		}
		b.WriteString("\n")
	}
	b.WriteString(":END:\n")
}

func formatBool(v bool) string {
	if v {
		return "t"
	}
	return "nil"
}
