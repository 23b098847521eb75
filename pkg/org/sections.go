package org

import (
	"fmt"

	"github.com/aretw0/harp/pkg/core"
	"github.com/aretw0/harp/pkg/outline"
)

// SectionKind enumerates the fixed sections of a profile document.
type SectionKind int

const (
	SectionUnknown SectionKind = iota
	SectionMetadata
	SectionSources
	SectionMetrics
	SectionJournals
	SectionMainJournal
	SectionReports
	SectionDocuments
)

var sectionHeadings = [...]string{
	SectionUnknown:     "",
	SectionMetadata:    "Metadata",
	SectionSources:     "Sources",
	SectionMetrics:     "Metrics",
	SectionJournals:    "Journals",
	SectionMainJournal: core.MainJournal,
	SectionReports:     "Reports",
	SectionDocuments:   "Documents",
}

// Heading is the exact headline text of the section.
func (k SectionKind) Heading() string {
	if k < 0 || int(k) >= len(sectionHeadings) {
		return ""
	}
	return sectionHeadings[k]
}

func (k SectionKind) String() string {
	if h := k.Heading(); h != "" {
		return h
	}
	return fmt.Sprintf("section(%d)", int(k))
}

// sectionIndex maps the known kinds found among a list of sections to the
// first section carrying each heading.
type sectionIndex map[SectionKind]*outline.Section

// indexSections resolves headings once against the kinds allowed at that
// level. Kinds whose heading occurs again are returned as shadowed; only the
// first occurrence is indexed.
func indexSections(secs []*outline.Section, kinds ...SectionKind) (sectionIndex, []SectionKind) {
	idx := make(sectionIndex, len(kinds))
	var shadowed []SectionKind
	for _, s := range secs {
		for _, k := range kinds {
			if s.Headline.Title != k.Heading() {
				continue
			}
			if _, seen := idx[k]; seen {
				shadowed = append(shadowed, k)
				continue
			}
			idx[k] = s
		}
	}
	return idx, shadowed
}
