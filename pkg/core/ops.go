package core

import (
	"sort"

	"github.com/google/uuid"
)

// NewID returns a fresh random identifier for profiles and their items.
func NewID() string {
	return uuid.New().String()
}

// NewProfile builds an empty profile with a fresh UUID and the Main journal.
func NewProfile(name string) Profile {
	return Profile{
		UUID: NewID(),
		Name: name,
		Journals: []Journal{
			{Name: MainJournal},
		},
	}
}

// AssetRef pairs an asset with the UUID of the item owning it.
type AssetRef struct {
	ParentID string
	Asset    Asset
}

// ParentAssetPairs collects all assets of the profile along with their parents:
// journal entries first, then reports, then documents.
func ParentAssetPairs(p Profile) []AssetRef {
	var out []AssetRef
	for _, j := range p.Journals {
		for _, e := range j.Entries {
			for _, a := range e.Assets {
				out = append(out, AssetRef{ParentID: e.UUID, Asset: a})
			}
		}
	}
	for _, r := range p.Reports {
		for _, a := range r.Assets {
			out = append(out, AssetRef{ParentID: r.UUID, Asset: a})
		}
	}
	for _, d := range p.Documents {
		for _, a := range d.Assets {
			out = append(out, AssetRef{ParentID: d.UUID, Asset: a})
		}
	}
	return out
}

// ProfileMetricValues collects metric values from journal entries and reports.
func ProfileMetricValues(p Profile) []MetricValue {
	var out []MetricValue
	for _, j := range p.Journals {
		for _, e := range j.Entries {
			out = append(out, e.MetricValues...)
		}
	}
	for _, r := range p.Reports {
		out = append(out, r.MetricValues...)
	}
	return out
}

// ProfileTags returns the sorted set of tags used anywhere in the profile.
func ProfileTags(p Profile) []string {
	seen := make(map[string]struct{})
	add := func(tags []string) {
		for _, t := range tags {
			seen[t] = struct{}{}
		}
	}

	for _, j := range p.Journals {
		for _, e := range j.Entries {
			add(e.Tags)
		}
	}
	for _, r := range p.Reports {
		add(r.Tags)
	}
	for _, d := range p.Documents {
		add(d.Tags)
	}
	for _, m := range p.Metadata.Metrics {
		add(m.Tags)
	}

	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// FindMetric returns the metric definition with the given id.
func FindMetric(p Profile, id string) (Metric, bool) {
	for _, m := range p.Metadata.Metrics {
		if m.ID == id {
			return m, true
		}
	}
	return Metric{}, false
}

// Counts summarizes the size of a profile.
type Counts struct {
	Journals       int `json:"journals"`
	JournalEntries int `json:"journalEntries"`
	Reports        int `json:"reports"`
	Documents      int `json:"documents"`
	MetricValues   int `json:"metricValues"`
}

// ProfileSummary is the lightweight view used when listing profiles.
type ProfileSummary struct {
	UUID     string   `json:"uuid"`
	Name     string   `json:"name"`
	Metadata Metadata `json:"metadata"`
	Counts   Counts   `json:"counts"`
}

// Summarize builds the summary of a profile.
func Summarize(p Profile) ProfileSummary {
	entries := 0
	for _, j := range p.Journals {
		entries += len(j.Entries)
	}
	return ProfileSummary{
		UUID:     p.UUID,
		Name:     p.Name,
		Metadata: p.Metadata,
		Counts: Counts{
			Journals:       len(p.Journals),
			JournalEntries: entries,
			Reports:        len(p.Reports),
			Documents:      len(p.Documents),
			MetricValues:   len(ProfileMetricValues(p)),
		},
	}
}
