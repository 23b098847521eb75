package org_test

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/harp/pkg/core"
	"github.com/aretw0/harp/pkg/org"
)

func loadFixture(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile("testdata/profile.org")
	require.NoError(t, err)
	return string(b)
}

func utcParser() *org.Parser {
	return org.NewParser(org.WithLocation(time.UTC))
}

func TestParser_Fixture(t *testing.T) {
	res, err := utcParser().Parse(loadFixture(t))
	require.NoError(t, err)
	p := res.Profile

	assert.Equal(t, "4b1f0c2e-8d7a-4c3b-9e21-5a6f7d8c9b10", p.UUID)
	assert.Equal(t, "Jane Doe", p.Name)

	t.Run("metrics", func(t *testing.T) {
		require.Len(t, p.Metadata.Metrics, 2)
		weight := p.Metadata.Metrics[0]
		assert.Equal(t, "weight", weight.ID)
		assert.Equal(t, "Weight", weight.Name)
		assert.Equal(t, "kg", weight.Unit)
		assert.Equal(t, []string{"body"}, weight.Tags)
		assert.Equal(t, core.NewRange(0, 300), weight.Range)
		assert.Equal(t, core.NewRange(50, 80), weight.HealthyRange)

		mood := p.Metadata.Metrics[1]
		assert.Equal(t, "", mood.Unit)
		assert.Nil(t, mood.Tags)
		assert.Equal(t, core.Range{}, mood.HealthyRange)
	})

	t.Run("sources are derived", func(t *testing.T) {
		assert.Equal(t, []core.Source{{ID: "lab"}, {ID: "clinic"}}, p.Metadata.Sources)
	})

	t.Run("journal", func(t *testing.T) {
		require.Len(t, p.Journals, 1)
		assert.Equal(t, core.MainJournal, p.Journals[0].Name)

		entries := p.Journals[0].Entries
		require.Len(t, entries, 2)

		e1 := entries[0]
		assert.Equal(t, "e1", e1.UUID)
		assert.Equal(t, time.Date(2024, 3, 2, 8, 15, 0, 0, time.UTC), e1.Datetime)
		assert.Equal(t, []string{"sport"}, e1.Tags)
		assert.Equal(t, "Morning run #run #weight(72.5)", e1.Text)
		assert.True(t, e1.IsPrivate)
		assert.Nil(t, e1.Assets)
		assert.Equal(t, []core.MetricValue{
			{ID: "weight", Value: 72.5, Datetime: e1.Datetime, Reference: "e1"},
		}, e1.MetricValues)

		e3 := entries[1]
		assert.Equal(t, "e3", e3.UUID)
		assert.Nil(t, e3.Tags)
		assert.False(t, e3.IsPrivate)
		assert.Equal(t, []core.Asset{{FileName: "rash.jpg", MimeType: "image/jpeg"}}, e3.Assets)
		assert.Equal(t, "Rash photo [[attachment:rash.jpg][rash.jpg]] #mood(4)", e3.Text)
	})

	t.Run("reports", func(t *testing.T) {
		require.Len(t, p.Reports, 1)
		r := p.Reports[0]
		assert.Equal(t, "Blood panel", r.Name)
		assert.Equal(t, []string{"lab"}, r.Tags)
		assert.Equal(t, core.Source{ID: "clinic"}, r.Source)
		assert.Equal(t, []core.Asset{
			{FileName: "panel.pdf", MimeType: "application/pdf"},
			{FileName: "notes.docx"},
		}, r.Assets)
		assert.Equal(t, "Fasting #glucose(5.4)", r.Annotation)
		assert.Equal(t, []core.MetricValue{
			{ID: "glucose", Value: 5.4, Datetime: r.Datetime, Reference: "r1"},
		}, r.MetricValues)
	})

	t.Run("documents", func(t *testing.T) {
		require.Len(t, p.Documents, 1)
		d := p.Documents[0]
		assert.Equal(t, "Vaccination card", d.Name)
		assert.Nil(t, d.Assets)
		assert.Equal(t, "", d.Annotation)
		assert.Equal(t, time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC), d.Datetime)
	})

	t.Run("diagnostics", func(t *testing.T) {
		d := res.Diagnostics
		assert.Empty(t, d.Missing)

		skippedMetrics := d.SkippedIn(org.SectionMetrics)
		require.Len(t, skippedMetrics, 1)
		assert.Equal(t, 2, skippedMetrics[0].Index)
		assert.Equal(t, "Broken metric", skippedMetrics[0].Heading)
		assert.ErrorIs(t, skippedMetrics[0].Err, org.ErrMissingProperty)
		assert.Equal(t, org.SeverityEntity, skippedMetrics[0].Severity())

		skippedEntries := d.SkippedIn(org.SectionMainJournal)
		require.Len(t, skippedEntries, 2)
		assert.Equal(t, 1, skippedEntries[0].Index)
		assert.ErrorIs(t, skippedEntries[0].Err, org.ErrMissingProperty)
		assert.Contains(t, skippedEntries[0].Err.Error(), "DATETIME")
		assert.Equal(t, 3, skippedEntries[1].Index)
		assert.ErrorIs(t, skippedEntries[1].Err, org.ErrEmptyBody)

		var kinds []error
		for _, w := range d.Warnings {
			assert.Equal(t, org.SeveritySoft, w.Severity())
			kinds = append(kinds, w.Err)
		}
		require.Len(t, kinds, 3)
		assert.ErrorIs(t, kinds[0], org.ErrMalformedRange)
		assert.ErrorIs(t, kinds[1], org.ErrUnknownMimeType)
		assert.ErrorIs(t, kinds[2], org.ErrUnknownMetric)
		assert.Equal(t, "r1", d.Warnings[2].Reference)
	})
}

func TestParser_EntityFaultIsolation(t *testing.T) {
	text := `:PROPERTIES:
:ID: p1
:END:
#+TITLE: Isolation

* Journals
** Main
*** Entry
:PROPERTIES:
:ID: a
:DATETIME: [2024-01-01 10:00]
:PRIVATE: nil
:END:

first

*** Entry
:PROPERTIES:
:ID: b
:PRIVATE: nil
:END:

second

*** Entry
:PROPERTIES:
:ID: c
:DATETIME: [2024-01-03 10:00]
:PRIVATE: nil
:END:

third
`
	res, err := utcParser().Parse(text)
	require.NoError(t, err)

	entries := res.Profile.Journals[0].Entries
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].UUID)
	assert.Equal(t, "c", entries[1].UUID)
	assert.Equal(t, []org.SectionKind{org.SectionMetadata, org.SectionReports, org.SectionDocuments}, res.Diagnostics.Missing)
}

func TestParser_DuplicateSectionHeading(t *testing.T) {
	text := `:PROPERTIES:
:ID: p1
:END:
#+TITLE: Shadowed

* Journals
** Main
*** Entry
:PROPERTIES:
:ID: a
:DATETIME: [2024-01-01 10:00]
:PRIVATE: nil
:END:

took meds
* Reports
* Reports
** Blood panel
:PROPERTIES:
:ID: r1
:DATETIME: [2024-01-02]
:SOURCE: lab
:FILES:
:END:
`
	res, err := utcParser().Parse(text)
	require.NoError(t, err)
	assert.Empty(t, res.Profile.Reports)
	assert.NotContains(t, res.Diagnostics.Missing, org.SectionReports)

	var found bool
	for _, w := range res.Diagnostics.Warnings {
		if errors.Is(w.Err, org.ErrDuplicateSection) {
			found = true
			assert.Equal(t, org.SectionReports, w.Section)
			assert.Equal(t, org.SeveritySoft, w.Severity())
		}
	}
	assert.True(t, found, "expected a duplicate section warning, got %v", res.Diagnostics.Warnings)
}

func TestParser_Fatal(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"missing title", ":PROPERTIES:\n:ID: p1\n:END:\n\n* Metadata\n* Journals\n** Main\n", org.ErrMissingTitle},
		{"blank title", ":PROPERTIES:\n:ID: p1\n:END:\n#+TITLE:   \n", org.ErrMissingTitle},
		{"missing id", "#+TITLE: Someone\n* Journals\n", org.ErrMissingID},
		{"empty id", ":PROPERTIES:\n:ID:\n:END:\n#+TITLE: Someone\n", org.ErrMissingID},
		{"empty document", "", org.ErrMissingID},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := utcParser().Parse(tc.text)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tc.want)

			var perr *org.ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, org.SeverityFatal, perr.Severity())
		})
	}
}

func TestParser_KnownMetricCheckDisabled(t *testing.T) {
	res, err := org.NewParser(org.WithLocation(time.UTC), org.WithKnownMetricCheck(false)).Parse(loadFixture(t))
	require.NoError(t, err)
	for _, w := range res.Diagnostics.Warnings {
		assert.NotErrorIs(t, w.Err, org.ErrUnknownMetric)
	}
}

func TestParse_Package(t *testing.T) {
	p, err := org.Parse(":PROPERTIES:\n:ID: p1\n:END:\n#+TITLE: Bare\n")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.UUID)
	assert.Equal(t, "Bare", p.Name)
	assert.Nil(t, p.Journals)
	assert.Nil(t, p.Reports)
	assert.Nil(t, p.Documents)
}
