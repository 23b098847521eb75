// Package core holds the domain model of harp: profiles and everything they
// record, plus the ports through which storage and codecs are reached.
package core

import "time"

// MainJournal is the name of the single journal every profile carries.
const MainJournal = "Main"

// Profile is the root record of a person's health history.
type Profile struct {
	UUID      string     `json:"uuid"`
	Name      string     `json:"name"`
	Metadata  Metadata   `json:"metadata"`
	Journals  []Journal  `json:"journals"`
	Reports   []Report   `json:"reports"`
	Documents []Document `json:"documents"`
}

// Metadata groups the definitions shared by all items of a profile.
// Sources are derived from the reports and documents that reference them.
type Metadata struct {
	Sources []Source `json:"sources"`
	Metrics []Metric `json:"metrics"`
}

// Metric defines a numeric observation that can be recorded inline as
// #id(value) in journal entries and report annotations.
type Metric struct {
	ID           string   `json:"id" validate:"required,metricid"`
	Name         string   `json:"name" validate:"required"`
	Unit         string   `json:"unit"`
	Tags         []string `json:"tags"`
	Range        Range    `json:"range"`
	HealthyRange Range    `json:"healthyRange"`
}

// Range is a numeric interval where either bound may be absent.
type Range struct {
	Low  *float64 `json:"low,omitempty"`
	High *float64 `json:"high,omitempty"`
}

// NewRange builds a Range with both bounds set.
func NewRange(low, high float64) Range {
	return Range{Low: &low, High: &high}
}

// Journal is a named, ordered list of entries.
type Journal struct {
	Name    string         `json:"name"`
	Entries []JournalEntry `json:"entries"`
}

// JournalEntry is a free-form note. MetricValues and Assets are derived from Text.
type JournalEntry struct {
	UUID         string        `json:"uuid"`
	Datetime     time.Time     `json:"datetime"`
	Tags         []string      `json:"tags"`
	Text         string        `json:"text"`
	MetricValues []MetricValue `json:"metricValues"`
	Assets       []Asset       `json:"assets"`
	IsPrivate    bool          `json:"isPrivate"`
}

// Report is a result issued by a Source (lab, clinic...). MetricValues are
// derived from Annotation.
type Report struct {
	Name         string        `json:"name"`
	Datetime     time.Time     `json:"datetime"`
	UUID         string        `json:"uuid"`
	Tags         []string      `json:"tags"`
	Source       Source        `json:"source"`
	Assets       []Asset       `json:"assets"`
	Annotation   string        `json:"annotation"`
	MetricValues []MetricValue `json:"metricValues"`
}

// Document is any other file kept for reference: prescriptions, bills, letters.
type Document struct {
	Name       string    `json:"name"`
	Datetime   time.Time `json:"datetime"`
	UUID       string    `json:"uuid"`
	Tags       []string  `json:"tags"`
	Source     Source    `json:"source"`
	Assets     []Asset   `json:"assets"`
	Annotation string    `json:"annotation"`
}

// Source identifies the issuer of a report or document.
type Source struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Asset is a file attached to an entry, report or document.
// Empty MimeType and Text mean "unknown" and "not extracted".
type Asset struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
}

// MetricValue is a single observation of a metric. Reference is the UUID of
// the entry or report whose text carried it.
type MetricValue struct {
	ID        string    `json:"id"`
	Value     float64   `json:"value"`
	Datetime  time.Time `json:"datetime"`
	Reference string    `json:"reference"`
}

// EventType represents the type of change observed on a profile file.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to a watched profile file.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix timestamp
}

// String implements fmt.Stringer.
func (e Event) String() string {
	return string(e.Type) + " " + e.ID
}
