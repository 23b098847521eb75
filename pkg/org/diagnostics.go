package org

import "log/slog"

// Skip records an entity dropped while parsing.
type Skip struct {
	Section SectionKind
	// Index is the position of the entity among its siblings.
	Index   int
	Heading string
	Err     error
}

// Severity is always SeverityEntity.
func (Skip) Severity() Severity { return SeverityEntity }

// Warning records a soft issue: the entity was kept with a default value.
type Warning struct {
	Section SectionKind
	// Reference is the UUID of the affected entity, or its heading when it has none.
	Reference string
	Err       error
}

// Severity is always SeveritySoft.
func (Warning) Severity() Severity { return SeveritySoft }

// Diagnostics collects everything the parser tolerated.
type Diagnostics struct {
	Skipped  []Skip
	Warnings []Warning
	// Missing lists expected sections that were absent; their content parses as empty.
	Missing []SectionKind
}

// Empty reports whether the document parsed without any issue.
func (d *Diagnostics) Empty() bool {
	return len(d.Skipped) == 0 && len(d.Warnings) == 0 && len(d.Missing) == 0
}

// SkippedIn returns the skips recorded for a section.
func (d *Diagnostics) SkippedIn(kind SectionKind) []Skip {
	var out []Skip
	for _, s := range d.Skipped {
		if s.Section == kind {
			out = append(out, s)
		}
	}
	return out
}

// collector accumulates the entities of one section along with the reasons
// why some were skipped.
type collector[T any] struct {
	kind   SectionKind
	items  []T
	skips  []Skip
	logger *slog.Logger
}

func newCollector[T any](kind SectionKind, logger *slog.Logger) *collector[T] {
	return &collector[T]{kind: kind, logger: logger}
}

func (c *collector[T]) add(item T) {
	c.items = append(c.items, item)
}

func (c *collector[T]) skip(index int, heading string, err error) {
	c.logger.Warn("skipping entity", "section", c.kind.String(), "index", index, "heading", heading, "error", err)
	c.skips = append(c.skips, Skip{Section: c.kind, Index: index, Heading: heading, Err: err})
}

// drain moves the skips into d and returns the collected items.
func (c *collector[T]) drain(d *Diagnostics) []T {
	d.Skipped = append(d.Skipped, c.skips...)
	return c.items
}
