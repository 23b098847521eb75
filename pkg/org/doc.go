// Package org reads and writes health profiles in the Org outline dialect
// that harp produces.
//
// A profile document starts with a property drawer holding the profile ID
// and a #+TITLE keyword, followed by the fixed top-level sections Metadata,
// Journals, Reports and Documents. Free text inside entries and annotations
// may carry inline #tag and #metric(value) markers, and attachments are
// referenced with [[attachment:NAME][NAME]] links.
//
// Parsing is tolerant: only a missing profile ID or title fails the parse.
// Any other broken item is dropped and reported through Diagnostics.
package org
