package org

import (
	"regexp"
	"strconv"
	"time"

	"github.com/aretw0/harp/pkg/core"
)

var hashtagRe = regexp.MustCompile(`#([a-zA-Z][a-zA-Z0-9-]*)(?:\(([-+]?\d*\.?\d+)\))?`)

// Fragment is an inline #token or #token(number) marker.
type Fragment struct {
	Token string
	// Literal is the raw number inside the parentheses, if any.
	Literal  string
	HasValue bool
}

// ParseHashtagFragments scans text for #token and #token(number) markers,
// left to right. Duplicates are kept.
func ParseHashtagFragments(text string) []Fragment {
	var out []Fragment
	for _, m := range hashtagRe.FindAllStringSubmatchIndex(text, -1) {
		f := Fragment{Token: text[m[2]:m[3]]}
		if m[4] >= 0 {
			f.Literal = text[m[4]:m[5]]
			f.HasValue = true
		}
		out = append(out, f)
	}
	return out
}

// ParseTags returns the plain #tag markers of text.
func ParseTags(text string) []string {
	var tags []string
	for _, f := range ParseHashtagFragments(text) {
		if !f.HasValue {
			tags = append(tags, f.Token)
		}
	}
	return tags
}

// ParseMetricValues returns the #metric(value) markers of text. Text carries
// no timestamps, so every value gets the datetime and reference of its owner.
func ParseMetricValues(text string, datetime time.Time, reference string) []core.MetricValue {
	var values []core.MetricValue
	for _, f := range ParseHashtagFragments(text) {
		if !f.HasValue {
			continue
		}
		v, err := strconv.ParseFloat(f.Literal, 64)
		if err != nil {
			continue
		}
		values = append(values, core.MetricValue{
			ID:        f.Token,
			Value:     v,
			Datetime:  datetime,
			Reference: reference,
		})
	}
	return values
}
