package org

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/aretw0/harp/pkg/core"
)

// nullBound is written for an absent range bound.
const nullBound = "null"

var rangeRe = regexp.MustCompile(`(?i)^\s*([-+]?\d+(?:\.\d+)?|null)\s*-\s*([-+]?\d+(?:\.\d+)?|null)\s*$`)

// ParseNumericRange reads "<low> - <high>" where each bound is a decimal or
// null. Malformed text yields a range with both bounds absent.
func ParseNumericRange(text string) core.Range {
	r, _ := parseNumericRange(text)
	return r
}

func parseNumericRange(text string) (core.Range, bool) {
	m := rangeRe.FindStringSubmatch(text)
	if m == nil {
		return core.Range{}, false
	}
	return core.Range{Low: parseBound(m[1]), High: parseBound(m[2])}, true
}

func parseBound(s string) *float64 {
	if strings.EqualFold(s, nullBound) {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// FormatNumericRange is the inverse of ParseNumericRange.
func FormatNumericRange(r core.Range) string {
	return formatBound(r.Low) + " - " + formatBound(r.High)
}

func formatBound(v *float64) string {
	if v == nil {
		return nullBound
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
