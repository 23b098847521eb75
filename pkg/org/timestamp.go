package org

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var timestampRe = regexp.MustCompile(`^\[(\d{4})-(\d{2})-(\d{2})(?: (\d{2}):(\d{2}))?\]$`)

// ParseInactiveTimestamp reads [YYYY-MM-DD] or [YYYY-MM-DD HH:MM] in loc.
// A missing time of day means midnight.
func ParseInactiveTimestamp(text string, loc *time.Location) (time.Time, error) {
	m := timestampRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, text)
	}
	if loc == nil {
		loc = time.Local
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	var hour, minute int
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		minute, _ = strconv.Atoi(m[5])
	}

	if month < 1 || month > 12 || day < 1 || day > daysIn(year, time.Month(month)) || hour > 23 || minute > 59 {
		return time.Time{}, fmt.Errorf("%w: %q out of range", ErrInvalidTimestamp, text)
	}
	// A wall time skipped by a DST transition is normalized by time.Date.
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc), nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FormatInactiveTimestamp renders t as an inactive timestamp. When the time of
// day is exactly midnight only the date is written, so a real event at 00:00
// reads back as a date-only value.
func FormatInactiveTimestamp(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("[2006-01-02]")
	}
	return t.Format("[2006-01-02 15:04]")
}
