package org

import (
	"errors"
	"fmt"
)

// Fatal errors: no profile can be built.
var (
	ErrMissingID    = errors.New("missing profile id")
	ErrMissingTitle = errors.New("missing profile title")
)

// Entity-local errors: the offending metric, entry, report or document is
// dropped and parsing continues.
var (
	ErrMissingProperty  = errors.New("missing property")
	ErrInvalidTimestamp = errors.New("invalid inactive timestamp")
	ErrEmptyBody        = errors.New("empty body")
)

// Soft errors: a sentinel value is substituted and nothing is dropped.
var (
	ErrMalformedRange   = errors.New("malformed numeric range")
	ErrUnknownMimeType  = errors.New("unknown file extension")
	ErrUnknownMetric    = errors.New("unknown metric id")
	ErrMissingSection   = errors.New("missing section")
	ErrDuplicateSection = errors.New("duplicate section heading")
)

// Severity tells callers which failure class occurred.
type Severity int

const (
	// SeveritySoft marks recoverable issues where a default was substituted.
	SeveritySoft Severity = iota
	// SeverityEntity marks a single dropped entity.
	SeverityEntity
	// SeverityFatal marks a failed parse.
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeveritySoft:
		return "soft"
	case SeverityEntity:
		return "entity"
	case SeverityFatal:
		return "fatal"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// ParseError is returned when a whole document cannot be turned into a profile.
type ParseError struct {
	Kind error
	Msg  string
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Kind }

// Severity is always SeverityFatal.
func (e *ParseError) Severity() Severity { return SeverityFatal }

func fatalf(kind error, format string, args ...any) error {
	return &ParseError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func missingProperty(name string) error {
	return fmt.Errorf("%w %s", ErrMissingProperty, name)
}
