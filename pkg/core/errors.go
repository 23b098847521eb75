package core

import "errors"

// Common errors.
var (
	ErrReadOnly        = errors.New("store is in read-only mode")
	ErrNotFound        = errors.New("not found")
	ErrInvalidProfile  = errors.New("invalid profile")
	ErrDuplicateMetric = errors.New("metric already defined")
	ErrNoMainJournal   = errors.New("profile has no main journal")
	ErrUnsupported     = errors.New("not supported by store")
)
