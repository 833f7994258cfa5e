package store

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned for operations the format cannot perform.
	ErrUnsupported = errors.New("operation not supported by format")
	// ErrNoTemplate is returned when a monolingual format is loaded without
	// its template.
	ErrNoTemplate = errors.New("monolingual format requires a template")
	// ErrNoPath is returned by Save on a format parsed from memory.
	ErrNoPath = errors.New("format has no file path")
	// ErrUnknownFormat is returned for unregistered format ids and when no
	// format matches a file.
	ErrUnknownFormat = errors.New("unknown format")
	// ErrNoUnits is returned by validating loads that produced nothing.
	ErrNoUnits = errors.New("no translatable units")
)

// UnitNotFoundError reports a failed FindUnit lookup.
type UnitNotFoundError struct {
	Context string
	Source  string
}

func (e *UnitNotFoundError) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("unit not found: %q", e.Source)
	}
	return fmt.Sprintf("unit not found: %q (context %q)", e.Source, e.Context)
}
