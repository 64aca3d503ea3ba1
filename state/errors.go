package state

import (
	"errors"
	"fmt"
)

// Sentinel errors for path resolution and lookups.
var (
	// ErrEmptyPath is returned for an empty path or an empty path segment.
	ErrEmptyPath = errors.New("state: empty path segment")

	// ErrUnknownField is returned when a path segment names no field.
	ErrUnknownField = errors.New("state: unknown field")

	// ErrNotMapping is returned when a path descends through a value that
	// is not a mapping, e.g. "content.to.first".
	ErrNotMapping = errors.New("state: intermediate segment is not a mapping")

	// ErrReadOnly is returned for fields the store maintains itself.
	ErrReadOnly = errors.New("state: field is read-only")

	// ErrUnknownQuote is returned when a quote id is not in the quote table.
	ErrUnknownQuote = errors.New("state: unknown quote")
)

// PathError records a failed dotted-path resolution.
type PathError struct {
	Path    string // full path as given
	Segment string // segment where resolution stopped
	Err     error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%v: %q (at %q)", e.Err, e.Path, e.Segment)
}

func (e *PathError) Unwrap() error { return e.Err }

// TypeError is returned when a value cannot be assigned to a field.
type TypeError struct {
	Path string
	Want string
	Got  any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("state: %s wants %s, got %T", e.Path, e.Want, e.Got)
}

// ValidationError is returned when a value is of the right type but outside
// the allowed range.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return "state: invalid " + e.Path + ": " + e.Reason
}

// UnknownThemeError is returned when a theme id is not registered.
type UnknownThemeError struct {
	ID string
}

func (e *UnknownThemeError) Error() string {
	return fmt.Sprintf("state: unknown theme %q", e.ID)
}
