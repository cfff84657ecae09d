package mapfile

import (
	"errors"
	"fmt"
)

// Map file errors.
var (
	// ErrFormat marks a corrupted map: bad header, unknown version or a
	// missing mandatory file. It aborts the whole load.
	ErrFormat = errors.New("map format corrupted")
	// ErrData marks a single malformed data line. The line is skipped.
	ErrData = errors.New("malformed map data line")
	// ErrMissingTiles is returned when the mandatory tiles file is absent.
	ErrMissingTiles = errors.New("tiles file missing")
	// ErrUnsupportedVersion is returned for an unknown V: header value.
	ErrUnsupportedVersion = errors.New("unsupported map version")
	// ErrOutOfBounds is returned for a cell outside the map.
	ErrOutOfBounds = errors.New("cell out of map bounds")
)

// FormatError describes a fatal problem with one map file.
type FormatError struct {
	File string
	Line int // 0 if not tied to a line
	Text string
	Err  error
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v: %q", e.File, e.Line, e.Err, e.Text)
	}
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

// Unwrap lets errors.Is match both ErrFormat and the specific cause.
func (e *FormatError) Unwrap() []error {
	return []error{ErrFormat, e.Err}
}

// LineError describes a skipped data line.
type LineError struct {
	File string
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %v: %q", e.File, e.Line, e.Err, e.Text)
}

// Unwrap lets errors.Is match both ErrData and the specific cause.
func (e *LineError) Unwrap() []error {
	return []error{ErrData, e.Err}
}
