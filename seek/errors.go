package seek

import "errors"

var (
	// ErrNotSeekable is returned by CoarsePage when the underlying byte
	// source reports itself unseekable (spec.md §4.10, §7 "seek on
	// unseekable stream"); Length reports the same condition as false.
	ErrNotSeekable = errors.New("seek: stream is not seekable")

	// ErrNoPageFound is returned when a page scan exhausts the stream
	// without finding a valid Ogg page (spec.md §7 "cannot find target
	// page").
	ErrNoPageFound = errors.New("seek: no valid page found")
)
