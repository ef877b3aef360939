package nogg

import "errors"

// Status reports the outcome of a decode or seek call, matching the
// severity taxonomy of spec.md §7: setup errors are fatal and surface
// directly as an error from Open; decode errors additionally carry one
// of these statuses so the caller can distinguish a recoverable
// per-frame glitch from the stream's natural end.
type Status int

const (
	// StatusOK means the call completed normally.
	StatusOK Status = iota
	// StatusRecovered means a per-frame decode error was skipped; the
	// sample count returned may be less than requested, and the next
	// call may succeed normally (spec.md §7 "recoverable decode
	// errors").
	StatusRecovered
	// StatusStreamEnd means the stream has no more samples to decode.
	StatusStreamEnd
)

// Sentinel errors surfaced by the top-level decoder API (spec.md §6
// "Error taxonomy").
var (
	ErrInvalidArgument     = errors.New("nogg: invalid argument")
	ErrStreamInvalid       = errors.New("nogg: stream is not a valid Ogg Vorbis stream")
	ErrDecodeSetupFailed   = errors.New("nogg: decode setup failed")
	ErrDecodeFailed        = errors.New("nogg: fatal decode error")
	ErrInvalidOperation    = errors.New("nogg: invalid operation for this stream")
	ErrDisabledFunction    = errors.New("nogg: function disabled by open options")
)
