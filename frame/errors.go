package frame

import "errors"

// ErrFloor0Unsupported is returned when a packet selects a floor 0
// configuration. Floor 0 synthesis with nonzero order is an explicit
// non-goal (spec.md §1): parsing is fully supported (package setup), but
// there is no runtime curve synthesis for it, so a packet that reaches
// this floor type fails cleanly as a recoverable per-frame error rather
// than corrupting decoder state.
var ErrFloor0Unsupported = errors.New("frame: floor 0 synthesis is not supported")
