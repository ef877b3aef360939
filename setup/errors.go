package setup

import "errors"

// Sentinel errors for the three Vorbis header packets (spec.md §4.4).
// Any failure here is a setup error: fatal, non-recoverable (spec.md §7).
var (
	ErrNotIdentification = errors.New("setup: first packet is not an identification header")
	ErrNotComment        = errors.New("setup: second packet is not a comment header")
	ErrNotSetup          = errors.New("setup: third packet is not a setup header")
	ErrBadVersion        = errors.New("setup: unsupported Vorbis version")
	ErrBadChannels       = errors.New("setup: channel count must be positive")
	ErrBadSampleRate     = errors.New("setup: sample rate must be positive")
	ErrBadBlocksize      = errors.New("setup: blocksize out of range or B0 > B1")
	ErrBadFraming        = errors.New("setup: identification header framing bit not set")
	ErrTruncated         = errors.New("setup: header packet truncated")
	ErrInvalidCodebook   = errors.New("setup: invalid codebook descriptor")
	ErrInvalidFloor      = errors.New("setup: invalid floor configuration")
	ErrInvalidResidue    = errors.New("setup: invalid residue configuration")
	ErrInvalidMapping    = errors.New("setup: invalid mapping configuration")
	ErrInvalidMode       = errors.New("setup: invalid mode configuration")
	ErrReservedField     = errors.New("setup: reserved field has nonzero value")
	ErrSetupFraming      = errors.New("setup: setup header missing trailing framing bit")
)
