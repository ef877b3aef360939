package oggframe

import "errors"

// Package-level sentinel errors for Ogg page and packet parsing.
var (
	// ErrInvalidPage indicates the page structure is malformed: missing
	// "OggS" capture pattern, unsupported version, or a header that
	// claims more segments or payload than the buffer holds.
	ErrInvalidPage = errors.New("oggframe: invalid page structure")

	// ErrBadCRC indicates the page CRC-32 checksum does not match the
	// computed value. Only checked when scanning for a page (§4.2);
	// sequential decode trusts the input and skips the check.
	ErrBadCRC = errors.New("oggframe: page CRC mismatch")

	// ErrContinuationWithoutStart indicates a page marked as a packet
	// continuation arrived with no packet in progress to continue.
	ErrContinuationWithoutStart = errors.New("oggframe: continuation page with no packet in progress")

	// ErrPageNotFound is returned by page scanning (with the
	// scan-for-next-page option) when no valid page is found before the
	// source is exhausted.
	ErrPageNotFound = errors.New("oggframe: no valid page found")
)
