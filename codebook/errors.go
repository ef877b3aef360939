package codebook

import "errors"

// ErrInvalidSetup indicates a codebook descriptor in the setup header
// violates the Huffman code assignment rules (spec.md §4.3) or otherwise
// fails to validate.
var ErrInvalidSetup = errors.New("codebook: invalid codebook descriptor")
