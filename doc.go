// Package nogg is a pure-Go decoder for Ogg-encapsulated Vorbis I audio
// streams (spec.md §1). It accepts an in-memory buffer, an io.Reader, or
// an io.ReadSeeker and produces interleaved PCM as float32 in [-1, +1] or
// as rounded, saturated int16.
//
// Open a stream with Open, OpenReader, OpenReadSeeker, or OpenSource, read
// samples with Read or ReadInt16, and Close when done. Seek is only
// available on a seekable source.
package nogg
