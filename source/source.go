// Package source defines the byte-source contract the decoder pulls bytes
// from, plus small adapters over the common Go I/O shapes.
//
// The contract intentionally stays close to the one described by the
// original C implementation's callback struct: length/tell/seek are only
// meaningful (and only ever called) when the source reports itself
// seekable; read is the only operation an unseekable source must support.
package source

import (
	"bytes"
	"io"
)

// ByteSource is the contract the decoder uses to pull bytes from its input.
// Implementations are called only from within a single decoder's calls and
// need not be safe for concurrent use.
type ByteSource interface {
	// Length returns the total stream length in bytes, or -1 if the
	// source is not seekable. Must be stable across calls.
	Length() int64

	// Tell returns the current byte offset. Only called when Length() >= 0.
	Tell() int64

	// Seek sets the byte offset. Only called when Length() >= 0; must
	// succeed for any offset in [0, Length()].
	Seek(offset int64) error

	// Read reads up to len(p) bytes into p and returns the count read.
	// A short read on a seekable source is a fatal I/O error; on an
	// unseekable source, a zero-length, nil-error return means end of
	// stream.
	Read(p []byte) (int, error)

	// Close is called exactly once, when the decoder handle that opened
	// this source is closed.
	Close() error
}

// Seekable reports whether s supports Tell/Seek (Length() >= 0).
func Seekable(s ByteSource) bool {
	return s.Length() >= 0
}

// bufferSource adapts an in-memory byte slice into a seekable ByteSource.
type bufferSource struct {
	data []byte
	pos  int64
}

// NewFromBytes wraps an in-memory buffer as a seekable ByteSource. The
// decoder never retains a reference to data beyond the calls it makes
// through this adapter, but the adapter itself does not copy it.
func NewFromBytes(data []byte) ByteSource {
	return &bufferSource{data: data}
}

func (b *bufferSource) Length() int64 { return int64(len(b.data)) }
func (b *bufferSource) Tell() int64   { return b.pos }

func (b *bufferSource) Seek(offset int64) error {
	if offset < 0 || offset > int64(len(b.data)) {
		return io.ErrUnexpectedEOF
	}
	b.pos = offset
	return nil
}

func (b *bufferSource) Read(p []byte) (int, error) {
	n := copy(p, b.data[b.pos:])
	b.pos += int64(n)
	return n, nil
}

func (b *bufferSource) Close() error { return nil }

// readerSource adapts a plain io.Reader (no seeking) into a ByteSource.
type readerSource struct {
	r io.Reader
}

// NewFromReader wraps an io.Reader as an unseekable ByteSource. Reaching
// EOF is reported as a zero-length read with a nil error, matching the
// contract's "unseekable EOF" convention rather than io.EOF.
func NewFromReader(r io.Reader) ByteSource {
	return &readerSource{r: r}
}

func (r *readerSource) Length() int64        { return -1 }
func (r *readerSource) Tell() int64          { return 0 }
func (r *readerSource) Seek(int64) error     { return io.ErrUnexpectedEOF }
func (r *readerSource) Close() error {
	if c, ok := r.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (r *readerSource) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err == io.EOF {
		return n, nil
	}
	return n, err
}

// readSeekerSource adapts an io.ReadSeeker into a seekable ByteSource.
type readSeekerSource struct {
	rs     io.ReadSeeker
	length int64
}

// NewFromReadSeeker wraps an io.ReadSeeker as a seekable ByteSource. The
// stream length is probed once at construction via Seek(0, io.SeekEnd).
func NewFromReadSeeker(rs io.ReadSeeker) (ByteSource, error) {
	length, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return &readSeekerSource{rs: rs, length: length}, nil
}

func (r *readSeekerSource) Length() int64 { return r.length }

func (r *readSeekerSource) Tell() int64 {
	pos, _ := r.rs.Seek(0, io.SeekCurrent)
	return pos
}

func (r *readSeekerSource) Seek(offset int64) error {
	_, err := r.rs.Seek(offset, io.SeekStart)
	return err
}

func (r *readSeekerSource) Read(p []byte) (int, error) {
	n, err := r.rs.Read(p)
	if err == io.EOF {
		return n, nil
	}
	return n, err
}

func (r *readSeekerSource) Close() error {
	if c, ok := r.rs.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// byteReaderFrom returns an io.Reader that reads sequentially from a
// ByteSource, for callers that want the source as a plain io.Reader.
func byteReaderFrom(s ByteSource) io.Reader {
	return &sourceReader{s: s}
}

type sourceReader struct{ s ByteSource }

func (sr *sourceReader) Read(p []byte) (int, error) {
	n, err := sr.s.Read(p)
	if err != nil {
		return n, err
	}
	if n == 0 && !Seekable(sr.s) {
		return 0, io.EOF
	}
	return n, nil
}

// ReadAll drains a ByteSource completely, starting from its current
// position.
func ReadAll(s ByteSource) ([]byte, error) {
	var buf bytes.Buffer
	_, err := io.Copy(&buf, byteReaderFrom(s))
	return buf.Bytes(), err
}
