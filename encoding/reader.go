package encoding

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrFormat is returned for every malformed, truncated or over-declared
// encoding. Decoders never return partially filled values together with it.
var ErrFormat = errors.New("format error")

const (
	u8Len    = 1
	u32Len   = 4
	u64Len   = 8
	countLen = u32Len
)

func formatErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrFormat, fmt.Sprintf(format, args...))
}

// reader decodes the canonical little-endian layout. Every read checks the
// declared length against the remaining buffer before slicing.
type reader struct {
	buf []byte
	off int
}

func newReader(b []byte) *reader {
	return &reader{buf: b}
}

func (r *reader) remaining() int {
	return len(r.buf) - r.off
}

func (r *reader) fixed(n int, what string) ([]byte, error) {
	if n < 0 || n > r.remaining() {
		return nil, formatErr("%s: need %d bytes at offset %d, have %d", what, n, r.off, r.remaining())
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) u8(what string) (uint8, error) {
	b, err := r.fixed(u8Len, what)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u64(what string) (uint64, error) {
	b, err := r.fixed(u64Len, what)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// count reads a collection length and rejects it if the remaining buffer
// cannot hold that many items of at least minItemLen bytes each.
func (r *reader) count(minItemLen int, what string) (int, error) {
	b, err := r.fixed(countLen, what+" count")
	if err != nil {
		return 0, err
	}
	n := binary.LittleEndian.Uint32(b)
	if minItemLen > 0 && uint64(n) > uint64(r.remaining()/minItemLen) {
		return 0, formatErr("%s: declared %d items, only %d bytes left", what, n, r.remaining())
	}
	return int(n), nil
}

// bytes reads a count-prefixed byte string.
func (r *reader) bytes(what string) ([]byte, error) {
	n, err := r.count(1, what)
	if err != nil {
		return nil, err
	}
	b, err := r.fixed(n, what)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

func (r *reader) finish(what string) error {
	if r.remaining() != 0 {
		return formatErr("%s: %d trailing bytes", what, r.remaining())
	}
	return nil
}

type writer struct {
	buf []byte
}

func (w *writer) u8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *writer) u64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

func (w *writer) count(n int) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(n))
}

func (w *writer) fixed(b []byte) {
	w.buf = append(w.buf, b...)
}

func (w *writer) bytes(b []byte) {
	w.count(len(b))
	w.fixed(b)
}
