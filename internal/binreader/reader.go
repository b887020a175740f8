package binreader

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"scene-importer/internal/format"
)

// Reader is a bounds-checked little-endian cursor over a byte slice.
// A failed read returns format.ErrTruncatedData and leaves the cursor where it was.
type Reader struct {
	data []byte
	off  int
	dec  *encoding.Decoder // nil means strings are UTF-8
}

// New returns a Reader positioned at the start of data.
func New(data []byte) *Reader {
	return &Reader{data: data}
}

// ForVersion returns a Reader whose String decoding matches the container version.
func ForVersion(data []byte, version uint32) *Reader {
	r := New(data)
	if version < 2 {
		r.dec = charmap.Windows1252.NewDecoder()
	}
	return r
}

// Len returns the size of the underlying buffer.
func (r *Reader) Len() int { return len(r.data) }

// Tell returns the current offset.
func (r *Reader) Tell() int { return r.off }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.off }

// Seek moves the cursor to an absolute offset. Seeking to Len() is allowed.
func (r *Reader) Seek(off int) error {
	if off < 0 || off > len(r.data) {
		return fmt.Errorf("%w: seek to %d in %d-byte buffer", format.ErrTruncatedData, off, len(r.data))
	}
	r.off = off
	return nil
}

// Mark is a saved cursor position.
type Mark int

func (r *Reader) Mark() Mark { return Mark(r.off) }

// Reset returns the cursor to m.
func (r *Reader) Reset(m Mark) { r.off = int(m) }

// span consumes n bytes, or nothing at all.
func (r *Reader) span(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			format.ErrTruncatedData, n, r.off, r.Remaining())
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func readFixed[T constraints.Unsigned](r *Reader, size int, decode func([]byte) T) (T, error) {
	b, err := r.span(size)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode(b), nil
}

func (r *Reader) U8() (uint8, error) {
	return readFixed(r, 1, func(b []byte) uint8 { return b[0] })
}

func (r *Reader) U16() (uint16, error) {
	return readFixed(r, 2, binary.LittleEndian.Uint16)
}

func (r *Reader) U32() (uint32, error) {
	return readFixed(r, 4, binary.LittleEndian.Uint32)
}

func (r *Reader) U64() (uint64, error) {
	return readFixed(r, 8, binary.LittleEndian.Uint64)
}

func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

func (r *Reader) F32() (float32, error) {
	v, err := r.U32()
	return math.Float32frombits(v), err
}

// floats reads n consecutive float32 values into dst.
func (r *Reader) floats(dst []float32) error {
	b, err := r.span(4 * len(dst))
	if err != nil {
		return err
	}
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return nil
}

func (r *Reader) Vec2() ([2]float32, error) {
	var v [2]float32
	return v, r.floats(v[:])
}

func (r *Reader) Vec3() ([3]float32, error) {
	var v [3]float32
	return v, r.floats(v[:])
}

func (r *Reader) Vec4() ([4]float32, error) {
	var v [4]float32
	return v, r.floats(v[:])
}

// Bytes returns the next n bytes. The slice aliases the underlying buffer.
func (r *Reader) Bytes(n int) ([]byte, error) {
	return r.span(n)
}

// FixedString reads an n-byte field and returns the text before the first NUL.
func (r *Reader) FixedString(n int) (string, error) {
	b, err := r.span(n)
	if err != nil {
		return "", err
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return r.decode(b)
}

// String reads a u16 length-prefixed string.
func (r *Reader) String() (string, error) {
	start := r.off
	n, err := r.U16()
	if err != nil {
		return "", err
	}
	b, err := r.span(int(n))
	if err != nil {
		r.off = start
		return "", err
	}
	return r.decode(b)
}

func (r *Reader) decode(b []byte) (string, error) {
	if r.dec == nil {
		return string(b), nil
	}
	out, err := r.dec.Bytes(b)
	if err != nil {
		return "", fmt.Errorf("binreader: decode string: %w", err)
	}
	return string(out), nil
}
