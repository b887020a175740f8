package binreader

import (
	"fmt"
	"math"

	"scene-importer/internal/format"
)

// MulOverflowSafe multiplies two non-negative ints, returning ok = false on overflow.
func MulOverflowSafe(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// AddOverflowSafe adds two non-negative ints, returning ok = false on overflow.
func AddOverflowSafe(a, b int) (int, bool) {
	if a < 0 || b < 0 || a > math.MaxInt-b {
		return 0, false
	}
	return a + b, true
}

// Need reports whether count records of at least elemSize bytes can still be read.
// Callers use it before allocating slices sized from on-disk counts.
func (r *Reader) Need(count, elemSize int) error {
	total, ok := MulOverflowSafe(count, elemSize)
	if !ok || total > r.Remaining() {
		return fmt.Errorf("%w: %d records of %d bytes at offset %d, have %d",
			format.ErrTruncatedData, count, elemSize, r.off, r.Remaining())
	}
	return nil
}

// Slice returns b[off:off+n] when the range is inside b.
func Slice(b []byte, off, n int) ([]byte, bool) {
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end], true
}
