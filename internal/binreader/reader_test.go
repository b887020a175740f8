package binreader

import (
	"encoding/binary"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-importer/internal/format"
)

func TestTypedReads(t *testing.T) {
	buf := []byte{0x7f}
	buf = binary.LittleEndian.AppendUint16(buf, 0xBEEF)
	buf = binary.LittleEndian.AppendUint32(buf, 0xDEADBEEF)
	buf = binary.LittleEndian.AppendUint64(buf, 0x0102030405060708)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(0xFFFFFFFF)) // -1
	buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(1.5))

	r := New(buf)
	u8, err := r.U8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x7f), u8)

	u16, err := r.U16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), u16)

	u32, err := r.U32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), u32)

	u64, err := r.U64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), u64)

	i32, err := r.I32()
	require.NoError(t, err)
	assert.Equal(t, int32(-1), i32)

	f, err := r.F32()
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), f)

	assert.Equal(t, 0, r.Remaining())
}

func TestTruncatedReadDoesNotAdvance(t *testing.T) {
	r := New([]byte{1, 2, 3})
	_, err := r.U32()
	require.ErrorIs(t, err, format.ErrTruncatedData)
	assert.Equal(t, 0, r.Tell())

	_, err = r.U16()
	require.NoError(t, err)
	_, err = r.U16()
	require.ErrorIs(t, err, format.ErrTruncatedData)
	assert.Equal(t, 2, r.Tell())

	_, err = r.Bytes(-1)
	require.ErrorIs(t, err, format.ErrTruncatedData)
}

func TestEveryPrefixIsTruncated(t *testing.T) {
	full := binary.LittleEndian.AppendUint64(nil, 42)
	for n := 0; n < len(full); n++ {
		_, err := New(full[:n]).U64()
		require.ErrorIsf(t, err, format.ErrTruncatedData, "prefix %d", n)
	}
}

func TestStrings(t *testing.T) {
	buf := binary.LittleEndian.AppendUint16(nil, 5)
	buf = append(buf, "hello"...)
	buf = append(buf, 'a', 'b', 0, 'z')

	r := New(buf)
	s, err := r.String()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	fixed, err := r.FixedString(4)
	require.NoError(t, err)
	assert.Equal(t, "ab", fixed)
}

func TestStringLengthPastEnd(t *testing.T) {
	buf := binary.LittleEndian.AppendUint16(nil, 10)
	buf = append(buf, "abc"...)
	r := New(buf)
	_, err := r.String()
	require.ErrorIs(t, err, format.ErrTruncatedData)
	assert.Equal(t, 0, r.Tell(), "length prefix must be rewound")
}

func TestLegacyStringsAreWindows1252(t *testing.T) {
	buf := binary.LittleEndian.AppendUint16(nil, 4)
	buf = append(buf, 'c', 'a', 'f', 0xE9)

	s, err := ForVersion(buf, 1).String()
	require.NoError(t, err)
	assert.Equal(t, "café", s)

	raw, err := ForVersion(buf, 2).String()
	require.NoError(t, err)
	assert.Equal(t, "caf\xe9", raw)
}

func TestSeekAndTell(t *testing.T) {
	r := New(make([]byte, 8))
	require.NoError(t, r.Seek(8))
	assert.Equal(t, 0, r.Remaining())
	require.ErrorIs(t, r.Seek(9), format.ErrTruncatedData)
	require.ErrorIs(t, r.Seek(-1), format.ErrTruncatedData)

	require.NoError(t, r.Seek(4))
	mark := r.Tell()
	_, err := r.U32()
	require.NoError(t, err)
	require.NoError(t, r.Seek(mark))
	assert.Equal(t, 4, r.Tell())

	m := r.Mark()
	_, err = r.U16()
	require.NoError(t, err)
	r.Reset(m)
	assert.Equal(t, 4, r.Remaining())
}

func TestVectors(t *testing.T) {
	var buf []byte
	for _, f := range []float32{1, 2, 3, 4, 5, 6, 7, 8, 9} {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	r := New(buf)
	v2, err := r.Vec2()
	require.NoError(t, err)
	assert.Equal(t, [2]float32{1, 2}, v2)
	v3, err := r.Vec3()
	require.NoError(t, err)
	assert.Equal(t, [3]float32{3, 4, 5}, v3)
	v4, err := r.Vec4()
	require.NoError(t, err)
	assert.Equal(t, [4]float32{6, 7, 8, 9}, v4)
	_, err = r.F32()
	require.ErrorIs(t, err, format.ErrTruncatedData)
}

func TestNeed(t *testing.T) {
	r := New(make([]byte, 16))
	require.NoError(t, r.Need(4, 4))
	require.ErrorIs(t, r.Need(5, 4), format.ErrTruncatedData)
	require.ErrorIs(t, r.Need(math.MaxInt, 2), format.ErrTruncatedData)
}

func TestRandomReadsNeverPanic(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		buf := make([]byte, rng.Intn(12))
		rng.Read(buf)
		r := New(buf)
		for j := 0; j < 6; j++ {
			switch rng.Intn(4) {
			case 0:
				_, _ = r.U64()
			case 1:
				_, _ = r.String()
			case 2:
				_, _ = r.Vec3()
			default:
				_, _ = r.FixedString(rng.Intn(5))
			}
		}
		assert.LessOrEqual(t, r.Tell(), len(buf))
	}
}

func TestOverflowHelpers(t *testing.T) {
	_, ok := MulOverflowSafe(math.MaxInt, 2)
	assert.False(t, ok)
	_, ok = AddOverflowSafe(math.MaxInt, 1)
	assert.False(t, ok)
	got, ok := Slice([]byte{0, 1, 2, 3}, 1, 2)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2}, got)
	_, ok = Slice([]byte{0, 1}, 1, 2)
	assert.False(t, ok)
}
