package container

import (
	"fmt"

	"scene-importer/internal/binreader"
	"scene-importer/internal/format"
)

// DefaultMaxChunkBytes caps declared chunk lengths before anything is allocated.
const DefaultMaxChunkBytes = 256 << 20

// Limits are the sanity ceilings applied to a container directory.
type Limits struct {
	MaxChunkBytes uint64
}

// DefaultLimits returns the ceilings used when none are configured.
func DefaultLimits() Limits {
	return Limits{MaxChunkBytes: DefaultMaxChunkBytes}
}

// RawChunk is one directory entry.
type RawChunk struct {
	Index            int // position in the directory
	Tag              format.Tag
	Offset           uint64
	Length           uint64
	Compressed       bool
	UncompressedSize uint64
}

func (c RawChunk) String() string {
	return fmt.Sprintf("%s#%d", c.Tag, c.Index)
}

// File is a parsed container: header fields plus a validated chunk directory.
type File struct {
	Version uint32
	Flags   uint32
	Chunks  []RawChunk
	data    []byte
}

// Parse reads the header and chunk directory. Every directory entry is checked
// against the buffer and the limits, so Span never fails afterwards.
func Parse(data []byte, lim Limits) (*File, error) {
	if lim.MaxChunkBytes == 0 {
		lim = DefaultLimits()
	}
	r := binreader.New(data)

	magic, err := r.Bytes(len(format.Magic))
	if err != nil {
		return nil, fmt.Errorf("container: header: %w", err)
	}
	if [4]byte(magic) != format.Magic {
		return nil, fmt.Errorf("container: %w: %q", format.ErrBadMagic, magic)
	}

	f := &File{data: data}
	if f.Version, err = r.U32(); err != nil {
		return nil, fmt.Errorf("container: header: %w", err)
	}
	if f.Version < format.MinVersion || f.Version > format.MaxVersion {
		return nil, fmt.Errorf("container: %w: %d (supported %d-%d)",
			format.ErrUnsupportedVersion, f.Version, format.MinVersion, format.MaxVersion)
	}
	if f.Flags, err = r.U32(); err != nil {
		return nil, fmt.Errorf("container: header: %w", err)
	}
	count, err := r.U32()
	if err != nil {
		return nil, fmt.Errorf("container: header: %w", err)
	}
	if err := r.Need(int(count), format.DirEntrySize); err != nil {
		return nil, fmt.Errorf("container: directory of %d entries: %w", count, err)
	}

	f.Chunks = make([]RawChunk, count)
	for i := range f.Chunks {
		c, err := readEntry(r, i)
		if err != nil {
			return nil, fmt.Errorf("container: directory entry %d: %w", i, err)
		}
		if err := validate(c, len(data), lim); err != nil {
			return nil, fmt.Errorf("container: chunk %s: %w", c, err)
		}
		f.Chunks[i] = c
	}
	return f, nil
}

func readEntry(r *binreader.Reader, index int) (RawChunk, error) {
	c := RawChunk{Index: index}
	tag, err := r.U32()
	if err != nil {
		return c, err
	}
	flags, err := r.U32()
	if err != nil {
		return c, err
	}
	if c.Offset, err = r.U64(); err != nil {
		return c, err
	}
	if c.Length, err = r.U64(); err != nil {
		return c, err
	}
	if c.UncompressedSize, err = r.U64(); err != nil {
		return c, err
	}
	c.Tag = format.Tag(tag)
	c.Compressed = flags&format.FlagCompressed != 0
	if !c.Compressed {
		c.UncompressedSize = c.Length
	}
	return c, nil
}

func validate(c RawChunk, size int, lim Limits) error {
	if c.Length > lim.MaxChunkBytes || c.UncompressedSize > lim.MaxChunkBytes {
		return fmt.Errorf("%w: length %d, uncompressed %d, limit %d",
			format.ErrLimitExceeded, c.Length, c.UncompressedSize, lim.MaxChunkBytes)
	}
	if c.Offset > uint64(size) || c.Length > uint64(size)-c.Offset {
		return fmt.Errorf("%w: span [%d, +%d) outside %d-byte file",
			format.ErrTruncatedData, c.Offset, c.Length, size)
	}
	return nil
}

// Span returns the on-disk bytes of a chunk. The slice aliases the file buffer.
func (f *File) Span(c RawChunk) []byte {
	return f.data[c.Offset : c.Offset+c.Length]
}

// Count returns how many directory entries carry tag.
func (f *File) Count(tag format.Tag) int {
	n := 0
	for _, c := range f.Chunks {
		if c.Tag == tag {
			n++
		}
	}
	return n
}
