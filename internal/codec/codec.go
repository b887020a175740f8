package codec

import (
	"fmt"

	"github.com/pierrec/lz4/v4"

	"scene-importer/internal/container"
	"scene-importer/internal/format"
)

// Codec decompresses one block into exactly declaredSize bytes or fails.
type Codec interface {
	Decompress(src []byte, declaredSize int) ([]byte, error)
}

// LZ4 decodes raw LZ4 blocks (no frame header).
type LZ4 struct{}

func (LZ4) Decompress(src []byte, declaredSize int) ([]byte, error) {
	// One spare byte lets an over-long stream show up as a size mismatch
	// instead of a short-buffer error.
	dst := make([]byte, declaredSize+1)
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4: %w", err)
	}
	return dst[:n], nil
}

// Adapter turns chunk spans into payload bytes.
type Adapter struct {
	Codec Codec
}

// New returns an Adapter using the LZ4 block codec.
func New() *Adapter {
	return &Adapter{Codec: LZ4{}}
}

// Payload returns the decoded bytes of a chunk. Uncompressed spans are returned
// as-is. Compressed spans must decode to exactly the declared size.
func (a *Adapter) Payload(c container.RawChunk, span []byte) ([]byte, error) {
	if !c.Compressed {
		return span, nil
	}
	codec := a.Codec
	if codec == nil {
		codec = LZ4{}
	}
	out, err := codec.Decompress(span, int(c.UncompressedSize))
	if err != nil {
		return nil, fmt.Errorf("codec: chunk %s: %w: %v", c, format.ErrDecompressionFailed, err)
	}
	if uint64(len(out)) != c.UncompressedSize {
		return nil, fmt.Errorf("codec: chunk %s: %w: declared %d bytes, got %d",
			c, format.ErrDecompressionFailed, c.UncompressedSize, len(out))
	}
	return out, nil
}
