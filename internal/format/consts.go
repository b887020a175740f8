package format

import (
	"encoding/binary"
	"fmt"
)

// Magic opens every scene container.
var Magic = [4]byte{'S', 'C', 'N', 'B'}

const (
	// MinVersion and MaxVersion bound the container versions this decoder understands.
	// Version 1 stores Windows-1252 strings and no bone scale; version 2 is UTF-8 with scale.
	MinVersion = 1
	MaxVersion = 2

	HeaderSize   = 16 // magic + version + flags + chunk count
	DirEntrySize = 32 // tag + flags + offset + length + uncompressed size

	// FlagCompressed marks a chunk whose payload is an LZ4 block.
	FlagCompressed = 1 << 0

	// VertexFlagColor marks mesh chunks carrying an RGBA float colour per vertex.
	VertexFlagColor = 1 << 0

	MaxUVChannels     = 8
	DefaultMaxWeights = 8

	// RootParent is the parent index of a root bone.
	RootParent = -1
)

// Tag identifies a chunk by a four-character code stored as a little-endian u32.
type Tag uint32

// FourCC builds a Tag from its on-disk character order.
func FourCC(s string) Tag {
	if len(s) != 4 {
		panic(fmt.Sprintf("format: fourcc %q must be 4 bytes", s))
	}
	return Tag(binary.LittleEndian.Uint32([]byte(s)))
}

var (
	TagBones     = FourCC("bone") // 0x656E6F62
	TagMaterials = FourCC("matl") // 0x6C74616D
	TagMetadata  = FourCC("meta") // 0x6174656D
	TagMesh      = FourCC("mesh") // 0x6873656D
	TagCollision = FourCC("coll") // 0x6C6C6F63
)

func (t Tag) String() string {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(t))
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("0x%08X", uint32(t))
		}
	}
	return string(b[:])
}
