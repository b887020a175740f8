// Package fixture writes scene containers. Tests across the module use it to
// build valid files and then damage them in targeted ways.
package fixture

import (
	"encoding/binary"
	"math"

	"github.com/pierrec/lz4/v4"
	"golang.org/x/text/encoding/charmap"

	"scene-importer/internal/format"
)

type Bone struct {
	Hash   uint64
	Name   string
	Parent int32
	T      [3]float32
	R      [4]float32 // xyzw
	S      [3]float32 // written for version >= 2 only
}

type Material struct {
	ID   uint64
	Name string
}

type Weight struct {
	Bone   uint16
	Weight float32
}

type Vertex struct {
	Pos     [3]float32
	Normal  [3]float32
	UVs     [][2]float32
	Color   [4]float32
	Weights []Weight
}

type Mesh struct {
	Name       string
	LOD        uint32
	Material   uint32
	UVChannels uint8
	HasColor   bool
	MaxWeights uint8
	Vertices   []Vertex
	Indices    []uint32
}

type Shape struct {
	Bone   int32
	Points [][3]float32
}

type Metadata struct {
	Author   string
	Software string
	UpAxis   string
}

// Chunk is one directory entry to be written.
type Chunk struct {
	Tag      format.Tag
	Payload  []byte // uncompressed payload
	Compress bool
	// SizeDelta is added to the declared uncompressed size, to fake a lying header.
	SizeDelta int64
}

// Builder assembles a container from chunks in directory order.
type Builder struct {
	Version uint32
	Chunks  []Chunk
}

func New(version uint32) *Builder {
	return &Builder{Version: version}
}

func (b *Builder) Add(tag format.Tag, payload []byte) *Builder {
	b.Chunks = append(b.Chunks, Chunk{Tag: tag, Payload: payload})
	return b
}

func (b *Builder) AddCompressed(tag format.Tag, payload []byte) *Builder {
	b.Chunks = append(b.Chunks, Chunk{Tag: tag, Payload: payload, Compress: true})
	return b
}

func (b *Builder) AddChunk(c Chunk) *Builder {
	b.Chunks = append(b.Chunks, c)
	return b
}

// Bytes renders the container. Payloads follow the directory back to back.
func (b *Builder) Bytes() []byte {
	out := append([]byte{}, format.Magic[:]...)
	out = binary.LittleEndian.AppendUint32(out, b.Version)
	out = binary.LittleEndian.AppendUint32(out, 0)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(b.Chunks)))

	offset := uint64(format.HeaderSize + format.DirEntrySize*len(b.Chunks))
	var body []byte
	for _, c := range b.Chunks {
		stored, flags := c.Payload, uint32(0)
		if c.Compress {
			stored, flags = Compress(c.Payload), format.FlagCompressed
		}
		declared := uint64(int64(len(c.Payload)) + c.SizeDelta)

		out = binary.LittleEndian.AppendUint32(out, uint32(c.Tag))
		out = binary.LittleEndian.AppendUint32(out, flags)
		out = binary.LittleEndian.AppendUint64(out, offset)
		out = binary.LittleEndian.AppendUint64(out, uint64(len(stored)))
		out = binary.LittleEndian.AppendUint64(out, declared)

		body = append(body, stored...)
		offset += uint64(len(stored))
	}
	return append(out, body...)
}

// Compress returns src as an LZ4 block.
func Compress(src []byte) []byte {
	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	n, err := lz4.CompressBlock(src, dst, nil)
	if err != nil {
		panic(err)
	}
	return dst[:n]
}

// enc writes little-endian records.
type enc struct {
	b       []byte
	version uint32
}

func (e *enc) u8(v uint8)   { e.b = append(e.b, v) }
func (e *enc) u16(v uint16) { e.b = binary.LittleEndian.AppendUint16(e.b, v) }
func (e *enc) u32(v uint32) { e.b = binary.LittleEndian.AppendUint32(e.b, v) }
func (e *enc) u64(v uint64) { e.b = binary.LittleEndian.AppendUint64(e.b, v) }
func (e *enc) i32(v int32)  { e.u32(uint32(v)) }

func (e *enc) f32(vs ...float32) {
	for _, v := range vs {
		e.u32(math.Float32bits(v))
	}
}

func (e *enc) str(s string) {
	raw := []byte(s)
	if e.version < 2 {
		if conv, err := charmap.Windows1252.NewEncoder().Bytes(raw); err == nil {
			raw = conv
		}
	}
	e.u16(uint16(len(raw)))
	e.b = append(e.b, raw...)
}

func EncodeBones(version uint32, bones []Bone) []byte {
	e := &enc{version: version}
	e.u32(uint32(len(bones)))
	for _, b := range bones {
		e.u64(b.Hash)
		e.str(b.Name)
		e.i32(b.Parent)
		e.f32(b.T[:]...)
		e.f32(b.R[:]...)
		if version >= 2 {
			e.f32(b.S[:]...)
		}
	}
	return e.b
}

func EncodeMaterials(version uint32, mats []Material) []byte {
	e := &enc{version: version}
	e.u32(uint32(len(mats)))
	for _, m := range mats {
		e.u64(m.ID)
		e.str(m.Name)
	}
	return e.b
}

func EncodeMetadata(version uint32, m Metadata) []byte {
	e := &enc{version: version}
	e.str(m.Author)
	e.str(m.Software)
	e.str(m.UpAxis)
	return e.b
}

func EncodeMesh(version uint32, m Mesh) []byte {
	e := &enc{version: version}
	e.str(m.Name)
	e.u32(m.LOD)
	e.u32(m.Material)
	e.u32(uint32(len(m.Vertices)))
	e.u8(m.UVChannels)
	var vflags uint8
	if m.HasColor {
		vflags |= format.VertexFlagColor
	}
	e.u8(vflags)
	e.u8(m.MaxWeights)
	e.u8(0)
	for _, v := range m.Vertices {
		e.f32(v.Pos[:]...)
		e.f32(v.Normal[:]...)
		for ch := 0; ch < int(m.UVChannels); ch++ {
			var uv [2]float32
			if ch < len(v.UVs) {
				uv = v.UVs[ch]
			}
			e.f32(uv[:]...)
		}
		if m.HasColor {
			e.f32(v.Color[:]...)
		}
		e.u8(uint8(len(v.Weights)))
		for _, w := range v.Weights {
			e.u16(w.Bone)
			e.f32(w.Weight)
		}
	}
	e.u32(uint32(len(m.Indices)))
	for _, idx := range m.Indices {
		e.u32(idx)
	}
	return e.b
}

func EncodeCollision(shapes []Shape) []byte {
	e := &enc{version: format.MaxVersion}
	e.u32(uint32(len(shapes)))
	for _, s := range shapes {
		e.i32(s.Bone)
		e.u32(uint32(len(s.Points)))
		for _, p := range s.Points {
			e.f32(p[:]...)
		}
	}
	return e.b
}
