package mesh

import (
	"fmt"
	"math"
	"slices"

	"scene-importer/internal/binreader"
	"scene-importer/internal/format"
	"scene-importer/internal/skeleton"
)

const (
	// DefaultEpsilon is how far a weight sum may drift from 1 before it is rescaled.
	DefaultEpsilon = 1e-3

	DefaultMaxVertices = 1 << 24
	DefaultMaxIndices  = 3 << 24
)

// Weight is one bone influence. Bone indexes Skeleton.Bones.
type Weight struct {
	Bone   uint32  `json:"bone"`
	Weight float32 `json:"weight"`
}

type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	UVs      [][2]float32
	Color    *[4]float32
	Weights  []Weight
}

// Submesh is one material range at one LOD.
type Submesh struct {
	Name         string
	LOD          uint32
	MaterialSlot uint32
	Vertices     []Vertex
	Triangles    [][3]uint32
}

// Params carries everything a mesh chunk is decoded against.
type Params struct {
	Version     uint32
	Skeleton    *skeleton.Skeleton
	Epsilon     float64
	MaxWeights  int
	MaxVertices int
	MaxIndices  int
}

func (p Params) withDefaults() Params {
	if p.Epsilon <= 0 {
		p.Epsilon = DefaultEpsilon
	}
	if p.MaxWeights <= 0 || p.MaxWeights > format.DefaultMaxWeights {
		p.MaxWeights = format.DefaultMaxWeights
	}
	if p.MaxVertices <= 0 {
		p.MaxVertices = DefaultMaxVertices
	}
	if p.MaxIndices <= 0 {
		p.MaxIndices = DefaultMaxIndices
	}
	return p
}

// header is the fixed part of a mesh chunk.
type header struct {
	name        string
	lod         uint32
	material    uint32
	vertexCount uint32
	uvChannels  int
	hasColor    bool
	maxWeights  int
}

// Assemble decodes one mesh chunk payload into a Submesh. Recoverable
// degradations (unweighted vertices, rescaled or negative weights) are
// returned as notes; anything that makes the submesh untrustworthy is an error.
func Assemble(payload []byte, p Params) (*Submesh, []string, error) {
	p = p.withDefaults()
	if p.Skeleton == nil {
		return nil, nil, fmt.Errorf("mesh: no skeleton")
	}
	r := binreader.ForVersion(payload, p.Version)

	h, err := readHeader(r, p)
	if err != nil {
		return nil, nil, err
	}
	sm := &Submesh{Name: h.name, LOD: h.lod, MaterialSlot: h.material}

	stride := 12 + 12 + 8*h.uvChannels + 1
	if h.hasColor {
		stride += 16
	}
	if err := r.Need(int(h.vertexCount), stride); err != nil {
		return nil, nil, fmt.Errorf("mesh %q: %d vertices: %w", h.name, h.vertexCount, err)
	}

	var st weightStats
	sm.Vertices = make([]Vertex, h.vertexCount)
	for i := range sm.Vertices {
		if err := readVertex(r, h, p, &sm.Vertices[i], &st); err != nil {
			return nil, nil, fmt.Errorf("mesh %q: vertex %d: %w", h.name, i, err)
		}
	}

	if sm.Triangles, err = readIndices(r, h, p); err != nil {
		return nil, nil, err
	}
	return sm, st.notes(h.name), nil
}

func readHeader(r *binreader.Reader, p Params) (header, error) {
	var h header
	var err error
	if h.name, err = r.String(); err != nil {
		return h, fmt.Errorf("mesh: name: %w", err)
	}
	fields := []*uint32{&h.lod, &h.material, &h.vertexCount}
	for _, f := range fields {
		if *f, err = r.U32(); err != nil {
			return h, fmt.Errorf("mesh %q: header: %w", h.name, err)
		}
	}
	layout, err := r.Bytes(4) // uv channels, vertex flags, max weights, reserved
	if err != nil {
		return h, fmt.Errorf("mesh %q: header: %w", h.name, err)
	}
	h.uvChannels = int(layout[0])
	h.hasColor = layout[1]&format.VertexFlagColor != 0
	h.maxWeights = int(layout[2])

	switch {
	case h.uvChannels > format.MaxUVChannels:
		return h, fmt.Errorf("mesh %q: %d uv channels: %w", h.name, h.uvChannels, format.ErrLimitExceeded)
	case h.maxWeights > p.MaxWeights:
		return h, fmt.Errorf("mesh %q: %d weights per vertex: %w", h.name, h.maxWeights, format.ErrLimitExceeded)
	case int64(h.vertexCount) > int64(p.MaxVertices):
		return h, fmt.Errorf("mesh %q: %d vertices: %w", h.name, h.vertexCount, format.ErrLimitExceeded)
	}
	return h, nil
}

func readVertex(r *binreader.Reader, h header, p Params, v *Vertex, st *weightStats) error {
	var err error
	if v.Position, err = r.Vec3(); err != nil {
		return err
	}
	if v.Normal, err = r.Vec3(); err != nil {
		return err
	}
	if h.uvChannels > 0 {
		v.UVs = make([][2]float32, h.uvChannels)
		for ch := range v.UVs {
			if v.UVs[ch], err = r.Vec2(); err != nil {
				return err
			}
		}
	}
	if h.hasColor {
		c, err := r.Vec4()
		if err != nil {
			return err
		}
		v.Color = &c
	}

	n, err := r.U8()
	if err != nil {
		return err
	}
	if int(n) > h.maxWeights {
		return fmt.Errorf("%d weights, chunk declares at most %d: %w", n, h.maxWeights, format.ErrLimitExceeded)
	}
	raw := make([]Weight, 0, n)
	for k := 0; k < int(n); k++ {
		bone, err := r.U16()
		if err != nil {
			return err
		}
		w, err := r.F32()
		if err != nil {
			return err
		}
		if w == 0 {
			continue
		}
		mapped, ok := p.Skeleton.Map(uint32(bone))
		if !ok {
			return fmt.Errorf("weight %d references bone %d of %d: %w",
				k, bone, p.Skeleton.FileCount(), format.ErrInvalidBoneIndex)
		}
		raw = append(raw, Weight{Bone: mapped, Weight: w})
	}
	v.Weights = normalize(raw, p.Epsilon, st)
	return nil
}

func readIndices(r *binreader.Reader, h header, p Params) ([][3]uint32, error) {
	count, err := r.U32()
	if err != nil {
		return nil, fmt.Errorf("mesh %q: index count: %w", h.name, err)
	}
	if int64(count) > int64(p.MaxIndices) {
		return nil, fmt.Errorf("mesh %q: %d indices: %w", h.name, count, format.ErrLimitExceeded)
	}
	if count%3 != 0 {
		return nil, fmt.Errorf("mesh %q: %d indices is not a triangle list: %w",
			h.name, count, format.ErrInvalidIndexBuffer)
	}
	if err := r.Need(int(count), 4); err != nil {
		return nil, fmt.Errorf("mesh %q: %d indices: %w", h.name, count, err)
	}

	tris := make([][3]uint32, count/3)
	for i := range tris {
		for k := 0; k < 3; k++ {
			idx, err := r.U32()
			if err != nil {
				return nil, fmt.Errorf("mesh %q: index %d: %w", h.name, i*3+k, err)
			}
			if idx >= h.vertexCount {
				return nil, fmt.Errorf("mesh %q: triangle %d index %d >= %d vertices: %w",
					h.name, i, idx, h.vertexCount, format.ErrInvalidIndexBuffer)
			}
			tris[i][k] = idx
		}
	}
	return tris, nil
}

// weightStats counts the repairs applied to one submesh.
type weightStats struct {
	unweighted int
	rescaled   int
	negative   int
}

func (st weightStats) notes(name string) []string {
	var out []string
	if st.unweighted > 0 {
		out = append(out, fmt.Sprintf("mesh %q: %d vertices had no weights, bound to root", name, st.unweighted))
	}
	if st.rescaled > 0 {
		out = append(out, fmt.Sprintf("mesh %q: %d vertices had weights rescaled to sum 1", name, st.rescaled))
	}
	if st.negative > 0 {
		out = append(out, fmt.Sprintf("mesh %q: %d negative or non-finite weights clamped to 0", name, st.negative))
	}
	return out
}

// normalize makes the weights sum to 1 within eps. All-zero input binds the
// vertex fully to the root bone.
func normalize(ws []Weight, eps float64, st *weightStats) []Weight {
	var sum float64
	kept := ws[:0]
	for _, w := range ws {
		f := float64(w.Weight)
		if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			st.negative++
			continue
		}
		sum += f
		kept = append(kept, w)
	}

	if sum == 0 {
		st.unweighted++
		return []Weight{{Bone: 0, Weight: 1}}
	}
	if math.Abs(sum-1) > eps {
		st.rescaled++
		for i := range kept {
			kept[i].Weight = float32(float64(kept[i].Weight) / sum)
		}
	}
	return kept
}

// Clone returns a deep copy of v.
func (v Vertex) Clone() Vertex {
	v.UVs = slices.Clone(v.UVs)
	v.Weights = slices.Clone(v.Weights)
	if v.Color != nil {
		c := *v.Color
		v.Color = &c
	}
	return v
}

// Clone returns a copy of sm sharing no storage with it.
func (sm Submesh) Clone() Submesh {
	verts := sm.Vertices
	sm.Vertices = nil
	if verts != nil {
		sm.Vertices = make([]Vertex, len(verts))
		for i, v := range verts {
			sm.Vertices[i] = v.Clone()
		}
	}
	sm.Triangles = slices.Clone(sm.Triangles)
	return sm
}

// WeightSum returns the sum of a vertex's weights.
func (v Vertex) WeightSum() float64 {
	var s float64
	for _, w := range v.Weights {
		s += float64(w.Weight)
	}
	return s
}
