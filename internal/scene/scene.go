// Package scene assembles decoded chunks into an immutable scene description
// and defines the contract for whatever builds host meshes from it.
package scene

import (
	"fmt"
	"slices"

	"scene-importer/internal/format"
	"scene-importer/internal/mesh"
	"scene-importer/internal/names"
	"scene-importer/internal/skeleton"
)

type Metadata struct {
	Author   string `json:"author,omitempty"`
	Software string `json:"software,omitempty"`
	UpAxis   string `json:"up_axis,omitempty"`
}

// MaterialRecord is one entry of the material table as stored.
type MaterialRecord struct {
	ID   uint64
	Name string
}

// MaterialSlot is a material slot with its resolved display name.
type MaterialSlot struct {
	Slot     uint32
	RawID    uint64
	RawName  string
	Name     string
	Resolved bool
}

// Shape is a convex collision hull. Bone indexes the scene skeleton, -1 when unattached.
type Shape struct {
	Bone   int32        `json:"bone"`
	Points [][3]float32 `json:"points"`
}

// Stats are whole-scene counts across all LODs.
type Stats struct {
	Bones         int `json:"bones"`
	LODs          int `json:"lods"`
	Submeshes     int `json:"submeshes"`
	Vertices      int `json:"vertices"`
	Triangles     int `json:"triangles"`
	MaterialSlots int `json:"material_slots"`
	Shapes        int `json:"shapes"`
}

// Description is the result of one import. It is never modified after
// Assemble returns; accessors hand out deep copies.
type Description struct {
	name      string
	meta      Metadata
	bones     []skeleton.Bone
	lods      map[uint32][]mesh.Submesh
	slots     []MaterialSlot
	collision []Shape
}

// Consumer builds host-side assets from a description.
type Consumer interface {
	Consume(d *Description) error
}

// Input is everything the assembler needs. Submeshes are the survivors in
// directory order.
type Input struct {
	Name      string
	Metadata  Metadata
	Skeleton  *skeleton.Skeleton
	Materials []MaterialRecord
	Submeshes []*mesh.Submesh
	Collision []Shape
	Resolver  *names.Resolver
}

// Assemble groups submeshes by LOD, names bones and material slots, and
// freezes the result. It fails with format.ErrEmptyScene when no submesh survived.
func Assemble(in Input) (*Description, error) {
	if len(in.Submeshes) == 0 {
		return nil, fmt.Errorf("scene: %s: %w", in.Name, format.ErrEmptyScene)
	}
	if in.Skeleton == nil {
		return nil, fmt.Errorf("scene: %s: no skeleton", in.Name)
	}
	res := in.Resolver
	if res == nil {
		res = names.NewResolver(nil)
	}

	d := &Description{
		name:      in.Name,
		meta:      in.Metadata,
		lods:      make(map[uint32][]mesh.Submesh),
		collision: cloneShapes(in.Collision),
	}

	d.bones = slices.Clone(in.Skeleton.Bones)
	for i := range d.bones {
		b := &d.bones[i]
		if b.Synthetic {
			continue
		}
		b.Name = res.Bone(b.Index, b.Name, b.NameHash).Value
	}

	slotCount := len(in.Materials)
	for _, sm := range in.Submeshes {
		d.lods[sm.LOD] = append(d.lods[sm.LOD], sm.Clone())
		if int(sm.MaterialSlot) >= slotCount {
			slotCount = int(sm.MaterialSlot) + 1
		}
	}

	d.slots = make([]MaterialSlot, slotCount)
	for i := range d.slots {
		var rec MaterialRecord
		if i < len(in.Materials) {
			rec = in.Materials[i]
		}
		n := res.Material(uint32(i), rec.Name, rec.ID)
		d.slots[i] = MaterialSlot{
			Slot:     uint32(i),
			RawID:    rec.ID,
			RawName:  rec.Name,
			Name:     n.Value,
			Resolved: n.Resolved(),
		}
	}
	return d, nil
}

func (d *Description) Name() string { return d.name }

func (d *Description) Metadata() Metadata { return d.meta }

// Bones returns the skeleton in index order. Bone 0 is the single root.
func (d *Description) Bones() []skeleton.Bone { return slices.Clone(d.bones) }

// LODs returns the LOD levels present, ascending.
func (d *Description) LODs() []uint32 {
	out := make([]uint32, 0, len(d.lods))
	for lod := range d.lods {
		out = append(out, lod)
	}
	slices.Sort(out)
	return out
}

// Submeshes returns deep copies of the submeshes of one LOD in directory order.
func (d *Description) Submeshes(lod uint32) []mesh.Submesh {
	subs := d.lods[lod]
	if subs == nil {
		return nil
	}
	out := make([]mesh.Submesh, len(subs))
	for i, sm := range subs {
		out[i] = sm.Clone()
	}
	return out
}

func (d *Description) MaterialSlots() []MaterialSlot { return slices.Clone(d.slots) }

func (d *Description) Collision() []Shape { return cloneShapes(d.collision) }

func cloneShapes(in []Shape) []Shape {
	if in == nil {
		return nil
	}
	out := make([]Shape, len(in))
	for i, s := range in {
		out[i] = Shape{Bone: s.Bone, Points: slices.Clone(s.Points)}
	}
	return out
}

func (d *Description) Stats() Stats {
	st := Stats{
		Bones:         len(d.bones),
		LODs:          len(d.lods),
		MaterialSlots: len(d.slots),
		Shapes:        len(d.collision),
	}
	for _, subs := range d.lods {
		st.Submeshes += len(subs)
		for _, sm := range subs {
			st.Vertices += len(sm.Vertices)
			st.Triangles += len(sm.Triangles)
		}
	}
	return st
}
