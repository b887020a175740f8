package skeleton

import (
	"fmt"

	"scene-importer/internal/format"
	"scene-importer/internal/mathutil"
)

// SyntheticRootName names the root inserted when a file has zero or several roots.
const SyntheticRootName = "scene_root"

// Record is one bone as stored in the bone table.
type Record struct {
	Hash        uint64
	Name        string
	Parent      int32
	Translation [3]float32
	Rotation    [4]float32 // xyzw
	Scale       [3]float32
}

// Bone is a validated bone with its bind-pose world transform.
// Parent is an index into Skeleton.Bones, -1 for the root.
type Bone struct {
	Index            uint32
	Name             string
	NameHash         uint64
	Parent           int32
	LocalTranslation mathutil.Vec3
	LocalRotation    mathutil.Quat
	LocalScale       mathutil.Vec3
	World            mathutil.Mat4
	Synthetic        bool
}

// Skeleton is a flat bone array forming a single tree rooted at index 0.
type Skeleton struct {
	Bones     []Bone
	offset    uint32
	fileCount int
}

// Build validates the records in a single forward pass and computes world
// transforms in index order. A parent must be -1 or an index already seen;
// anything else (forward, self or negative reference) is rejected rather than
// deferred.
func Build(records []Record) (*Skeleton, error) {
	roots := 0
	for i, rec := range records {
		switch {
		case rec.Parent == format.RootParent:
			roots++
		case rec.Parent < 0 || int(rec.Parent) >= i:
			return nil, fmt.Errorf("skeleton: bone %d (%q) has parent %d: %w",
				i, rec.Name, rec.Parent, format.ErrInvalidBoneHierarchy)
		}
	}

	s := &Skeleton{fileCount: len(records)}
	if roots != 1 {
		s.offset = 1
	}
	s.Bones = make([]Bone, 0, len(records)+int(s.offset))
	if s.offset == 1 {
		s.Bones = append(s.Bones, Bone{
			Name:          SyntheticRootName,
			Parent:        format.RootParent,
			LocalRotation: mathutil.QuatIdentity(),
			LocalScale:    mathutil.Vec3{1, 1, 1},
			World:         mathutil.Mat4Identity(),
			Synthetic:     true,
		})
	}

	for _, rec := range records {
		b := Bone{
			Index:            uint32(len(s.Bones)),
			Name:             rec.Name,
			NameHash:         rec.Hash,
			LocalTranslation: mathutil.Vec3From(rec.Translation),
			LocalRotation:    mathutil.QuatFromXYZW(rec.Rotation).Normalize(),
			LocalScale:       mathutil.Vec3From(rec.Scale),
		}
		local := mathutil.ComposeTRS(b.LocalTranslation, b.LocalRotation, b.LocalScale)

		// Chain with parent, which is always already processed.
		switch {
		case rec.Parent >= 0:
			b.Parent = rec.Parent + int32(s.offset)
			b.World = mathutil.Mat4Mul(s.Bones[b.Parent].World, local)
		case s.offset == 1:
			b.Parent = 0
			b.World = local
		default:
			b.Parent = format.RootParent
			b.World = local
		}
		s.Bones = append(s.Bones, b)
	}
	return s, nil
}

// Len returns the number of bones including any synthetic root.
func (s *Skeleton) Len() int { return len(s.Bones) }

// FileCount returns the number of bones stored in the file.
func (s *Skeleton) FileCount() int { return s.fileCount }

// HasSyntheticRoot reports whether index 0 was inserted by Build.
func (s *Skeleton) HasSyntheticRoot() bool { return s.offset == 1 }

// Map converts a bone index as stored in the file to an index into Bones.
func (s *Skeleton) Map(raw uint32) (uint32, bool) {
	if int(raw) >= s.fileCount {
		return 0, false
	}
	return raw + s.offset, true
}

// Children returns the direct children of bone i in index order.
func (s *Skeleton) Children(i uint32) []uint32 {
	var out []uint32
	for _, b := range s.Bones {
		if b.Parent == int32(i) {
			out = append(out, b.Index)
		}
	}
	return out
}

// Validate re-checks the tree invariants: one root at index 0, dense indices,
// every parent strictly before its child.
func (s *Skeleton) Validate() error {
	if len(s.Bones) == 0 || s.Bones[0].Parent != format.RootParent {
		return fmt.Errorf("skeleton: bone 0 is not a root: %w", format.ErrInvalidBoneHierarchy)
	}
	for i, b := range s.Bones {
		if b.Index != uint32(i) {
			return fmt.Errorf("skeleton: bone %d carries index %d: %w", i, b.Index, format.ErrInvalidBoneHierarchy)
		}
		if i > 0 && (b.Parent < 0 || int(b.Parent) >= i) {
			return fmt.Errorf("skeleton: bone %d has parent %d: %w", i, b.Parent, format.ErrInvalidBoneHierarchy)
		}
	}
	return nil
}
