package scene

import (
	"fmt"

	"scene-importer/internal/binreader"
	"scene-importer/internal/format"
	"scene-importer/internal/skeleton"
)

// DecodeMaterials reads a material table payload.
func DecodeMaterials(payload []byte, version uint32) ([]MaterialRecord, error) {
	r := binreader.ForVersion(payload, version)
	count, err := r.U32()
	if err != nil {
		return nil, fmt.Errorf("scene: material count: %w", err)
	}
	if err := r.Need(int(count), 8+2); err != nil {
		return nil, fmt.Errorf("scene: %d materials: %w", count, err)
	}
	out := make([]MaterialRecord, count)
	for i := range out {
		if out[i].ID, err = r.U64(); err != nil {
			return nil, fmt.Errorf("scene: material %d: %w", i, err)
		}
		if out[i].Name, err = r.String(); err != nil {
			return nil, fmt.Errorf("scene: material %d: %w", i, err)
		}
	}
	return out, nil
}

func DecodeMetadata(payload []byte, version uint32) (Metadata, error) {
	r := binreader.ForVersion(payload, version)
	var m Metadata
	for _, f := range []*string{&m.Author, &m.Software, &m.UpAxis} {
		v, err := r.String()
		if err != nil {
			return Metadata{}, fmt.Errorf("scene: metadata: %w", err)
		}
		*f = v
	}
	return m, nil
}

// DecodeCollision reads collision hulls and remaps their bones onto s.
func DecodeCollision(payload []byte, s *skeleton.Skeleton) ([]Shape, error) {
	r := binreader.New(payload)
	count, err := r.U32()
	if err != nil {
		return nil, fmt.Errorf("scene: shape count: %w", err)
	}
	if err := r.Need(int(count), 8); err != nil {
		return nil, fmt.Errorf("scene: %d shapes: %w", count, err)
	}

	out := make([]Shape, count)
	for i := range out {
		bone, err := r.I32()
		if err != nil {
			return nil, fmt.Errorf("scene: shape %d: %w", i, err)
		}
		out[i].Bone = format.RootParent
		if bone != format.RootParent {
			mapped, ok := s.Map(uint32(bone))
			if bone < 0 || !ok {
				return nil, fmt.Errorf("scene: shape %d references bone %d: %w", i, bone, format.ErrInvalidBoneIndex)
			}
			out[i].Bone = int32(mapped)
		}

		n, err := r.U32()
		if err != nil {
			return nil, fmt.Errorf("scene: shape %d: %w", i, err)
		}
		if err := r.Need(int(n), 12); err != nil {
			return nil, fmt.Errorf("scene: shape %d: %d points: %w", i, n, err)
		}
		out[i].Points = make([][3]float32, n)
		for k := range out[i].Points {
			if out[i].Points[k], err = r.Vec3(); err != nil {
				return nil, fmt.Errorf("scene: shape %d: %w", i, err)
			}
		}
	}
	return out, nil
}
