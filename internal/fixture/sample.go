package fixture

import "scene-importer/internal/format"

var identity = [4]float32{0, 0, 0, 1}

// SampleBones is a three-bone chain: root → spine → head.
func SampleBones() []Bone {
	return []Bone{
		{Hash: 0x1000, Name: "root", Parent: -1, R: identity, S: [3]float32{1, 1, 1}},
		{Hash: 0x2000, Parent: 0, T: [3]float32{0, 1, 0}, R: identity, S: [3]float32{1, 1, 1}},
		{Hash: 0x3000, Name: "head", Parent: 1, T: [3]float32{0, 0.5, 0}, R: identity, S: [3]float32{1, 1, 1}},
	}
}

// SampleMaterials has one named material and one that must be resolved by id.
func SampleMaterials() []Material {
	return []Material{
		{ID: 0xAA, Name: "body"},
		{ID: 0xBB},
	}
}

// Quad is a unit quad of two triangles skinned to bones 1 and 2.
func Quad(name string, lod, material uint32) Mesh {
	v := func(x, y float32, b uint16) Vertex {
		return Vertex{
			Pos:     [3]float32{x, y, 0},
			Normal:  [3]float32{0, 0, 1},
			UVs:     [][2]float32{{x, y}},
			Color:   [4]float32{1, 1, 1, 1},
			Weights: []Weight{{Bone: b, Weight: 0.75}, {Bone: 0, Weight: 0.25}},
		}
	}
	return Mesh{
		Name:       name,
		LOD:        lod,
		Material:   material,
		UVChannels: 1,
		HasColor:   true,
		MaxWeights: 4,
		Vertices:   []Vertex{v(0, 0, 1), v(1, 0, 1), v(1, 1, 2), v(0, 1, 2)},
		Indices:    []uint32{0, 1, 2, 0, 2, 3},
	}
}

// Sample returns a valid version-2 scene: bones, materials, metadata, two LOD0
// submeshes, one LOD1 submesh and a collision shape. Mesh chunks are compressed.
func Sample() *Builder {
	const v = format.MaxVersion
	return New(v).
		Add(format.TagMetadata, EncodeMetadata(v, Metadata{Author: "fixture", Software: "scene-importer", UpAxis: "y"})).
		AddCompressed(format.TagBones, EncodeBones(v, SampleBones())).
		Add(format.TagMaterials, EncodeMaterials(v, SampleMaterials())).
		AddCompressed(format.TagMesh, EncodeMesh(v, Quad("body", 0, 0))).
		AddCompressed(format.TagMesh, EncodeMesh(v, Quad("visor", 0, 1))).
		AddCompressed(format.TagMesh, EncodeMesh(v, Quad("body_lod1", 1, 0))).
		Add(format.TagCollision, EncodeCollision([]Shape{
			{Bone: 2, Points: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}},
		}))
}
