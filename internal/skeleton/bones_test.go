package skeleton

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-importer/internal/fixture"
	"scene-importer/internal/format"
	"scene-importer/internal/mathutil"
)

func records(t *testing.T, version uint32, bones []fixture.Bone) []Record {
	t.Helper()
	recs, err := Decode(fixture.EncodeBones(version, bones), version)
	require.NoError(t, err)
	return recs
}

func TestDecodeVersions(t *testing.T) {
	v2 := records(t, 2, fixture.SampleBones())
	require.Len(t, v2, 3)
	assert.Equal(t, "root", v2[0].Name)
	assert.Equal(t, uint64(0x2000), v2[1].Hash)
	assert.Equal(t, int32(1), v2[2].Parent)
	assert.Equal(t, [3]float32{0, 0.5, 0}, v2[2].Translation)

	bones := fixture.SampleBones()
	bones[1].S = [3]float32{3, 3, 3} // dropped by the v1 encoder
	v1 := records(t, 1, bones)
	assert.Equal(t, [3]float32{1, 1, 1}, v1[1].Scale)
}

func TestDecodeTruncated(t *testing.T) {
	data := fixture.EncodeBones(2, fixture.SampleBones())
	for n := 0; n < len(data); n++ {
		_, err := Decode(data[:n], 2)
		require.ErrorIsf(t, err, format.ErrTruncatedData, "prefix %d", n)
	}
}

func TestBuildWorldTransforms(t *testing.T) {
	s, err := Build(records(t, 2, fixture.SampleBones()))
	require.NoError(t, err)
	require.NoError(t, s.Validate())
	require.Equal(t, 3, s.Len())
	assert.False(t, s.HasSyntheticRoot())

	head := s.Bones[2]
	assert.Equal(t, mathutil.Vec3{0, 1.5, 0}, head.World.Translation())
	assert.Equal(t, []uint32{1}, s.Children(0))

	for _, b := range s.Bones[1:] {
		local := mathutil.ComposeTRS(b.LocalTranslation, b.LocalRotation, b.LocalScale)
		want := mathutil.Mat4Mul(s.Bones[b.Parent].World, local)
		assert.True(t, want.ApproxEqual(b.World, 1e-9), "bone %d", b.Index)
	}
}

func TestBuildRejectsForwardAndSelfReferences(t *testing.T) {
	for _, parent := range []int32{1, 5, -2} {
		_, err := Build([]Record{
			{Parent: -1, Rotation: [4]float32{0, 0, 0, 1}},
			{Parent: parent, Rotation: [4]float32{0, 0, 0, 1}},
		})
		require.ErrorIsf(t, err, format.ErrInvalidBoneHierarchy, "parent %d", parent)
	}

	// A bone that names a later bone as its parent.
	_, err := Build([]Record{{Parent: 1}, {Parent: -1}})
	require.ErrorIs(t, err, format.ErrInvalidBoneHierarchy)
}

func TestBuildInsertsSyntheticRoot(t *testing.T) {
	s, err := Build([]Record{
		{Name: "a", Parent: -1, Translation: [3]float32{1, 0, 0}, Rotation: [4]float32{0, 0, 0, 1}, Scale: [3]float32{1, 1, 1}},
		{Name: "b", Parent: -1, Translation: [3]float32{0, 2, 0}, Rotation: [4]float32{0, 0, 0, 1}, Scale: [3]float32{1, 1, 1}},
		{Name: "c", Parent: 1, Translation: [3]float32{0, 0, 3}, Rotation: [4]float32{0, 0, 0, 1}, Scale: [3]float32{1, 1, 1}},
	})
	require.NoError(t, err)
	require.NoError(t, s.Validate())
	require.Equal(t, 4, s.Len())
	assert.True(t, s.HasSyntheticRoot())
	assert.Equal(t, 3, s.FileCount())

	root := s.Bones[0]
	assert.True(t, root.Synthetic)
	assert.Equal(t, SyntheticRootName, root.Name)
	assert.Equal(t, int32(-1), root.Parent)

	assert.Equal(t, int32(0), s.Bones[1].Parent)
	assert.Equal(t, int32(0), s.Bones[2].Parent)
	assert.Equal(t, int32(2), s.Bones[3].Parent, "c keeps pointing at b after the shift")
	assert.Equal(t, mathutil.Vec3{0, 2, 3}, s.Bones[3].World.Translation())

	idx, ok := s.Map(1)
	require.True(t, ok)
	assert.Equal(t, uint32(2), idx)
	_, ok = s.Map(3)
	assert.False(t, ok)
}

func TestBuildEmptyGetsRoot(t *testing.T) {
	s, err := Build(nil)
	require.NoError(t, err)
	require.NoError(t, s.Validate())
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 0, s.FileCount())
	_, ok := s.Map(0)
	assert.False(t, ok)
}

func TestBuildRandomHierarchiesHaveOneRoot(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		n := 1 + rng.Intn(40)
		recs := make([]Record, n)
		for i := range recs {
			recs[i].Parent = -1
			if i > 0 && rng.Intn(5) != 0 {
				recs[i].Parent = int32(rng.Intn(i))
			}
			angle := rng.Float64() * math.Pi
			recs[i].Rotation = [4]float32{0, float32(math.Sin(angle / 2)), 0, float32(math.Cos(angle / 2))}
			recs[i].Translation = [3]float32{rng.Float32(), rng.Float32(), rng.Float32()}
			recs[i].Scale = [3]float32{1, 1, 1}
		}

		s, err := Build(recs)
		require.NoError(t, err)
		require.NoError(t, s.Validate())

		roots := 0
		for _, b := range s.Bones {
			if b.Parent == -1 {
				roots++
				continue
			}
			local := mathutil.ComposeTRS(b.LocalTranslation, b.LocalRotation, b.LocalScale)
			assert.True(t, mathutil.Mat4Mul(s.Bones[b.Parent].World, local).ApproxEqual(b.World, 1e-9))
		}
		assert.Equal(t, 1, roots)
	}
}
