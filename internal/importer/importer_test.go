package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-importer/internal/fixture"
	"scene-importer/internal/format"
	"scene-importer/internal/names"
)

// Sample chunk positions.
const (
	chunkMeta = iota
	chunkBones
	chunkMaterials
	chunkBody
	chunkVisor
	chunkBodyLOD1
	chunkCollision
)

func importBytes(t *testing.T, data []byte, opts Options) (*Result, error) {
	t.Helper()
	return New(opts).Import("hero", data)
}

func TestImportSample(t *testing.T) {
	res, err := importBytes(t, fixture.Sample().Bytes(), Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Empty(t, res.Dropped)
	assert.Equal(t, "3 submeshes imported, 0 dropped", res.Summary())

	d := res.Scene
	assert.Equal(t, "hero", d.Name())
	assert.Equal(t, "fixture", d.Metadata().Author)
	assert.Equal(t, []uint32{0, 1}, d.LODs())

	lod0 := d.Submeshes(0)
	require.Len(t, lod0, 2)
	assert.Equal(t, "body", lod0[0].Name)
	assert.Equal(t, "visor", lod0[1].Name)
	assert.Equal(t, "body_lod1", d.Submeshes(1)[0].Name)

	bones := d.Bones()
	require.Len(t, bones, 3)
	assert.Equal(t, "bone_2000", bones[1].Name)
	assert.Equal(t, int32(-1), bones[0].Parent)

	slots := d.MaterialSlots()
	require.Len(t, slots, 2)
	assert.Equal(t, "body", slots[0].Name)
	assert.Equal(t, "material_bb", slots[1].Name)

	shapes := d.Collision()
	require.Len(t, shapes, 1)
	assert.Equal(t, int32(2), shapes[0].Bone)
}

func TestImportIsDeterministic(t *testing.T) {
	data := fixture.Sample().Bytes()
	a, err := importBytes(t, data, Options{Workers: 1})
	require.NoError(t, err)
	b, err := importBytes(t, data, Options{Workers: 8})
	require.NoError(t, err)

	assert.Equal(t, a.Scene, b.Scene)
	assert.Equal(t, a.Warnings, b.Warnings)
	assert.NotEqual(t, a.ImportID, b.ImportID)
}

func TestImportTruncatedFile(t *testing.T) {
	data := fixture.Sample().Bytes()
	for _, n := range []int{0, 3, 10, 16, 40, len(data) / 2, len(data) - 1} {
		_, err := importBytes(t, data[:n], Options{})
		require.ErrorIsf(t, err, format.ErrTruncatedData, "prefix %d", n)
	}
}

func TestImportBadHeader(t *testing.T) {
	data := fixture.Sample().Bytes()
	data[0] = 'X'
	_, err := importBytes(t, data, Options{})
	require.ErrorIs(t, err, format.ErrBadMagic)

	_, err = importBytes(t, fixture.New(3).Bytes(), Options{})
	require.ErrorIs(t, err, format.ErrUnsupportedVersion)
}

func TestImportDropsLODWithSizeMismatch(t *testing.T) {
	b := fixture.Sample()
	b.Chunks[chunkBodyLOD1].SizeDelta = 1

	res, err := importBytes(t, b.Bytes(), Options{})
	require.NoError(t, err)
	assert.Equal(t, []uint32{0}, res.Scene.LODs())
	require.Len(t, res.Dropped, 1)
	assert.Equal(t, "mesh#5", res.Dropped[0].Chunk)
	assert.ErrorIs(t, res.Dropped[0].Err, format.ErrDecompressionFailed)
	assert.Equal(t, "2 submeshes imported, 1 dropped", res.Summary())
}

func TestImportBoneTableErrorsAreFatal(t *testing.T) {
	b := fixture.Sample()
	b.Chunks[chunkBones].SizeDelta = -1
	_, err := importBytes(t, b.Bytes(), Options{})
	require.ErrorIs(t, err, format.ErrDecompressionFailed)

	bones := fixture.SampleBones()
	bones[1].Parent = 2
	b = fixture.Sample()
	b.Chunks[chunkBones].Payload = fixture.EncodeBones(2, bones)
	_, err = importBytes(t, b.Bytes(), Options{})
	require.ErrorIs(t, err, format.ErrInvalidBoneHierarchy)
}

func TestImportDropsInvalidIndexBuffer(t *testing.T) {
	visor := fixture.Quad("visor", 0, 1)
	visor.Indices[4] = 9
	b := fixture.Sample()
	b.Chunks[chunkVisor].Payload = fixture.EncodeMesh(2, visor)

	res, err := importBytes(t, b.Bytes(), Options{})
	require.NoError(t, err)
	require.Len(t, res.Dropped, 1)
	assert.ErrorIs(t, res.Dropped[0].Err, format.ErrInvalidIndexBuffer)
	assert.Len(t, res.Scene.Submeshes(0), 1)

	for _, lod := range res.Scene.LODs() {
		for _, sm := range res.Scene.Submeshes(lod) {
			for _, tri := range sm.Triangles {
				for _, idx := range tri {
					assert.Less(t, int(idx), len(sm.Vertices))
				}
			}
		}
	}
}

func TestImportAllMeshesDropped(t *testing.T) {
	b := fixture.Sample()
	for _, i := range []int{chunkBody, chunkVisor, chunkBodyLOD1} {
		b.Chunks[i].SizeDelta = 3
	}
	_, err := importBytes(t, b.Bytes(), Options{})
	require.ErrorIs(t, err, format.ErrEmptyScene)
}

func TestImportMeshBeforeBones(t *testing.T) {
	b := fixture.Sample()
	b.Chunks[chunkBones], b.Chunks[chunkBody] = b.Chunks[chunkBody], b.Chunks[chunkBones]
	_, err := importBytes(t, b.Bytes(), Options{})
	require.ErrorIs(t, err, format.ErrOutOfOrderChunk)
}

func TestImportStaticMesh(t *testing.T) {
	rock := fixture.Quad("rock", 0, 0)
	for i := range rock.Vertices {
		rock.Vertices[i].Weights = nil
	}
	data := fixture.New(2).Add(format.TagMesh, fixture.EncodeMesh(2, rock)).Bytes()

	res, err := importBytes(t, data, Options{})
	require.NoError(t, err)
	bones := res.Scene.Bones()
	require.Len(t, bones, 1)
	assert.True(t, bones[0].Synthetic)

	var msgs []string
	for _, w := range res.Warnings {
		msgs = append(msgs, w.String())
	}
	assert.Contains(t, msgs, "no material table, slot names are synthesized")
	assert.Contains(t, msgs, `mesh#0: mesh "rock": 4 vertices had no weights, bound to root`)
}

func TestImportSkipsUnknownAndDamagedOptionalChunks(t *testing.T) {
	b := fixture.Sample()
	b.Chunks[chunkMeta].Payload = []byte{9}
	b.Chunks[chunkCollision].Payload = fixture.EncodeCollision([]fixture.Shape{{Bone: 7}})
	b.Add(format.FourCC("anim"), []byte("ignored"))

	res, err := importBytes(t, b.Bytes(), Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Dropped)
	assert.Empty(t, res.Scene.Collision())
	assert.Equal(t, "", res.Scene.Metadata().Author)
	require.Len(t, res.Warnings, 2)
	assert.Equal(t, "meta#0", res.Warnings[0].Chunk)
	assert.Equal(t, "coll#6", res.Warnings[1].Chunk)
}

func TestImportDuplicateTablesAreSkipped(t *testing.T) {
	b := fixture.Sample()
	b.Add(format.TagMaterials, fixture.EncodeMaterials(2, []fixture.Material{{ID: 1, Name: "other"}}))

	res, err := importBytes(t, b.Bytes(), Options{})
	require.NoError(t, err)
	assert.Equal(t, "body", res.Scene.MaterialSlots()[0].Name)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Message, "duplicate material table")
}

func TestImportResolvesNamesThroughLookup(t *testing.T) {
	res, err := importBytes(t, fixture.Sample().Bytes(), Options{
		Lookup: names.MapLookup{0x2000: "spine_01", 0xBB: "visor_glass"},
	})
	require.NoError(t, err)
	assert.Equal(t, "spine_01", res.Scene.Bones()[1].Name)
	slot := res.Scene.MaterialSlots()[1]
	assert.Equal(t, "visor_glass", slot.Name)
	assert.True(t, slot.Resolved)
}

func TestImportLegacyVersion(t *testing.T) {
	const v = 1
	data := fixture.New(v).
		Add(format.TagBones, fixture.EncodeBones(v, fixture.SampleBones())).
		Add(format.TagMaterials, fixture.EncodeMaterials(v, []fixture.Material{{ID: 1, Name: "peau"}})).
		Add(format.TagMesh, fixture.EncodeMesh(v, fixture.Quad("tête", 0, 0))).
		Bytes()

	res, err := importBytes(t, data, Options{})
	require.NoError(t, err)
	assert.Equal(t, "tête", res.Scene.Submeshes(0)[0].Name)
}

func TestImportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hero.scnb")
	require.NoError(t, os.WriteFile(path, fixture.Sample().Bytes(), 0644))

	res, err := New(Options{}).ImportFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hero", res.Scene.Name())

	_, err = New(Options{}).ImportFile(filepath.Join(t.TempDir(), "missing.scnb"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
