package batch

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-importer/internal/fixture"
	"scene-importer/internal/importer"
	"scene-importer/internal/preview"
)

func TestRunWritesOutputsAndManifest(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")

	good := filepath.Join(in, "hero.scnb")
	require.NoError(t, os.WriteFile(good, fixture.Sample().Bytes(), 0644))

	damaged := fixture.Sample()
	damaged.Chunks[5].SizeDelta = 1
	partial := filepath.Join(in, "partial.scnb")
	require.NoError(t, os.WriteFile(partial, damaged.Bytes(), 0644))

	broken := filepath.Join(in, "broken.scnb")
	require.NoError(t, os.WriteFile(broken, []byte("nope"), 0644))

	var progress bytes.Buffer
	results := Run(Config{
		Importer:       importer.New(importer.Options{Workers: 2}),
		OutputDir:      out,
		Workers:        3,
		Preview:        true,
		PreviewOptions: preview.Options{Size: 32, Supersample: 1},
		Progress:       &progress,
	}, []string{good, partial, broken})

	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.Equal(t, "hero.json", results[0].Output)
	assert.FileExists(t, filepath.Join(out, "hero.json"))
	assert.FileExists(t, filepath.Join(out, "hero.webp"))

	assert.True(t, results[1].Success)
	assert.Equal(t, "2 submeshes imported, 1 dropped", results[1].Summary)
	require.Len(t, results[1].Dropped, 1)
	assert.Contains(t, results[1].Dropped[0], "mesh#5")

	assert.False(t, results[2].Success)
	assert.Contains(t, results[2].Error, "bad magic")

	manifest := filepath.Join(out, "manifest.json")
	require.NoError(t, WriteManifest(manifest, results))
	data, err := os.ReadFile(manifest)
	require.NoError(t, err)
	var m Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, 2, m.Imported)
	assert.Equal(t, 1, m.Failed)
	assert.Equal(t, "partial", m.Files[1].Name)
}

func TestRunKeepsOutputsOfSameNamedInputs(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")

	var paths []string
	for _, dir := range []string{"a", "b", "c"} {
		require.NoError(t, os.MkdirAll(filepath.Join(in, dir), 0755))
		p := filepath.Join(in, dir, "hero.scnb")
		require.NoError(t, os.WriteFile(p, fixture.Sample().Bytes(), 0644))
		paths = append(paths, p)
	}
	// Already uses the first suffix a repeat would get.
	p := filepath.Join(in, "hero_2.scnb")
	require.NoError(t, os.WriteFile(p, fixture.Sample().Bytes(), 0644))
	paths = append(paths, p)

	results := Run(Config{
		Importer:  importer.New(importer.Options{}),
		OutputDir: out,
		Workers:   4,
	}, paths)

	require.Len(t, results, 4)
	var outputs []string
	for _, r := range results {
		require.True(t, r.Success, r.Error)
		assert.FileExists(t, filepath.Join(out, r.Output))
		outputs = append(outputs, r.Output)
	}
	assert.Equal(t, []string{"hero.json", "hero_3.json", "hero_4.json", "hero_2.json"}, outputs)
	assert.Equal(t, "hero", results[1].Name)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestOutputStems(t *testing.T) {
	assert.Equal(t,
		[]string{"hero", "Hero_2", "body"},
		outputStems([]string{"a/hero.scnb", "b/Hero.scnb", "body.scnb"}))
}

func TestRunEmpty(t *testing.T) {
	assert.Empty(t, Run(Config{Importer: importer.New(importer.Options{})}, nil))
}
