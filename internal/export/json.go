// Package export writes scene descriptions as JSON interchange files for
// hosts that build their meshes out of process.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"scene-importer/internal/mathutil"
	"scene-importer/internal/mesh"
	"scene-importer/internal/scene"
)

type Document struct {
	Name      string         `json:"name"`
	Metadata  scene.Metadata `json:"metadata"`
	Stats     scene.Stats    `json:"stats"`
	Bones     []Bone         `json:"bones"`
	Materials []Material     `json:"materials"`
	LODs      []LOD          `json:"lods"`
	Collision []scene.Shape  `json:"collision,omitempty"`
}

type Bone struct {
	Name        string        `json:"name"`
	Parent      int32         `json:"parent"`
	Translation mathutil.Vec3 `json:"translation"`
	Rotation    mathutil.Quat `json:"rotation"`
	Scale       mathutil.Vec3 `json:"scale"`
	World       mathutil.Mat4 `json:"world"`
	Synthetic   bool          `json:"synthetic,omitempty"`
}

type Material struct {
	Slot     uint32 `json:"slot"`
	Name     string `json:"name"`
	RawID    string `json:"raw_id,omitempty"`
	Resolved bool   `json:"resolved"`
}

type LOD struct {
	Level     uint32    `json:"level"`
	Submeshes []Submesh `json:"submeshes"`
}

// Submesh stores vertex attributes as flat arrays.
type Submesh struct {
	Name      string          `json:"name"`
	Material  uint32          `json:"material"`
	Positions []float32       `json:"positions"`
	Normals   []float32       `json:"normals"`
	UVs       [][]float32     `json:"uvs,omitempty"`
	Colors    []float32       `json:"colors,omitempty"`
	Weights   [][]mesh.Weight `json:"weights"`
	Indices   []uint32        `json:"indices"`
}

// Build converts a description into its interchange form.
func Build(d *scene.Description) Document {
	doc := Document{
		Name:      d.Name(),
		Metadata:  d.Metadata(),
		Stats:     d.Stats(),
		Collision: d.Collision(),
	}
	for _, b := range d.Bones() {
		doc.Bones = append(doc.Bones, Bone{
			Name:        b.Name,
			Parent:      b.Parent,
			Translation: b.LocalTranslation,
			Rotation:    b.LocalRotation,
			Scale:       b.LocalScale,
			World:       b.World,
			Synthetic:   b.Synthetic,
		})
	}
	for _, m := range d.MaterialSlots() {
		mat := Material{Slot: m.Slot, Name: m.Name, Resolved: m.Resolved}
		if m.RawID != 0 {
			mat.RawID = fmt.Sprintf("%016x", m.RawID)
		}
		doc.Materials = append(doc.Materials, mat)
	}
	for _, lod := range d.LODs() {
		l := LOD{Level: lod}
		for _, sm := range d.Submeshes(lod) {
			l.Submeshes = append(l.Submeshes, flatten(sm))
		}
		doc.LODs = append(doc.LODs, l)
	}
	return doc
}

func flatten(sm mesh.Submesh) Submesh {
	out := Submesh{
		Name:      sm.Name,
		Material:  sm.MaterialSlot,
		Positions: make([]float32, 0, len(sm.Vertices)*3),
		Normals:   make([]float32, 0, len(sm.Vertices)*3),
		Weights:   make([][]mesh.Weight, 0, len(sm.Vertices)),
		Indices:   make([]uint32, 0, len(sm.Triangles)*3),
	}
	if len(sm.Vertices) > 0 {
		out.UVs = make([][]float32, len(sm.Vertices[0].UVs))
	}
	for _, v := range sm.Vertices {
		out.Positions = append(out.Positions, v.Position[:]...)
		out.Normals = append(out.Normals, v.Normal[:]...)
		for ch, uv := range v.UVs {
			out.UVs[ch] = append(out.UVs[ch], uv[:]...)
		}
		if v.Color != nil {
			out.Colors = append(out.Colors, v.Color[:]...)
		}
		out.Weights = append(out.Weights, v.Weights)
	}
	for _, tri := range sm.Triangles {
		out.Indices = append(out.Indices, tri[:]...)
	}
	return out
}

// Encode writes d as indented JSON.
func Encode(w io.Writer, d *scene.Description) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Build(d)); err != nil {
		return fmt.Errorf("export: %s: %w", d.Name(), err)
	}
	return nil
}

// JSONWriter is a scene.Consumer writing <Dir>/<scene name>.json.
type JSONWriter struct {
	Dir string
}

// Path returns where d would be written.
func (w *JSONWriter) Path(d *scene.Description) string {
	return filepath.Join(w.Dir, d.Name()+".json")
}

func (w *JSONWriter) Consume(d *scene.Description) error {
	return WriteFile(w.Path(d), d)
}

// WriteFile writes d as JSON to path, creating the parent directory.
func WriteFile(path string, d *scene.Description) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := Encode(f, d); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

var _ scene.Consumer = (*JSONWriter)(nil)
