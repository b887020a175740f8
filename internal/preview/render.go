// Package preview renders a small shaded thumbnail of an imported scene's
// lowest LOD, for summary panels and batch manifests.
package preview

import (
	"image"
	"math"
	"strings"

	"scene-importer/internal/mathutil"
	"scene-importer/internal/mesh"
	"scene-importer/internal/scene"
)

type Options struct {
	Size        int // output edge in pixels
	Supersample int
	Yaw         float64 // degrees around the up axis
	Pitch       float64 // degrees, positive looks down on the model
}

func DefaultOptions() Options {
	return Options{Size: 256, Supersample: 2, Yaw: -35, Pitch: 20}
}

// Render draws the lowest LOD of d. A scene with no geometry renders as a
// fully transparent image.
func Render(d *scene.Description, opts Options) *image.NRGBA {
	if opts.Size <= 0 {
		opts.Size = DefaultOptions().Size
	}
	if opts.Supersample <= 0 {
		opts.Supersample = 1
	}
	blank := image.NewNRGBA(image.Rect(0, 0, opts.Size, opts.Size))

	lods := d.LODs()
	if len(lods) == 0 {
		return blank
	}
	subs := d.Submeshes(lods[0])
	view := viewMatrix(d.Metadata().UpAxis, opts)

	lo := mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, sm := range subs {
		for _, v := range sm.Vertices {
			p := view.MulVec3(mathutil.Vec3From(v.Position))
			lo, hi = lo.Min(p), hi.Max(p)
		}
	}
	if lo[0] > hi[0] {
		return blank
	}

	renderSize := opts.Size * opts.Supersample
	center := lo.Add(hi).Scale(0.5)
	span := math.Max(math.Max(hi[0]-lo[0], hi[1]-lo[1]), 0.001)
	margin := 8 * opts.Supersample
	scale := float64(renderSize-2*margin) / span
	half := float64(renderSize) / 2

	fb := newFrameBuffer(renderSize)
	l := defaultLight()
	for _, sm := range subs {
		pos := make([]mathutil.Vec3, len(sm.Vertices))
		verts := make([]vert, len(sm.Vertices))
		for i, v := range sm.Vertices {
			p := view.MulVec3(mathutil.Vec3From(v.Position))
			pos[i] = p
			verts[i] = vert{
				x: (p[0]-center[0])*scale + half,
				y: half - (p[1]-center[1])*scale,
				z: p[2],
				c: albedo(v, sm.MaterialSlot),
			}
		}
		for _, tri := range sm.Triangles {
			a, b, c := pos[tri[0]], pos[tri[1]], pos[tri[2]]
			n := b.Sub(a).Cross(c.Sub(a)).Normalize()
			if n.Len() == 0 {
				continue
			}
			rasterize(fb, verts[tri[0]], verts[tri[1]], verts[tri[2]], l.shade(n), &l)
		}
	}

	img := image.NewNRGBA(image.Rect(0, 0, renderSize, renderSize))
	copy(img.Pix, fb.color)
	if opts.Supersample > 1 {
		img = downsample(img, opts.Size)
	}
	return img
}

// viewMatrix turns the scene's up axis into +Y, then applies yaw and pitch.
func viewMatrix(upAxis string, opts Options) mathutil.Mat3 {
	base := mathutil.Mat3Identity()
	if strings.EqualFold(upAxis, "z") {
		base = mathutil.RotX(mathutil.Deg2Rad(-90))
	}
	orbit := mathutil.Mat3Mul(mathutil.RotX(mathutil.Deg2Rad(opts.Pitch)), mathutil.RotY(mathutil.Deg2Rad(opts.Yaw)))
	return mathutil.Mat3Mul(orbit, base)
}

func albedo(v mesh.Vertex, slot uint32) [3]float64 {
	if v.Color == nil {
		return slotColor(slot)
	}
	return [3]float64{float64(v.Color[0]), float64(v.Color[1]), float64(v.Color[2])}
}
