package preview

import (
	"math"

	"scene-importer/internal/mathutil"
)

// light holds precomputed lighting parameters.
type light struct {
	dir      mathutil.Vec3
	rimDir   mathutil.Vec3
	half     mathutil.Vec3 // Blinn-Phong half vector
	ambient  float64
	hemi     float64
	direct   float64
	rim      float64
	specInt  float64
	specPow  float64
	exposure float64
	invGamma float64
}

func defaultLight() light {
	dir := mathutil.Vec3{180, 260, 140}.Normalize()
	view := mathutil.Vec3{0, -110, -400}.Normalize()
	return light{
		dir:      dir,
		rimDir:   mathutil.Vec3{-160, 130, -210}.Normalize(),
		half:     dir.Sub(view).Normalize(),
		ambient:  0.35,
		hemi:     0.40,
		direct:   1.20,
		rim:      0.45,
		specInt:  0.35,
		specPow:  12.0,
		exposure: 1.0,
		invGamma: 1.0 / 2.2,
	}
}

// shade returns the lighting scalar for a unit face normal. Faces are lit
// from both sides.
func (l *light) shade(n mathutil.Vec3) float64 {
	ndl := math.Abs(n.Dot(l.dir))
	ndlRim := math.Abs(n.Dot(l.rimDir))
	hemi := ((1.0-math.Abs(n[1]))*0.5 + 0.5) * l.hemi
	ndh := n.Dot(l.half)
	if ndh < 0 {
		ndh = 0
	}
	spec := math.Pow(ndh, l.specPow) * l.specInt
	return l.ambient + hemi + ndl*l.direct + ndlRim*l.rim + spec
}

// tonemap maps a linear colour channel through ACES filmic and back to sRGB.
func (l *light) tonemap(linear float64) uint8 {
	x := linear * l.exposure
	x = (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
	return clamp255(math.Pow(math.Max(x, 0), l.invGamma) * 255)
}

// palette gives submeshes without vertex colour a stable per-slot albedo (linear).
var palette = [][3]float64{
	{0.35, 0.35, 0.40},
	{0.45, 0.25, 0.20},
	{0.20, 0.35, 0.45},
	{0.30, 0.40, 0.22},
	{0.42, 0.36, 0.18},
	{0.32, 0.22, 0.40},
}

func slotColor(slot uint32) [3]float64 {
	return palette[int(slot)%len(palette)]
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
