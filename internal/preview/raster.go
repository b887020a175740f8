package preview

import "math"

// vert is a projected vertex: screen x/y, depth and linear albedo.
type vert struct {
	x, y, z float64
	c       [3]float64
}

// rasterize fills one flat-shaded triangle with z-buffering. Albedo is
// interpolated across the face; lighting is per face.
func rasterize(fb *frameBuffer, a, b, c vert, shade float64, l *light) {
	size := fb.size
	minX := max(int(math.Min(math.Min(a.x, b.x), c.x)), 0)
	maxX := min(int(math.Max(math.Max(a.x, b.x), c.x))+1, size-1)
	minY := max(int(math.Min(math.Min(a.y, b.y), c.y)), 0)
	maxY := min(int(math.Max(math.Max(a.y, b.y), c.y))+1, size-1)
	if minX > maxX || minY > maxY {
		return
	}

	det := (b.y-c.y)*(a.x-c.x) + (c.x-b.x)*(a.y-c.y)
	if math.Abs(det) < 1e-8 {
		return
	}
	invDet := 1.0 / det
	dy12, dx21 := b.y-c.y, c.x-b.x
	dy20, dx02 := c.y-a.y, a.x-c.x

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - c.y
		row := sy * size
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - c.x
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1
			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*a.z + w1*b.z + w2*c.z
			zi := row + sx
			if z <= fb.zbuf[zi] {
				continue
			}
			fb.zbuf[zi] = z

			pi := zi * 4
			for k := 0; k < 3; k++ {
				albedo := w0*a.c[k] + w1*b.c[k] + w2*c.c[k]
				fb.color[pi+k] = l.tonemap(albedo * shade)
			}
			fb.color[pi+3] = 255
		}
	}
}
