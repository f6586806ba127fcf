// Package geom provides small 3D polygon primitives shared by the geometry
// pipeline: vector arithmetic, Newell normals, planarity checks and plane
// projection. All coordinates are planar map units (meters).
package geom

import "math"

// Vec3 is a 3D vector or point in projected coordinates.
type Vec3 [3]float64

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 { return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]} }

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 { return Vec3{v[0] - w[0], v[1] - w[1], v[2] - w[2]} }

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v[0] * s, v[1] * s, v[2] * s} }

// Dot returns the dot product of v and w.
func (v Vec3) Dot(w Vec3) float64 { return v[0]*w[0] + v[1]*w[1] + v[2]*w[2] }

// Cross returns the cross product of v and w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v[1]*w[2] - v[2]*w[1],
		v[2]*w[0] - v[0]*w[2],
		v[0]*w[1] - v[1]*w[0],
	}
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// Normalize returns v scaled to unit length, or the zero vector if v is
// degenerate.
func (v Vec3) Normalize() Vec3 {
	n := v.Norm()
	if n == 0 {
		return Vec3{}
	}
	return v.Scale(1 / n)
}

// NewellNormal computes the (unnormalized) normal of a polygon ring using
// Newell's method. The result's length is twice the ring's area, and its
// direction follows the right-hand rule over the ring's winding. Works for
// non-convex and slightly non-planar rings.
//
// The ring must be open (no repeated closing point).
func NewellNormal(ring []Vec3) Vec3 {
	var n Vec3
	for i := range ring {
		c := ring[i]
		nx := ring[(i+1)%len(ring)]
		n[0] += (c[1] - nx[1]) * (c[2] + nx[2])
		n[1] += (c[2] - nx[2]) * (c[0] + nx[0])
		n[2] += (c[0] - nx[0]) * (c[1] + nx[1])
	}
	return n
}

// RingArea returns the area of a (possibly non-planar) polygon ring,
// measured in the ring's best-fit plane.
func RingArea(ring []Vec3) float64 {
	return NewellNormal(ring).Norm() / 2
}

// Centroid returns the arithmetic mean of the given points.
func Centroid(pts []Vec3) Vec3 {
	var c Vec3
	if len(pts) == 0 {
		return c
	}
	for _, p := range pts {
		c = c.Add(p)
	}
	return c.Scale(1 / float64(len(pts)))
}

// PlaneDeviation returns the largest distance of any ring point from the
// ring's best-fit plane (anchored at the ring centroid, oriented by the
// Newell normal). A degenerate ring reports zero deviation.
func PlaneDeviation(ring []Vec3) float64 {
	n := NewellNormal(ring).Normalize()
	if n == (Vec3{}) {
		return 0
	}
	c := Centroid(ring)
	max := 0.0
	for _, p := range ring {
		if d := math.Abs(p.Sub(c).Dot(n)); d > max {
			max = d
		}
	}
	return max
}

// ProjectRing maps a 3D ring into 2D coordinates in the plane given by its
// normal. The projection drops the dominant normal axis, which preserves
// topology (winding, containment) for planar rings. The returned winding
// matches the ring's orientation as seen from the normal direction.
func ProjectRing(ring []Vec3, normal Vec3) [][2]float64 {
	ax, ay := projectionAxes(normal)
	out := make([][2]float64, len(ring))
	for i, p := range ring {
		out[i] = [2]float64{p[ax], p[ay]}
	}
	// Dropping an axis can mirror the ring; keep the 2D winding aligned
	// with the 3D one so callers can reason about orientation.
	if mirrored(normal) {
		for i := range out {
			out[i][0], out[i][1] = out[i][1], out[i][0]
		}
	}
	return out
}

// projectionAxes picks the two coordinate axes spanning the projection plane
// for the given normal: the dominant normal component is dropped.
func projectionAxes(n Vec3) (int, int) {
	x, y, z := math.Abs(n[0]), math.Abs(n[1]), math.Abs(n[2])
	switch {
	case x >= y && x >= z:
		return 1, 2
	case y >= x && y >= z:
		return 0, 2
	default:
		return 0, 1
	}
}

// mirrored reports whether dropping the dominant axis of n flips orientation,
// i.e. whether the dominant component is negative.
func mirrored(n Vec3) bool {
	x, y, z := math.Abs(n[0]), math.Abs(n[1]), math.Abs(n[2])
	switch {
	case x >= y && x >= z:
		return n[0] < 0
	case y >= x && y >= z:
		return n[1] >= 0 // dropping Y keeps (x,z); positive Y mirrors
	default:
		return n[2] < 0
	}
}

// SignedArea2 returns twice the signed area of a 2D ring. Positive for
// counter-clockwise winding.
func SignedArea2(ring [][2]float64) float64 {
	var a float64
	for i := range ring {
		j := (i + 1) % len(ring)
		a += ring[i][0]*ring[j][1] - ring[j][0]*ring[i][1]
	}
	return a
}

// TriArea2 returns twice the signed area of the 2D triangle (a, b, c).
func TriArea2(a, b, c [2]float64) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (c[0]-a[0])*(b[1]-a[1])
}

// PointInTriangle2 reports whether p lies strictly inside the 2D triangle
// (a, b, c), which must be counter-clockwise.
func PointInTriangle2(p, a, b, c [2]float64) bool {
	return TriArea2(a, b, p) > 0 && TriArea2(b, c, p) > 0 && TriArea2(c, a, p) > 0
}
