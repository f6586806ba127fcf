package meshkit

import (
	"github.com/lumogis/citymesh/internal/geom"
)

// triangulateRing triangulates a planar polygon ring (open, no repeated end
// point) by ear clipping and returns index triples into the ring. Handles
// non-convex rings; colinear points produce zero-area ears that are removed
// without emitting a triangle. Triangles below areaTol are skipped.
//
// Triangle rings pass through directly.
func triangulateRing(ring []geom.Vec3, areaTol float64) [][3]int {
	if len(ring) < 3 {
		return nil
	}
	if len(ring) == 3 {
		if geom.RingArea(ring) <= areaTol {
			return nil
		}
		return [][3]int{{0, 1, 2}}
	}

	normal := geom.NewellNormal(ring)
	flat := geom.ProjectRing(ring, normal)

	// Work on a CCW index list over the projected ring.
	idx := make([]int, len(ring))
	for i := range idx {
		idx[i] = i
	}
	if geom.SignedArea2(flat) < 0 {
		for i, j := 0, len(idx)-1; i < j; i, j = i+1, j-1 {
			idx[i], idx[j] = idx[j], idx[i]
		}
	}

	// 2D tolerances: TriArea2 is twice the triangle area.
	areaTol2 := 2 * areaTol

	var tris [][3]int
	guard := 0
	for len(idx) > 3 {
		clipped := false
		for i := 0; i < len(idx); i++ {
			prev := idx[(i-1+len(idx))%len(idx)]
			cur := idx[i]
			next := idx[(i+1)%len(idx)]
			a, b, c := flat[prev], flat[cur], flat[next]

			area2 := geom.TriArea2(a, b, c)
			if area2 < 0 {
				continue // reflex vertex, not an ear
			}
			if area2 <= areaTol2 {
				// Colinear or spike vertex: removing it loses no area.
				idx = append(idx[:i], idx[i+1:]...)
				clipped = true
				break
			}
			if containsOther(flat, idx, prev, cur, next) {
				continue
			}
			tris = append(tris, [3]int{prev, cur, next})
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			// Self-intersecting or numerically hostile ring; fall back to a
			// fan over the remainder rather than spinning forever.
			for i := 1; i < len(idx)-1; i++ {
				tris = append(tris, [3]int{idx[0], idx[i], idx[i+1]})
			}
			break
		}
		if guard++; guard > 4*len(ring) {
			break
		}
	}
	if len(idx) == 3 {
		tris = append(tris, [3]int{idx[0], idx[1], idx[2]})
	}

	// Final degeneracy filter, covering the fan fallback as well.
	out := tris[:0]
	for _, t := range tris {
		tri := []geom.Vec3{ring[t[0]], ring[t[1]], ring[t[2]]}
		if geom.RingArea(tri) > areaTol {
			out = append(out, t)
		}
	}
	return out
}

// containsOther reports whether any remaining ring vertex other than the
// ear's corners lies strictly inside the candidate ear triangle.
func containsOther(flat [][2]float64, idx []int, prev, cur, next int) bool {
	for _, j := range idx {
		if j == prev || j == cur || j == next {
			continue
		}
		if geom.PointInTriangle2(flat[j], flat[prev], flat[cur], flat[next]) {
			return true
		}
	}
	return false
}
