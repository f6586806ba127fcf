package merger

import (
	"fmt"
	"math"

	"github.com/lumogis/citymesh/cityjson"
	"github.com/lumogis/citymesh/internal/geom"
)

// validate checks the merged geometry invariants and returns one flag per
// violation. Flagged geometry stays in the record; downstream stages decide
// whether they can still use it.
//
// Checked per surface: the ring closes on at least three distinct points
// and is planar within tolerance. Checked per solid: every edge is shared
// by exactly two surfaces (watertight volume).
func validate(buildings []cityjson.Building, planarTol float64) []string {
	var flags []string
	for _, b := range buildings {
		for si, solid := range b.Solids {
			edges := map[edgeKey]int{}
			for fi, surf := range solid.Surfaces {
				ring := surf.Ring
				// A closed ring arriving with an explicit duplicate end
				// point violates the open-ring convention of the model.
				if len(ring) >= 2 && quantize(ring[0]) == quantize(ring[len(ring)-1]) {
					flags = append(flags, fmt.Sprintf("ring-duplicate-endpoint:%s/%d/%d", b.ID, si, fi))
					ring = ring[:len(ring)-1]
				}
				if len(ring) < 3 || geom.RingArea(ring) == 0 {
					flags = append(flags, fmt.Sprintf("ring-degenerate:%s/%d/%d", b.ID, si, fi))
					continue
				}
				if geom.PlaneDeviation(ring) > planarTol {
					flags = append(flags, fmt.Sprintf("ring-nonplanar:%s/%d/%d", b.ID, si, fi))
				}
				for i := range ring {
					edges[newEdgeKey(ring[i], ring[(i+1)%len(ring)])]++
				}
			}
			for _, n := range edges {
				if n != 2 {
					flags = append(flags, fmt.Sprintf("solid-open:%s/%d", b.ID, si))
					break
				}
			}
		}
	}
	return flags
}

// edgeKey identifies an undirected edge by its quantized endpoints.
type edgeKey struct {
	a, b [3]int64
}

func newEdgeKey(p, q geom.Vec3) edgeKey {
	a, b := quantize(p), quantize(q)
	if less(b, a) {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// quantize snaps a coordinate to nanometer resolution so that edge sharing
// survives floating point noise between adjacent surfaces.
func quantize(p geom.Vec3) [3]int64 {
	return [3]int64{
		int64(math.Round(p[0] * 1e9)),
		int64(math.Round(p[1] * 1e9)),
		int64(math.Round(p[2] * 1e9)),
	}
}

func less(a, b [3]int64) bool {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
