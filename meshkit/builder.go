package meshkit

import (
	"github.com/lumogis/citymesh/cityjson"
	"github.com/lumogis/citymesh/internal/geom"
	"github.com/lumogis/citymesh/merger"
)

// Options tunes mesh construction.
type Options struct {
	// AreaTolerance is the minimum triangle area (m²); smaller triangles
	// are treated as degenerate and skipped.
	AreaTolerance float64

	// VertexTolerance is the coordinate distance (m) under which vertices
	// are considered identical and deduplicated.
	VertexTolerance float64
}

// DefaultOptions returns the default construction tolerances.
func DefaultOptions() Options {
	return Options{
		AreaTolerance:   1e-6,
		VertexTolerance: 1e-6,
	}
}

// materialOf maps a semantic surface role to its material class.
func materialOf(st cityjson.SurfaceType) Material {
	switch st {
	case cityjson.SurfaceRoof:
		return MaterialRoof
	case cityjson.SurfaceWall:
		return MaterialWall
	case cityjson.SurfaceGround:
		return MaterialGround
	default:
		return MaterialUnknown
	}
}

// Build triangulates the record's solids into a single mesh with one face
// group per material class. Vertices are rebased to a local origin (the
// mean of all used points) and deduplicated within tolerance; face winding
// is normalized so normals point away from each solid's interior.
//
// Returns DegenerateSolidError when all surfaces collapse to zero faces.
func Build(rec *merger.Record, optFns ...func(*Options)) (*Mesh, error) {
	opts := DefaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	// Local origin: mean of every ring point, matching the rebase the
	// viewer-facing exports expect for large projected coordinates.
	var all []geom.Vec3
	for _, b := range rec.Buildings {
		for _, s := range b.Solids {
			for _, surf := range s.Surfaces {
				all = append(all, surf.Ring...)
			}
		}
	}
	if len(all) == 0 {
		return nil, &DegenerateSolidError{Key: rec.Key}
	}
	origin := geom.Centroid(all)

	mesh := &Mesh{Key: rec.Key, Origin: origin}
	pool := newVertexPool(opts.VertexTolerance)

	for mat := MaterialRoof; mat < numMaterials; mat++ {
		start := len(mesh.Faces)
		for _, b := range rec.Buildings {
			for _, solid := range b.Solids {
				interior := solidCentroid(solid).Sub(origin)
				for _, surf := range solid.Surfaces {
					if materialOf(surf.Type) != mat {
						continue
					}
					emitSurface(mesh, pool, surf.Ring, origin, interior, opts.AreaTolerance)
				}
			}
		}
		if n := len(mesh.Faces) - start; n > 0 {
			mesh.Groups = append(mesh.Groups, Group{Material: mat, Start: start, Count: n})
		}
	}

	mesh.Vertices = pool.verts
	if len(mesh.Faces) == 0 {
		return nil, &DegenerateSolidError{Key: rec.Key}
	}
	return mesh, nil
}

func solidCentroid(s cityjson.Solid) geom.Vec3 {
	var pts []geom.Vec3
	for _, surf := range s.Surfaces {
		pts = append(pts, surf.Ring...)
	}
	return geom.Centroid(pts)
}

// emitSurface triangulates one surface ring and appends its faces, oriented
// away from the solid interior.
func emitSurface(mesh *Mesh, pool *vertexPool, ring []geom.Vec3, origin, interior geom.Vec3, areaTol float64) {
	// Drop an explicit closing point; triangulation expects open rings.
	if len(ring) >= 2 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}

	local := make([]geom.Vec3, len(ring))
	for i, p := range ring {
		local[i] = p.Sub(origin)
	}

	for _, t := range triangulateRing(local, areaTol) {
		a, b, c := local[t[0]], local[t[1]], local[t[2]]

		// Outward winding: the triangle normal must point away from the
		// solid's interior point. Wrong winding breaks lighting and
		// culling, so this is corrected, not assumed.
		n := b.Sub(a).Cross(c.Sub(a))
		outward := geom.Centroid([]geom.Vec3{a, b, c}).Sub(interior)
		if n.Dot(outward) < 0 {
			b, c = c, b
		}

		ia, ib, ic := pool.add(a), pool.add(b), pool.add(c)
		if ia == ib || ib == ic || ia == ic {
			continue // collapsed by vertex dedupe
		}
		mesh.Faces = append(mesh.Faces, Face{ia, ib, ic})
	}
}
