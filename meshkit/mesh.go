// Package meshkit turns merged building records into triangulated meshes:
// ear-clipping triangulation of the LOD2 surfaces, tolerance-based vertex
// deduplication across surface seams, winding normalization for outward
// normals, and per-surface material classes.
package meshkit

import (
	"fmt"
	"math"

	"github.com/lumogis/citymesh/internal/geom"
)

// Material is the render material class of a face, derived from the source
// surface's semantic role.
type Material int

// Material classes in group emission order.
const (
	MaterialRoof Material = iota
	MaterialWall
	MaterialGround
	MaterialUnknown
	numMaterials
)

// String returns the material name used for scene nodes.
func (m Material) String() string {
	switch m {
	case MaterialRoof:
		return "RoofSurface"
	case MaterialWall:
		return "WallSurface"
	case MaterialGround:
		return "GroundSurface"
	default:
		return "Unknown"
	}
}

// Color returns the material's fixed default base color (RGBA, linear).
func (m Material) Color() [4]float32 {
	switch m {
	case MaterialRoof:
		return [4]float32{0.72, 0.28, 0.22, 1}
	case MaterialWall:
		return [4]float32{0.85, 0.84, 0.78, 1}
	case MaterialGround:
		return [4]float32{0.42, 0.45, 0.40, 1}
	default:
		return [4]float32{0.60, 0.60, 0.65, 1}
	}
}

// Face is a triangle as three vertex indices with counter-clockwise winding
// seen from outside the solid.
type Face [3]uint32

// Group maps a contiguous face range to one material.
type Group struct {
	Material Material
	Start    int // first face index
	Count    int // number of faces
}

// Mesh is a renderable triangle mesh for one merged record. Vertices are in
// local coordinates: Origin has been subtracted so the mesh sits near the
// coordinate origin regardless of the projected system's large offsets.
type Mesh struct {
	Key      string // merged record identifier, threaded through to outputs
	Origin   geom.Vec3
	Vertices []geom.Vec3
	Faces    []Face
	Groups   []Group
}

// FaceCount returns the number of triangles.
func (m *Mesh) FaceCount() int { return len(m.Faces) }

// VertexCount returns the number of unique vertices.
func (m *Mesh) VertexCount() int { return len(m.Vertices) }

// DegenerateSolidError means a record carried geometry but every surface
// collapsed during triangulation. Reported per object; never aborts a batch.
type DegenerateSolidError struct {
	Key string
}

func (e *DegenerateSolidError) Error() string {
	return fmt.Sprintf("degenerate solid: record %s produced no faces", e.Key)
}

// vertexPool deduplicates vertices by coordinate equality within a
// tolerance, so seams between adjacent surfaces share vertices and mesh
// size stays proportional to unique geometry.
type vertexPool struct {
	tol   float64
	index map[[3]int64]uint32
	verts []geom.Vec3
}

func newVertexPool(tol float64) *vertexPool {
	return &vertexPool{tol: tol, index: make(map[[3]int64]uint32)}
}

func (vp *vertexPool) add(p geom.Vec3) uint32 {
	k := [3]int64{
		int64(math.Round(p[0] / vp.tol)),
		int64(math.Round(p[1] / vp.tol)),
		int64(math.Round(p[2] / vp.tol)),
	}
	if i, ok := vp.index[k]; ok {
		return i
	}
	i := uint32(len(vp.verts))
	vp.index[k] = i
	vp.verts = append(vp.verts, p)
	return i
}
