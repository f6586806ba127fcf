package cityjson

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/paulmach/orb"

	"github.com/lumogis/citymesh/internal/geom"
)

// SurfaceType is the semantic role of a building surface.
type SurfaceType int

// Semantic surface roles. Anything outside the LOD2 roof/wall/ground
// triple (closure surfaces, ceilings, missing semantics) maps to
// SurfaceUnknown and is still meshed, just with the fallback material.
const (
	SurfaceUnknown SurfaceType = iota
	SurfaceRoof
	SurfaceWall
	SurfaceGround
)

// String returns the CityJSON semantic surface name.
func (s SurfaceType) String() string {
	switch s {
	case SurfaceRoof:
		return "RoofSurface"
	case SurfaceWall:
		return "WallSurface"
	case SurfaceGround:
		return "GroundSurface"
	default:
		return "Unknown"
	}
}

// ParseSurfaceType maps a CityJSON semantic surface name to a SurfaceType.
func ParseSurfaceType(s string) SurfaceType {
	switch s {
	case "RoofSurface":
		return SurfaceRoof
	case "WallSurface":
		return SurfaceWall
	case "GroundSurface", "FloorSurface", "OuterFloorSurface":
		return SurfaceGround
	default:
		return SurfaceUnknown
	}
}

// Surface is one planar face of a solid: an open ring of projected 3D points
// (CityJSON convention, no repeated closing point) plus its semantic role.
// Interior holes are rare in LOD2 cadastral data and are dropped on decode.
type Surface struct {
	Type SurfaceType
	Ring []geom.Vec3
}

// Solid is a set of surfaces bounding one closed volume.
type Solid struct {
	Surfaces []Surface
}

// Building is one CityJSON Building object with owned geometry.
type Building struct {
	ID         string
	Attributes map[string]any
	Solids     []Solid
}

// SurfaceCount returns the total number of surfaces across all solids. Used
// as the completeness measure when the same building appears in several
// tiles of a tiled export.
func (b *Building) SurfaceCount() int {
	n := 0
	for _, s := range b.Solids {
		n += len(s.Surfaces)
	}
	return n
}

// Footprint returns the building's ground-plane outline as a multipolygon:
// all ground surfaces projected to 2D, falling back to roof surfaces when
// the export carries no ground surface. Returns nil when neither exists.
func (b *Building) Footprint() orb.MultiPolygon {
	fp := b.footprintOf(SurfaceGround)
	if fp == nil {
		fp = b.footprintOf(SurfaceRoof)
	}
	return fp
}

func (b *Building) footprintOf(st SurfaceType) orb.MultiPolygon {
	var mp orb.MultiPolygon
	for _, solid := range b.Solids {
		for _, surf := range solid.Surfaces {
			if surf.Type != st || len(surf.Ring) < 3 {
				continue
			}
			ring := make(orb.Ring, 0, len(surf.Ring)+1)
			for _, p := range surf.Ring {
				ring = append(ring, orb.Point{p[0], p[1]})
			}
			ring = append(ring, ring[0]) // orb rings are closed
			if ring.Orientation() == orb.CW {
				ring.Reverse()
			}
			mp = append(mp, orb.Polygon{ring})
		}
	}
	return mp
}

// Centroid returns the mean of all surface ring points. It approximates the
// solid's interior point for winding checks.
func (b *Building) Centroid() geom.Vec3 {
	var pts []geom.Vec3
	for _, solid := range b.Solids {
		for _, surf := range solid.Surfaces {
			pts = append(pts, surf.Ring...)
		}
	}
	return geom.Centroid(pts)
}

// buildBuilding resolves one raw city object's geometry against the vertex
// pool. Geometries with an explicit LOD other than 2 are skipped when the
// building also carries LOD2 geometry.
func buildBuilding(id string, obj rawObject, verts [][3]float64) (Building, error) {
	b := Building{ID: id, Attributes: obj.Attributes}

	geoms := obj.Geometry
	hasLod2 := false
	for _, g := range geoms {
		if lodMajor(g.Lod) == 2 {
			hasLod2 = true
			break
		}
	}

	for _, g := range geoms {
		if hasLod2 && lodMajor(g.Lod) >= 0 && lodMajor(g.Lod) != 2 {
			continue
		}
		solids, err := resolveGeometry(g, verts)
		if err != nil {
			return Building{}, err
		}
		b.Solids = append(b.Solids, solids...)
	}
	return b, nil
}

// resolveGeometry unpacks one CityJSON geometry into solids with owned
// coordinates. MultiSurface geometries become a single pseudo-solid so the
// rest of the pipeline sees one shape.
func resolveGeometry(g rawGeometry, verts [][3]float64) ([]Solid, error) {
	switch g.Type {
	case "MultiSurface", "CompositeSurface":
		var boundaries [][][]int // surface -> ring -> vertex index
		if err := json.Unmarshal(g.Boundaries, &boundaries); err != nil {
			return nil, fmt.Errorf("%s boundaries: %w", g.Type, err)
		}
		var values []*int
		if g.Semantics != nil && len(g.Semantics.Values) > 0 {
			if err := json.Unmarshal(g.Semantics.Values, &values); err != nil {
				return nil, fmt.Errorf("%s semantics: %w", g.Type, err)
			}
		}
		solid := Solid{}
		for i, surface := range boundaries {
			s, err := resolveSurface(surface, semanticAt(g.Semantics, values, i), verts)
			if err != nil {
				return nil, err
			}
			if s != nil {
				solid.Surfaces = append(solid.Surfaces, *s)
			}
		}
		if len(solid.Surfaces) == 0 {
			return nil, nil
		}
		return []Solid{solid}, nil

	case "Solid":
		var boundaries [][][][]int // shell -> surface -> ring -> index
		if err := json.Unmarshal(g.Boundaries, &boundaries); err != nil {
			return nil, fmt.Errorf("solid boundaries: %w", err)
		}
		var values [][]*int
		if g.Semantics != nil && len(g.Semantics.Values) > 0 {
			if err := json.Unmarshal(g.Semantics.Values, &values); err != nil {
				return nil, fmt.Errorf("solid semantics: %w", err)
			}
		}
		solid := Solid{}
		for si, shell := range boundaries {
			// Inner shells (cavities) are not meaningful at LOD2; only the
			// exterior shell is kept.
			if si > 0 {
				break
			}
			for fi, surface := range shell {
				var sem *int
				if si < len(values) && fi < len(values[si]) {
					sem = values[si][fi]
				}
				s, err := resolveSurface(surface, semanticType(g.Semantics, sem), verts)
				if err != nil {
					return nil, err
				}
				if s != nil {
					solid.Surfaces = append(solid.Surfaces, *s)
				}
			}
		}
		if len(solid.Surfaces) == 0 {
			return nil, nil
		}
		return []Solid{solid}, nil

	case "MultiSolid", "CompositeSolid":
		var boundaries [][][][][]int // solid -> shell -> surface -> ring -> index
		if err := json.Unmarshal(g.Boundaries, &boundaries); err != nil {
			return nil, fmt.Errorf("multisolid boundaries: %w", err)
		}
		var values [][][]*int
		if g.Semantics != nil && len(g.Semantics.Values) > 0 {
			if err := json.Unmarshal(g.Semantics.Values, &values); err != nil {
				return nil, fmt.Errorf("multisolid semantics: %w", err)
			}
		}
		var solids []Solid
		for di, one := range boundaries {
			solid := Solid{}
			for si, shell := range one {
				if si > 0 {
					break
				}
				for fi, surface := range shell {
					var sem *int
					if di < len(values) && si < len(values[di]) && fi < len(values[di][si]) {
						sem = values[di][si][fi]
					}
					s, err := resolveSurface(surface, semanticType(g.Semantics, sem), verts)
					if err != nil {
						return nil, err
					}
					if s != nil {
						solid.Surfaces = append(solid.Surfaces, *s)
					}
				}
			}
			if len(solid.Surfaces) > 0 {
				solids = append(solids, solid)
			}
		}
		return solids, nil

	default:
		// GeometryInstance, templates etc. do not occur in LOD2 cadastral
		// exports; ignore rather than fail the whole tile.
		return nil, nil
	}
}

// resolveSurface turns one boundary surface (outer ring + optional holes)
// into a Surface with real coordinates. Holes are dropped. Returns nil for
// empty or sub-triangle rings.
func resolveSurface(surface [][]int, st SurfaceType, verts [][3]float64) (*Surface, error) {
	if len(surface) == 0 {
		return nil, nil
	}
	outer := surface[0]
	if len(outer) < 3 {
		return nil, nil
	}
	ring := make([]geom.Vec3, 0, len(outer))
	for _, idx := range outer {
		if idx < 0 || idx >= len(verts) {
			return nil, fmt.Errorf("vertex index %d out of range (%d vertices)", idx, len(verts))
		}
		ring = append(ring, geom.Vec3(verts[idx]))
	}
	return &Surface{Type: st, Ring: ring}, nil
}

func semanticAt(sem *rawSemantics, values []*int, i int) SurfaceType {
	if i < len(values) {
		return semanticType(sem, values[i])
	}
	return semanticType(sem, nil)
}

func semanticType(sem *rawSemantics, idx *int) SurfaceType {
	if sem == nil || idx == nil || *idx < 0 || *idx >= len(sem.Surfaces) {
		return SurfaceUnknown
	}
	return ParseSurfaceType(sem.Surfaces[*idx].Type)
}

// sortBuildings orders buildings by ID so decoding is deterministic
// regardless of JSON object iteration order.
func sortBuildings(bs []Building) {
	sort.Slice(bs, func(i, j int) bool { return bs[i].ID < bs[j].ID })
}
