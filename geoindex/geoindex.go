// Package geoindex provides the spatial index over CityJSON building
// footprints used to answer containment and proximity queries for OSM
// coordinates. The index is immutable after Build and safe for concurrent
// queries.
package geoindex

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/lumogis/citymesh/cityjson"
)

var (
	// ErrIndexEmpty is returned by Build when there are no indexable
	// buildings. Without an index no matching is possible, so callers treat
	// this as fatal for the run.
	ErrIndexEmpty = errors.New("geoindex: no buildings to index")

	// ErrNotBuilt is returned when querying an index that was not produced
	// by Build. This is a programming error, not a data condition.
	ErrNotBuilt = errors.New("geoindex: index not built")
)

// CRSConflictError is returned by Build when the tiles disagree on their
// reference system. Coordinates from different projections cannot share one
// index; reproject the tiles before indexing.
type CRSConflictError struct {
	TileA string
	EPSGA int
	TileB string
	EPSGB int
}

func (e *CRSConflictError) Error() string {
	return fmt.Sprintf("geoindex: tile %s declares EPSG:%d but tile %s declares EPSG:%d",
		e.TileA, e.EPSGA, e.TileB, e.EPSGB)
}

// Entry is one indexed building with its precomputed footprint.
type Entry struct {
	Building  cityjson.Building
	Tile      string
	Footprint orb.MultiPolygon
	Area      float64

	bounds rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *Entry) Bounds() rtreego.Rect { return e.bounds }

// Candidate is one query result, ordered by ascending distance.
type Candidate struct {
	ID       string
	Distance float64 // meters to the nearest footprint edge; 0 when contained
	Contains bool    // query point inside the footprint
	Area     float64 // footprint area, m²
}

// Index answers containment/proximity queries against building footprints.
type Index struct {
	tree    *rtreego.Rtree
	entries map[string]*Entry
	epsg    int

	// SkippedIDs lists buildings that could not be indexed because they have
	// no usable footprint. They are reported, not silently dropped.
	SkippedIDs []string
}

// Build indexes the given buildings. Buildings appearing in several tiles
// are deduplicated by identifier, keeping the instance with the most
// complete geometry (surface count, then total ring points).
func Build(buildings []cityjson.SourcedBuilding) (*Index, error) {
	if len(buildings) == 0 {
		return nil, ErrIndexEmpty
	}

	// All tiles must agree on one reference system before any geometry
	// is worth indexing.
	for _, sb := range buildings[1:] {
		if sb.EPSG != buildings[0].EPSG {
			return nil, &CRSConflictError{
				TileA: buildings[0].Tile, EPSGA: buildings[0].EPSG,
				TileB: sb.Tile, EPSGB: sb.EPSG,
			}
		}
	}

	// Dedupe across tiles before paying for footprint extraction.
	best := make(map[string]cityjson.SourcedBuilding, len(buildings))
	order := make([]string, 0, len(buildings))
	for _, sb := range buildings {
		cur, ok := best[sb.Building.ID]
		if !ok {
			best[sb.Building.ID] = sb
			order = append(order, sb.Building.ID)
			continue
		}
		if moreComplete(sb.Building, cur.Building) {
			best[sb.Building.ID] = sb
		}
	}
	sort.Strings(order)

	ix := &Index{
		tree:    rtreego.NewTree(2, 25, 50),
		entries: make(map[string]*Entry, len(best)),
		epsg:    buildings[0].EPSG,
	}
	for _, id := range order {
		sb := best[id]
		fp := sb.Building.Footprint()
		if len(fp) == 0 {
			ix.SkippedIDs = append(ix.SkippedIDs, id)
			continue
		}
		bound := fp.Bound()
		rect, err := rtreego.NewRect(
			rtreego.Point{bound.Min[0], bound.Min[1]},
			[]float64{sizeOrEpsilon(bound.Max[0] - bound.Min[0]), sizeOrEpsilon(bound.Max[1] - bound.Min[1])},
		)
		if err != nil {
			return nil, fmt.Errorf("geoindex: bounds for %s: %w", id, err)
		}
		e := &Entry{
			Building:  sb.Building,
			Tile:      sb.Tile,
			Footprint: fp,
			Area:      planar.Area(fp),
			bounds:    rect,
		}
		ix.entries[id] = e
		ix.tree.Insert(e)
	}
	if len(ix.entries) == 0 {
		return nil, ErrIndexEmpty
	}
	return ix, nil
}

// moreComplete reports whether a's geometry is more complete than b's.
func moreComplete(a, b cityjson.Building) bool {
	if a.SurfaceCount() != b.SurfaceCount() {
		return a.SurfaceCount() > b.SurfaceCount()
	}
	return ringPoints(a) > ringPoints(b)
}

func ringPoints(b cityjson.Building) int {
	n := 0
	for _, s := range b.Solids {
		for _, surf := range s.Surfaces {
			n += len(surf.Ring)
		}
	}
	return n
}

// sizeOrEpsilon keeps degenerate (zero-extent) rectangles insertable.
func sizeOrEpsilon(v float64) float64 {
	if v <= 0 {
		return 1e-9
	}
	return v
}

// Query returns the buildings whose footprint lies within radius meters of
// the projected point, ordered by ascending edge distance (contained
// footprints first, at distance 0).
func (ix *Index) Query(p orb.Point, radius float64) ([]Candidate, error) {
	if ix == nil || ix.tree == nil {
		return nil, ErrNotBuilt
	}
	rect, err := rtreego.NewRect(
		rtreego.Point{p[0] - radius, p[1] - radius},
		[]float64{2 * radius, 2 * radius},
	)
	if err != nil {
		return nil, fmt.Errorf("geoindex: query rect: %w", err)
	}

	var out []Candidate
	for _, sp := range ix.tree.SearchIntersect(rect) {
		e := sp.(*Entry)
		contains := planar.MultiPolygonContains(e.Footprint, p)
		dist := 0.0
		if !contains {
			dist = edgeDistance(e.Footprint, p)
			if dist > radius {
				continue
			}
		}
		out = append(out, Candidate{
			ID:       e.Building.ID,
			Distance: dist,
			Contains: contains,
			Area:     e.Area,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// edgeDistance returns the planar distance from p to the nearest footprint
// ring segment.
func edgeDistance(mp orb.MultiPolygon, p orb.Point) float64 {
	best := -1.0
	for _, poly := range mp {
		for _, ring := range poly {
			d := planar.DistanceFrom(ring, p)
			if best < 0 || d < best {
				best = d
			}
		}
	}
	return best
}

// Get returns the indexed entry for a building identifier.
func (ix *Index) Get(id string) (*Entry, bool) {
	if ix == nil || ix.entries == nil {
		return nil, false
	}
	e, ok := ix.entries[id]
	return e, ok
}

// Len returns the number of indexed buildings.
func (ix *Index) Len() int { return len(ix.entries) }

// EPSG returns the EPSG code of the indexed coordinate reference system, or
// zero when the source tiles carried no CRS metadata.
func (ix *Index) EPSG() int { return ix.epsg }
