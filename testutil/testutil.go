package testutil

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/lumogis/citymesh/cityjson"
	"github.com/lumogis/citymesh/internal/geom"
	"github.com/lumogis/citymesh/osm"
)

// Default fixture dimensions in meters.
const (
	DefaultWidth      = 10.0
	DefaultDepth      = 8.0
	DefaultWallHeight = 6.0
	DefaultRidge      = 9.0
)

// GableRoofBuilding returns a closed gable-roof solid with its south-west
// ground corner at (x, y): one ground surface, four walls (two of them
// pentagonal gable ends) and two roof planes. All rings are planar and wound
// with outward normals, so validation flags stay empty.
func GableRoofBuilding(id string, x, y float64) cityjson.Building {
	return GableRoofBuildingSized(id, x, y, DefaultWidth, DefaultDepth, DefaultWallHeight, DefaultRidge)
}

// GableRoofBuildingSized is GableRoofBuilding with explicit footprint size,
// wall height and ridge height.
func GableRoofBuildingSized(id string, x, y, w, d, h, ridge float64) cityjson.Building {
	v := func(dx, dy, z float64) geom.Vec3 { return geom.Vec3{x + dx, y + dy, z} }

	a, b, c, dd := v(0, 0, 0), v(w, 0, 0), v(w, d, 0), v(0, d, 0)
	at, bt, ct, dt := v(0, 0, h), v(w, 0, h), v(w, d, h), v(0, d, h)
	r1, r2 := v(w/2, 0, ridge), v(w/2, d, ridge)

	return cityjson.Building{
		ID: id,
		Attributes: map[string]any{
			"measuredHeight": ridge,
			"function":       "31001_1000",
		},
		Solids: []cityjson.Solid{{
			Surfaces: []cityjson.Surface{
				{Type: cityjson.SurfaceGround, Ring: []geom.Vec3{a, dd, c, b}},
				{Type: cityjson.SurfaceWall, Ring: []geom.Vec3{a, at, dt, dd}},
				{Type: cityjson.SurfaceWall, Ring: []geom.Vec3{b, c, ct, bt}},
				{Type: cityjson.SurfaceWall, Ring: []geom.Vec3{a, b, bt, r1, at}},
				{Type: cityjson.SurfaceWall, Ring: []geom.Vec3{dt, r2, ct, c, dd}},
				{Type: cityjson.SurfaceRoof, Ring: []geom.Vec3{at, r1, r2, dt}},
				{Type: cityjson.SurfaceRoof, Ring: []geom.Vec3{bt, ct, r2, r1}},
			},
		}},
	}
}

// FlatRoofBuilding returns a plain box solid: ground, four walls and one
// flat roof. Useful when a test only needs containment, not roof shape.
func FlatRoofBuilding(id string, x, y, w, d, h float64) cityjson.Building {
	v := func(dx, dy, z float64) geom.Vec3 { return geom.Vec3{x + dx, y + dy, z} }

	a, b, c, dd := v(0, 0, 0), v(w, 0, 0), v(w, d, 0), v(0, d, 0)
	at, bt, ct, dt := v(0, 0, h), v(w, 0, h), v(w, d, h), v(0, d, h)

	return cityjson.Building{
		ID:         id,
		Attributes: map[string]any{"measuredHeight": h},
		Solids: []cityjson.Solid{{
			Surfaces: []cityjson.Surface{
				{Type: cityjson.SurfaceGround, Ring: []geom.Vec3{a, dd, c, b}},
				{Type: cityjson.SurfaceWall, Ring: []geom.Vec3{a, at, dt, dd}},
				{Type: cityjson.SurfaceWall, Ring: []geom.Vec3{b, c, ct, bt}},
				{Type: cityjson.SurfaceWall, Ring: []geom.Vec3{a, b, bt, at}},
				{Type: cityjson.SurfaceWall, Ring: []geom.Vec3{dd, dt, ct, c}},
				{Type: cityjson.SurfaceRoof, Ring: []geom.Vec3{at, bt, ct, dt}},
			},
		}},
	}
}

// Sourced wraps a building with tile provenance and CRS.
func Sourced(b cityjson.Building, tile string, epsg int) cityjson.SourcedBuilding {
	return cityjson.SourcedBuilding{Building: b, Tile: tile, EPSG: epsg}
}

// SourcedAll wraps each building with the same tile and CRS.
func SourcedAll(bs []cityjson.Building, tile string, epsg int) []cityjson.SourcedBuilding {
	out := make([]cityjson.SourcedBuilding, len(bs))
	for i, b := range bs {
		out[i] = Sourced(b, tile, epsg)
	}
	return out
}

// PharmacyNode returns a wheelchair-accessible pharmacy node.
func PharmacyNode(id int64, lon, lat float64) osm.Object {
	return osm.Object{
		ID:   id,
		Type: osm.TypeNode,
		Lon:  lon,
		Lat:  lat,
		Tags: osm.Tags{
			"amenity": "pharmacy",
			"name":    fmt.Sprintf("Apotheke %d", id),
		},
		Accessibility: osm.Tags{
			"wheelchair": "yes",
		},
	}
}

// DoctorsNode returns a doctors node without accessibility tagging.
func DoctorsNode(id int64, lon, lat float64) osm.Object {
	return osm.Object{
		ID:   id,
		Type: osm.TypeNode,
		Lon:  lon,
		Lat:  lat,
		Tags: osm.Tags{
			"amenity":    "doctors",
			"healthcare": "doctor",
			"name":       fmt.Sprintf("Praxis %d", id),
		},
	}
}

// TramStopNode returns a public transport stop node, tagged not accessible.
func TramStopNode(id int64, lon, lat float64) osm.Object {
	return osm.Object{
		ID:   id,
		Type: osm.TypeNode,
		Lon:  lon,
		Lat:  lat,
		Tags: osm.Tags{
			"railway":          "tram_stop",
			"public_transport": "stop_position",
			"name":             fmt.Sprintf("Haltestelle %d", id),
		},
		Accessibility: osm.Tags{
			"wheelchair": "no",
		},
	}
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64InRange returns a pseudo-random number in [minVal, maxVal).
func (r *RNG) Float64InRange(minVal, maxVal float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return minVal + r.rand.Float64()*(maxVal-minVal)
}

// ScatterBuildings generates gable-roof buildings with origins placed
// uniformly within a span x span square anchored at (x, y). Identifiers are
// sequential, so repeated calls with the same seed reproduce the scene.
func (r *RNG) ScatterBuildings(num int, x, y, span float64) []cityjson.Building {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]cityjson.Building, num)
	for i := range num {
		bx := x + r.rand.Float64()*span
		by := y + r.rand.Float64()*span
		out[i] = GableRoofBuildingSized(fmt.Sprintf("DEBW_%06d", i), bx, by, DefaultWidth, DefaultDepth, DefaultWallHeight, DefaultRidge)
	}
	return out
}
