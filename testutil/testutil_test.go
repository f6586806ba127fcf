package testutil

import (
	"testing"

	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumogis/citymesh/cityjson"
	"github.com/lumogis/citymesh/internal/geom"
)

func TestGableRoofBuilding(t *testing.T) {
	b := GableRoofBuilding("DEBW_0001", 457000, 5429000)

	require.Len(t, b.Solids, 1)
	assert.Equal(t, 7, b.SurfaceCount())

	counts := map[cityjson.SurfaceType]int{}
	for _, s := range b.Solids[0].Surfaces {
		counts[s.Type]++
	}
	assert.Equal(t, 2, counts[cityjson.SurfaceRoof])
	assert.Equal(t, 4, counts[cityjson.SurfaceWall])
	assert.Equal(t, 1, counts[cityjson.SurfaceGround])

	// Every fixture surface must be planar, otherwise merge validation
	// tests cannot assert empty flag lists.
	for i, s := range b.Solids[0].Surfaces {
		assert.InDelta(t, 0, geom.PlaneDeviation(s.Ring), 1e-9, "surface %d", i)
	}

	fp := b.Footprint()
	require.NotEmpty(t, fp)
	assert.InDelta(t, DefaultWidth*DefaultDepth, planar.Area(fp), 1e-6)
}

func TestGableRoofBuilding_OutwardWinding(t *testing.T) {
	b := GableRoofBuildingSized("x", 0, 0, 10, 8, 6, 9)

	var pts []geom.Vec3
	for _, s := range b.Solids[0].Surfaces {
		pts = append(pts, s.Ring...)
	}
	center := geom.Centroid(pts)

	for i, s := range b.Solids[0].Surfaces {
		n := geom.NewellNormal(s.Ring)
		outward := geom.Centroid(s.Ring).Sub(center)
		assert.Positive(t, n.Dot(outward), "surface %d winds inward", i)
	}
}

func TestFlatRoofBuilding(t *testing.T) {
	b := FlatRoofBuilding("box", 100, 200, 4, 5, 3)

	require.Len(t, b.Solids, 1)
	assert.Equal(t, 6, b.SurfaceCount())
	assert.InDelta(t, 20, planar.Area(b.Footprint()), 1e-6)
}

func TestOSMFixtures(t *testing.T) {
	ph := PharmacyNode(1001, 8.4037, 49.0069)
	assert.Equal(t, "1001", ph.Key())
	assert.Equal(t, "pharmacy", ph.Tags["amenity"])
	assert.Equal(t, "yes", ph.Accessibility["wheelchair"])

	tram := TramStopNode(2002, 8.41, 49.01)
	assert.Equal(t, "tram_stop", tram.Tags["railway"])
	assert.Equal(t, "no", tram.Accessibility["wheelchair"])

	doc := DoctorsNode(3003, 8.42, 49.02)
	assert.Empty(t, doc.Accessibility)
}

func TestRNG_Deterministic(t *testing.T) {
	a := NewRNG(42).ScatterBuildings(10, 457000, 5429000, 500)
	b := NewRNG(42).ScatterBuildings(10, 457000, 5429000, 500)

	require.Len(t, a, 10)
	assert.Equal(t, a, b)

	rng := NewRNG(7)
	first := rng.ScatterBuildings(3, 0, 0, 100)
	rng.Reset()
	assert.Equal(t, first, rng.ScatterBuildings(3, 0, 0, 100))
}
