package matcher_test

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumogis/citymesh/cityjson"
	"github.com/lumogis/citymesh/crs"
	"github.com/lumogis/citymesh/geoindex"
	"github.com/lumogis/citymesh/matcher"
	"github.com/lumogis/citymesh/osm"
	"github.com/lumogis/citymesh/testutil"
)

// scene projects a WGS84 anchor into EPSG:25832 and builds an index with
// buildings laid out relative to the projected anchor, so objects at the
// anchor coordinate land at a known spot in the scene.
func scene(t *testing.T, lon, lat float64, place func(x, y float64) []cityjson.Building) (*crs.Projection, *geoindex.Index) {
	t.Helper()
	proj, err := crs.NewProjection(25832)
	require.NoError(t, err)
	x, y := proj.ToPlanar(lon, lat)

	ix, err := geoindex.Build(testutil.SourcedAll(place(x, y), "tile", 25832))
	require.NoError(t, err)
	return proj, ix
}

func TestMatch_Containment(t *testing.T) {
	obj := testutil.PharmacyNode(1001, 8.4037, 49.0069)

	proj, ix := scene(t, obj.Lon, obj.Lat, func(x, y float64) []cityjson.Building {
		return []cityjson.Building{
			// Object point inside "home"; the adjacent neighbor's west
			// wall sits 5m east of the point.
			testutil.GableRoofBuildingSized("home", x-5, y-4, 10, 8, 6, 9),
			testutil.GableRoofBuildingSized("neighbor", x+5, y-4, 10, 8, 6, 9),
		}
	})

	res, err := matcher.Match(&obj, proj, ix, matcher.DefaultConfig())
	require.NoError(t, err)

	require.True(t, res.Matched())
	assert.Equal(t, "1001", res.Key)
	assert.Equal(t, []string{"home", "neighbor"}, res.IDs())

	home := res.Candidates[0]
	assert.True(t, home.Contains)
	assert.Zero(t, home.Distance)
	assert.Equal(t, 1.0, home.Score)

	neighbor := res.Candidates[1]
	assert.False(t, neighbor.Contains)
	assert.InDelta(t, 5, neighbor.Distance, 0.1)
	assert.InDelta(t, 0.8, neighbor.Score, 0.01)
}

func TestMatch_SmallerFootprintWinsContainment(t *testing.T) {
	obj := testutil.PharmacyNode(1001, 8.4037, 49.0069)

	proj, ix := scene(t, obj.Lon, obj.Lat, func(x, y float64) []cityjson.Building {
		return []cityjson.Building{
			testutil.FlatRoofBuilding("block", x-20, y-20, 40, 40, 10),
			testutil.FlatRoofBuilding("annex", x-3, y-3, 6, 6, 4),
		}
	})

	res, err := matcher.Match(&obj, proj, ix, matcher.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"annex", "block"}, res.IDs())
}

func TestMatch_NoCandidates(t *testing.T) {
	obj := testutil.PharmacyNode(1001, 8.4037, 49.0069)

	proj, ix := scene(t, obj.Lon, obj.Lat, func(x, y float64) []cityjson.Building {
		return []cityjson.Building{
			testutil.GableRoofBuilding("far", x+500, y+500),
		}
	})

	res, err := matcher.Match(&obj, proj, ix, matcher.DefaultConfig())
	require.NoError(t, err)
	assert.False(t, res.Matched())
	assert.Empty(t, res.IDs())
}

func TestMatch_MaxCandidates(t *testing.T) {
	obj := testutil.PharmacyNode(1001, 8.4037, 49.0069)

	proj, ix := scene(t, obj.Lon, obj.Lat, func(x, y float64) []cityjson.Building {
		var bs []cityjson.Building
		for i := 0; i < 5; i++ {
			bs = append(bs, testutil.GableRoofBuildingSized(
				string(rune('a'+i)), x+float64(i)*12, y+3, 10, 8, 6, 9))
		}
		return bs
	})

	res, err := matcher.Match(&obj, proj, ix, matcher.Config{Radius: 100, MaxCandidates: 2})
	require.NoError(t, err)
	assert.Len(t, res.Candidates, 2)
	assert.Equal(t, []string{"a", "b"}, res.IDs())
}

func TestMatch_FootprintCentroid(t *testing.T) {
	// A way object whose footprint centroid, ~150m north of its stored
	// coordinate, must drive the match.
	const d = 0.001 // ~111m of latitude
	obj := osm.Object{
		ID:   7,
		Type: osm.TypeWay,
		Lon:  8.4037,
		Lat:  49.0069,
		Footprint: orb.Ring{
			{8.4036, 49.0079}, {8.4038, 49.0079},
			{8.4038, 49.0079 + d}, {8.4036, 49.0079 + d},
			{8.4036, 49.0079},
		},
	}

	rep := obj.RepresentativePoint()
	proj, ix := scene(t, rep[0], rep[1], func(x, y float64) []cityjson.Building {
		return []cityjson.Building{
			testutil.GableRoofBuildingSized("atCentroid", x-5, y-4, 10, 8, 6, 9),
		}
	})

	res, err := matcher.Match(&obj, proj, ix, matcher.DefaultConfig())
	require.NoError(t, err)
	require.True(t, res.Matched())
	assert.Equal(t, "atCentroid", res.Candidates[0].ID)
	assert.True(t, res.Candidates[0].Contains)
	assert.Equal(t, "way_7", res.Key)
}
