package cityjson_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumogis/citymesh/cityjson"
	"github.com/lumogis/citymesh/testutil"
)

// writeTile encodes buildings into a tile file with the given extent.
func writeTile(t *testing.T, dir, name string, extent []float64, bs ...cityjson.Building) {
	t.Helper()
	data, err := cityjson.EncodeDocument(cityjson.Metadata{
		ReferenceSystem:    "urn:ogc:def:crs:EPSG::25832",
		GeographicalExtent: extent,
	}, bs)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func TestOpenTileSet(t *testing.T) {
	dir := t.TempDir()
	writeTile(t, dir, "gebaeude_lod2_457_5429.json",
		[]float64{457000, 5429000, 0, 459000, 5431000, 100},
		testutil.GableRoofBuilding("DEBW_0001", 457100, 5429100))
	writeTile(t, dir, "gebaeude_lod2_455_5429.json",
		[]float64{455000, 5429000, 0, 457000, 5431000, 100},
		testutil.GableRoofBuilding("DEBW_0002", 455500, 5429500))
	// A tile without an extent is skipped, not fatal.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gebaeude_lod2_bad.json"),
		[]byte(`{"type": "CityJSON", "version": "1.0", "CityObjects": {}, "vertices": []}`), 0o644))

	ts, err := cityjson.OpenTileSet(dir, "gebaeude_lod2_*.json")
	require.NoError(t, err)

	tiles := ts.Tiles()
	require.Len(t, tiles, 2)
	// Deterministic path order.
	assert.Equal(t, "gebaeude_lod2_455_5429.json", tiles[0].Name)
	assert.Equal(t, "gebaeude_lod2_457_5429.json", tiles[1].Name)
}

func TestOpenTileSet_Empty(t *testing.T) {
	_, err := cityjson.OpenTileSet(t.TempDir(), "*.json")
	assert.Error(t, err)
}

func TestTileSet_TilesCovering(t *testing.T) {
	dir := t.TempDir()
	writeTile(t, dir, "east.json",
		[]float64{457000, 5429000, 0, 459000, 5431000, 100},
		testutil.GableRoofBuilding("DEBW_0001", 457100, 5429100))
	writeTile(t, dir, "west.json",
		[]float64{455000, 5429000, 0, 457000, 5431000, 100},
		testutil.GableRoofBuilding("DEBW_0002", 455500, 5429500))

	ts, err := cityjson.OpenTileSet(dir, "*.json")
	require.NoError(t, err)

	got := ts.TilesCovering(orb.Point{458000, 5430000})
	require.Len(t, got, 1)
	assert.Equal(t, "east.json", got[0].Name)

	// The shared border belongs to both tiles.
	assert.Len(t, ts.TilesCovering(orb.Point{457000, 5430000}), 2)

	assert.Empty(t, ts.TilesCovering(orb.Point{400000, 5000000}))
}

func TestTileSet_Buildings(t *testing.T) {
	dir := t.TempDir()
	writeTile(t, dir, "a.json",
		[]float64{455000, 5429000, 0, 457000, 5431000, 100},
		testutil.GableRoofBuilding("DEBW_0001", 455500, 5429500))
	writeTile(t, dir, "b.json",
		[]float64{457000, 5429000, 0, 459000, 5431000, 100},
		testutil.GableRoofBuilding("DEBW_0002", 457100, 5429100),
		testutil.GableRoofBuilding("DEBW_0003", 457200, 5429200))

	ts, err := cityjson.OpenTileSet(dir, "*.json")
	require.NoError(t, err)

	all, err := ts.Buildings()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a.json", all[0].Tile)
	assert.Equal(t, 25832, all[0].EPSG)
	assert.Equal(t, "DEBW_0001", all[0].Building.ID)

	// Loading again hits the cache and stays consistent.
	again, err := ts.Buildings()
	require.NoError(t, err)
	assert.Equal(t, all, again)

	_, err = ts.Load("missing.json")
	assert.Error(t, err)
}
