package cityjson_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumogis/citymesh/cityjson"
	"github.com/lumogis/citymesh/internal/geom"
	"github.com/lumogis/citymesh/testutil"
)

const sampleTile = `{
	"type": "CityJSON",
	"version": "1.0",
	"metadata": {
		"referenceSystem": "urn:ogc:def:crs:EPSG::25832",
		"geographicalExtent": [456000, 5428000, 0, 458000, 5430000, 100]
	},
	"transform": {
		"scale": [0.001, 0.001, 0.001],
		"translate": [456000, 5428000, 0]
	},
	"CityObjects": {
		"DEBW_0002": {
			"type": "Building",
			"attributes": {"measuredHeight": 9.5},
			"geometry": [{
				"type": "Solid",
				"lod": 2,
				"boundaries": [[[[0, 1, 2, 3]], [[0, 3, 4]]]],
				"semantics": {
					"surfaces": [{"type": "GroundSurface"}, {"type": "WallSurface"}],
					"values": [[0, 1]]
				}
			}]
		},
		"DEBW_0001": {
			"type": "Building",
			"geometry": [{
				"type": "MultiSurface",
				"lod": "2.2",
				"boundaries": [[[0, 1, 2]]],
				"semantics": {
					"surfaces": [{"type": "RoofSurface"}],
					"values": [0]
				}
			}]
		},
		"bridge": {"type": "Bridge", "geometry": []}
	},
	"vertices": [
		[0, 0, 0],
		[10000, 0, 0],
		[10000, 8000, 0],
		[0, 8000, 0],
		[0, 4000, 6000]
	]
}`

func TestDecode(t *testing.T) {
	doc, err := cityjson.Decode(strings.NewReader(sampleTile))
	require.NoError(t, err)

	assert.Equal(t, "CityJSON", doc.Type)
	assert.Equal(t, 25832, doc.EPSG())

	// Non-building objects are skipped, buildings come back ID-sorted.
	require.Len(t, doc.Buildings, 2)
	assert.Equal(t, "DEBW_0001", doc.Buildings[0].ID)
	assert.Equal(t, "DEBW_0002", doc.Buildings[1].ID)

	// The quantization transform is applied to real coordinates.
	b := doc.Buildings[1]
	require.Len(t, b.Solids, 1)
	require.Len(t, b.Solids[0].Surfaces, 2)
	ground := b.Solids[0].Surfaces[0]
	assert.Equal(t, cityjson.SurfaceGround, ground.Type)
	assert.Equal(t, geom.Vec3{456010, 5428000, 0}, ground.Ring[1])
	assert.Equal(t, cityjson.SurfaceWall, b.Solids[0].Surfaces[1].Type)
	assert.Equal(t, 9.5, b.Attributes["measuredHeight"])

	// String LOD values parse; the MultiSurface becomes one pseudo-solid.
	ms := doc.Buildings[0]
	require.Len(t, ms.Solids, 1)
	assert.Equal(t, cityjson.SurfaceRoof, ms.Solids[0].Surfaces[0].Type)
}

func TestDecode_Errors(t *testing.T) {
	_, err := cityjson.Decode(strings.NewReader(`{"type": "GeoJSON"}`))
	assert.ErrorContains(t, err, "not a CityJSON document")

	_, err = cityjson.Decode(strings.NewReader("{broken"))
	assert.Error(t, err)

	// Vertex index beyond the pool is a hard error, not silent truncation.
	bad := `{"type": "CityJSON", "version": "1.0", "CityObjects": {
		"b": {"type": "Building", "geometry": [{
			"type": "MultiSurface", "lod": 2, "boundaries": [[[0, 1, 99]]]
		}]}
	}, "vertices": [[0,0,0],[1,0,0],[1,1,0]]}`
	_, err = cityjson.Decode(strings.NewReader(bad))
	assert.ErrorContains(t, err, "out of range")
}

func TestParseEPSG(t *testing.T) {
	tests := []struct {
		ref  string
		want int
	}{
		{"urn:ogc:def:crs:EPSG::25832", 25832},
		{"https://www.opengis.net/def/crs/EPSG/0/25832", 25832},
		{"EPSG:4326", 4326},
		{"", 0},
		{"urn:ogc:def:crs:OGC:1.3:CRS84", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cityjson.ParseEPSG(tt.ref), tt.ref)
	}
}

func TestEncodeDocument_RoundTrip(t *testing.T) {
	in := []cityjson.Building{
		testutil.GableRoofBuilding("DEBW_0001", 457000, 5429000),
		testutil.FlatRoofBuilding("DEBW_0002", 457050, 5429020, 6, 6, 4),
	}
	meta := cityjson.Metadata{ReferenceSystem: "urn:ogc:def:crs:EPSG::25832"}

	data, err := cityjson.EncodeDocument(meta, in)
	require.NoError(t, err)

	doc, err := cityjson.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 25832, doc.EPSG())
	require.Len(t, doc.Buildings, 2)

	// Shared corners are pooled once.
	assert.Len(t, doc.Vertices, 18)

	for i := range in {
		assert.Equal(t, in[i].ID, doc.Buildings[i].ID)
		require.Len(t, doc.Buildings[i].Solids, len(in[i].Solids))
		got := doc.Buildings[i].Solids[0].Surfaces
		want := in[i].Solids[0].Surfaces
		require.Len(t, got, len(want))
		for j := range want {
			assert.Equal(t, want[j].Type, got[j].Type, "building %d surface %d", i, j)
			assert.Equal(t, want[j].Ring, got[j].Ring, "building %d surface %d", i, j)
		}
	}
}

func TestEncodeDocument_Deterministic(t *testing.T) {
	bs := []cityjson.Building{testutil.GableRoofBuilding("DEBW_0001", 457000, 5429000)}
	meta := cityjson.Metadata{ReferenceSystem: "urn:ogc:def:crs:EPSG::25832"}

	a, err := cityjson.EncodeDocument(meta, bs)
	require.NoError(t, err)
	b, err := cityjson.EncodeDocument(meta, bs)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
