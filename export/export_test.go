package export

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumogis/citymesh/blobstore"
	"github.com/lumogis/citymesh/cityjson"
	"github.com/lumogis/citymesh/codec"
	"github.com/lumogis/citymesh/internal/geom"
	"github.com/lumogis/citymesh/merger"
	"github.com/lumogis/citymesh/meshkit"
)

func quadMesh(key string) *meshkit.Mesh {
	return &meshkit.Mesh{
		Key: key,
		Vertices: []geom.Vec3{
			{0, 0, 0}, {10, 0, 0}, {10, 10, 0}, {0, 10, 0},
			{0, 0, 3}, {10, 0, 3}, {10, 10, 3}, {0, 10, 3},
		},
		Faces: []meshkit.Face{
			{4, 5, 6}, {4, 6, 7}, // roof
			{0, 1, 5}, {0, 5, 4}, // one wall
			{0, 2, 1}, {0, 3, 2}, // ground
		},
		Groups: []meshkit.Group{
			{Material: meshkit.MaterialRoof, Start: 0, Count: 2},
			{Material: meshkit.MaterialWall, Start: 2, Count: 2},
			{Material: meshkit.MaterialGround, Start: 4, Count: 2},
		},
	}
}

func groundRecord(key string) *merger.Record {
	ring := []geom.Vec3{{0, 0, 0}, {10, 0, 0}, {10, 10, 0}, {0, 10, 0}}
	return &merger.Record{
		Key:         key,
		EPSG:        25832,
		Point:       [2]float64{5, 5},
		Properties:  map[string]any{"amenity": "cafe"},
		Provenance:  map[string]merger.Provenance{"amenity": merger.FromOSM},
		BuildingIDs: []string{"BLD_1"},
		Buildings: []cityjson.Building{{
			ID: "BLD_1",
			Solids: []cityjson.Solid{{
				Surfaces: []cityjson.Surface{{Type: cityjson.SurfaceGround, Ring: ring}},
			}},
		}},
	}
}

func TestEncodeGLB(t *testing.T) {
	t.Run("GroupsBecomeNodes", func(t *testing.T) {
		data, err := EncodeGLB(quadMesh("node_7"))
		require.NoError(t, err)

		// Binary glTF magic
		require.GreaterOrEqual(t, len(data), 4)
		assert.Equal(t, "glTF", string(data[:4]))

		doc, err := DecodeGLB(data)
		require.NoError(t, err)

		require.Len(t, doc.Nodes, 3)
		assert.Equal(t, "RoofSurface", doc.Nodes[0].Name)
		assert.Equal(t, "WallSurface", doc.Nodes[1].Name)
		assert.Equal(t, "GroundSurface", doc.Nodes[2].Name)

		require.Len(t, doc.Meshes, 3)
		assert.Equal(t, "node_7/RoofSurface", doc.Meshes[0].Name)
		require.Len(t, doc.Materials, 3)
		assert.True(t, doc.Materials[0].DoubleSided)
		require.NotNil(t, doc.Materials[0].PBRMetallicRoughness.BaseColorFactor)
		assert.Equal(t, meshkit.MaterialRoof.Color(), *doc.Materials[0].PBRMetallicRoughness.BaseColorFactor)

		// Shared position accessor, per-group index accessors
		pos := doc.Meshes[0].Primitives[0].Attributes[gltf.POSITION]
		assert.Equal(t, pos, doc.Meshes[1].Primitives[0].Attributes[gltf.POSITION])
		assert.EqualValues(t, 8, doc.Accessors[pos].Count)

		idx := *doc.Meshes[0].Primitives[0].Indices
		assert.EqualValues(t, 6, doc.Accessors[idx].Count)
	})

	t.Run("EmptyGroupSkipped", func(t *testing.T) {
		m := quadMesh("node_8")
		m.Groups = append(m.Groups, meshkit.Group{Material: meshkit.MaterialUnknown, Start: 6, Count: 0})

		data, err := EncodeGLB(m)
		require.NoError(t, err)

		doc, err := DecodeGLB(data)
		require.NoError(t, err)
		assert.Len(t, doc.Nodes, 3)
	})

	t.Run("NilMesh", func(t *testing.T) {
		_, err := EncodeGLB(nil)
		assert.Error(t, err)
	})

	t.Run("Deterministic", func(t *testing.T) {
		a, err := EncodeGLB(quadMesh("node_9"))
		require.NoError(t, err)
		b, err := EncodeGLB(quadMesh("node_9"))
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

func TestExporter(t *testing.T) {
	ctx := context.Background()

	t.Run("AllArtifacts", func(t *testing.T) {
		store := blobstore.NewMemoryStore()
		e := New(store)

		out, err := e.Export(ctx, groundRecord("node_42"), quadMesh("node_42"))
		require.NoError(t, err)

		assert.Equal(t, "node_42.json", out.Point)
		assert.Equal(t, "node_42_bld.json", out.Record)
		assert.Equal(t, "node_42.glb", out.Scene)
		assert.Equal(t, 3, store.Len())
	})

	t.Run("RecordWithoutMesh", func(t *testing.T) {
		store := blobstore.NewMemoryStore()
		e := New(store)

		out, err := e.Export(ctx, groundRecord("node_43"), nil)
		require.NoError(t, err)

		assert.Equal(t, "node_43_bld.json", out.Record)
		assert.Empty(t, out.Scene)
		assert.Equal(t, 2, store.Len())
	})

	t.Run("SkipPointFile", func(t *testing.T) {
		store := blobstore.NewMemoryStore()
		e := New(store, func(o *Options) { o.SkipPointFile = true })

		out, err := e.Export(ctx, groundRecord("node_44"), nil)
		require.NoError(t, err)
		assert.Empty(t, out.Point)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("CompressedRecord", func(t *testing.T) {
		store := blobstore.NewMemoryStore()
		e := New(store, func(o *Options) { o.Compressor = codec.Zstd{} })

		out, err := e.Export(ctx, groundRecord("node_45"), nil)
		require.NoError(t, err)
		assert.Equal(t, "node_45_bld.json.zst", out.Record)

		rc, err := store.Open(ctx, out.Record)
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)

		raw, err := codec.Zstd{}.Decompress(data)
		require.NoError(t, err)
		rec, err := merger.Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, "node_45", rec.Key)
	})

	t.Run("MeshKeyMismatch", func(t *testing.T) {
		store := blobstore.NewMemoryStore()
		e := New(store)

		_, err := e.Export(ctx, groundRecord("node_46"), quadMesh("node_47"))
		assert.Error(t, err)
	})

	t.Run("RecordRoundTrips", func(t *testing.T) {
		store := blobstore.NewMemoryStore()
		e := New(store)

		_, err := e.Export(ctx, groundRecord("node_48"), nil)
		require.NoError(t, err)

		rc, err := store.Open(ctx, "node_48.json")
		require.NoError(t, err)
		defer rc.Close()

		var point map[string]any
		require.NoError(t, json.NewDecoder(rc).Decode(&point))
		assert.Equal(t, "node_48", point["osm_id"])
		assert.NotContains(t, point, "cityjson")

		rc2, err := store.Open(ctx, "node_48_bld.json")
		require.NoError(t, err)
		defer rc2.Close()
		data, err := io.ReadAll(rc2)
		require.NoError(t, err)

		rec, err := merger.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, []string{"BLD_1"}, rec.BuildingIDs)
	})
}
