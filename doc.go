// Package citymesh merges OpenStreetMap point-of-interest objects with
// CityJSON LOD2 building solids into per-object records and renderable 3D
// scenes.
//
// The pipeline runs four stages per object: match (rank nearby building
// footprints; containment beats proximity, smaller footprints beat larger),
// merge (fuse tags and building attributes with per-field provenance and
// geometry validation flags), mesh (triangulate the solids into a deduped
// triangle mesh with per-surface-type materials), and export (write the
// point file, the merged record with embedded CityJSON, and a binary glTF
// scene to a blob store).
//
// # Quick Start
//
//	store, err := blobstore.NewLocalStore("3d")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pipeline, err := citymesh.New(
//	    citymesh.WithRadius(25),
//	    citymesh.WithWorkers(4),
//	    citymesh.WithOutput(store),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	summary, err := pipeline.Run(ctx, objects, buildings)
//
// Or with the fluent builder:
//
//	pipeline, err := citymesh.NewBuilder().
//	    Radius(25).
//	    Workers(4).
//	    Output(store).
//	    Compression(codec.Zstd{}).
//	    Build()
//
// Objects come from the overpass package (live fetch) or osm.Decode (a
// previously fetched file); buildings from cityjson.OpenTileSet over a tiled
// LOD2 export. A run never aborts on a single bad object: per-object
// failures are collected in the Summary.
package citymesh
