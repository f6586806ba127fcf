// Package export writes pipeline outputs: plain per-object point files,
// merged building records, and binary mesh scenes.
package export

import (
	"context"
	"fmt"

	"github.com/lumogis/citymesh/blobstore"
	"github.com/lumogis/citymesh/codec"
	"github.com/lumogis/citymesh/merger"
	"github.com/lumogis/citymesh/meshkit"
)

// WriteError wraps a storage failure with the output name that failed.
type WriteError struct {
	Name  string
	cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Name, e.cause)
}

func (e *WriteError) Unwrap() error { return e.cause }

// Options configure an Exporter.
type Options struct {
	// Compressor, when set, compresses the merged record file and appends
	// the matching extension (".zst", ".lz4"). The plain point export is
	// never compressed so downstream GIS tools can always read it.
	Compressor codec.Compressor

	// SkipPointFile suppresses the plain <key>.json point export.
	SkipPointFile bool
}

// Exporter writes the output artifacts for a merged record. Atomicity is
// delegated to the Store: a failed write never leaves a partial artifact
// visible under its final name.
type Exporter struct {
	store blobstore.Store
	opts  Options
}

// New creates an Exporter on top of a blob store.
func New(store blobstore.Store, optFns ...func(*Options)) *Exporter {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Exporter{store: store, opts: opts}
}

// Artifacts names the outputs written for one record.
type Artifacts struct {
	Point  string // plain point export, empty when skipped
	Record string // merged building record, always written
	Scene  string // binary mesh scene, empty when the record had no mesh
}

// pointFile is the plain per-object export: the object's point in the
// target CRS plus its merged properties, without the building geometry.
type pointFile struct {
	Key        string         `json:"osm_id"`
	EPSG       int            `json:"epsg"`
	Geometry   pointGeometry  `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type pointGeometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// Export writes the point file, the merged record, and, when a mesh is
// given, the binary scene. mesh may be nil for unmatched or degenerate
// records; the record is still written so the run output is complete.
func (e *Exporter) Export(ctx context.Context, rec *merger.Record, mesh *meshkit.Mesh) (Artifacts, error) {
	var out Artifacts

	if !e.opts.SkipPointFile {
		data, err := codec.Default.Marshal(pointFile{
			Key:        rec.Key,
			EPSG:       rec.EPSG,
			Geometry:   pointGeometry{Type: "Point", Coordinates: rec.Point},
			Properties: rec.Properties,
		})
		if err != nil {
			return out, fmt.Errorf("encode point file %s: %w", rec.Key, err)
		}
		out.Point = rec.Key + ".json"
		if err := e.store.Put(ctx, out.Point, data); err != nil {
			return out, &WriteError{Name: out.Point, cause: err}
		}
	}

	data, err := rec.Encode()
	if err != nil {
		return out, fmt.Errorf("encode record %s: %w", rec.Key, err)
	}
	out.Record = rec.Key + "_bld.json"
	if e.opts.Compressor != nil {
		data, err = e.opts.Compressor.Compress(data)
		if err != nil {
			return out, fmt.Errorf("compress record %s: %w", rec.Key, err)
		}
		out.Record += compressExt(e.opts.Compressor.Name())
	}
	if err := e.store.Put(ctx, out.Record, data); err != nil {
		return out, &WriteError{Name: out.Record, cause: err}
	}

	if mesh != nil && rec.Key != mesh.Key {
		return out, fmt.Errorf("export %s: mesh belongs to %s", rec.Key, mesh.Key)
	}
	if mesh != nil {
		glb, err := EncodeGLB(mesh)
		if err != nil {
			return out, fmt.Errorf("encode scene %s: %w", rec.Key, err)
		}
		out.Scene = rec.Key + ".glb"
		if err := e.store.Put(ctx, out.Scene, glb); err != nil {
			return out, &WriteError{Name: out.Scene, cause: err}
		}
	}

	return out, nil
}

func compressExt(name string) string {
	switch name {
	case "zstd":
		return ".zst"
	case "lz4":
		return ".lz4"
	default:
		return "." + name
	}
}
