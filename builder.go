// Package citymesh merges OSM point-of-interest objects with CityJSON LOD2
// building solids into per-object records and binary mesh scenes.
//
// This file implements the fluent builder API for creating and configuring
// Pipeline instances. The builder is immutable - each method returns a new
// builder with the updated configuration.
package citymesh

import (
	"github.com/lumogis/citymesh/blobstore"
	"github.com/lumogis/citymesh/codec"
	"github.com/lumogis/citymesh/meshkit"
)

// NewBuilder creates a new Pipeline builder with default configuration.
//
// The builder is immutable - each method returns a new builder with the
// updated configuration. This ensures thread-safety and prevents accidental
// state sharing.
//
// Example:
//
//	p, err := citymesh.NewBuilder().
//	    Radius(50).
//	    Workers(4).
//	    Output(store).
//	    Compression(codec.Zstd{}).
//	    Build()
func NewBuilder() Builder {
	return Builder{
		radius:  25,
		workers: 1,
	}
}

// Builder is an immutable fluent builder for creating Pipeline instances.
// Each method returns a new builder with the updated configuration.
type Builder struct {
	radius             float64
	maxCandidates      int
	mergeSingle        bool
	planarityTolerance float64
	meshOpts           []func(*meshkit.Options)
	workers            int
	store              blobstore.Store
	compressor         codec.Compressor
	skipPointFiles     bool
	skipMeshes         bool
	logger             *Logger
	metrics            MetricsCollector
}

// Radius sets the candidate search radius in meters around each object.
// Default: 25.
func (b Builder) Radius(r float64) Builder {
	b.radius = r
	return b
}

// MaxCandidates caps the ranked candidate list per object.
// Default: 0 (unlimited).
func (b Builder) MaxCandidates(n int) Builder {
	b.maxCandidates = n
	return b
}

// MergeSingle restricts merging to the single best candidate, even when
// several footprints contain the object point. Default: merge all
// containing candidates.
func (b Builder) MergeSingle() Builder {
	b.mergeSingle = true
	return b
}

// PlanarityTolerance sets the maximum surface deviation in meters before a
// building is flagged as non-planar. Default: 0.01.
func (b Builder) PlanarityTolerance(tol float64) Builder {
	b.planarityTolerance = tol
	return b
}

// MeshOptions appends mesh construction options, such as meshkit tuning
// for triangulation.
func (b Builder) MeshOptions(optFns ...func(*meshkit.Options)) Builder {
	b.meshOpts = append(b.meshOpts[:len(b.meshOpts):len(b.meshOpts)], optFns...)
	return b
}

// Workers sets the number of objects processed concurrently.
// Default: 1.
func (b Builder) Workers(n int) Builder {
	b.workers = n
	return b
}

// Output sets the blob store that receives exported artifacts.
// Default: a local directory store rooted at "3d".
func (b Builder) Output(store blobstore.Store) Builder {
	b.store = store
	return b
}

// Compression compresses exported merged records with the given
// compressor. Point files and mesh scenes are never compressed.
func (b Builder) Compression(c codec.Compressor) Builder {
	b.compressor = c
	return b
}

// SkipPointFiles disables writing the plain point file per object.
func (b Builder) SkipPointFiles() Builder {
	b.skipPointFiles = true
	return b
}

// SkipMeshes disables mesh construction and scene export. Merged records
// are still written.
func (b Builder) SkipMeshes() Builder {
	b.skipMeshes = true
	return b
}

// Logger sets the structured logger for operation tracing.
func (b Builder) Logger(l *Logger) Builder {
	b.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b Builder) Metrics(mc MetricsCollector) Builder {
	b.metrics = mc
	return b
}

// Build creates the Pipeline.
func (b Builder) Build() (*Pipeline, error) {
	opts := []Option{
		WithRadius(b.radius),
	}
	if b.maxCandidates > 0 {
		opts = append(opts, WithMaxCandidates(b.maxCandidates))
	}
	if b.mergeSingle {
		opts = append(opts, WithMergeAllContaining(false))
	}
	if b.planarityTolerance > 0 {
		opts = append(opts, WithPlanarityTolerance(b.planarityTolerance))
	}
	if len(b.meshOpts) > 0 {
		opts = append(opts, WithMeshOptions(b.meshOpts...))
	}
	if b.workers > 1 {
		opts = append(opts, WithWorkers(b.workers))
	}
	if b.store != nil {
		opts = append(opts, WithOutput(b.store))
	}
	if b.compressor != nil {
		opts = append(opts, WithCompression(b.compressor))
	}
	if b.skipPointFiles {
		opts = append(opts, WithSkipPointFiles(true))
	}
	if b.skipMeshes {
		opts = append(opts, WithSkipMeshes(true))
	}
	if b.logger != nil {
		opts = append(opts, WithLogger(b.logger))
	}
	if b.metrics != nil {
		opts = append(opts, WithMetricsCollector(b.metrics))
	}

	return New(opts...)
}

// MustBuild creates the Pipeline, panicking on error.
func (b Builder) MustBuild() *Pipeline {
	p, err := b.Build()
	if err != nil {
		panic(err)
	}
	return p
}
