package citymesh

import (
	"log/slog"

	"github.com/lumogis/citymesh/blobstore"
	"github.com/lumogis/citymesh/codec"
	"github.com/lumogis/citymesh/matcher"
	"github.com/lumogis/citymesh/merger"
	"github.com/lumogis/citymesh/meshkit"
)

type options struct {
	matchCfg         matcher.Config
	mergeCfg         merger.Config
	meshOpts         []func(*meshkit.Options)
	workers          int
	store            blobstore.Store
	compressor       codec.Compressor
	skipPointFiles   bool
	skipMeshes       bool
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures pipeline construction behavior.
type Option func(*options)

// WithRadius sets the match radius in meters. Objects farther than this
// from every building footprint stay unmatched. Default: 25.
func WithRadius(meters float64) Option {
	return func(o *options) {
		o.matchCfg.Radius = meters
	}
}

// WithMaxCandidates caps the candidate list per object. Zero means
// unlimited.
func WithMaxCandidates(n int) Option {
	return func(o *options) {
		o.matchCfg.MaxCandidates = n
	}
}

// WithMergeAllContaining controls whether every building containing the
// object's point is merged, or only the best-ranked one. Default: true.
func WithMergeAllContaining(all bool) Option {
	return func(o *options) {
		o.mergeCfg.MergeAllContaining = all
	}
}

// WithPlanarityTolerance sets the maximum out-of-plane deviation in meters
// before a surface is flagged. Default: 0.01.
func WithPlanarityTolerance(meters float64) Option {
	return func(o *options) {
		o.mergeCfg.PlanarityTolerance = meters
	}
}

// WithMeshOptions forwards tuning to the mesh builder, e.g. the vertex
// dedupe tolerance.
//
// Example:
//
//	citymesh.WithMeshOptions(func(o *meshkit.Options) {
//	    o.VertexTolerance = 1e-4
//	})
func WithMeshOptions(optFns ...func(*meshkit.Options)) Option {
	return func(o *options) {
		o.meshOpts = append(o.meshOpts, optFns...)
	}
}

// WithWorkers sets the number of objects processed concurrently. The
// stages of one object always run sequentially; workers parallelize across
// objects. Default: 1.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithOutput sets the destination for all written artifacts. Default: a
// local directory store rooted at "3d".
func WithOutput(store blobstore.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithCompression compresses merged record files with the given
// compressor. Point exports and mesh scenes are never compressed.
//
// Example:
//
//	p, _ := citymesh.New(citymesh.WithCompression(codec.Zstd{}))
func WithCompression(comp codec.Compressor) Option {
	return func(o *options) {
		o.compressor = comp
	}
}

// WithSkipPointFiles suppresses the plain per-object point exports.
func WithSkipPointFiles(skip bool) Option {
	return func(o *options) {
		o.skipPointFiles = skip
	}
}

// WithSkipMeshes suppresses mesh building and scene export; the pipeline
// stops after writing merged records.
func WithSkipMeshes(skip bool) Option {
	return func(o *options) {
		o.skipMeshes = skip
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &citymesh.BasicMetricsCollector{}
//	p, _ := citymesh.New(citymesh.WithMetricsCollector(metrics))
//	// ... run ...
//	stats := metrics.GetStats()
//	fmt.Printf("Merged: %d, Failed: %d\n", stats.MergeCount-stats.MergeErrors, stats.MergeErrors)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		matchCfg:         matcher.DefaultConfig(),
		mergeCfg:         merger.DefaultConfig(),
		workers:          1,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
