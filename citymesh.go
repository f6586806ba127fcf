package citymesh

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lumogis/citymesh/blobstore"
	"github.com/lumogis/citymesh/cityjson"
	"github.com/lumogis/citymesh/crs"
	"github.com/lumogis/citymesh/export"
	"github.com/lumogis/citymesh/geoindex"
	"github.com/lumogis/citymesh/matcher"
	"github.com/lumogis/citymesh/merger"
	"github.com/lumogis/citymesh/meshkit"
	"github.com/lumogis/citymesh/osm"
)

// Pipeline merges OSM point-of-interest objects with CityJSON LOD2 building
// solids and writes per-object merged records and binary mesh scenes.
// Construct with New or via the Builder; a Pipeline is safe for concurrent
// use once built.
type Pipeline struct {
	opts     options
	exporter *export.Exporter
}

// New creates a Pipeline.
//
// Example:
//
//	p, err := citymesh.New(
//	    citymesh.WithRadius(25),
//	    citymesh.WithWorkers(4),
//	    citymesh.WithOutput(store),
//	)
func New(optFns ...Option) (*Pipeline, error) {
	opts := applyOptions(optFns)

	if opts.store == nil {
		store, err := blobstore.NewLocalStore("3d")
		if err != nil {
			return nil, err
		}
		opts.store = store
	}

	exporter := export.New(opts.store, func(o *export.Options) {
		o.Compressor = opts.compressor
		o.SkipPointFile = opts.skipPointFiles
	})

	return &Pipeline{opts: opts, exporter: exporter}, nil
}

// Stage names a pipeline stage for failure reporting.
type Stage string

// Pipeline stages.
const (
	StageMatch  Stage = "match"
	StageMerge  Stage = "merge"
	StageMesh   Stage = "mesh"
	StageExport Stage = "export"
)

// Failure records one object that could not be fully processed.
type Failure struct {
	Key   string
	Stage Stage
	Err   error
}

// Summary accumulates the result of one run. Per-object failures are
// recorded here; only index construction and context cancellation abort a
// run.
type Summary struct {
	Objects   int
	Matched   int
	Unmatched int
	Merged    int
	Meshed    int
	Exported  int
	Failures  []Failure

	mu sync.Mutex
}

func (s *Summary) addFailure(key string, stage Stage, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Failures = append(s.Failures, Failure{Key: key, Stage: stage, Err: err})
}

func (s *Summary) add(fn func(*Summary)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

// Run processes all objects against the buildings. The spatial index is
// built once up front; objects are then matched, merged, meshed and
// exported independently, up to WithWorkers at a time. Unmatched objects
// and per-object geometry or write failures land in the summary; an empty
// building set or a canceled context aborts the run.
func (p *Pipeline) Run(ctx context.Context, objects []osm.Object, buildings []cityjson.SourcedBuilding) (*Summary, error) {
	ix, err := geoindex.Build(buildings)
	if err != nil {
		p.opts.logger.LogIndexBuild(ctx, len(buildings), 0, 0, err)
		return nil, translateError(err)
	}
	p.opts.logger.LogIndexBuild(ctx, ix.Len(), len(ix.SkippedIDs), ix.EPSG(), nil)

	proj, err := crs.NewProjection(ix.EPSG())
	if err != nil {
		return nil, translateError(err)
	}

	summary := &Summary{Objects: len(objects)}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.workers)

	for i := range objects {
		obj := &objects[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p.processObject(gctx, obj, ix, proj, summary)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}

	// Deterministic failure order regardless of worker scheduling.
	sort.Slice(summary.Failures, func(i, j int) bool {
		return summary.Failures[i].Key < summary.Failures[j].Key
	})

	p.opts.logger.LogRun(ctx, summary)
	return summary, nil
}

// processObject runs the per-object stages. Failures are recorded in the
// summary, never returned: one bad object must not stop the batch.
func (p *Pipeline) processObject(ctx context.Context, obj *osm.Object, ix *geoindex.Index, proj *crs.Projection, summary *Summary) {
	key := obj.Key()

	start := time.Now()
	res, err := matcher.Match(obj, proj, ix, p.opts.matchCfg)
	p.opts.metricsCollector.RecordMatch(len(res.Candidates), time.Since(start), err)
	p.opts.logger.LogMatch(ctx, key, len(res.Candidates), err)
	if err != nil {
		summary.addFailure(key, StageMatch, translateError(err))
		return
	}
	if !res.Matched() {
		summary.add(func(s *Summary) { s.Unmatched++ })
		return
	}
	summary.add(func(s *Summary) { s.Matched++ })

	start = time.Now()
	rec, err := merger.Merge(obj, res, ix, proj, p.opts.mergeCfg)
	p.opts.metricsCollector.RecordMerge(time.Since(start), err)
	if err != nil {
		p.opts.logger.LogMerge(ctx, key, 0, nil, err)
		summary.addFailure(key, StageMerge, translateError(err))
		return
	}
	p.opts.logger.LogMerge(ctx, key, len(rec.Buildings), rec.Flags, nil)
	summary.add(func(s *Summary) { s.Merged++ })

	var mesh *meshkit.Mesh
	if !p.opts.skipMeshes {
		start = time.Now()
		mesh, err = meshkit.Build(rec, p.opts.meshOpts...)
		faces := 0
		if mesh != nil {
			faces = mesh.FaceCount()
		}
		p.opts.metricsCollector.RecordMesh(faces, time.Since(start), err)
		if err != nil {
			p.opts.logger.LogMesh(ctx, key, 0, 0, err)
			summary.addFailure(key, StageMesh, translateError(err))
			mesh = nil
			// The record is still exported below so the run output stays
			// complete for unmeshable objects.
		} else {
			p.opts.logger.LogMesh(ctx, key, mesh.VertexCount(), mesh.FaceCount(), nil)
			summary.add(func(s *Summary) { s.Meshed++ })
		}
	}

	start = time.Now()
	arts, err := p.exporter.Export(ctx, rec, mesh)
	p.opts.metricsCollector.RecordExport(time.Since(start), err)
	p.opts.logger.LogExport(ctx, key, artifactCount(arts), err)
	if err != nil {
		summary.addFailure(key, StageExport, translateError(err))
		return
	}
	summary.add(func(s *Summary) { s.Exported++ })
}

func artifactCount(a export.Artifacts) int {
	n := 0
	for _, name := range []string{a.Point, a.Record, a.Scene} {
		if name != "" {
			n++
		}
	}
	return n
}
