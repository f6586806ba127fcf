package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/cobra"

	"github.com/lumogis/citymesh"
	"github.com/lumogis/citymesh/blobstore"
	minioblob "github.com/lumogis/citymesh/blobstore/minio"
	s3blob "github.com/lumogis/citymesh/blobstore/s3"
	"github.com/lumogis/citymesh/cityjson"
	"github.com/lumogis/citymesh/codec"
	"github.com/lumogis/citymesh/osm"
)

// pipelineFlags collects the flags shared by merge and run.
type pipelineFlags struct {
	radius        float64
	maxCandidates int
	workers       int
	mergeSingle   bool
	skipPoint     bool
	skipMesh      bool
	compress      string

	out           string
	s3Bucket      string
	s3Prefix      string
	minioEndpoint string
	minioBucket   string
	minioPrefix   string
	minioInsecure bool
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.radius, "radius", 25, "match radius in meters")
	cmd.Flags().IntVar(&f.maxCandidates, "max-candidates", 0, "cap on match candidates per object (0 for no cap)")
	cmd.Flags().IntVar(&f.workers, "workers", 1, "number of objects processed concurrently")
	cmd.Flags().BoolVar(&f.mergeSingle, "merge-single", false, "merge only the best match instead of all containing buildings")
	cmd.Flags().BoolVar(&f.skipPoint, "skip-point", false, "do not write per-object point files")
	cmd.Flags().BoolVar(&f.skipMesh, "skip-mesh", false, "do not build or write GLB meshes")
	cmd.Flags().StringVar(&f.compress, "compress", "none", "record compression: none, zstd or lz4")

	cmd.Flags().StringVarP(&f.out, "out", "o", "3d", "output directory for artifacts")
	cmd.Flags().StringVar(&f.s3Bucket, "s3-bucket", "", "write artifacts to this S3 bucket instead of a directory")
	cmd.Flags().StringVar(&f.s3Prefix, "s3-prefix", "", "key prefix inside the S3 bucket")
	cmd.Flags().StringVar(&f.minioEndpoint, "minio-endpoint", "", "write artifacts to a MinIO endpoint (host:port)")
	cmd.Flags().StringVar(&f.minioBucket, "minio-bucket", "", "bucket on the MinIO endpoint")
	cmd.Flags().StringVar(&f.minioPrefix, "minio-prefix", "", "key prefix inside the MinIO bucket")
	cmd.Flags().BoolVar(&f.minioInsecure, "minio-insecure", false, "use plain HTTP for the MinIO endpoint")
}

// store picks the output backend. S3 and MinIO credentials come from
// the usual environment (AWS_* and MINIO_* variables respectively).
func (f *pipelineFlags) store(ctx context.Context) (blobstore.Store, error) {
	switch {
	case f.s3Bucket != "":
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return s3blob.NewStore(awss3.NewFromConfig(cfg), f.s3Bucket, f.s3Prefix), nil
	case f.minioEndpoint != "":
		if f.minioBucket == "" {
			return nil, fmt.Errorf("--minio-bucket is required with --minio-endpoint")
		}
		client, err := minio.New(f.minioEndpoint, &minio.Options{
			Creds:  credentials.NewEnvMinio(),
			Secure: !f.minioInsecure,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return minioblob.NewStore(client, f.minioBucket, f.minioPrefix), nil
	default:
		return blobstore.NewLocalStore(f.out)
	}
}

func (f *pipelineFlags) pipeline(ctx context.Context, logger *citymesh.Logger) (*citymesh.Pipeline, error) {
	store, err := f.store(ctx)
	if err != nil {
		return nil, err
	}

	b := citymesh.NewBuilder().
		Radius(f.radius).
		Workers(f.workers).
		Output(store).
		Logger(logger)
	if f.maxCandidates > 0 {
		b = b.MaxCandidates(f.maxCandidates)
	}
	if f.mergeSingle {
		b = b.MergeSingle()
	}
	if f.skipPoint {
		b = b.SkipPointFiles()
	}
	if f.skipMesh {
		b = b.SkipMeshes()
	}
	switch f.compress {
	case "", "none":
	case "zstd":
		b = b.Compression(codec.Zstd{})
	case "lz4":
		b = b.Compression(codec.LZ4{})
	default:
		return nil, fmt.Errorf("unknown compression %q", f.compress)
	}
	return b.Build()
}

func loadObjects(path string) ([]osm.Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	objs, dropped, err := osm.Decode(f)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		fmt.Fprintf(os.Stderr, "skipped %d objects without coordinates\n", dropped)
	}
	return objs, nil
}

func reportSummary(cmd *cobra.Command, sum *citymesh.Summary) {
	fmt.Fprintf(cmd.OutOrStdout(), "objects=%d matched=%d unmatched=%d merged=%d meshed=%d exported=%d\n",
		sum.Objects, sum.Matched, sum.Unmatched, sum.Merged, sum.Meshed, sum.Exported)
	for _, f := range sum.Failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "failed %s at %s: %v\n", f.Key, f.Stage, f.Err)
	}
}

func newMergeCmd() *cobra.Command {
	var (
		flags   pipelineFlags
		tiles   string
		pattern string
	)

	cmd := &cobra.Command{
		Use:   "merge <pois.json>",
		Short: "Merge fetched objects with CityJSON tiles and export artifacts",
		Long: `Matches each object against the building footprints of a CityJSON tile
directory, merges matched objects with their buildings and writes the
resulting records and GLB meshes to the configured output backend.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			objs, err := loadObjects(args[0])
			if err != nil {
				return err
			}
			ts, err := cityjson.OpenTileSet(tiles, pattern)
			if err != nil {
				return err
			}
			buildings, err := ts.Buildings()
			if err != nil {
				return err
			}

			p, err := flags.pipeline(ctx, newLogger())
			if err != nil {
				return err
			}
			sum, err := p.Run(ctx, objs, buildings)
			if err != nil {
				return err
			}
			reportSummary(cmd, sum)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&tiles, "tiles", "citygml", "directory containing CityJSON tiles")
	cmd.Flags().StringVar(&pattern, "pattern", "*.json", "glob pattern for tile files")
	return cmd
}
