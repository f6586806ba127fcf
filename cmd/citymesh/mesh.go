package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lumogis/citymesh/codec"
	"github.com/lumogis/citymesh/export"
	"github.com/lumogis/citymesh/merger"
	"github.com/lumogis/citymesh/meshkit"
)

func newMeshCmd() *cobra.Command {
	var (
		out       string
		areaTol   float64
		vertexTol float64
	)

	cmd := &cobra.Command{
		Use:   "mesh <record.json>",
		Short: "Build a GLB scene from a single merged record",
		Long: `Reads one merged building record, triangulates its solids and writes a
binary glTF scene. Compressed records are recognized by their .zst or
.lz4 extension. Useful for re-meshing stored records with different
tolerances without rerunning the full pipeline.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := readRecord(args[0])
			if err != nil {
				return err
			}

			mesh, err := meshkit.Build(rec, func(o *meshkit.Options) {
				if areaTol > 0 {
					o.AreaTolerance = areaTol
				}
				if vertexTol > 0 {
					o.VertexTolerance = vertexTol
				}
			})
			if err != nil {
				return err
			}
			glb, err := export.EncodeGLB(mesh)
			if err != nil {
				return err
			}

			if out == "" {
				out = rec.Key + ".glb"
			}
			if err := os.WriteFile(out, glb, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d faces, %d vertices)\n",
				out, len(mesh.Faces), len(mesh.Vertices))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output GLB file (defaults to <key>.glb)")
	cmd.Flags().Float64Var(&areaTol, "area-tolerance", 0, "drop triangles below this area in square meters")
	cmd.Flags().Float64Var(&vertexTol, "vertex-tolerance", 0, "weld vertices closer than this distance in meters")
	return cmd
}

// readRecord loads a merged record file, decompressing by extension.
func readRecord(path string) (*merger.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var comp codec.Compressor
	switch {
	case strings.HasSuffix(path, ".zst"):
		comp = codec.Zstd{}
	case strings.HasSuffix(path, ".lz4"):
		comp = codec.LZ4{}
	}
	if comp != nil {
		if data, err = comp.Decompress(data); err != nil {
			return nil, fmt.Errorf("decompress %s: %w", path, err)
		}
	}
	return merger.Decode(data)
}
