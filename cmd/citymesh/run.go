package main

import (
	"github.com/spf13/cobra"

	"github.com/lumogis/citymesh/cityjson"
)

func newRunCmd() *cobra.Command {
	var (
		flags     pipelineFlags
		place     string
		bbox      string
		amenities []string
		tiles     string
		pattern   string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch objects and merge them with CityJSON tiles in one step",
		Long: `Runs the full pipeline: fetches objects from the Overpass API for a place
or bounding box, matches them against a CityJSON tile directory and writes
merged records and GLB meshes to the configured output backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			objs, err := fetchObjects(cmd, place, bbox, amenities, true)
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
	cmd.Flags().StringVar(&place, "place", "", "place name to resolve via Nominatim (e.g. \"Karlsruhe\")")
	cmd.Flags().StringVar(&bbox, "bbox", "", "bounding box as south,west,north,east")
	cmd.Flags().StringSliceVar(&amenities, "amenities", nil, "amenity values to fetch (default: built-in list)")
	cmd.Flags().StringVar(&tiles, "tiles", "citygml", "directory containing CityJSON tiles")
	cmd.Flags().StringVar(&pattern, "pattern", "*.json", "glob pattern for tile files")
	return cmd
}
